package mission

import "strings"

// Recover sweeps the In Progress section and returns crash-interrupted
// missions to Pending. Only flat `- ` lines are eligible: complex blocks are
// left exactly where they are regardless of checklist state, and fully
// struck-through lines are finished work, not stale work. Recovered lines
// keep their queued stamp and lose only the started stamp. The sweep is
// idempotent: a line whose normalized text is already present in Pending is
// removed from In Progress without being inserted again.
//
// Returns the number of entries moved back to Pending.
func Recover(doc *Document) int {
	prog := doc.Section(SectionInProgress)
	if prog == nil {
		return 0
	}

	// Collect indices first so removal doesn't disturb the scan.
	var stale []int
	inBlock := false
	for i, line := range prog.Lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			inBlock = false
			continue
		case isBlockHeader(line):
			inBlock = true
			continue
		case inBlock:
			continue
		}

		if !isMissionLine(line) || isStruck(line) || isPlaceholder(line) {
			continue
		}
		stale = append(stale, i)
	}

	if len(stale) == 0 {
		return 0
	}

	pending := doc.ensure(SectionPending)
	pending.removePlaceholders()

	recovered := 0
	for offset, idx := range stale {
		i := idx - offset // earlier removals shift the remaining indices
		line := prog.Lines[i]
		prog.removeLine(i)

		restored := removeStamp(line, startedMarker)
		if pending.contains(restored) {
			continue
		}
		pending.appendEntry(restored)
		recovered++
	}

	return recovered
}
