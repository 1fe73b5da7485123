package mission

import "strings"

// NextPending returns the first startable entry in the Pending section.
// Only flat `- ` lines are eligible; complex blocks and their checklist
// items are skipped. When project is non-empty, entries tagged for a
// different project are passed over; untagged entries match every project.
func NextPending(doc *Document, project string) (Entry, bool) {
	pending := doc.Section(SectionPending)
	if pending == nil {
		return Entry{}, false
	}

	inBlock := false
	for _, line := range pending.Lines {
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

		entry := ParseEntry(line)
		if project != "" && entry.Tagged() && !strings.EqualFold(entry.Project, project) {
			continue
		}
		return entry, true
	}

	return Entry{}, false
}
