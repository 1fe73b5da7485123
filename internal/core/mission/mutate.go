package mission

import (
	"strings"
	"time"
)

// Matches reports whether a mission line refers to the given match text.
// Comparison runs against the normalized line, with stamps and markers
// stripped, so repeated lifecycle operations stay stable as stamps accumulate.
func Matches(line, match string) bool {
	return strings.Contains(stripAllMarkers(line), match)
}

// Insert adds a mission entry to the Pending section and returns the line
// as written. The entry text may carry an inline [project:NAME] tag, which
// is preserved. A queued stamp is appended unless the text already carries
// one, so re-inserting an already stamped line never double-stamps. Urgent
// entries go to the top of Pending, everything else is appended.
// Empty-section placeholders are removed first.
func Insert(doc *Document, entry string, urgent bool, now time.Time) string {
	line := strings.TrimSpace(entry)
	if line == "" {
		return ""
	}
	if !strings.HasPrefix(line, "- ") && !strings.HasPrefix(line, "### ") {
		line = "- " + line
	}
	if strings.HasPrefix(line, "- ") {
		line = StampQueued(line, now)
	}

	pending := doc.ensure(SectionPending)
	pending.removePlaceholders()
	if urgent {
		pending.insertTop(line)
		return line
	}
	pending.appendEntry(line)
	return line
}

// Start moves the first Pending entry matching the given text to In
// Progress, appending a started stamp and preserving the queued stamp.
// Returns false, leaving the document unchanged, when nothing matches.
func Start(doc *Document, match string, now time.Time) bool {
	pending := doc.Section(SectionPending)
	if pending == nil {
		return false
	}

	for i, line := range pending.Lines {
		if !isMissionLine(line) || isStruck(line) || isPlaceholder(line) {
			continue
		}
		if !Matches(line, match) {
			continue
		}
		pending.removeLine(i)
		doc.ensure(SectionInProgress).appendEntry(StampStarted(line, now))
		return true
	}
	return false
}

// Complete moves the matching In Progress entry to Done with a success
// stamp. For checklist items inside a complex block the item is struck
// through and the block only moves once every sub-item is done.
func Complete(doc *Document, match string, now time.Time) bool {
	return finish(doc, match, now, false)
}

// Fail moves the matching In Progress entry to Failed with a failure stamp.
func Fail(doc *Document, match string, now time.Time) bool {
	return finish(doc, match, now, true)
}

func finish(doc *Document, match string, now time.Time, failed bool) bool {
	prog := doc.Section(SectionInProgress)
	if prog == nil {
		return false
	}

	dest := SectionDone
	if failed {
		dest = SectionFailed
	}

	inBlock := false
	blockStart := -1
	for i, line := range prog.Lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			inBlock = false
		case isBlockHeader(line):
			inBlock = true
			blockStart = i
			continue
		}

		if !isMissionLine(line) || !Matches(line, match) {
			continue
		}

		if inBlock {
			return finishChecklistItem(doc, prog, blockStart, i, now, failed)
		}
		if isStruck(line) {
			continue
		}

		prog.removeLine(i)
		doc.ensure(dest).appendEntry(StampCompleted(line, now, failed))
		return true
	}
	return false
}

// finishChecklistItem strikes through one sub-item of a complex block, then
// moves the whole block out of In Progress once every sub-item is done.
func finishChecklistItem(doc *Document, prog *Section, blockStart, item int, now time.Time, failed bool) bool {
	if !isStruck(prog.Lines[item]) {
		prog.Lines[item] = strikeItem(prog.Lines[item])
	}

	end := blockEnd(prog.Lines, blockStart)
	for i := blockStart + 1; i < end; i++ {
		if !checklistItemDone(prog.Lines[i]) {
			return true // block stays until every sub-item is done
		}
	}

	block := make([]string, end-blockStart)
	copy(block, prog.Lines[blockStart:end])
	block[0] = StampCompleted(block[0], now, failed)

	prog.Lines = append(prog.Lines[:blockStart], prog.Lines[end:]...)
	// collapse the double blank left where the block was cut out
	if blockStart > 0 && blockStart < len(prog.Lines) &&
		strings.TrimSpace(prog.Lines[blockStart]) == "" && strings.TrimSpace(prog.Lines[blockStart-1]) == "" {
		prog.removeLine(blockStart)
	}

	dest := doc.ensure(SectionDone)
	if failed {
		dest = doc.ensure(SectionFailed)
	}
	for _, line := range block {
		dest.appendEntry(line)
	}
	return true
}

// blockEnd returns the index one past the last line of the complex block
// starting at blockStart. A blank line or a new header closes the block.
func blockEnd(lines []string, blockStart int) int {
	for i := blockStart + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || isBlockHeader(lines[i]) || isSectionHeader(lines[i]) {
			return i
		}
	}
	return len(lines)
}

// checklistItemDone reports whether a block sub-item is finished: struck
// through or checked off.
func checklistItemDone(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "- ") {
		return true // non-item lines don't hold the block open
	}
	return isStruck(line) || strings.HasPrefix(trimmed, "- [x]") || strings.HasPrefix(trimmed, "- [X]")
}

// strikeItem wraps a checklist item's text in strikethrough, dropping any
// unchecked checkbox prefix.
func strikeItem(line string) string {
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	trimmed := strings.TrimSpace(line)
	body := strings.TrimPrefix(trimmed, "- ")
	body = strings.TrimPrefix(body, "[ ] ")
	body = strings.TrimPrefix(body, "[x] ")
	body = strings.TrimPrefix(body, "[X] ")
	return indent + "- ~~" + body + "~~"
}
