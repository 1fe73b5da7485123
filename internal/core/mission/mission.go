// Package mission implements the mission queue document: parsing, lifecycle
// mutation, extraction, and crash recovery over a markdown mission file.
package mission

import (
	"regexp"
	"strings"
	"time"
)

// SectionKind identifies one of the lifecycle buckets in the document.
type SectionKind int

const (
	SectionUnknown SectionKind = iota
	SectionPending
	SectionInProgress
	SectionDone
	SectionFailed
)

// String returns the canonical header text for the section kind.
func (k SectionKind) String() string {
	switch k {
	case SectionPending:
		return "## Pending"
	case SectionInProgress:
		return "## In Progress"
	case SectionDone:
		return "## Done"
	case SectionFailed:
		return "## Failed"
	default:
		return "## ?"
	}
}

// headerAliases maps every accepted header spelling (lowercased) to its
// canonical section kind. The document format accepts one localized alias
// per header alongside the English spelling.
var headerAliases = map[string]SectionKind{
	"## pending":     SectionPending,
	"## en attente":  SectionPending,
	"## in progress": SectionInProgress,
	"## en cours":    SectionInProgress,
	"## done":        SectionDone,
	"## terminées":   SectionDone,
	"## terminees":   SectionDone,
	"## failed":      SectionFailed,
	"## échouées":    SectionFailed,
	"## echouees":    SectionFailed,
}

// kindForHeader resolves a raw line to a section kind.
// Returns SectionUnknown for headers that are not part of the lifecycle.
func kindForHeader(line string) SectionKind {
	return headerAliases[strings.ToLower(strings.TrimSpace(line))]
}

// isSectionHeader reports whether a line opens a new `##` section.
// `###` sub-headers belong to complex mission blocks, not sections.
func isSectionHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "## ") && !strings.HasPrefix(trimmed, "###")
}

// Outcome is the terminal result of a mission.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

// Entry is a single mission parsed out of a document line.
type Entry struct {
	// Text is the human-readable description with the project tag and all
	// lifecycle stamps stripped.
	Text string
	// Project is the [project:NAME] scope, empty when untagged.
	Project string
	// Raw is the verbatim document line the entry was parsed from.
	Raw string

	QueuedAt    time.Time
	StartedAt   time.Time
	CompletedAt time.Time
	Outcome     Outcome
}

// Tagged reports whether the entry is scoped to a project.
func (e Entry) Tagged() bool { return e.Project != "" }

// Project tags accept both the English and the localized spelling.
var (
	projectTagRe      = regexp.MustCompile(`\[projec?t:([a-zA-Z0-9_-]+)\]`)
	projectTagStripRe = regexp.MustCompile(`\[projec?t:[a-zA-Z0-9_-]+\]\s*`)
)

// ParseProject extracts the [project:name] tag from text.
// Returns the project name and the text with the tag removed, or
// ("", text) when no tag is present.
func ParseProject(text string) (string, string) {
	m := projectTagRe.FindStringSubmatch(text)
	if m == nil {
		return "", text
	}
	return m[1], strings.TrimSpace(projectTagStripRe.ReplaceAllString(text, ""))
}

// placeholders are literal empty-section markers that mutations remove
// before inserting real entries.
var placeholders = map[string]bool{
	"(none)":   true,
	"(aucune)": true,
}

// isPlaceholder reports whether a line is an empty-section marker.
func isPlaceholder(line string) bool {
	return placeholders[strings.TrimSpace(line)]
}

// isMissionLine reports whether a line is a `- ` mission item.
func isMissionLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "- ")
}

// isStruck reports whether a mission line is fully struck through.
func isStruck(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "- ~~")
}

// isBlockHeader reports whether a line opens a complex mission block.
func isBlockHeader(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "### ")
}

// ParseEntry builds an Entry from a raw mission line.
func ParseEntry(line string) Entry {
	ts := ExtractTimestamps(line)

	text := strings.TrimSpace(line)
	text = strings.TrimPrefix(text, "- ")
	project, text := ParseProject(text)
	text = strings.TrimSpace(stripAllMarkers(text))

	outcome := OutcomeNone
	if !ts.Completed.IsZero() || strings.Contains(line, completedMarker) || strings.Contains(line, failedMarker) {
		if strings.Contains(line, failedMarker) {
			outcome = OutcomeFailure
		} else if strings.Contains(line, completedMarker) {
			outcome = OutcomeSuccess
		}
	}

	return Entry{
		Text:        text,
		Project:     project,
		Raw:         line,
		QueuedAt:    ts.Queued,
		StartedAt:   ts.Started,
		CompletedAt: ts.Completed,
		Outcome:     outcome,
	}
}
