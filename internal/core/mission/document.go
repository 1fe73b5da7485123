package mission

import "strings"

// DefaultSkeleton is the empty mission document, created lazily whenever the
// backing file is missing or blank.
const DefaultSkeleton = "# Missions\n\n## Pending\n\n## In Progress\n\n## Done\n"

// Section is one ordered bucket of the document. Lines are kept verbatim so
// constructs the parser does not understand survive a round trip untouched.
type Section struct {
	Kind   SectionKind
	Header string
	Lines  []string
}

// Document is the parsed mission file: leading title text plus the ordered
// sections. Serialization is byte-stable for any input.
type Document struct {
	Preamble []string
	Sections []*Section
}

// Parse builds a Document from file content. Blank content falls back to the
// default skeleton; unknown sections and unrecognized lines pass through.
func Parse(content string) *Document {
	if strings.TrimSpace(content) == "" {
		content = DefaultSkeleton
	}

	doc := &Document{}
	var current *Section

	for _, line := range strings.Split(content, "\n") {
		if isSectionHeader(line) {
			current = &Section{Kind: kindForHeader(line), Header: line}
			doc.Sections = append(doc.Sections, current)
			continue
		}
		if current == nil {
			doc.Preamble = append(doc.Preamble, line)
			continue
		}
		current.Lines = append(current.Lines, line)
	}

	return doc
}

// String serializes the document. Parse(s).String() == s for any s with
// non-blank content.
func (d *Document) String() string {
	var b strings.Builder
	for i, line := range d.Preamble {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(line)
	}
	for i, sec := range d.Sections {
		if i > 0 || len(d.Preamble) > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sec.Header)
		for _, line := range sec.Lines {
			b.WriteString("\n")
			b.WriteString(line)
		}
	}
	return b.String()
}

// Section returns the first section of the given kind, or nil.
func (d *Document) Section(kind SectionKind) *Section {
	for _, sec := range d.Sections {
		if sec.Kind == kind {
			return sec
		}
	}
	return nil
}

// ensure returns the section of the given kind, creating it with the
// canonical header when missing. Created sections are appended so existing
// layout is never reshuffled; headers are never duplicated.
func (d *Document) ensure(kind SectionKind) *Section {
	if sec := d.Section(kind); sec != nil {
		return sec
	}

	// Separate the new section from whatever precedes it.
	if n := len(d.Sections); n > 0 {
		last := d.Sections[n-1]
		if len(last.Lines) == 0 || strings.TrimSpace(last.Lines[len(last.Lines)-1]) != "" {
			last.Lines = append(last.Lines, "")
		}
	}

	sec := &Section{Kind: kind, Header: kind.String(), Lines: []string{""}}
	d.Sections = append(d.Sections, sec)
	return sec
}

// insertTop places a line at the top of the section, immediately after any
// leading blank lines. In an all-blank section the line lands right after
// the first separator blank so the trailing blanks keep the next header
// visually detached.
func (s *Section) insertTop(line string) {
	idx := 0
	for idx < len(s.Lines) && strings.TrimSpace(s.Lines[idx]) == "" {
		idx++
	}
	if idx == len(s.Lines) && idx > 1 {
		idx = 1
	}
	s.Lines = append(s.Lines[:idx], append([]string{line}, s.Lines[idx:]...)...)
	s.padAfter(idx)
}

// appendEntry places a line after the last non-blank line of the section,
// keeping trailing blank separators where they are.
func (s *Section) appendEntry(line string) {
	idx := len(s.Lines)
	for idx > 0 && strings.TrimSpace(s.Lines[idx-1]) == "" {
		idx--
	}
	if idx == 0 {
		s.insertTop(line)
		return
	}
	s.Lines = append(s.Lines[:idx], append([]string{line}, s.Lines[idx:]...)...)
	s.padAfter(idx)
}

// padAfter keeps one blank separator after a line inserted at the section
// end so the next header stays detached.
func (s *Section) padAfter(i int) {
	if i == len(s.Lines)-1 {
		s.Lines = append(s.Lines, "")
	}
}

// removeLine drops the line at index i.
func (s *Section) removeLine(i int) {
	s.Lines = append(s.Lines[:i], s.Lines[i+1:]...)
}

// removePlaceholders strips empty-section markers such as "(none)".
func (s *Section) removePlaceholders() {
	kept := s.Lines[:0]
	for _, line := range s.Lines {
		if isPlaceholder(line) {
			continue
		}
		kept = append(kept, line)
	}
	s.Lines = kept
}

// contains reports whether the section already holds a mission line with the
// same normalized text.
func (s *Section) contains(line string) bool {
	want := stripAllMarkers(strings.TrimSpace(line))
	for _, l := range s.Lines {
		if !isMissionLine(l) {
			continue
		}
		if stripAllMarkers(strings.TrimSpace(l)) == want {
			return true
		}
	}
	return false
}

// Entries returns the flat mission entries of a section, skipping blanks,
// placeholders, and the body of complex blocks. Complex block headers are
// surfaced as entries of their own so callers can display them.
func (s *Section) Entries() []Entry {
	var out []Entry
	inBlock := false
	for _, line := range s.Lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			inBlock = false
		case isBlockHeader(line):
			inBlock = true
			out = append(out, Entry{Text: strings.TrimPrefix(trimmed, "### "), Raw: line})
		case inBlock:
			// checklist items stay inside their block
		case isMissionLine(line) && !isPlaceholder(line):
			out = append(out, ParseEntry(line))
		}
	}
	return out
}
