package mission

import (
	"fmt"
	"strings"
	"time"
)

// Lifecycle markers appended to mission lines. The queued and started stamps
// use a compact layout; completion stamps keep the older spaced layout for
// compatibility with documents written before lifecycle tracking existed.
const (
	queuedMarker    = "⏳"
	startedMarker   = "▶"
	completedMarker = "✅"
	failedMarker    = "❌"

	stampLayout     = "2006-01-02T15:04"
	completedLayout = "2006-01-02 15:04"
)

// Timestamps holds the lifecycle stamps parsed from a mission line.
// Zero values mean the stamp is absent or malformed.
type Timestamps struct {
	Queued    time.Time
	Started   time.Time
	Completed time.Time
	Failed    bool
}

// ExtractTimestamps parses the lifecycle stamps from a mission line.
// Parsing is positional on the marker glyphs so arbitrary description text is
// never misread. Malformed stamps degrade to zero values.
func ExtractTimestamps(line string) Timestamps {
	ts := Timestamps{
		Queued:  parseStamp(line, queuedMarker, stampLayout),
		Started: parseStamp(line, startedMarker, stampLayout),
	}

	ts.Completed = parseStamp(line, completedMarker, completedLayout)
	if failed := parseStamp(line, failedMarker, completedLayout); !failed.IsZero() {
		ts.Completed = failed
		ts.Failed = true
	}

	return ts
}

// parseStamp finds marker followed by a parenthesized timestamp, tolerating a
// single space between the glyph and the opening paren.
func parseStamp(line, marker, layout string) time.Time {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return time.Time{}
	}

	rest := line[idx+len(marker):]
	rest = strings.TrimPrefix(rest, " ")
	if !strings.HasPrefix(rest, "(") {
		return time.Time{}
	}
	rest = rest[1:]

	end := strings.Index(rest, ")")
	if end < 0 {
		return time.Time{}
	}

	t, err := time.ParseInLocation(layout, rest[:end], time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// HasQueued reports whether the line already carries a queued stamp.
func HasQueued(line string) bool {
	return strings.Contains(line, queuedMarker+"(")
}

// HasStarted reports whether the line already carries a started stamp.
func HasStarted(line string) bool {
	return strings.Contains(line, startedMarker+"(")
}

// HasCompleted reports whether the line already carries a completion stamp.
func HasCompleted(line string) bool {
	return strings.Contains(line, completedMarker) || strings.Contains(line, failedMarker)
}

// StampQueued appends a queued stamp to the line unless one is present.
func StampQueued(line string, now time.Time) string {
	if HasQueued(line) {
		return line
	}
	return fmt.Sprintf("%s %s(%s)", strings.TrimRight(line, " "), queuedMarker, now.Format(stampLayout))
}

// StampStarted appends a started stamp to the line unless one is present.
// The queued stamp, when present, is preserved untouched.
func StampStarted(line string, now time.Time) string {
	if HasStarted(line) {
		return line
	}
	return fmt.Sprintf("%s %s(%s)", strings.TrimRight(line, " "), startedMarker, now.Format(stampLayout))
}

// StampCompleted appends a completion stamp, success or failure variant.
// All earlier lifecycle stamps are preserved.
func StampCompleted(line string, now time.Time, failed bool) string {
	if HasCompleted(line) {
		return line
	}
	marker := completedMarker
	if failed {
		marker = failedMarker
	}
	return fmt.Sprintf("%s %s (%s)", strings.TrimRight(line, " "), marker, now.Format(completedLayout))
}

// StripTimestamps removes the queued and started stamps from a line.
// Completion markers are preserved so done entries keep their record.
func StripTimestamps(line string) string {
	out := removeStamp(line, queuedMarker)
	out = removeStamp(out, startedMarker)
	return strings.TrimRight(out, " ")
}

// removeStamp drops a single marker+timestamp pair along with the space
// separating it from the preceding text.
func removeStamp(line, marker string) string {
	idx := strings.Index(line, marker+"(")
	if idx < 0 {
		return line
	}
	end := strings.Index(line[idx:], ")")
	if end < 0 {
		return line
	}
	before := strings.TrimRight(line[:idx], " ")
	return before + line[idx+end+1:]
}

// stripAllMarkers removes every lifecycle marker, including completion
// stamps, yielding the normalized text used for mission matching.
func stripAllMarkers(line string) string {
	out := StripTimestamps(line)
	for _, marker := range []string{completedMarker, failedMarker} {
		out = removeCompletion(out, marker)
	}
	return strings.TrimRight(out, " ")
}

// removeCompletion drops a completion glyph and its trailing timestamp.
func removeCompletion(line, marker string) string {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return line
	}
	before := strings.TrimRight(line[:idx], " ")
	rest := line[idx+len(marker):]
	rest = strings.TrimPrefix(rest, " ")
	if strings.HasPrefix(rest, "(") {
		if end := strings.Index(rest, ")"); end >= 0 {
			rest = rest[end+1:]
		}
	}
	return before + rest
}

// FormatDuration renders a duration in the display units used across the
// queue: sub-minute values collapse to "< 1m", everything else is minutes
// with an hour component once it applies.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "< 1m"
	}
	mins := int(d.Minutes())
	h, m := mins/60, mins%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// TimingDisplay renders the human-readable lifecycle status of a mission
// line: waiting time while queued, running time while started, and the total
// once completed. Out-of-order timestamps yield an empty string instead of a
// negative duration.
func TimingDisplay(line string, now time.Time) string {
	ts := ExtractTimestamps(line)

	switch {
	case !ts.Completed.IsZero():
		if ts.Started.IsZero() {
			return ""
		}
		took := ts.Completed.Sub(ts.Started)
		if took < 0 {
			return ""
		}
		out := "took " + FormatDuration(took)
		if !ts.Queued.IsZero() {
			waited := ts.Started.Sub(ts.Queued)
			if waited < 0 {
				return ""
			}
			if waited >= time.Minute {
				out += " (waited " + FormatDuration(waited) + ")"
			}
		}
		return out

	case !ts.Started.IsZero():
		elapsed := now.Sub(ts.Started)
		if elapsed < 0 {
			return ""
		}
		return "running " + FormatDuration(elapsed)

	case !ts.Queued.IsZero():
		elapsed := now.Sub(ts.Queued)
		if elapsed < 0 {
			return ""
		}
		return "waiting " + FormatDuration(elapsed)
	}

	return ""
}
