package subtitles

import (
	"regexp"
	"strings"
)

const (
	headerPrefix = "WEBVTT"
	notePrefix   = "NOTE"
	arrow        = "-->"
)

var lineBreakRe = regexp.MustCompile(`\r\n|\r|\n`)

// ParseReport summarizes a best-effort parse.
type ParseReport struct {
	// Blocks counts timing lines encountered, kept or dropped.
	Blocks int
	// Dropped counts blocks skipped because their timing line was malformed.
	Dropped int
	// DroppedLines holds the 1-based line numbers of the dropped timing lines.
	DroppedLines []int
}

// Parse converts raw subtitle text into cues in file order. It never fails;
// input with no usable blocks yields nil.
func Parse(raw string) []Cue {
	cues, _ := ParseWithReport(raw)
	return cues
}

// ParseWithReport is Parse plus a report of the blocks it dropped.
func ParseWithReport(raw string) ([]Cue, ParseReport) {
	var (
		cues   []Cue
		report ParseReport
	)
	lines := lineBreakRe.Split(strings.TrimPrefix(raw, "\ufeff"), -1)
	i := 0
	if len(lines) > 0 && strings.HasPrefix(lines[0], headerPrefix) {
		i++
	}

	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, notePrefix) {
			i++
			continue
		}
		if !strings.Contains(line, arrow) {
			// Cue identifier; the timing line should follow.
			i++
			if i >= len(lines) {
				break
			}
			line = strings.TrimSpace(lines[i])
			if !strings.Contains(line, arrow) {
				i++
				continue
			}
		}

		report.Blocks++
		timingLine := i + 1
		start, end, ok := parseTiming(line)
		i++
		text, next := readText(lines, i)
		i = next
		if !ok {
			report.Dropped++
			report.DroppedLines = append(report.DroppedLines, timingLine)
			continue
		}
		cues = append(cues, Cue{Start: start, End: end, Text: text})
	}
	return cues, report
}

func parseTiming(line string) (float64, float64, bool) {
	fields := strings.Split(line, arrow)
	if len(fields) != 2 {
		return 0, 0, false
	}
	start, err := ParseTimeStrict(fields[0])
	if err != nil {
		return 0, 0, false
	}
	// Settings such as "align:start position:10%" follow the end time.
	endFields := strings.Fields(fields[1])
	if len(endFields) == 0 {
		return 0, 0, false
	}
	end, err := ParseTimeStrict(endFields[0])
	if err != nil || end < start {
		return 0, 0, false
	}
	return start, end, true
}

// readText collects trimmed lines from i up to the next blank line and
// returns the joined text plus the index of the line after the block.
func readText(lines []string, i int) (string, int) {
	var parts []string
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			break
		}
		parts = append(parts, trimmed)
		i++
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), i
}
