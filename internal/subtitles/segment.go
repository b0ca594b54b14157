package subtitles

import "strings"

// SegmentGapThreshold is the pause, in seconds, that always ends a segment.
const SegmentGapThreshold = 1.5

// SegmentCues merges consecutive cues into sentence-sized runs for speech. A
// segment closes when its text ends a sentence or the next cue starts more
// than SegmentGapThreshold seconds after the previous one ends.
func SegmentCues(cues []Cue) []Segment {
	if len(cues) == 0 {
		return nil
	}
	segments := make([]Segment, 0, len(cues))
	current := newSegment(cues[0], 0)
	for i := 1; i < len(cues); i++ {
		cue := cues[i]
		gap := cue.Start - cues[i-1].End
		if gap > SegmentGapThreshold || endsSentence(current.Text) {
			segments = append(segments, current)
			current = newSegment(cue, i)
			continue
		}
		current.Text += " " + cue.Text
		current.End = cue.End
		current.LastCue = i
	}
	return append(segments, current)
}

func newSegment(cue Cue, index int) Segment {
	return Segment{Start: cue.Start, End: cue.End, Text: cue.Text, FirstCue: index, LastCue: index}
}

// endsSentence reports a trailing '.', '?' or '!', optionally followed by
// one closing quote.
func endsSentence(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	last := text[len(text)-1]
	if last == '\'' || last == '"' {
		text = text[:len(text)-1]
		if text == "" {
			return false
		}
		last = text[len(text)-1]
	}
	return last == '.' || last == '?' || last == '!'
}
