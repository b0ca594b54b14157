package subtitles

// Cue is a single timed subtitle entry. Times are seconds from the start of
// the video.
type Cue struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Contains reports whether t falls inside the cue, bounds inclusive.
func (c Cue) Contains(t float64) bool {
	return c.Start <= t && t <= c.End
}

// Duration returns the cue length in seconds.
func (c Cue) Duration() float64 {
	return c.End - c.Start
}

// Segment is a run of consecutive cues merged into one utterance.
// FirstCue and LastCue are inclusive indexes into the source cue slice.
type Segment struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Text     string  `json:"text"`
	FirstCue int     `json:"first_cue"`
	LastCue  int     `json:"last_cue"`
}

// CueCount returns how many source cues were merged into the segment.
func (s Segment) CueCount() int {
	return s.LastCue - s.FirstCue + 1
}
