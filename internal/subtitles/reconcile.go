package subtitles

// ReconcileResult describes how Reconcile paired the two documents.
type ReconcileResult struct {
	Matched        bool
	OriginalCues   int
	TranslatedCues int
}

// Reconcile re-pairs translated cue text with the original timings so speech
// stays in sync even when a provider drifts the timestamps. When the cue
// counts differ the translated text is returned unchanged and Matched is false.
func Reconcile(original, translated string) (string, ReconcileResult) {
	origCues := Parse(original)
	transCues := Parse(translated)
	result := ReconcileResult{
		OriginalCues:   len(origCues),
		TranslatedCues: len(transCues),
	}
	if len(origCues) != len(transCues) {
		return translated, result
	}
	result.Matched = true
	paired := make([]Cue, len(origCues))
	for i, cue := range origCues {
		paired[i] = Cue{Start: cue.Start, End: cue.End, Text: transCues[i].Text}
	}
	return Format(paired), result
}
