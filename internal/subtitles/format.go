package subtitles

import (
	"regexp"
	"strings"
)

var markupRe = regexp.MustCompile(`<[^>]*>`)

// Format renders cues as a canonical subtitle document.
func Format(cues []Cue) string {
	var b strings.Builder
	b.WriteString(headerPrefix)
	b.WriteString("\n\n")
	for _, cue := range cues {
		b.WriteString(FormatTime(cue.Start))
		b.WriteString(" " + arrow + " ")
		b.WriteString(FormatTime(cue.End))
		b.WriteByte('\n')
		b.WriteString(cue.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// StripMarkup removes inline tags such as <i>, <b>, or <c.yellow>.
func StripMarkup(text string) string {
	return markupRe.ReplaceAllString(text, "")
}

// Lines splits cue text into display lines.
func Lines(text string) []string {
	return strings.Split(text, "\n")
}
