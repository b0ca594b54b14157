package subtitles

import (
	"math"
	"strings"
	"testing"
)

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.0005
}

func TestParseBasicDocument(t *testing.T) {
	raw := "WEBVTT\n\n1\n00:00:01.000 --> 00:00:03.000\nA\n\n00:00:04.000 --> 00:00:06.000\nB\n"
	cues := Parse(raw)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d: %+v", len(cues), cues)
	}
	want := []Cue{{Start: 1, End: 3, Text: "A"}, {Start: 4, End: 6, Text: "B"}}
	for i, cue := range cues {
		if !approxEqual(cue.Start, want[i].Start) || !approxEqual(cue.End, want[i].End) || cue.Text != want[i].Text {
			t.Errorf("cue %d = %+v, want %+v", i, cue, want[i])
		}
	}
}

func TestParseMultilineTextAndLineEndings(t *testing.T) {
	raw := "WEBVTT\r\n\r\n00:01.000 --> 00:02.500\r\n  first line  \r\nsecond line\r\n\r\nNOTE this is a comment\r\n\r\n00:03.000 --> 00:04.000\rthird\r"
	cues := Parse(raw)
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d: %+v", len(cues), cues)
	}
	if cues[0].Text != "first line\nsecond line" {
		t.Errorf("unexpected multi-line text %q", cues[0].Text)
	}
	if !approxEqual(cues[0].End, 2.5) {
		t.Errorf("unexpected end %v", cues[0].End)
	}
	if cues[1].Text != "third" {
		t.Errorf("unexpected text %q", cues[1].Text)
	}
}

func TestParseDiscardsCueSettings(t *testing.T) {
	cues := Parse("WEBVTT\n\n00:00:01.000 --> 00:00:02.000 align:start position:10%\n<i>Hi</i>\n")
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if !approxEqual(cues[0].End, 2) {
		t.Errorf("settings leaked into end time: %v", cues[0].End)
	}
	if cues[0].Text != "<i>Hi</i>" {
		t.Errorf("parser should keep markup, got %q", cues[0].Text)
	}
}

func TestParseWithoutHeader(t *testing.T) {
	cues := Parse("00:00:01.000 --> 00:00:02.000\nno header\n")
	if len(cues) != 1 || cues[0].Text != "no header" {
		t.Fatalf("unexpected cues %+v", cues)
	}
}

func TestParseEmptyAndGarbage(t *testing.T) {
	for _, raw := range []string{"", "WEBVTT", "WEBVTT\n\n", "just some words\nand more words\n"} {
		if cues := Parse(raw); len(cues) != 0 {
			t.Errorf("Parse(%q) = %+v, want empty", raw, cues)
		}
	}
}

func TestParseDropsInvertedTimings(t *testing.T) {
	raw := "WEBVTT\n\n00:00:05.000 --> 00:00:04.000\nbackwards\n\n" +
		"00:00:06.000 --> 00:00:06.000\ninstant\n"
	cues, report := ParseWithReport(raw)
	if len(cues) != 1 || cues[0].Text != "instant" {
		t.Fatalf("unexpected cues %+v", cues)
	}
	if report.Blocks != 2 || report.Dropped != 1 || len(report.DroppedLines) != 1 || report.DroppedLines[0] != 3 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestParseWithReportDropsMalformedBlocks(t *testing.T) {
	raw := strings.Join([]string{
		"WEBVTT",
		"",
		"00:00:01.000 --> 00:00:02.000",
		"kept one",
		"",
		"00:00:xx.000 --> 00:00:03.000",
		"bad start",
		"",
		"00:00:03.000 --> 00:00:04.000 --> 00:00:05.000",
		"three fields",
		"",
		"00:00:05.000 -->",
		"missing end",
		"",
		"00:00:06.000 --> 00:00:07.000",
		"kept two",
	}, "\n")
	cues, report := ParseWithReport(raw)
	if len(cues) != 2 {
		t.Fatalf("expected 2 kept cues, got %d: %+v", len(cues), cues)
	}
	if cues[0].Text != "kept one" || cues[1].Text != "kept two" {
		t.Fatalf("unexpected kept cues %+v", cues)
	}
	if report.Blocks != 5 || report.Dropped != 3 {
		t.Fatalf("unexpected report %+v", report)
	}
	wantLines := []int{6, 9, 12}
	for i, line := range wantLines {
		if report.DroppedLines[i] != line {
			t.Errorf("dropped line %d = %d, want %d", i, report.DroppedLines[i], line)
		}
	}
}

func TestParseKeepsOverlapsInFileOrder(t *testing.T) {
	cues := Parse("WEBVTT\n\n00:00:05.000 --> 00:00:08.000\nlate\n\n00:00:01.000 --> 00:00:06.000\nearly\n")
	if len(cues) != 2 || cues[0].Text != "late" || cues[1].Text != "early" {
		t.Fatalf("expected file order preserved, got %+v", cues)
	}
}

func TestRoundTrip(t *testing.T) {
	original := []Cue{
		{Start: 0, End: 1.25, Text: "Zero"},
		{Start: 1.001, End: 3.999, Text: "Line one\nLine two"},
		{Start: 62.5, End: 65, Text: "Minute mark."},
		{Start: 3725.042, End: 3730.5, Text: "Past an hour"},
	}
	doc := Format(original)
	if !strings.HasPrefix(doc, "WEBVTT\n\n") {
		t.Fatalf("missing header: %q", doc)
	}
	parsed := Parse(doc)
	if len(parsed) != len(original) {
		t.Fatalf("round trip changed cue count: %d vs %d", len(parsed), len(original))
	}
	for i := range original {
		if !approxEqual(parsed[i].Start, original[i].Start) || !approxEqual(parsed[i].End, original[i].End) {
			t.Errorf("cue %d timing %v-%v, want %v-%v", i, parsed[i].Start, parsed[i].End, original[i].Start, original[i].End)
		}
		if parsed[i].Text != original[i].Text {
			t.Errorf("cue %d text %q, want %q", i, parsed[i].Text, original[i].Text)
		}
	}
	if again := Format(parsed); again != doc {
		t.Errorf("second format differs:\n%s\nvs\n%s", again, doc)
	}
}

func TestFormatLayout(t *testing.T) {
	got := Format([]Cue{{Start: 1, End: 2.5, Text: "A"}})
	want := "WEBVTT\n\n00:00:01.000 --> 00:00:02.500\nA\n\n"
	if got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
	if Format(nil) != "WEBVTT\n\n" {
		t.Fatalf("empty format = %q", Format(nil))
	}
}

func TestStripMarkup(t *testing.T) {
	if got := StripMarkup("<c.yellow>Hello</c> <b>world</b>"); got != "Hello world" {
		t.Fatalf("StripMarkup = %q", got)
	}
}
