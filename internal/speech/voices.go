package speech

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Rate bounds accepted by engines.
const (
	MinRate     = 0.5
	MaxRate     = 2.0
	DefaultRate = 1.0
)

// ClampRate bounds rate to [MinRate, MaxRate]; zero means DefaultRate.
func ClampRate(rate float64) float64 {
	switch {
	case rate == 0:
		return DefaultRate
	case rate < MinRate:
		return MinRate
	case rate > MaxRate:
		return MaxRate
	default:
		return rate
	}
}

// RankVoices orders voices for the preferred language: voices in that
// language first, then English voices, then the rest. Names break ties.
func RankVoices(voices []Voice, preferred string) []Voice {
	want := baseOf(preferred)
	english, _ := language.English.Base()

	rank := func(v Voice) int {
		base := baseOf(v.Lang)
		switch {
		case want != (language.Base{}) && base == want:
			return 0
		case base == english:
			return 1
		default:
			return 2
		}
	}

	ranked := append([]Voice(nil), voices...)
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := rank(ranked[i]), rank(ranked[j])
		if ri != rj {
			return ri < rj
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

// PickVoice returns the voice named name when available, otherwise the best
// ranked voice for preferred.
func PickVoice(voices []Voice, name, preferred string) (Voice, bool) {
	if name = strings.TrimSpace(name); name != "" {
		for _, v := range voices {
			if v.Name == name {
				return v, true
			}
		}
	}
	ranked := RankVoices(voices, preferred)
	if len(ranked) == 0 {
		return Voice{}, false
	}
	return ranked[0], true
}

func baseOf(tag string) language.Base {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return language.Base{}
	}
	base, _ := parsed.Base()
	return base
}
