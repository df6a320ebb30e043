package roster

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortMode string

const (
	SortByNumber        SortMode = "number"
	SortByName          SortMode = "name"
	SortByFirstSession  SortMode = "first"
	SortBySecondSession SortMode = "second"
)

// SortModes lists the accepted modes in the order a picker would show them.
var SortModes = []SortMode{SortByNumber, SortByName, SortByFirstSession, SortBySecondSession}

// Collator orders names for a language. A collate.Collator keeps scratch
// buffers, so a Collator must not be shared between goroutines.
type Collator struct {
	c *collate.Collator
}

// NewCollator builds a collator for a BCP 47 tag such as "ja" or "en".
// An unparsable tag falls back to Japanese, the language of the sheet.
func NewCollator(tag string) *Collator {
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.Japanese
	}
	return &Collator{c: collate.New(lang)}
}

func (c *Collator) compare(a, b string) int {
	return c.c.CompareString(a, b)
}

// Sort returns a sorted copy of r. For an unknown mode it returns a copy in
// the original order along with a KindValidation error. A nil collator
// means Japanese.
func Sort(r Roster, mode SortMode, c *Collator) (Roster, error) {
	out := r.clone()
	switch mode {
	case SortByNumber:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Number < out[j].Number
		})
	case SortByName:
		if c == nil {
			c = NewCollator("ja")
		}
		sort.SliceStable(out, func(i, j int) bool {
			if cmp := c.compare(out[i].Name, out[j].Name); cmp != 0 {
				return cmp < 0
			}
			return out[i].Number < out[j].Number
		})
	case SortByFirstSession:
		sortByFlag(out, func(p Participant) bool { return p.FirstSession })
	case SortBySecondSession:
		sortByFlag(out, func(p Participant) bool { return p.SecondSession })
	default:
		return out, newError(KindValidation, "sort", fmt.Sprintf("unknown sort mode %q", mode), nil)
	}
	return out, nil
}

// sortByFlag puts attendees first; within each group numbers ascend.
func sortByFlag(r Roster, flag func(Participant) bool) {
	sort.SliceStable(r, func(i, j int) bool {
		fi, fj := flag(r[i]), flag(r[j])
		if fi != fj {
			return fi
		}
		return r[i].Number < r[j].Number
	})
}

// ParseSortMode maps user input to a SortMode; empty input means SortByNumber.
func ParseSortMode(s string) (SortMode, error) {
	if s == "" {
		return SortByNumber, nil
	}
	for _, m := range SortModes {
		if string(m) == s {
			return m, nil
		}
	}
	return "", newError(KindValidation, "sort", fmt.Sprintf("unknown sort mode %q", s), nil)
}

type Stats struct {
	Total          int `json:"total" yaml:"total"`
	FirstAttended  int `json:"first_attended" yaml:"first_attended"`
	SecondAttended int `json:"second_attended" yaml:"second_attended"`
	BothAttended   int `json:"both_attended" yaml:"both_attended"`
}

func ComputeStats(r Roster) Stats {
	s := Stats{Total: len(r)}
	for _, p := range r {
		if p.FirstSession {
			s.FirstAttended++
		}
		if p.SecondSession {
			s.SecondAttended++
		}
		if p.FirstSession && p.SecondSession {
			s.BothAttended++
		}
	}
	return s
}

func (s Stats) rate(n int) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(n) / float64(s.Total) * 100
}

// FirstRate is the first-session attendance as a percentage.
func (s Stats) FirstRate() float64  { return s.rate(s.FirstAttended) }
func (s Stats) SecondRate() float64 { return s.rate(s.SecondAttended) }
func (s Stats) BothRate() float64   { return s.rate(s.BothAttended) }
