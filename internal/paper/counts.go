package paper

import (
	"strconv"
	"strings"
)

// Mode selects which marks buckets a paper draws from.
type Mode string

const (
	ModeTwo   Mode = "2"
	ModeThree Mode = "3"
	ModeFive  Mode = "5"
	ModeAll   Mode = "all"
)

// ParseMode maps user input onto a Mode; ok is false for unknown values.
// An empty string selects ModeAll.
func ParseMode(s string) (Mode, bool) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAll, true
	case ModeTwo, ModeThree, ModeFive, ModeAll:
		return m, true
	default:
		return ModeAll, false
	}
}

// ParseTotal reads a requested question count. Like the legacy API it
// honours a leading integer ("12abc" is 12); anything else, or a negative
// number, is 0.
func ParseTotal(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Counts is the number of questions to draw per marks bucket.
type Counts struct {
	Two, Three, Five int
}

func (c Counts) Total() int { return c.Two + c.Three + c.Five }

// ResolveCounts splits total across buckets. ModeAll uses a fixed 40/35/25
// split where the 5-mark bucket absorbs rounding, so the parts always sum
// to total. Unknown modes behave like ModeAll.
func ResolveCounts(total int, mode Mode) Counts {
	if total < 0 {
		total = 0
	}
	switch mode {
	case ModeTwo:
		return Counts{Two: total}
	case ModeThree:
		return Counts{Three: total}
	case ModeFive:
		return Counts{Five: total}
	}
	n2 := percentOf(total, 40)
	n3 := percentOf(total, 35)
	return Counts{Two: n2, Three: n3, Five: total - n2 - n3}
}

// percentOf is floor(n*pct/100) without overflowing for large n.
func percentOf(n, pct int) int {
	return n/100*pct + n%100*pct/100
}
