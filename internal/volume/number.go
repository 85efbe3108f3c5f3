package volume

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber reads a locale-formatted decimal such as "1 234,5".
// Surrounding whitespace and quotes are ignored; spaces, NBSPs and
// apostrophes group thousands. When the decimal mark is present the other
// mark groups thousands too. A single occurrence of the other mark without
// the decimal mark is read as a decimal point, so raw spreadsheet values
// like "30.5" parse in a decimal-comma catalog.
func ParseNumber(s string, decimal rune) (float64, bool) {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\'':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, false
	}

	other := "."
	if decimal == '.' {
		other = ","
	}
	switch {
	case strings.ContainsRune(s, decimal):
		s = strings.ReplaceAll(s, other, "")
		s = strings.Replace(s, string(decimal), ".", 1)
	case strings.Count(s, other) > 1:
		s = strings.ReplaceAll(s, other, "")
	default:
		s = strings.Replace(s, other, ".", 1)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
