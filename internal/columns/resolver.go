// Package columns maps catalog headers onto canonical dimensions by
// case-insensitive substring matching against an alias table.
package columns

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"volumegen/internal/domain"
)

// AliasTable maps a dimension to the header substrings that refer to it.
// Adding a locale is a data change: append aliases, never edit Resolve.
type AliasTable map[domain.Dimension][]string

// DefaultAliases covers the English, Czech, Slovak and German spellings seen
// in supplier catalogs, with and without diacritics.
var DefaultAliases = AliasTable{
	domain.DimensionName:   {"name", "název", "nazev", "názov", "produkt", "product"},
	domain.DimensionWidth:  {"width", "šířka", "sirka", "šírka", "breite"},
	domain.DimensionHeight: {"height", "výška", "vyska", "höhe"},
	domain.DimensionDepth:  {"depth", "hloubka", "hĺbka", "tiefe"},
}

// Merge returns a new table with extra aliases appended after the existing ones.
func (t AliasTable) Merge(extra map[domain.Dimension][]string) AliasTable {
	out := make(AliasTable, len(t))
	for dim, aliases := range t {
		out[dim] = append([]string(nil), aliases...)
	}
	for dim, aliases := range extra {
		for _, a := range aliases {
			if strings.TrimSpace(a) != "" {
				out[dim] = append(out[dim], a)
			}
		}
	}
	return out
}

// Resolution is the outcome of matching a frame's header against the table.
type Resolution struct {
	Columns map[domain.Dimension]string // dimension -> original column name
	Missing []domain.Dimension
}

// Column returns the resolved column for dim.
func (r Resolution) Column(dim domain.Dimension) (string, bool) {
	c, ok := r.Columns[dim]
	return c, ok
}

// HasDimensions reports whether width, height and depth all resolved.
func (r Resolution) HasDimensions() bool {
	for _, dim := range domain.VolumeDimensions {
		if _, ok := r.Columns[dim]; !ok {
			return false
		}
	}
	return true
}

// NormalizeHeader trims a BOM, whitespace and quotes, composes to NFC and lowercases.
func NormalizeHeader(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}

// Resolve picks, for every dimension, the first column in frame order whose
// normalized name contains any of the dimension's aliases. Unmatched
// dimensions are listed in Missing; that is schema drift, not an error.
func Resolve(columns []string, table AliasTable) Resolution {
	normalized := make([]string, len(columns))
	for i, c := range columns {
		normalized[i] = NormalizeHeader(c)
	}

	res := Resolution{Columns: make(map[domain.Dimension]string)}
	for _, dim := range domain.AllDimensions {
		aliases := make([]string, 0, len(table[dim]))
		for _, a := range table[dim] {
			if n := NormalizeHeader(a); n != "" {
				aliases = append(aliases, n)
			}
		}

		found := false
		for i, col := range normalized {
			if containsAny(col, aliases) {
				res.Columns[dim] = columns[i]
				found = true
				break
			}
		}
		if !found {
			res.Missing = append(res.Missing, dim)
		}
	}
	return res
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
