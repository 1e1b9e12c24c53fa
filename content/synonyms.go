package content

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// synonymClasses groups category keys that name the same category. Membership
// is symmetric: any two keys in a class are equivalent.
var synonymClasses = [][]string{
	{"job search", "jobsearch"},
	{"uiux", "ui ux"},
}

// canonicalKey maps every class member to the first key of its class.
var canonicalKey = func() map[string]string {
	m := make(map[string]string)
	for _, class := range synonymClasses {
		for _, k := range class {
			m[k] = class[0]
		}
	}
	return m
}()

// Key normalizes a category or subcategory name for comparison: case folded,
// diacritics removed, characters other than letters, digits, underscores and
// spaces stripped, whitespace collapsed.
func Key(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	s = cases.Fold().String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// CategoryKey is Key with synonyms resolved to one representative.
func CategoryKey(s string) string {
	k := Key(s)
	if c, ok := canonicalKey[k]; ok {
		return c
	}
	return k
}

// SameCategory reports whether a and b name the same category.
func SameCategory(a, b string) bool {
	return CategoryKey(a) == CategoryKey(b)
}

// SameSubcategory compares subcategory names by Key only.
func SameSubcategory(a, b string) bool {
	return Key(a) == Key(b)
}
