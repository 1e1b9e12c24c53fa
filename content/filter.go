package content

import (
	"net/url"
	"strings"
)

// Criteria selects a subset of items. Zero values place no restriction.
type Criteria struct {
	Search string
	Types  []ContentType
	// Path is "/", "/{category}" or "/{category}/{subcategory}". Segments
	// beyond the second are ignored.
	Path string
	// Category and Subcategory are the root view's dropdown selection. They
	// only apply when Path is root.
	Category    string
	Subcategory string
}

// FolderPath builds the browse path of a category or subcategory folder.
// Segments are path-escaped so names containing "/" survive the round trip
// through PathSegments.
func FolderPath(category, subcategory string) string {
	if category == "" {
		return "/"
	}
	p := "/" + url.PathEscape(category)
	if subcategory != "" {
		p += "/" + url.PathEscape(subcategory)
	}
	return p
}

// PathSegments splits a browse path into category and subcategory names,
// unescaping each segment.
func PathSegments(path string) (category, subcategory string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 0 {
		category = unescapeSegment(parts[0])
	}
	if len(parts) > 1 {
		subcategory = unescapeSegment(parts[1])
	}
	return category, subcategory
}

func unescapeSegment(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		s = u
	}
	return strings.TrimSpace(s)
}

// IsRoot reports whether the criteria browse from the root.
func (c Criteria) IsRoot() bool {
	cat, _ := PathSegments(c.Path)
	return cat == ""
}

// Filter returns the items matching every predicate of c, in input order.
// It does not modify items.
func Filter(items []Item, c Criteria) []Item {
	passes := c.passes()
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if matchAll(it, passes) {
			out = append(out, it)
		}
	}
	return out
}

// PassCount is the number of items left after one filter pass.
type PassCount struct {
	Pass  string
	Count int
}

// Trace applies the passes of c one after another and reports how many items
// survive each.
func Trace(items []Item, c Criteria) []PassCount {
	out := []PassCount{{Pass: "input", Count: len(items)}}
	cur := items
	for _, p := range c.passes() {
		next := make([]Item, 0, len(cur))
		for _, it := range cur {
			if p.match(it) {
				next = append(next, it)
			}
		}
		cur = next
		out = append(out, PassCount{Pass: p.name, Count: len(cur)})
	}
	return out
}

type pass struct {
	name  string
	match func(Item) bool
}

func matchAll(it Item, passes []pass) bool {
	for _, p := range passes {
		if !p.match(it) {
			return false
		}
	}
	return true
}

func (c Criteria) passes() []pass {
	var ps []pass
	// A blank term passes everything; otherwise the term is matched as typed.
	if strings.TrimSpace(c.Search) != "" {
		term := strings.ToLower(c.Search)
		ps = append(ps, pass{"search", func(it Item) bool { return matchesSearch(it, term) }})
	}
	if types := typeSet(c.Types); len(types) > 0 {
		ps = append(ps, pass{"type", func(it Item) bool { return types.Has(ParseContentType(string(it.ContentType))) }})
	}

	cat, sub := PathSegments(c.Path)
	if cat == "" {
		cat = strings.TrimSpace(c.Category)
		if cat == "" {
			return ps
		}
		return append(ps, pass{"dropdown", categoryMatcher(cat, strings.TrimSpace(c.Subcategory))})
	}
	return append(ps, pass{"path", categoryMatcher(cat, sub)})
}

func categoryMatcher(cat, sub string) func(Item) bool {
	catKey := CategoryKey(cat)
	subKey := Key(sub)
	return func(it Item) bool {
		if CategoryKey(it.Category) != catKey {
			return false
		}
		return sub == "" || Key(it.Subcategory) == subKey
	}
}

func matchesSearch(it Item, term string) bool {
	for _, f := range []string{it.Title, it.Description, it.Tagline, it.Tags} {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func typeSet(types []ContentType) TypeSet {
	s := make(TypeSet, len(types))
	for _, t := range types {
		if strings.TrimSpace(string(t)) == "" {
			continue
		}
		s.Add(ParseContentType(string(t)))
	}
	return s
}
