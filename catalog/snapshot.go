package catalog

import (
	"errors"
	"sort"
	"time"

	"github.com/eringen/toolkit/content"
)

// ErrNotFound is returned when no item has the requested slug.
var ErrNotFound = errors.New("catalog: item not found")

// Snapshot is one fully built catalog. It is never modified after it is
// published, so readers may hold on to it without locking. Its slices, maps
// and tree are shared between readers and must be treated as read-only; use
// Catalog.All for a copy that may be changed.
type Snapshot struct {
	Items      []content.Item
	Hierarchy  content.Hierarchy
	Tree       *content.Folder
	Categories []string
	Sections   []content.Section

	Seq        uint64
	LoadedAt   time.Time
	FetchedAt  time.Time
	Source     string
	Skipped    int
	Duplicates int

	bySlug map[string]int
}

func newSnapshot(items []content.Item) *Snapshot {
	h := content.BuildHierarchy(items)
	s := &Snapshot{
		Items:      items,
		Hierarchy:  h,
		Tree:       content.BuildTree(items),
		Categories: h.Names(),
		Sections:   content.Sections(h),
		bySlug:     make(map[string]int, len(items)),
	}
	for i, it := range items {
		s.bySlug[it.Slug] = i
	}
	return s
}

// Len returns the number of items.
func (s *Snapshot) Len() int { return len(s.Items) }

// Lookup returns the item with the given slug.
func (s *Snapshot) Lookup(slug string) (content.Item, error) {
	i, ok := s.bySlug[slug]
	if !ok {
		return content.Item{}, ErrNotFound
	}
	return s.Items[i], nil
}

// Subcategories returns the sorted subcategory names of every category that
// matches category, synonyms included.
func (s *Snapshot) Subcategories(category string) []string {
	seen := make(map[string]struct{})
	for name, node := range s.Hierarchy {
		if !content.SameCategory(name, category) {
			continue
		}
		for sub := range node.Subcategories {
			seen[sub] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for sub := range seen {
		out = append(out, sub)
	}
	sort.Strings(out)
	return out
}

// Filter applies c to the snapshot's items.
func (s *Snapshot) Filter(c content.Criteria) []content.Item {
	return content.Filter(s.Items, c)
}

// Related returns up to n items related to it.
func (s *Snapshot) Related(it content.Item, n int) []content.Item {
	return content.Related(it, s.Items, n)
}

// Newest returns up to n items ordered by date, most recent first.
func (s *Snapshot) Newest(n int) []content.Item {
	out := append([]content.Item(nil), s.Items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateValue.After(out[j].DateValue) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
