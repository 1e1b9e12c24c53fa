package content

import (
	"encoding/json"
	"sort"
)

// TypeSet is a set of content types. It marshals as a sorted JSON array.
type TypeSet map[ContentType]struct{}

// Add inserts t.
func (s TypeSet) Add(t ContentType) { s[t] = struct{}{} }

// Has reports whether t is in the set.
func (s TypeSet) Has(t ContentType) bool {
	_, ok := s[t]
	return ok
}

// Sorted returns the members in lexical order.
func (s TypeSet) Sorted() []ContentType {
	out := make([]ContentType, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s TypeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// SubcategoryNode is the second level of the hierarchy.
type SubcategoryNode struct {
	Name           string  `json:"name"`
	ParentCategory string  `json:"parentCategory"`
	ContentTypes   TypeSet `json:"contentTypes"`
	Count          int     `json:"count"`
}

// CategoryNode is a top-level category with its subcategories.
type CategoryNode struct {
	Name          string                      `json:"name"`
	Subcategories map[string]*SubcategoryNode `json:"subcategories"`
	ContentTypes  TypeSet                     `json:"contentTypes"`
	Count         int                         `json:"count"`
}

// SubcategoryNames returns the node's subcategory names, sorted.
func (c *CategoryNode) SubcategoryNames() []string {
	names := make([]string, 0, len(c.Subcategories))
	for n := range c.Subcategories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Hierarchy maps category name to its node.
type Hierarchy map[string]*CategoryNode

// Names returns the category names, sorted.
func (h Hierarchy) Names() []string {
	names := make([]string, 0, len(h))
	for n := range h {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the (category, subcategory) pair exists. An empty
// subcategory checks the category alone.
func (h Hierarchy) Has(category, subcategory string) bool {
	c, ok := h[category]
	if !ok {
		return false
	}
	if subcategory == "" {
		return true
	}
	_, ok = c.Subcategories[subcategory]
	return ok
}

// BuildHierarchy groups items by category and subcategory in one pass,
// recording the content types seen at each level.
func BuildHierarchy(items []Item) Hierarchy {
	h := make(Hierarchy)
	for _, it := range items {
		c, ok := h[it.Category]
		if !ok {
			c = &CategoryNode{
				Name:          it.Category,
				Subcategories: make(map[string]*SubcategoryNode),
				ContentTypes:  make(TypeSet),
			}
			h[it.Category] = c
		}
		c.ContentTypes.Add(it.ContentType)
		c.Count++

		if it.Subcategory == "" {
			continue
		}
		s, ok := c.Subcategories[it.Subcategory]
		if !ok {
			s = &SubcategoryNode{
				Name:           it.Subcategory,
				ParentCategory: it.Category,
				ContentTypes:   make(TypeSet),
			}
			c.Subcategories[it.Subcategory] = s
		}
		s.ContentTypes.Add(it.ContentType)
		s.Count++
	}
	return h
}
