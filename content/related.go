package content

import (
	"sort"
	"strings"
)

// Relevance weights used by Related.
const (
	weightCategory    = 5
	weightSubcategory = 3
	weightType        = 2
	weightTag         = 2
	weightAuthor      = 4
)

// Related returns up to n items from items that share something with it,
// best match first. Ties keep input order and it itself is never included.
func Related(it Item, items []Item, n int) []Item {
	if n <= 0 {
		return nil
	}
	tags := lowerTags(it)

	type scored struct {
		item  Item
		score int
	}
	var candidates []scored
	for _, other := range items {
		if other.ID == it.ID {
			continue
		}
		if s := relevance(it, other, tags); s > 0 {
			candidates = append(candidates, scored{other, s})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	if len(candidates) > n {
		candidates = candidates[:n]
	}
	out := make([]Item, len(candidates))
	for i, c := range candidates {
		out[i] = c.item
	}
	return out
}

func relevance(it, other Item, tags map[string]struct{}) int {
	score := 0
	if other.Category == it.Category {
		score += weightCategory
	}
	if it.Subcategory != "" && other.Subcategory == it.Subcategory {
		score += weightSubcategory
	}
	if other.ContentType == it.ContentType {
		score += weightType
	}
	for t := range lowerTags(other) {
		if _, ok := tags[t]; ok {
			score += weightTag
		}
	}
	if other.Author == it.Author {
		score += weightAuthor
	}
	return score
}

func lowerTags(it Item) map[string]struct{} {
	list := it.TagList()
	m := make(map[string]struct{}, len(list))
	for _, t := range list {
		m[strings.ToLower(t)] = struct{}{}
	}
	return m
}
