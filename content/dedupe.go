package content

import (
	"strconv"

	"github.com/gosimple/slug"
)

// Dedupe makes item ids unique in place and returns how many were rewritten.
// The first item with an id keeps it; a later item at position i becomes
// "{id}-{i}" with OriginalID set. If that id is taken or appears anywhere in
// the input, "-2", "-3", ... are appended until it is free. Dedupe also
// assigns each item a unique Slug.
func Dedupe(items []Item) int {
	source := make(map[string]struct{}, len(items))
	for _, it := range items {
		source[it.ID] = struct{}{}
	}
	claimed := make(map[string]struct{}, len(items))
	free := func(id string) bool {
		_, inSource := source[id]
		_, isClaimed := claimed[id]
		return !inSource && !isClaimed
	}

	rewritten := 0
	for i := range items {
		id := items[i].ID
		if _, dup := claimed[id]; dup {
			candidate := id + "-" + strconv.Itoa(i)
			for n := 2; !free(candidate); n++ {
				candidate = id + "-" + strconv.Itoa(i) + "-" + strconv.Itoa(n)
			}
			items[i].OriginalID = id
			items[i].ID = candidate
			rewritten++
		}
		claimed[items[i].ID] = struct{}{}
	}
	assignSlugs(items)
	return rewritten
}

func assignSlugs(items []Item) {
	used := make(map[string]struct{}, len(items))
	for i := range items {
		base := slug.Make(items[i].Title + " " + items[i].ID)
		if base == "" {
			base = "item"
		}
		s := base
		for n := 2; ; n++ {
			if _, taken := used[s]; !taken {
				break
			}
			s = base + "-" + strconv.Itoa(n)
		}
		used[s] = struct{}{}
		items[i].Slug = s
	}
}
