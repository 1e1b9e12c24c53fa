package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeScenarioC(t *testing.T) {
	items := []Item{{ID: "42", Title: "A"}, {ID: "42", Title: "B"}}
	n := Dedupe(items)

	assert.Equal(t, 1, n)
	assert.Equal(t, "42", items[0].ID)
	assert.Empty(t, items[0].OriginalID)
	assert.Equal(t, "42-1", items[1].ID)
	assert.Equal(t, "42", items[1].OriginalID)
}

func TestDedupeUsesSequenceIndex(t *testing.T) {
	items := []Item{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "a"}, {ID: "a"}}
	Dedupe(items)
	assert.Equal(t, []string{"a", "b", "c", "a-3", "a-4"}, ids(items))
}

func TestDedupeRewrittenIDCollision(t *testing.T) {
	items := []Item{{ID: "x"}, {ID: "x-2"}, {ID: "x"}}
	Dedupe(items)
	assert.Equal(t, "x-2-2", items[2].ID)
	assert.Equal(t, "x", items[2].OriginalID)
}

func TestDedupeKeepsLaterOriginalID(t *testing.T) {
	items := []Item{{ID: "42"}, {ID: "42"}, {ID: "42-1"}}
	n := Dedupe(items)

	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"42", "42-1-2", "42-1"}, ids(items))
	assert.Equal(t, "42", items[1].OriginalID)
	assert.Empty(t, items[2].OriginalID)
}

func TestDedupeAllUnique(t *testing.T) {
	items := []Item{{ID: "1"}, {ID: "1"}, {ID: "1-1"}, {ID: "1"}, {ID: "1-2"}, {ID: ""}, {ID: ""}}
	Dedupe(items)

	seenID := map[string]bool{}
	seenSlug := map[string]bool{}
	for _, it := range items {
		assert.False(t, seenID[it.ID], "duplicate id %q", it.ID)
		assert.False(t, seenSlug[it.Slug], "duplicate slug %q", it.Slug)
		assert.NotEmpty(t, it.Slug)
		seenID[it.ID] = true
		seenSlug[it.Slug] = true
	}
}

func TestDedupeSlugs(t *testing.T) {
	items := []Item{{ID: "7", Title: "Resume Guide"}}
	Dedupe(items)
	assert.Equal(t, "resume-guide-7", items[0].Slug)
}
