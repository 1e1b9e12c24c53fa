package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionOf(t *testing.T) {
	assert.Equal(t, SectionBusiness, SectionOf("Finance"))
	assert.Equal(t, SectionCareer, SectionOf("jobsearch"))
	assert.Equal(t, SectionCareer, SectionOf(" Job  Search "))
	assert.Equal(t, SectionDesign, SectionOf("UI UX"))
	assert.Equal(t, SectionDesign, SectionOf("UI/UX"))
	assert.Equal(t, SectionDesign, SectionOf("Graphic Design"))
	assert.Equal(t, SectionCareer, SectionOf("Navigating School"))
	assert.Equal(t, SectionOther, SectionOf("Templates"))
}

func TestIcon(t *testing.T) {
	assert.Equal(t, "jobsearch", Icon("Job Search"))
	assert.Equal(t, "folder", Icon("Underwater Basket Weaving"))
}

func TestSections(t *testing.T) {
	h := BuildHierarchy([]Item{
		{ID: "1", Category: "Marketing"},
		{ID: "2", Category: "Finance"},
		{ID: "3", Category: "Finance"},
		{ID: "4", Category: "Templates"},
		{ID: "5", Category: "Job Search"},
	})

	got := Sections(h)
	require.Len(t, got, 3)
	assert.Equal(t, SectionBusiness, got[0].Name)
	require.Len(t, got[0].Categories, 2)
	assert.Equal(t, SectionEntry{Name: "Finance", Path: "/Finance", Icon: "finance", Count: 2}, got[0].Categories[0])
	assert.Equal(t, "Marketing", got[0].Categories[1].Name)
	assert.Equal(t, SectionCareer, got[1].Name)
	assert.Equal(t, SectionOther, got[2].Name)
	assert.Equal(t, "templates", got[2].Categories[0].Icon)
}

func TestSectionsGroupSynonymSpellings(t *testing.T) {
	sections := Sections(BuildHierarchy(sampleItems()))

	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	assert.Equal(t, []string{SectionBusiness, SectionCareer, SectionOther}, names)
	assert.Len(t, sections[1].Categories, 2, "both job search spellings land in career preparation")
	assert.Equal(t, "/Job%20Search", sections[1].Categories[0].Path)
	assert.Equal(t, "folder", sections[2].Categories[0].Icon)
}

func TestSectionPathsEscapeSlashes(t *testing.T) {
	sections := Sections(BuildHierarchy([]Item{{ID: "1", Category: "UI/UX"}}))
	require.Len(t, sections, 1)
	entry := sections[0].Categories[0]
	assert.Equal(t, "/UI%2FUX", entry.Path)

	cat, sub := PathSegments(entry.Path)
	assert.Equal(t, "UI/UX", cat)
	assert.Empty(t, sub)
}
