package content

import "sort"

// Section names in sidebar order.
const (
	SectionBusiness = "Business"
	SectionCareer   = "Career Preparation"
	SectionDesign   = "Design"
	SectionOther    = "Other"
)

var sectionMembers = []struct {
	section    string
	categories []string
}{
	{SectionBusiness, []string{"corporate", "finance", "marketing"}},
	{SectionCareer, []string{"job search", "navigating school", "portfolio"}},
	{SectionDesign, []string{"graphic design", "uiux", "resources"}},
}

var categoryIcons = map[string]string{
	"corporate":         "corporate",
	"finance":           "finance",
	"marketing":         "marketing",
	"job search":        "jobsearch",
	"navigating school": "school",
	"portfolio":         "portfolio",
	"graphic design":    "design",
	"uiux":              "uiux",
	"resources":         "resources",
	"templates":         "templates",
}

// SectionEntry is one category link in the sidebar.
type SectionEntry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Icon  string `json:"icon"`
	Count int    `json:"count"`
}

// Section groups sidebar entries under a heading.
type Section struct {
	Name       string         `json:"name"`
	Categories []SectionEntry `json:"categories"`
}

// SectionOf returns the sidebar section a category belongs to.
func SectionOf(category string) string {
	key := CategoryKey(category)
	for _, s := range sectionMembers {
		for _, c := range s.categories {
			if CategoryKey(c) == key {
				return s.section
			}
		}
	}
	return SectionOther
}

// Icon returns the icon name for a category, "folder" when it has none.
func Icon(category string) string {
	if icon, ok := categoryIcons[CategoryKey(category)]; ok {
		return icon
	}
	return "folder"
}

// Sections groups the categories of h into sidebar sections. Empty sections
// are omitted and entries are sorted by name.
func Sections(h Hierarchy) []Section {
	grouped := make(map[string][]SectionEntry)
	for _, name := range h.Names() {
		s := SectionOf(name)
		grouped[s] = append(grouped[s], SectionEntry{
			Name:  name,
			Path:  FolderPath(name, ""),
			Icon:  Icon(name),
			Count: h[name].Count,
		})
	}

	order := []string{SectionBusiness, SectionCareer, SectionDesign, SectionOther}
	out := make([]Section, 0, len(order))
	for _, name := range order {
		entries := grouped[name]
		if len(entries) == 0 {
			continue
		}
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
		out = append(out, Section{Name: name, Categories: entries})
	}
	return out
}
