package content

import (
	"sort"
)

// RootName is the label of the folder tree root.
const RootName = "Global Toolkit"

// Folder is a node of the virtual file browser. The root holds category
// folders, which hold subcategory folders. Items sit in the deepest folder
// their path names.
type Folder struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Icon     string    `json:"icon,omitempty"`
	Children []*Folder `json:"children,omitempty"`
	Items    []Item    `json:"items,omitempty"`
}

// Count returns the number of items in f and all its descendants.
func (f *Folder) Count() int {
	n := len(f.Items)
	for _, c := range f.Children {
		n += c.Count()
	}
	return n
}

// Child returns the direct child whose name matches name, comparing
// categories with synonyms at the first level and by key below it.
func (f *Folder) Child(name string) *Folder {
	root := f.Path == "/"
	for _, c := range f.Children {
		if root && SameCategory(c.Name, name) {
			return c
		}
		if !root && SameSubcategory(c.Name, name) {
			return c
		}
	}
	return nil
}

// Lookup resolves a browse path such as "/Design/UIUX". The root is returned
// for "/" and nil when a segment does not exist.
func (f *Folder) Lookup(path string) *Folder {
	cat, sub := PathSegments(path)
	if cat == "" {
		return f
	}
	c := f.Child(cat)
	if c == nil || sub == "" {
		return c
	}
	return c.Child(sub)
}

// BuildTree places items into a folder tree rooted at RootName. Folders are
// sorted by name; items keep their input order.
func BuildTree(items []Item) *Folder {
	root := &Folder{Name: RootName, Path: "/"}
	cats := make(map[string]*Folder)
	subs := make(map[string]*Folder)

	for _, it := range items {
		c, ok := cats[it.Category]
		if !ok {
			c = &Folder{Name: it.Category, Path: FolderPath(it.Category, ""), Icon: Icon(it.Category)}
			cats[it.Category] = c
			root.Children = append(root.Children, c)
		}
		if it.Subcategory == "" {
			c.Items = append(c.Items, it)
			continue
		}
		key := it.Category + "/" + it.Subcategory
		s, ok := subs[key]
		if !ok {
			s = &Folder{Name: it.Subcategory, Path: FolderPath(it.Category, it.Subcategory), Icon: "folder"}
			subs[key] = s
			c.Children = append(c.Children, s)
		}
		s.Items = append(s.Items, it)
	}

	sortFolders(root)
	return root
}

func sortFolders(f *Folder) {
	sort.Slice(f.Children, func(i, j int) bool { return f.Children[i].Name < f.Children[j].Name })
	for _, c := range f.Children {
		sortFolders(c)
	}
}
