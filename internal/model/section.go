package model

// Section represents a directory under the content root. Sections form a
// tree rooted at "" (the content root itself).
type Section struct {
	// Path is the POSIX directory path relative to the content root, or ""
	// for the root section.
	Path string

	Title string

	// IndexPage is the section's _index page, or nil if the section has no
	// explicit index.
	IndexPage *Page

	// Pages are the pages directly inside this section (not recursive).
	Pages []*Page

	// Subsections are the immediate child sections.
	Subsections []*Section

	// Parent is the owning section, or nil for the root.
	Parent *Section

	// CascadeMetadata is the metadata inherited from this section's index
	// page and any ancestor's cascade, applied to descendant pages that
	// don't set the same key explicitly.
	CascadeMetadata map[string]any

	// Collection is the name of the collection this section belongs to, if
	// any.
	Collection string
}

// RegularPagesRecursive returns every page in the Pages list of this section
// and of all its descendant sections, in depth-first order. It applies no
// listability filter: drafts and unpublished pages are included.
func (s *Section) RegularPagesRecursive() []*Page {
	var out []*Page
	for _, p := range s.Pages {
		out = append(out, p)
	}
	for _, sub := range s.Subsections {
		out = append(out, sub.RegularPagesRecursive()...)
	}
	return out
}

// AllSubsections returns this section and every descendant section,
// depth-first.
func (s *Section) AllSubsections() []*Section {
	out := []*Section{s}
	for _, sub := range s.Subsections {
		out = append(out, sub.AllSubsections()...)
	}
	return out
}

// Ancestors returns the chain of sections from this section's parent up to
// the root, nearest first.
func (s *Section) Ancestors() []*Section {
	var out []*Section
	for p := s.Parent; p != nil; p = p.Parent {
		out = append(out, p)
	}
	return out
}
