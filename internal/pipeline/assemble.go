package pipeline

import (
	"sort"
	"strings"

	"github.com/bengal-ssg/bengal/internal/model"
)

// assembleSections builds the section tree from a flat page list, applies
// section-index cascade metadata to descendants, and links prev/next
// neighbors within each section's listing order.
func assembleSections(pages []*model.Page) (root *model.Section, bySection map[string]*model.Section) {
	bySection = map[string]*model.Section{"": {Path: ""}}

	ensureSection := func(path string) *model.Section {
		if s, ok := bySection[path]; ok {
			return s
		}
		s := &model.Section{Path: path}
		bySection[path] = s
		return s
	}

	for _, p := range pages {
		sec := ensureSection(p.Section)
		if isIndexPage(p) {
			sec.IndexPage = p
		} else {
			sec.Pages = append(sec.Pages, p)
		}
		ensureAncestorChain(ensureSection, p.Section)
	}

	for path, sec := range bySection {
		if path == "" {
			continue
		}
		parent := ensureSection(parentOf(path))
		sec.Parent = parent
		parent.Subsections = append(parent.Subsections, sec)
	}

	for _, sec := range bySection {
		sort.Slice(sec.Subsections, func(i, j int) bool { return sec.Subsections[i].Path < sec.Subsections[j].Path })
		sortPagesForListing(sec.Pages)
	}

	root = bySection[""]
	cascadeMetadata(root, nil)
	linkPrevNext(bySection)
	return root, bySection
}

func isIndexPage(p *model.Page) bool {
	return strings.HasSuffix(p.SourcePath, "_index.md") ||
		strings.HasSuffix(p.SourcePath, "/index.md") ||
		p.SourcePath == "index.md"
}

func parentOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx == -1 {
		return ""
	}
	return path[:idx]
}

// ensureAncestorChain walks every ancestor of path, including the root,
// calling ensure on each so empty intermediate sections (no content files
// of their own) still appear in the tree.
func ensureAncestorChain(ensure func(string) *model.Section, path string) {
	for path != "" {
		path = parentOf(path)
		ensure(path)
	}
}

func sortPagesForListing(pages []*model.Page) {
	sort.SliceStable(pages, func(i, j int) bool {
		di, dj := pages[i].Date, pages[j].Date
		switch {
		case di != nil && dj != nil:
			return di.After(*dj)
		case di != nil:
			return true
		case dj != nil:
			return false
		default:
			return pages[i].SourcePath < pages[j].SourcePath
		}
	})
}

// cascadeMetadata applies each section's index-page cascade metadata,
// merged with what it inherited from its ancestors, to every descendant
// page that doesn't already set the same frontmatter key.
func cascadeMetadata(sec *model.Section, inherited map[string]any) {
	merged := mergeCascade(inherited, indexCascade(sec))
	sec.CascadeMetadata = merged
	applyCascadeToPages(sec.Pages, merged)
	for _, sub := range sec.Subsections {
		cascadeMetadata(sub, merged)
	}
}

func indexCascade(sec *model.Section) map[string]any {
	if sec.IndexPage == nil {
		return nil
	}
	return sec.IndexPage.CascadeMetadata
}

func mergeCascade(base, overlay map[string]any) map[string]any {
	if len(base) == 0 && len(overlay) == 0 {
		return nil
	}
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

func applyCascadeToPages(pages []*model.Page, cascade map[string]any) {
	for _, p := range pages {
		for k, v := range cascade {
			if _, set := p.Metadata[k]; set {
				continue
			}
			if p.Metadata == nil {
				p.Metadata = map[string]any{}
			}
			p.Metadata[k] = v
		}
	}
}

// linkPrevNext links prev/next neighbors within each section's listing
// order.
func linkPrevNext(bySection map[string]*model.Section) {
	for _, sec := range bySection {
		pages := sec.Pages
		for i, p := range pages {
			if i > 0 {
				p.Prev = pages[i-1]
			}
			if i < len(pages)-1 {
				p.Next = pages[i+1]
			}
		}
	}
}
