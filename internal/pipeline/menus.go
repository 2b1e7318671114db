package pipeline

import (
	"sort"
	"strings"

	"github.com/bengal-ssg/bengal/internal/model"
)

// buildMainMenu builds the primary navigation menu from root's top-level
// sections, ordered by each section index page's weight frontmatter field
// and then by name.
func buildMainMenu(root *model.Section) *model.Menu {
	items := make([]*model.MenuItem, 0, len(root.Subsections))
	for _, sec := range root.Subsections {
		items = append(items, &model.MenuItem{
			Name:   sectionTitle(sec),
			URL:    sectionHref(sec),
			Weight: weightOf(sec),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Weight != items[j].Weight {
			return items[i].Weight < items[j].Weight
		}
		return items[i].Name < items[j].Name
	})
	return &model.Menu{Name: "main", Items: items}
}

func sectionTitle(sec *model.Section) string {
	if sec.IndexPage != nil && sec.IndexPage.Title != "" {
		return sec.IndexPage.Title
	}
	parts := strings.Split(sec.Path, "/")
	return parts[len(parts)-1]
}

func sectionHref(sec *model.Section) string {
	if sec.IndexPage != nil {
		return sec.IndexPage.Href
	}
	return "/" + sec.Path + "/"
}

func weightOf(sec *model.Section) int {
	if sec.IndexPage == nil {
		return 0
	}
	v, ok := sec.IndexPage.Metadata["weight"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	}
	return 0
}
