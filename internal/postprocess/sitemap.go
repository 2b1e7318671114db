// Package postprocess emits the artifacts a build produces after every
// page has rendered: sitemap.xml, rss.xml, redirects, special pages like a
// 404, and the search index. Shapes follow standard sitemap.xml and rss.xml XML
// conventions, extended with i18n hreflang alternates and a feed item cap.
package postprocess

import (
	"encoding/xml"
	"sort"
	"strings"

	"github.com/bengal-ssg/bengal/internal/model"
)

// URLSet is the top-level <urlset> element of a sitemap.xml document.
type URLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr,omitempty"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapURL is one <url> entry.
type SitemapURL struct {
	Loc        string             `xml:"loc"`
	LastMod    string             `xml:"lastmod,omitempty"`
	ChangeFreq string             `xml:"changefreq,omitempty"`
	Priority   string             `xml:"priority,omitempty"`
	Alternates []SitemapAlternate `xml:"xhtml:link"`
}

// SitemapAlternate is an <xhtml:link rel="alternate" hreflang="..."> entry
// used for i18n translation links, including the "x-default" variant.
type SitemapAlternate struct {
	Rel      string `xml:"rel,attr"`
	HrefLang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

const (
	defaultChangeFreq = "weekly"
	defaultPriority   = "0.5"
)

// SitemapOptions configures sitemap generation.
type SitemapOptions struct {
	BaseURL string

	// I18nEnabled turns on hreflang alternate generation for pages sharing
	// a TranslationKey.
	I18nEnabled     bool
	DefaultLanguage string
}

// BuildSitemap returns the marshaled sitemap.xml document, or ok=false if
// there are zero listable pages.
func BuildSitemap(pages []*model.Page, opts SitemapOptions) (data []byte, ok bool, err error) {
	listable := listablePages(pages)
	if len(listable) == 0 {
		return nil, false, nil
	}

	byKey := groupByTranslationKey(listable)

	set := URLSet{XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	if opts.I18nEnabled {
		set.XHTML = "http://www.w3.org/1999/xhtml"
	}

	for _, p := range listable {
		entry := SitemapURL{
			Loc:        sitemapLoc(opts.BaseURL, p.Href),
			ChangeFreq: defaultChangeFreq,
			Priority:   defaultPriority,
		}
		if p.Date != nil {
			entry.LastMod = p.Date.Format("2006-01-02")
		}
		if opts.I18nEnabled && p.TranslationKey != "" {
			entry.Alternates = alternatesFor(byKey[p.TranslationKey], opts)
		}
		set.URLs = append(set.URLs, entry)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, false, err
	}
	return append([]byte(xml.Header), out...), true, nil
}

func listablePages(pages []*model.Page) []*model.Page {
	var out []*model.Page
	for _, p := range pages {
		if p.IsListable() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Href < out[j].Href })
	return out
}

func groupByTranslationKey(pages []*model.Page) map[string][]*model.Page {
	out := make(map[string][]*model.Page)
	for _, p := range pages {
		if p.TranslationKey == "" {
			continue
		}
		out[p.TranslationKey] = append(out[p.TranslationKey], p)
	}
	return out
}

// sitemapLoc converts a page's Href into an absolute sitemap <loc>, with
// "/index.html" stripped to "/". Pretty-URL trailing slashes are kept, so
// a page at a/index.html becomes <base>/a/ and the homepage <base>/.
func sitemapLoc(baseURL, href string) string {
	loc := href
	if strings.HasSuffix(loc, "/index.html") {
		loc = strings.TrimSuffix(loc, "index.html")
	}
	if baseURL == "" {
		return loc
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(loc, "/")
}

// alternatesFor builds the hreflang alternate links for every page sharing
// a translation key, plus an "x-default" pointing at the default-language
// variant.
func alternatesFor(group []*model.Page, opts SitemapOptions) []SitemapAlternate {
	var out []SitemapAlternate
	for _, p := range group {
		if p.Language == "" {
			continue
		}
		out = append(out, SitemapAlternate{
			Rel:      "alternate",
			HrefLang: p.Language,
			Href:     sitemapLoc(opts.BaseURL, p.Href),
		})
		if p.Language == opts.DefaultLanguage {
			out = append(out, SitemapAlternate{
				Rel:      "alternate",
				HrefLang: "x-default",
				Href:     sitemapLoc(opts.BaseURL, p.Href),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HrefLang != out[j].HrefLang {
			return out[i].HrefLang < out[j].HrefLang
		}
		return out[i].Href < out[j].Href
	})
	return out
}
