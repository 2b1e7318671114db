package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/bengal-ssg/bengal/internal/deptrack"
	"github.com/bengal-ssg/bengal/internal/model"
)

// TemplateEngine renders a page to HTML given the site's navigation
// context. Implementations are free to read any file during render; the
// dependency tracker hooked into the engine's loader records those reads.
type TemplateEngine interface {
	RenderPage(page *model.Page, navigation map[string]any, scope *deptrack.Scope) (string, error)
}

// trackingLoader wraps a pongo2 local-filesystem loader so every template
// and {% include %}/{% extends %} partial it resolves is recorded on the
// current render's dependency scope.
type trackingLoader struct {
	base  pongo2.TemplateLoader
	roots []string

	mu      sync.Mutex
	current *deptrack.Scope
}

func newTrackingLoader(roots []string) *trackingLoader {
	return &trackingLoader{base: pongo2.MustNewLocalFileSystemLoader(""), roots: roots}
}

// setScope binds the scope that subsequent Get calls attribute reads to.
// Pongo2's loader interface has no render-scoped hook, so this mirrors the
// teacher's actual concurrency model: template loads happen synchronously
// as part of one page's render call, so a single current-scope pointer
// guarded by a mutex matches how pongo2 invokes the loader.
func (l *trackingLoader) setScope(s *deptrack.Scope) {
	l.mu.Lock()
	l.current = s
	l.mu.Unlock()
}

func (l *trackingLoader) Abs(base, name string) string {
	for _, root := range l.roots {
		candidate := filepath.Join(root, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return l.base.Abs(base, name)
}

func (l *trackingLoader) Get(path string) (io.Reader, error) {
	l.mu.Lock()
	scope := l.current
	l.mu.Unlock()
	if scope != nil {
		scope.TrackPartial(path)
	}
	return l.base.Get(path)
}

// Engine is the TemplateEngine implementation backed by pongo2
// (Jinja2-like syntax).
type Engine struct {
	set    *pongo2.TemplateSet
	loader *trackingLoader

	mu    sync.RWMutex
	cache map[string]*pongo2.Template
}

// NewEngine builds an Engine that resolves templates from templateRoots
// in order (site templates first, then theme templates), matching the
// teacher's resolution order.
func NewEngine(templateRoots []string) *Engine {
	loader := newTrackingLoader(templateRoots)
	return &Engine{
		set:    pongo2.NewSet("bengal", loader),
		loader: loader,
		cache:  make(map[string]*pongo2.Template),
	}
}

// RenderPage renders page.Template with page and navigation bound into
// the template context, tracking every template/partial file the render
// reads on scope.
func (e *Engine) RenderPage(page *model.Page, navigation map[string]any, scope *deptrack.Scope) (string, error) {
	if page.Template == "" {
		return "", fmt.Errorf("rendering %s: no template set", page.SourcePath)
	}

	e.loader.setScope(scope)
	defer e.loader.setScope(nil)
	scope.TrackTemplate(page.Template)

	tmpl, err := e.loadCached(page.Template)
	if err != nil {
		return "", fmt.Errorf("loading template %s: %w", page.Template, err)
	}

	ctx := pongo2.Context{
		"page":       pageContext(page),
		"navigation": navigation,
	}
	out, err := tmpl.Execute(ctx)
	if err != nil {
		return "", fmt.Errorf("rendering %s with template %s: %w", page.SourcePath, page.Template, err)
	}
	return out, nil
}

func (e *Engine) loadCached(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.cache[name] = tmpl
	e.mu.Unlock()
	return tmpl, nil
}

func pageContext(page *model.Page) map[string]any {
	return map[string]any{
		"title":        page.Title,
		"slug":         page.Slug,
		"href":         page.Href,
		"html":         page.HTML,
		"article_html": page.ArticleHTML,
		"toc":          page.TOC,
		"tags":         page.Tags,
		"metadata":     page.Metadata,
		"date":         page.Date,
	}
}
