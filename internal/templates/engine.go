// Package templates renders pages through html/template layout sets. A
// layout set is a base shell plus one content layout per page kind; every
// content layout executes inside the shell so navigation and site chrome
// stay consistent across the output tree.
package templates

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	pathpkg "path"
	"sort"
	"strings"

	htmltemplate "html/template"

	"github.com/pagemill/pagemill/internal/logging"
	"github.com/pagemill/pagemill/pkg/interfaces"
)

const (
	layoutGlob = "layouts/*.html"
	baseLayout = "base.html"
	// contentTemplate is the block every layout must define; the base shell
	// invokes it from inside the page body.
	contentTemplate = "content"
)

// Engine implements interfaces.TemplateRenderer over a layout directory.
// Layouts are parsed once at construction; rendering is read-only and safe
// for concurrent use.
type Engine struct {
	base    *htmltemplate.Template
	pages   map[string]*htmltemplate.Template
	funcs   htmltemplate.FuncMap
	logger  interfaces.Logger
	langTag string
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger overrides the no-op default logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLanguage sets the language used by title-casing helpers.
func WithLanguage(lang string) Option {
	return func(e *Engine) {
		e.langTag = strings.TrimSpace(lang)
	}
}

// NewEngine parses the layout set found under layouts/ in the supplied
// filesystem. The base shell is mandatory; every other layout file becomes a
// renderable page template named after its file stem.
func NewEngine(fsys fs.FS, opts ...Option) (*Engine, error) {
	e := &Engine{
		pages:  map[string]*htmltemplate.Template{},
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.funcs = helperFuncs(e.langTag)

	base, err := htmltemplate.New(baseLayout).Funcs(e.funcs).ParseFS(fsys, "layouts/"+baseLayout)
	if err != nil {
		return nil, fmt.Errorf("templates: parse base layout: %w", err)
	}
	e.base = base

	entries, err := fs.Glob(fsys, layoutGlob)
	if err != nil {
		return nil, fmt.Errorf("templates: glob layouts: %w", err)
	}
	sort.Strings(entries)

	for _, entry := range entries {
		file := pathpkg.Base(entry)
		if file == baseLayout {
			continue
		}
		name := strings.TrimSuffix(file, pathpkg.Ext(file))

		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("templates: clone base for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(fsys, entry); err != nil {
			return nil, fmt.Errorf("templates: parse layout %s: %w", name, err)
		}
		if clone.Lookup(contentTemplate) == nil {
			return nil, fmt.Errorf("templates: layout %s defines no %q block", name, contentTemplate)
		}
		e.pages[name] = clone
	}

	if len(e.pages) == 0 {
		return nil, fmt.Errorf("templates: no layouts found under layouts/")
	}

	e.logger.Debug("template engine ready", "layouts", len(e.pages))
	return e, nil
}

// Has reports whether a layout with the given name was parsed.
func (e *Engine) Has(name string) bool {
	_, ok := e.pages[normalizeLayoutName(name)]
	return ok
}

// Layouts returns the sorted layout names, mostly for diagnostics.
func (e *Engine) Layouts() []string {
	names := make([]string, 0, len(e.pages))
	for name := range e.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render executes the named layout inside the base shell. The rendered HTML
// is returned and, when writers are supplied, copied to each of them.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	layout := normalizeLayoutName(name)
	page, ok := e.pages[layout]
	if !ok {
		return "", fmt.Errorf("templates: unknown layout %q", layout)
	}

	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, baseLayout, data); err != nil {
		return "", fmt.Errorf("templates: render %s: %w", layout, err)
	}
	return teeOutput(buf, out)
}

// RenderString parses and executes a one-off template with the engine's
// helper functions available.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	tmpl, err := htmltemplate.New("inline").Funcs(e.funcs).Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("templates: parse inline template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("templates: render inline template: %w", err)
	}
	return teeOutput(buf, out)
}

func teeOutput(buf bytes.Buffer, out []io.Writer) (string, error) {
	rendered := buf.String()
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return rendered, fmt.Errorf("templates: write output: %w", err)
		}
	}
	return rendered, nil
}

func normalizeLayoutName(name string) string {
	trimmed := strings.TrimSpace(name)
	return strings.TrimSuffix(trimmed, pathpkg.Ext(trimmed))
}

var _ interfaces.TemplateRenderer = (*Engine)(nil)
