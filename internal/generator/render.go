package generator

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pagemill/pagemill/pkg/interfaces"
)

// Page kinds produced by a build. Documents contribute posts and tabs; the
// remaining kinds are listing pages derived from the taxonomy index.
const (
	pageKindPost       = "post"
	pageKindTab        = "tab"
	pageKindHome       = "home"
	pageKindCategory   = "category"
	pageKindTag        = "tag"
	pageKindCategories = "categories"
	pageKindTags       = "tags"
)

// layoutForKind maps a page kind onto the layout that renders it. Tabs render
// through the generic page layout; every other kind has a layout of its own
// name.
func layoutForKind(kind string) string {
	if kind == pageKindTab {
		return "page"
	}
	return kind
}

// pageArtifact is a planned page: route, layout and template context are
// resolved and the artifact is ready for template execution.
type pageArtifact struct {
	id       uuid.UUID
	kind     string
	source   string
	route    string
	output   string
	layout   string
	data     TemplateContext
	metadata DependencyMetadata
}

// RenderedPage captures the rendered HTML output for one page.
type RenderedPage struct {
	ID       uuid.UUID
	Kind     string
	Source   string
	Route    string
	Output   string
	Layout   string
	HTML     string
	Metadata DependencyMetadata
	Duration time.Duration
	Checksum string
}

// RenderDiagnostic records per-page timing, skips and failures.
type RenderDiagnostic struct {
	ID       uuid.UUID
	Kind     string
	Source   string
	Route    string
	Layout   string
	Duration time.Duration
	Skipped  bool
	Err      error
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	err        error
	skipped    bool
}

func (s *service) renderPage(renderer interfaces.TemplateRenderer, artifact pageArtifact) renderOutcome {
	started := time.Now()
	html, err := renderer.Render(artifact.layout, artifact.data)
	duration := time.Since(started)

	diagnostic := RenderDiagnostic{
		ID:       artifact.id,
		Kind:     artifact.kind,
		Source:   artifact.source,
		Route:    artifact.route,
		Layout:   artifact.layout,
		Duration: duration,
	}

	if err != nil {
		label := artifact.source
		if label == "" {
			label = artifact.route
		}
		diagnostic.Err = err
		return renderOutcome{
			diagnostic: diagnostic,
			err:        fmt.Errorf("generator: render %s with layout %s: %w", label, artifact.layout, err),
		}
	}

	page := RenderedPage{
		ID:       artifact.id,
		Kind:     artifact.kind,
		Source:   artifact.source,
		Route:    artifact.route,
		Output:   artifact.output,
		Layout:   artifact.layout,
		HTML:     html,
		Metadata: artifact.metadata,
		Duration: duration,
		Checksum: computeHashFromString(html),
	}
	return renderOutcome{page: page, diagnostic: diagnostic}
}
