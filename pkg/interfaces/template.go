package interfaces

import (
	"io"
)

// TemplateRenderer abstracts the layout engine used by the site assembler.
// The default implementation wraps html/template; hosts may substitute any
// engine that can resolve a named layout against the build's page context.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
}
