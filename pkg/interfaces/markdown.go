package interfaces

import (
	"time"

	"github.com/google/uuid"
)

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
// Implementations should stay reusable across goroutines so the build
// pipeline can share one parser between workers.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string
	HardWraps  bool
	// Highlight names the chroma style applied to fenced code blocks.
	Highlight string
	// Strict makes the renderer reject raw HTML it cannot safely pass
	// through (unterminated tags) instead of emitting it untouched.
	Strict bool
}

// DocumentKind tags the two source flavours the content store produces.
type DocumentKind string

const (
	// KindPost is a dated entry: its filename carries the publication date.
	KindPost DocumentKind = "post"
	// KindTab is a navigational page addressed by a flat slug.
	KindTab DocumentKind = "tab"
)

// Document represents a content file with parsed metadata and body. The
// struct is shared between the interfaces package and internal
// implementations so consumers can depend on a stable contract. Documents
// are immutable after load.
type Document struct {
	// FilePath is the document identity: the slash-separated path relative
	// to the content root.
	FilePath    string
	ID          uuid.UUID
	Kind        DocumentKind
	Slug        string
	FrontMatter FrontMatter
	Body        []byte
	BodyHTML    []byte
	// PublishedAt is parsed from the filename date prefix; zero for tabs.
	PublishedAt  time.Time
	LastModified time.Time
	// Checksum stores a digest of the original file content (SHA-256) so
	// incremental builds can detect changes without re-rendering unchanged
	// files.
	Checksum []byte
}

// SortTime returns the timestamp used to order the document in listings:
// the authored filename date when present, otherwise the file modification
// time reported by the content store.
func (d *Document) SortTime() time.Time {
	if !d.PublishedAt.IsZero() {
		return d.PublishedAt
	}
	return d.LastModified
}

// FrontMatter models metadata extracted from content files. Recognized keys
// are typed; everything else is preserved opaquely in the Custom map and
// never interpreted.
type FrontMatter struct {
	Title      string         `yaml:"title" json:"title"`
	Author     string         `yaml:"author" json:"author"`
	Pin        bool           `yaml:"pin" json:"pin"`
	Categories []string       `yaml:"categories" json:"categories"`
	Tags       []string       `yaml:"tags" json:"tags"`
	Order      *int           `yaml:"order" json:"order"`
	Icon       string         `yaml:"icon" json:"icon"`
	Custom     map[string]any `yaml:",inline" json:"custom"`
	Raw        map[string]any `yaml:"-" json:"raw"`
}

// HasOrder reports whether the document declared an explicit tab position.
func (f FrontMatter) HasOrder() bool {
	return f.Order != nil
}
