package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/pagemill/pagemill/pkg/interfaces"
)

// Config controls how the Markdown service discovers and parses files.
type Config struct {
	// ContentDir is the directory holding the source tree. Defaults to the
	// current directory.
	ContentDir string
	PostsDir   string
	TabsDir    string
	Pattern    string
	Language   string
	Parser     interfaces.ParseOptions
}

// Service bundles a loader and parser over a validated content directory. It
// is the content-store entry point the facade wires into the build pipeline;
// hosts can also use it directly to load rendered documents.
type Service struct {
	cfg    Config
	parser interfaces.MarkdownParser
	loader *Loader
}

// NewService constructs a Markdown service rooted at the configured content
// directory. When parser is nil, a Goldmark parser with the configured
// default options is created.
func NewService(cfg Config, parser interfaces.MarkdownParser) (*Service, error) {
	filesystem, err := prepareFilesystem(cfg.ContentDir)
	if err != nil {
		return nil, err
	}

	if parser == nil {
		parser = NewGoldmarkParser(cfg.Parser)
	}

	loader := NewLoader(filesystem, LoaderConfig{
		PostsDir: cfg.PostsDir,
		TabsDir:  cfg.TabsDir,
		Pattern:  cfg.Pattern,
		Language: cfg.Language,
	})

	return &Service{
		cfg:    cfg,
		parser: parser,
		loader: loader,
	}, nil
}

// Loader exposes the underlying document loader for pipeline wiring.
func (s *Service) Loader() *Loader {
	return s.loader
}

// Parser exposes the underlying Markdown parser for pipeline wiring.
func (s *Service) Parser() interfaces.MarkdownParser {
	return s.parser
}

// Load reads a single document relative to the content directory and renders
// its body to HTML.
func (s *Service) Load(ctx context.Context, path string) (*interfaces.Document, error) {
	doc, err := s.loader.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := s.renderDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadAll discovers and loads every document under the content directory,
// rendering each body to HTML. Results are sorted by file path.
func (s *Service) LoadAll(ctx context.Context) ([]*interfaces.Document, error) {
	paths, err := s.loader.Discover(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]*interfaces.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := s.Load(ctx, path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].FilePath < docs[j].FilePath
	})
	return docs, nil
}

// Render parses Markdown bytes into HTML using the configured parser.
func (s *Service) Render(ctx context.Context, markdown []byte) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return s.parser.Parse(markdown)
}

// RenderDocument converts the document's Markdown body into HTML in place and
// returns the rendered bytes.
func (s *Service) RenderDocument(ctx context.Context, doc *interfaces.Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("markdown service: document is nil")
	}
	if err := s.renderDocument(ctx, doc); err != nil {
		return nil, err
	}
	return doc.BodyHTML, nil
}

func (s *Service) renderDocument(ctx context.Context, doc *interfaces.Document) error {
	html, err := s.Render(ctx, doc.Body)
	if err != nil {
		return fmt.Errorf("markdown: render document %s: %w", doc.FilePath, err)
	}
	doc.BodyHTML = html
	return nil
}

func prepareFilesystem(contentDir string) (fs.FS, error) {
	dir := strings.TrimSpace(contentDir)
	if dir == "" {
		dir = "."
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("markdown: stat content directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("markdown: content path %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}
