// Package pagemill assembles a Markdown content tree into a static HTML site.
// The facade wires the content store, front-matter parser, taxonomy indexer,
// template engine, and site assembler together so hosts can embed the full
// pipeline behind a handful of calls.
package pagemill

import (
	"context"

	sitecmd "github.com/pagemill/pagemill/internal/commands/site"
	"github.com/pagemill/pagemill/internal/generator"
	"github.com/pagemill/pagemill/internal/logging"
	"github.com/pagemill/pagemill/internal/markdown"
	"github.com/pagemill/pagemill/internal/taxonomy"
	"github.com/pagemill/pagemill/pkg/interfaces"
)

// GeneratorService exports the site assembler contract.
type GeneratorService = generator.Service

// BuildOptions exports the per-run build options.
type BuildOptions = generator.BuildOptions

// BuildResult exports the build outcome record.
type BuildResult = generator.BuildResult

// Document exports the loaded content document type.
type Document = interfaces.Document

// HandlerSet exports the grouped site command handlers.
type HandlerSet = sitecmd.HandlerSet

// Pagemill is the top level runtime facade over the build pipeline.
type Pagemill struct {
	cfg       Config
	provider  interfaces.LoggerProvider
	logger    interfaces.Logger
	content   *markdown.Service
	indexer   *taxonomy.Indexer
	generator generator.Service
}

// Option overrides one of the pipeline collaborators during construction.
type Option func(*settings)

type settings struct {
	provider interfaces.LoggerProvider
	parser   interfaces.MarkdownParser
	renderer interfaces.TemplateRenderer
	writer   interfaces.ArtifactWriter
}

// WithLoggerProvider installs the logger provider used for every module logger.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(s *settings) {
		s.provider = provider
	}
}

// WithParser replaces the default Goldmark parser.
func WithParser(parser interfaces.MarkdownParser) Option {
	return func(s *settings) {
		s.parser = parser
	}
}

// WithRenderer replaces the default html/template engine.
func WithRenderer(renderer interfaces.TemplateRenderer) Option {
	return func(s *settings) {
		s.renderer = renderer
	}
}

// WithWriter replaces the default atomic filesystem writer.
func WithWriter(writer interfaces.ArtifactWriter) Option {
	return func(s *settings) {
		s.writer = writer
	}
}

// New validates the configuration and wires the build pipeline.
func New(cfg Config, opts ...Option) (*Pagemill, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := settings{}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	content, err := markdown.NewService(markdown.Config{
		ContentDir: cfg.Content.SourceDir,
		PostsDir:   cfg.Content.PostsDir,
		TabsDir:    cfg.Content.TabsDir,
		Pattern:    cfg.Content.Pattern,
		Language:   cfg.Site.Language,
		Parser:     parseOptions(cfg),
	}, s.parser)
	if err != nil {
		return nil, err
	}

	indexer := taxonomy.NewIndexer(
		taxonomy.WithLogger(logging.TaxonomyLogger(s.provider)),
	)

	svc, err := generator.NewService(generatorConfig(cfg), generator.Dependencies{
		Loader:   content.Loader(),
		Parser:   content.Parser(),
		Indexer:  indexer,
		Renderer: s.renderer,
		Writer:   s.writer,
		Logger:   logging.GeneratorLogger(s.provider),
	})
	if err != nil {
		return nil, err
	}

	return &Pagemill{
		cfg:       cfg,
		provider:  s.provider,
		logger:    logging.ModuleLogger(s.provider, "pagemill"),
		content:   content,
		indexer:   indexer,
		generator: svc,
	}, nil
}

// Build runs the full pipeline and writes the output tree.
func (p *Pagemill) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	return p.generator.Build(ctx, opts)
}

// Diff runs the pipeline without writing anything, reporting the changes a
// real build would make.
func (p *Pagemill) Diff(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	opts.DryRun = true
	return p.generator.Build(ctx, opts)
}

// Clean removes the generated output tree.
func (p *Pagemill) Clean(ctx context.Context) error {
	return p.generator.Clean(ctx)
}

// Generator returns the configured site assembler.
func (p *Pagemill) Generator() GeneratorService {
	return p.generator
}

// Content returns the content store service.
func (p *Pagemill) Content() *markdown.Service {
	return p.content
}

// Config returns the validated runtime configuration.
func (p *Pagemill) Config() Config {
	return p.cfg
}

// Logger returns the facade's module logger.
func (p *Pagemill) Logger() interfaces.Logger {
	return p.logger
}

// RegisterCommands builds the site command handlers over this pipeline and,
// when a registry is supplied, mounts them on it.
func (p *Pagemill) RegisterCommands(reg sitecmd.CommandRegistry, opts ...sitecmd.Option) (*HandlerSet, error) {
	return sitecmd.RegisterSiteCommands(reg, p.generator, p.provider, opts...)
}

func parseOptions(cfg Config) interfaces.ParseOptions {
	return interfaces.ParseOptions{
		Extensions: append([]string(nil), cfg.Markdown.Extensions...),
		HardWraps:  cfg.Markdown.HardWraps,
		Highlight:  cfg.Markdown.Highlight,
		Strict:     cfg.Build.Strict,
	}
}

func generatorConfig(cfg Config) generator.Config {
	return generator.Config{
		Site: generator.SiteMetadata{
			Title:       cfg.Site.Title,
			Description: cfg.Site.Description,
			Author:      cfg.Site.Author,
			BaseURL:     cfg.Site.BaseURL,
			Language:    cfg.Site.Language,
		},
		OutputDir:       cfg.Build.OutputDir,
		CleanBuild:      cfg.Build.CleanBuild,
		Incremental:     cfg.Build.Incremental,
		CopyAssets:      cfg.Build.CopyAssets,
		GenerateSitemap: cfg.Build.GenerateSitemap,
		GenerateRobots:  cfg.Build.GenerateRobots,
		GenerateFeeds:   cfg.Build.GenerateFeeds,
		Workers:         cfg.Build.Workers,
		FeedLimit:       cfg.Build.FeedLimit,
		Markdown:        parseOptions(cfg),
		Theme: generator.ThemeSettings{
			Path:    cfg.Theme.Path,
			Name:    cfg.Theme.Name,
			Variant: cfg.Theme.Variant,
		},
		Routes: cfg.Navigation.RouteConfig,
	}
}
