package generator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/pagemill/pagemill/internal/identity"
	"github.com/pagemill/pagemill/internal/logging"
	"github.com/pagemill/pagemill/internal/taxonomy"
	"github.com/pagemill/pagemill/internal/templates"
	"github.com/pagemill/pagemill/pkg/interfaces"
)

var (
	errLoaderRequired  = errors.New("generator: document loader is required")
	errParserRequired  = errors.New("generator: markdown parser is required")
	errUnsafeOutputDir = errors.New("generator: refusing to remove unsafe output directory")
)

// Service describes the site assembler contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the assembler.
type Config struct {
	Site            SiteMetadata
	OutputDir       string
	CleanBuild      bool
	Incremental     bool
	CopyAssets      bool
	GenerateSitemap bool
	GenerateRobots  bool
	GenerateFeeds   bool
	Workers         int
	FeedLimit       int
	Markdown        interfaces.ParseOptions
	Theme           ThemeSettings
	Routes          *urlkit.Config
}

// ThemeSettings points at an optional theme directory overriding the embedded
// default layouts.
type ThemeSettings struct {
	Path    string
	Name    string
	Variant string
}

// BuildOptions narrows the scope of a single run.
type BuildOptions struct {
	// DryRun renders everything but writes nothing, reporting what a real
	// build would produce.
	DryRun bool
	// Force rebuilds pages and assets even when the manifest proves them
	// unchanged.
	Force bool
	// Paths restricts the build to specific source files.
	Paths []string
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	Documents     int
	PagesBuilt    int
	PagesSkipped  int
	AssetsBuilt   int
	AssetsSkipped int
	Duration      time.Duration
	Rendered      []RenderedPage
	Diagnostics   []RenderDiagnostic
	Errors        []error
	DryRun        bool
}

// Err flattens per-document failures into one error, nil when every document
// built cleanly.
func (r *BuildResult) Err() error {
	if r == nil || len(r.Errors) == 0 {
		return nil
	}
	return errors.Join(r.Errors...)
}

// DocumentLoader discovers and loads source documents from the content store.
type DocumentLoader interface {
	Discover(ctx context.Context) ([]string, error)
	LoadFile(ctx context.Context, path string) (*interfaces.Document, error)
}

// TaxonomyIndexer folds loaded documents into deterministic listings.
type TaxonomyIndexer interface {
	Build(docs []*interfaces.Document) *taxonomy.Index
}

// Dependencies lists the collaborators required by the assembler. Loader and
// Parser are mandatory; the rest default to the built-in implementations.
type Dependencies struct {
	Loader   DocumentLoader
	Parser   interfaces.MarkdownParser
	Indexer  TaxonomyIndexer
	Renderer interfaces.TemplateRenderer
	Writer   interfaces.ArtifactWriter
	Logger   interfaces.Logger
}

// NewService wires a site assembler with the provided configuration and
// dependencies.
func NewService(cfg Config, deps Dependencies) (Service, error) {
	routes, err := newNavigator(cfg.Routes)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &service{
		cfg:    cfg,
		deps:   deps,
		routes: routes,
		themes: newThemeSelector(cfg.Theme, nil),
		writer: newArtifactWriter(deps.Writer),
		logger: logger,
	}, nil
}

type service struct {
	cfg    Config
	deps   Dependencies
	routes *navigator
	themes *themeSelector
	writer interfaces.ArtifactWriter
	logger interfaces.Logger
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.deps.Loader == nil {
		return nil, errLoaderRequired
	}
	if s.deps.Parser == nil {
		return nil, errParserRequired
	}

	start := time.Now()

	paths, err := s.deps.Loader.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("generator: discover content: %w", err)
	}
	paths = filterPaths(paths, opts.Paths)

	result := &BuildResult{
		DryRun:      opts.DryRun,
		Diagnostics: make([]RenderDiagnostic, 0, len(paths)),
	}

	// Load phase: front matter and Markdown render concurrently. A document
	// that fails is reported and skipped; the rest of the build carries on.
	var mu sync.Mutex
	docs := make([]*interfaces.Document, 0, len(paths))
	collectLoad := func(doc *interfaces.Document, diagnostic RenderDiagnostic, failure error) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, diagnostic)
		if failure != nil {
			result.Errors = append(result.Errors, failure)
			return
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	s.loadConcurrently(ctx, paths, collectLoad)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Fan-in point: listings below assume the full surviving document set
	// has been folded into the index.
	sortDocumentsByPath(docs)
	result.Documents = len(docs)
	index := s.indexer().Build(docs)

	selection, themeFS, err := s.resolveTheme()
	if err != nil {
		return nil, err
	}
	renderer, err := s.ensureRenderer(themeFS)
	if err != nil {
		return nil, err
	}

	site := s.siteMetadata()
	nav, err := s.buildNavigation(index)
	if err != nil {
		return nil, err
	}
	theme := buildThemeContext(selection, s.themeAssetURL(selection))

	buildCtx := &BuildContext{
		GeneratedAt: latestModification(docs),
		Documents:   docs,
		Index:       index,
		Selection:   selection,
		Options:     opts,
	}

	artifacts, routes, planFailures := s.planArtifacts(buildCtx, site, nav, theme)
	result.Errors = append(result.Errors, planFailures...)

	collectRender := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		if outcome.err != nil {
			result.Errors = append(result.Errors, outcome.err)
			return
		}
		result.Rendered = append(result.Rendered, outcome.page)
	}
	s.renderConcurrently(ctx, renderer, artifacts, collectRender)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sortRenderedPages(result.Rendered)

	writer := s.writer
	if opts.DryRun {
		writer = &recordingWriter{}
	} else if s.cfg.CleanBuild {
		if err := s.removeOutputDir(); err != nil {
			return nil, err
		}
	}

	manifest := s.loadManifest()
	if s.cfg.CleanBuild && !opts.DryRun {
		manifest = newBuildManifest()
	}

	dirCache := map[string]struct{}{}
	if err := ensureDir(ctx, writer, dirCache, s.outputDir()); err != nil {
		return nil, err
	}

	pagesBuilt, pagesSkipped, pageKeys, err := s.persistPages(ctx, writer, dirCache, manifest, result.Rendered, opts.Force)
	if err != nil {
		return nil, err
	}
	result.PagesBuilt = pagesBuilt
	result.PagesSkipped = pagesSkipped
	manifest.prunePages(pageKeys)

	if s.cfg.CopyAssets {
		assetsBuilt, assetsSkipped, assetKeys, assetErr := s.copyAssets(ctx, writer, dirCache, themeFS, manifest, opts.Force)
		if assetErr != nil {
			return nil, assetErr
		}
		result.AssetsBuilt = assetsBuilt
		result.AssetsSkipped = assetsSkipped
		manifest.pruneAssets(assetKeys)
	}

	if s.cfg.GenerateSitemap {
		if err := s.writeSitemap(ctx, writer, dirCache, result.Rendered, buildCtx.GeneratedAt); err != nil {
			return nil, err
		}
	}
	if s.cfg.GenerateRobots {
		if err := s.writeRobots(ctx, writer, dirCache); err != nil {
			return nil, err
		}
	}
	if s.cfg.GenerateFeeds {
		items := s.buildFeedItems(buildCtx, routes)
		if _, err := s.writeFeeds(ctx, writer, dirCache, site, buildCtx.GeneratedAt, items); err != nil {
			return nil, err
		}
	}

	if !opts.DryRun {
		if err := s.persistManifest(ctx, writer, dirCache, manifest, buildCtx.GeneratedAt); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	s.logger.Info("site build finished",
		"documents", result.Documents,
		"pages_built", result.PagesBuilt,
		"pages_skipped", result.PagesSkipped,
		"assets_built", result.AssetsBuilt,
		"failures", len(result.Errors),
		"dry_run", opts.DryRun,
		"duration", result.Duration.String(),
	)
	return result, nil
}

func (s *service) Clean(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("cleaning output directory", "dir", s.cfg.OutputDir)
	return s.removeOutputDir()
}

func (s *service) indexer() TaxonomyIndexer {
	if s.deps.Indexer != nil {
		return s.deps.Indexer
	}
	return taxonomy.NewIndexer(taxonomy.WithLogger(s.logger))
}

func (s *service) ensureRenderer(themeFS fs.FS) (interfaces.TemplateRenderer, error) {
	if s.deps.Renderer != nil {
		return s.deps.Renderer, nil
	}
	engine, err := templates.NewEngine(themeFS,
		templates.WithLogger(s.logger),
		templates.WithLanguage(s.cfg.Site.Language),
	)
	if err != nil {
		return nil, fmt.Errorf("generator: load layouts: %w", err)
	}
	return engine, nil
}

func (s *service) loadOne(ctx context.Context, sourcePath string, collect func(*interfaces.Document, RenderDiagnostic, error)) {
	started := time.Now()

	doc, err := s.deps.Loader.LoadFile(ctx, sourcePath)
	if err != nil {
		collect(nil, RenderDiagnostic{
			Source:   sourcePath,
			Duration: time.Since(started),
			Err:      err,
		}, fmt.Errorf("generator: load %s: %w", sourcePath, err))
		return
	}

	html, err := s.deps.Parser.ParseWithOptions(doc.Body, s.cfg.Markdown)
	if err != nil {
		collect(nil, RenderDiagnostic{
			ID:       doc.ID,
			Kind:     string(doc.Kind),
			Source:   sourcePath,
			Duration: time.Since(started),
			Err:      err,
		}, fmt.Errorf("generator: render markdown for %s: %w", sourcePath, err))
		return
	}
	doc.BodyHTML = html

	collect(doc, RenderDiagnostic{
		ID:       doc.ID,
		Kind:     string(doc.Kind),
		Source:   sourcePath,
		Duration: time.Since(started),
	}, nil)
}

func (s *service) loadConcurrently(ctx context.Context, paths []string, collect func(*interfaces.Document, RenderDiagnostic, error)) {
	workers := effectiveWorkerCount(s.cfg.Workers, len(paths))
	forEachJob(ctx, paths, workers, func(sourcePath string) {
		s.loadOne(ctx, sourcePath, collect)
	})
}

func (s *service) renderConcurrently(ctx context.Context, renderer interfaces.TemplateRenderer, artifacts []pageArtifact, collect func(renderOutcome)) {
	workers := effectiveWorkerCount(s.cfg.Workers, len(artifacts))
	forEachJob(ctx, artifacts, workers, func(artifact pageArtifact) {
		collect(s.renderPage(renderer, artifact))
	})
}

// forEachJob fans jobs out to a bounded worker pool, falling back to a
// sequential loop when concurrency cannot help.
func forEachJob[T any](ctx context.Context, jobs []T, workers int, run func(T)) {
	if len(jobs) == 0 {
		return
	}
	if workers <= 1 || len(jobs) == 1 {
		for _, job := range jobs {
			if ctx.Err() != nil {
				return
			}
			run(job)
		}
		return
	}

	queue := make(chan T)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-queue:
					if !ok {
						return
					}
					run(job)
				}
			}
		}()
	}

feed:
	for _, job := range jobs {
		select {
		case <-ctx.Done():
			break feed
		case queue <- job:
		}
	}
	close(queue)
	wg.Wait()
}

// planArtifacts turns the indexed corpus into the full page set: one artifact
// per document plus the derived home, taxonomy and overview listings. Route
// failures are collected per artifact so one bad document cannot sink the
// build.
func (s *service) planArtifacts(buildCtx *BuildContext, site SiteMetadata, nav NavigationContext, theme ThemeContext) ([]pageArtifact, map[string]string, []error) {
	index := buildCtx.Index
	catIdx := linkIndex(nav.Categories)
	tagIdx := linkIndex(nav.Tags)
	navHash := navigationFingerprint(nav)
	themeHash := themeFingerprint(buildCtx.Selection)
	baseDir := s.outputDir()

	var failures []error
	routes := make(map[string]string, len(buildCtx.Documents))
	hrefs := make(map[string]string, len(buildCtx.Documents))
	for _, doc := range buildCtx.Documents {
		route, err := s.routes.documentRoute(doc)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		routes[doc.FilePath] = route
		hrefs[doc.FilePath] = s.href(route)
	}

	newContext := func(page PageContext, listing ListingContext, pageURL string) TemplateContext {
		return TemplateContext{
			Site: site,
			Nav: NavigationContext{
				Tabs:       activateTabs(nav.Tabs, pageURL),
				Categories: nav.Categories,
				Tags:       nav.Tags,
			},
			Page:        page,
			Listing:     listing,
			Theme:       theme,
			GeneratedAt: buildCtx.GeneratedAt,
		}
	}

	artifacts := make([]pageArtifact, 0, len(buildCtx.Documents)+len(index.Categories)+len(index.Tags)+3)

	for _, doc := range buildCtx.Documents {
		route, ok := routes[doc.FilePath]
		if !ok {
			continue
		}
		kind := pageKindPost
		if doc.Kind == interfaces.KindTab {
			kind = pageKindTab
		}
		layout := layoutForKind(kind)
		href := hrefs[doc.FilePath]
		artifacts = append(artifacts, pageArtifact{
			id:       doc.ID,
			kind:     kind,
			source:   doc.FilePath,
			route:    route,
			output:   joinOutputPath(baseDir, buildOutputPath(route)),
			layout:   layout,
			data:     newContext(s.pageContext(doc, href, catIdx, tagIdx), ListingContext{}, href),
			metadata: documentMetadata(doc, layout, themeHash, navHash),
		})
	}

	if homeRoute, err := s.routes.homeRoute(); err != nil {
		failures = append(failures, err)
	} else {
		href := s.href(homeRoute)
		listing := ListingContext{
			URL:    href,
			Posts:  s.postSummaries(index.Posts, hrefs, catIdx, tagIdx),
			Pinned: s.postSummaries(index.Pinned, hrefs, catIdx, tagIdx),
		}
		layout := layoutForKind(pageKindHome)
		artifacts = append(artifacts, pageArtifact{
			id:       identity.ListingUUID(pageKindHome, ""),
			kind:     pageKindHome,
			route:    homeRoute,
			output:   joinOutputPath(baseDir, buildOutputPath(homeRoute)),
			layout:   layout,
			data:     newContext(PageContext{Kind: pageKindHome, URL: href}, listing, href),
			metadata: listingMetadata(pageKindHome, "", layout, index.Posts, themeHash, navHash),
		})
	}

	buckets := []struct {
		kind    string
		route   string
		buckets []taxonomy.Bucket
	}{
		{pageKindCategory, routeCategory, index.Categories},
		{pageKindTag, routeTag, index.Tags},
	}
	for _, group := range buckets {
		for _, bucket := range group.buckets {
			route, err := s.routes.termRoute(group.route, bucket.Slug)
			if err != nil {
				failures = append(failures, err)
				continue
			}
			href := s.href(route)
			listing := ListingContext{
				Name:  bucket.Name,
				Slug:  bucket.Slug,
				URL:   href,
				Posts: s.postSummaries(bucket.Docs, hrefs, catIdx, tagIdx),
			}
			layout := layoutForKind(group.kind)
			artifacts = append(artifacts, pageArtifact{
				id:       identity.TaxonomyUUID(group.kind, bucket.Name),
				kind:     group.kind,
				route:    route,
				output:   joinOutputPath(baseDir, buildOutputPath(route)),
				layout:   layout,
				data:     newContext(PageContext{Kind: group.kind, Title: bucket.Name, URL: href}, listing, href),
				metadata: listingMetadata(group.kind, bucket.Slug, layout, bucket.Docs, themeHash, navHash),
			})
		}
	}

	overviews := []struct {
		kind  string
		route string
		title string
		terms []TaxonomyLink
	}{
		{pageKindCategories, routeCategories, "Categories", nav.Categories},
		{pageKindTags, routeTags, "Tags", nav.Tags},
	}
	for _, overview := range overviews {
		route, err := s.routes.overviewRoute(overview.route)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		href := s.href(route)
		listing := ListingContext{
			Name:  overview.title,
			URL:   href,
			Terms: overview.terms,
		}
		layout := layoutForKind(overview.kind)
		artifacts = append(artifacts, pageArtifact{
			id:       identity.ListingUUID(overview.kind, ""),
			kind:     overview.kind,
			route:    route,
			output:   joinOutputPath(baseDir, buildOutputPath(route)),
			layout:   layout,
			data:     newContext(PageContext{Kind: overview.kind, Title: overview.title, URL: href}, listing, href),
			metadata: listingMetadata(overview.kind, "", layout, nil, themeHash, navHash),
		})
	}

	return artifacts, routes, failures
}

func (s *service) persistPages(
	ctx context.Context,
	writer interfaces.ArtifactWriter,
	dirCache map[string]struct{},
	manifest *buildManifest,
	pages []RenderedPage,
	force bool,
) (int, int, map[string]struct{}, error) {
	built := 0
	skipped := 0
	touched := make(map[string]struct{}, len(pages))

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return built, skipped, touched, err
		}

		key := manifest.pageKey(page.Route)
		touched[key] = struct{}{}

		if !force && s.cfg.Incremental && manifest.shouldSkipPage(page.Route, page.Metadata.Hash, page.Output) {
			skipped++
			continue
		}

		if err := ensureDir(ctx, writer, dirCache, manifestDir(page.Output)); err != nil {
			return built, skipped, touched, err
		}
		if err := writer.WriteFile(ctx, interfaces.WriteFileRequest{
			Path:        page.Output,
			Content:     strings.NewReader(page.HTML),
			Size:        int64(len(page.HTML)),
			Category:    interfaces.WriteCategoryPage,
			ContentType: "text/html; charset=utf-8",
			Checksum:    page.Checksum,
			Metadata: map[string]string{
				"kind":  page.Kind,
				"route": page.Route,
			},
		}); err != nil {
			return built, skipped, touched, fmt.Errorf("generator: write page %s: %w", page.Route, err)
		}
		built++

		manifest.setPage(manifestPage{
			ID:           page.ID.String(),
			Kind:         page.Kind,
			Source:       page.Source,
			Route:        page.Route,
			Output:       page.Output,
			Layout:       page.Layout,
			Hash:         page.Metadata.Hash,
			Checksum:     page.Checksum,
			LastModified: page.Metadata.LastModified.UTC(),
		})
	}

	return built, skipped, touched, nil
}

func (s *service) writeSitemap(ctx context.Context, writer interfaces.ArtifactWriter, dirCache map[string]struct{}, pages []RenderedPage, generatedAt time.Time) error {
	content := buildSitemap(s.cfg.Site.BaseURL, pages, generatedAt)
	target := joinOutputPath(s.outputDir(), "sitemap.xml")
	if err := ensureDir(ctx, writer, dirCache, manifestDir(target)); err != nil {
		return err
	}
	return writer.WriteFile(ctx, interfaces.WriteFileRequest{
		Path:        target,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    interfaces.WriteCategorySitemap,
		ContentType: "application/xml",
		Checksum:    computeHashFromString(content),
	})
}

func (s *service) writeRobots(ctx context.Context, writer interfaces.ArtifactWriter, dirCache map[string]struct{}) error {
	content := buildRobots(s.cfg.Site.BaseURL, s.cfg.GenerateSitemap)
	target := joinOutputPath(s.outputDir(), "robots.txt")
	if err := ensureDir(ctx, writer, dirCache, manifestDir(target)); err != nil {
		return err
	}
	return writer.WriteFile(ctx, interfaces.WriteFileRequest{
		Path:        target,
		Content:     strings.NewReader(content),
		Size:        int64(len(content)),
		Category:    interfaces.WriteCategoryRobots,
		ContentType: "text/plain; charset=utf-8",
		Checksum:    computeHashFromString(content),
	})
}

func (s *service) loadManifest() *buildManifest {
	manifest := newBuildManifest()
	if !s.cfg.Incremental {
		return manifest
	}
	target := manifest.manifestPath(s.cfg.OutputDir)
	data, err := os.ReadFile(filepath.FromSlash(target))
	if err != nil {
		return manifest
	}
	parsed, err := parseManifest(data)
	if err != nil {
		s.logger.Warn("ignoring unreadable build manifest", "path", target, "error", err)
		return manifest
	}
	return parsed
}

func (s *service) persistManifest(ctx context.Context, writer interfaces.ArtifactWriter, dirCache map[string]struct{}, manifest *buildManifest, generatedAt time.Time) error {
	manifest.GeneratedAt = generatedAt.UTC()
	data, err := manifest.marshal()
	if err != nil {
		return fmt.Errorf("generator: marshal manifest: %w", err)
	}
	target := manifest.manifestPath(s.cfg.OutputDir)
	if err := ensureDir(ctx, writer, dirCache, manifestDir(target)); err != nil {
		return err
	}
	return writer.WriteFile(ctx, interfaces.WriteFileRequest{
		Path:        target,
		Content:     bytes.NewReader(data),
		Size:        int64(len(data)),
		Category:    interfaces.WriteCategoryManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
	})
}

func (s *service) outputDir() string {
	return normalizeOutputDir(s.cfg.OutputDir)
}

// normalizeOutputDir keeps absolute output directories intact and only strips
// whitespace and a trailing slash so joinOutputPath can compose clean targets.
func normalizeOutputDir(dir string) string {
	cleaned := filepath.ToSlash(strings.TrimSpace(dir))
	if cleaned == "/" {
		return cleaned
	}
	return strings.TrimSuffix(cleaned, "/")
}

func (s *service) removeOutputDir() error {
	dir := strings.TrimSpace(s.cfg.OutputDir)
	cleaned := filepath.Clean(filepath.FromSlash(dir))
	if cleaned == "" || cleaned == "." || cleaned == ".." || cleaned == "/" || cleaned == string(filepath.Separator) {
		return fmt.Errorf("%w: %q", errUnsafeOutputDir, dir)
	}
	if err := os.RemoveAll(cleaned); err != nil {
		return fmt.Errorf("generator: clean output directory: %w", err)
	}
	return nil
}

func filterPaths(paths, requested []string) []string {
	if len(requested) == 0 {
		return paths
	}
	want := make(map[string]struct{}, len(requested))
	for _, req := range requested {
		cleaned := path.Clean(filepath.ToSlash(strings.TrimSpace(req)))
		if cleaned == "" || cleaned == "." {
			continue
		}
		want[cleaned] = struct{}{}
	}
	if len(want) == 0 {
		return paths
	}
	filtered := make([]string, 0, len(paths))
	for _, candidate := range paths {
		if _, ok := want[path.Clean(candidate)]; ok {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}

func sortDocumentsByPath(docs []*interfaces.Document) {
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].FilePath < docs[j].FilePath
	})
}

func sortRenderedPages(pages []RenderedPage) {
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Output < pages[j].Output
	})
}

func effectiveWorkerCount(configured, jobs int) int {
	workers := configured
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > jobs {
		workers = jobs
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

func ensureDir(ctx context.Context, writer interfaces.ArtifactWriter, cache map[string]struct{}, dir string) error {
	cleaned := strings.TrimSpace(dir)
	if cleaned == "" || cleaned == "." {
		return nil
	}
	if _, ok := cache[cleaned]; ok {
		return nil
	}
	if err := writer.EnsureDir(ctx, cleaned); err != nil {
		return err
	}
	cache[cleaned] = struct{}{}
	return nil
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(value string) string {
	return computeHash([]byte(value))
}
