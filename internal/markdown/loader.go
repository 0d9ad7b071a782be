package markdown

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	pathpkg "path"
	"sort"
	"strings"
	"time"

	slug "github.com/goliatone/go-slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pagemill/pagemill/internal/identity"
	"github.com/pagemill/pagemill/pkg/interfaces"
)

// LoaderConfig configures how content files are discovered within the
// source filesystem.
type LoaderConfig struct {
	// PostsDir is the directory holding dated entries (defaults to "_posts").
	PostsDir string
	// TabsDir is the directory holding navigational pages (defaults to "_tabs").
	TabsDir string
	// Pattern limits discovered files to those matching the supplied glob
	// (defaults to "*.md").
	Pattern string
	// Language selects the title-casing rules for fallback titles derived
	// from slugs.
	Language string
}

// Loader turns filesystem paths into documents with metadata. The zero
// directories convention mirrors the source corpus: posts carry their
// publication date in the filename, tabs are flat slugs.
type Loader struct {
	fs       fs.FS
	postsDir string
	tabsDir  string
	pattern  string
	language language.Tag
	slugs    slug.Normalizer
}

// NewLoader constructs a Loader using the provided filesystem and configuration.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	postsDir := strings.Trim(strings.TrimSpace(cfg.PostsDir), "/")
	if postsDir == "" {
		postsDir = "_posts"
	}
	tabsDir := strings.Trim(strings.TrimSpace(cfg.TabsDir), "/")
	if tabsDir == "" {
		tabsDir = "_tabs"
	}
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}

	return &Loader{
		fs:       filesystem,
		postsDir: postsDir,
		tabsDir:  tabsDir,
		pattern:  pattern,
		language: language.Make(cfg.Language),
		slugs:    slug.Default(),
	}
}

// Discover walks the posts and tabs directories and returns the matching
// file paths sorted for deterministic processing. Missing directories are
// treated as empty: a site without tabs is still a site.
func (l *Loader) Discover(ctx context.Context) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var paths []string
	for _, dir := range []string{l.postsDir, l.tabsDir} {
		found, err := l.discoverDir(ctx, dir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}

	sort.Strings(paths)
	return paths, nil
}

func (l *Loader) discoverDir(ctx context.Context, dir string) ([]string, error) {
	if _, err := fs.Stat(l.fs, dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("markdown loader stat %s: %w", dir, err)
	}

	var paths []string
	walkErr := fs.WalkDir(l.fs, dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		if !l.matchesPattern(path) {
			return nil
		}
		paths = append(paths, pathpkg.Clean(path))
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("markdown loader walk %s: %w", dir, walkErr)
	}
	return paths, nil
}

// LoadFile reads and parses a single document. The path must be relative to
// the content root and live under the posts or tabs directory.
func (l *Loader) LoadFile(ctx context.Context, path string) (*interfaces.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rel := pathpkg.Clean(strings.TrimPrefix(path, "./"))
	if !fs.ValidPath(rel) {
		return nil, fmt.Errorf("markdown loader: invalid path %q", path)
	}

	kind, published, seed, err := l.classify(rel)
	if err != nil {
		return nil, err
	}

	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", rel, err)
	}

	info, err := fs.Stat(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader stat %s: %w", rel, err)
	}

	meta, body, present, err := ParseFrontMatter(data)
	if err != nil {
		return nil, &FrontMatterError{Path: rel, Err: err}
	}
	if present && meta.Title == "" {
		return nil, &FrontMatterError{Path: rel, Err: ErrTitleRequired}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBodyRequired, rel)
	}

	docSlug := l.slugify(seed)
	if meta.Title == "" {
		meta.Title = l.titleFromSlug(docSlug)
	}

	sum := sha256.Sum256(data)

	return &interfaces.Document{
		FilePath:     rel,
		ID:           identity.DocumentUUID(rel),
		Kind:         kind,
		Slug:         docSlug,
		FrontMatter:  meta,
		Body:         body,
		PublishedAt:  published,
		LastModified: info.ModTime().UTC(),
		Checksum:     sum[:],
	}, nil
}

// LoadDirectory discovers and loads every document sequentially, stopping at
// the first failure. The build pipeline prefers Discover plus per-file loads
// so one malformed document cannot sink the batch.
func (l *Loader) LoadDirectory(ctx context.Context) ([]*interfaces.Document, error) {
	paths, err := l.Discover(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]*interfaces.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := l.LoadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (l *Loader) classify(rel string) (interfaces.DocumentKind, time.Time, string, error) {
	dir, base := pathpkg.Split(rel)
	dir = strings.Trim(dir, "/")
	stem := strings.TrimSuffix(base, pathpkg.Ext(base))

	switch {
	case dir == l.postsDir || strings.HasPrefix(dir, l.postsDir+"/"):
		published, seed, err := splitPostName(stem)
		if err != nil {
			return "", time.Time{}, "", fmt.Errorf("%w: %s", ErrInvalidPostFilename, rel)
		}
		return interfaces.KindPost, published, seed, nil
	case dir == l.tabsDir || strings.HasPrefix(dir, l.tabsDir+"/"):
		return interfaces.KindTab, time.Time{}, stem, nil
	default:
		return "", time.Time{}, "", fmt.Errorf("markdown loader: %s is outside the content directories", rel)
	}
}

// splitPostName separates the YYYY-MM-DD prefix from the slug seed.
func splitPostName(stem string) (time.Time, string, error) {
	if len(stem) < 12 || stem[4] != '-' || stem[7] != '-' || stem[10] != '-' {
		return time.Time{}, "", errors.New("missing date prefix")
	}
	published, err := time.Parse("2006-01-02", stem[:10])
	if err != nil {
		return time.Time{}, "", err
	}
	seed := stem[11:]
	if strings.TrimSpace(seed) == "" {
		return time.Time{}, "", errors.New("missing slug after date")
	}
	return published, seed, nil
}

func (l *Loader) matchesPattern(path string) bool {
	match, err := pathpkg.Match(l.pattern, pathpkg.Base(path))
	if err != nil {
		return false
	}
	return match
}

func (l *Loader) slugify(seed string) string {
	normalized, err := l.slugs.Normalize(seed)
	if err != nil || normalized == "" {
		return strings.ToLower(strings.TrimSpace(seed))
	}
	return normalized
}

// titleFromSlug backfills a readable title for documents without front
// matter, mirroring how static hosts render bare filenames.
func (l *Loader) titleFromSlug(value string) string {
	spaced := strings.ReplaceAll(value, "-", " ")
	spaced = strings.ReplaceAll(spaced, "_", " ")
	return cases.Title(l.language).String(spaced)
}
