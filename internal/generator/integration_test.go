package generator_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pagemill/pagemill/internal/generator"
	"github.com/pagemill/pagemill/internal/markdown"
	"github.com/pagemill/pagemill/pkg/interfaces"
)

func TestIntegrationBuildProducesSiteTree(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	contentDir := seedContent(t, root)
	outputDir := filepath.ToSlash(filepath.Join(root, "site"))

	svc := newIntegrationService(t, contentDir, outputDir, nil)

	result, err := svc.Build(ctx, generator.BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if buildErr := result.Err(); buildErr != nil {
		t.Fatalf("expected clean build, got %v", buildErr)
	}
	if result.Documents != 3 {
		t.Fatalf("expected 3 documents, got %d", result.Documents)
	}
	if result.PagesBuilt != 8 {
		t.Fatalf("expected 8 pages, got %d", result.PagesBuilt)
	}
	if result.AssetsBuilt != 2 {
		t.Fatalf("expected stylesheet and highlight assets, got %d", result.AssetsBuilt)
	}

	for _, rel := range []string{
		"index.html",
		"2024/03/05/hello-world/index.html",
		"2024/04/01/second-post/index.html",
		"about/index.html",
		"categories/index.html",
		"categories/go-tips/index.html",
		"tags/index.html",
		"tags/release/index.html",
		"assets/site.css",
		"assets/highlight.css",
		"sitemap.xml",
		"robots.txt",
		"feed.xml",
		"atom.xml",
		".pagemill-manifest.json",
	} {
		target := filepath.Join(filepath.FromSlash(outputDir), filepath.FromSlash(rel))
		if _, err := os.Stat(target); err != nil {
			t.Fatalf("expected artifact %s: %v", rel, err)
		}
	}

	home := readOutput(t, outputDir, "index.html")
	if !strings.Contains(home, "Hello World") || !strings.Contains(home, "Second Post") {
		t.Fatalf("expected post titles on home page:\n%s", home)
	}
	if strings.Index(home, "Hello World") > strings.Index(home, "Second Post") {
		t.Fatalf("pinned post must appear before newer unpinned posts:\n%s", home)
	}
	if !strings.Contains(home, "https://example.com/about/") {
		t.Fatalf("expected about tab link on home page:\n%s", home)
	}

	post := readOutput(t, outputDir, "2024/03/05/hello-world/index.html")
	if !strings.Contains(post, "<strong>world</strong>") {
		t.Fatalf("expected rendered markdown body:\n%s", post)
	}
	if !strings.Contains(post, "Go Tips") {
		t.Fatalf("expected category chip on post page:\n%s", post)
	}

	sitemap := readOutput(t, outputDir, "sitemap.xml")
	if !strings.Contains(sitemap, "https://example.com/2024/03/05/hello-world/") {
		t.Fatalf("expected dated permalink in sitemap:\n%s", sitemap)
	}

	feed := readOutput(t, outputDir, "feed.xml")
	if !strings.Contains(feed, "<title>Hello World</title>") {
		t.Fatalf("expected post entry in feed:\n%s", feed)
	}

	robots := readOutput(t, outputDir, "robots.txt")
	if !strings.Contains(robots, "Sitemap: https://example.com/sitemap.xml") {
		t.Fatalf("expected sitemap reference in robots.txt:\n%s", robots)
	}
}

func TestIntegrationRebuildIsByteIdentical(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	contentDir := seedContent(t, root)
	outputDir := filepath.ToSlash(filepath.Join(root, "site"))

	svc := newIntegrationService(t, contentDir, outputDir, nil)

	if _, err := svc.Build(ctx, generator.BuildOptions{}); err != nil {
		t.Fatalf("first build: %v", err)
	}
	first := snapshotTree(t, outputDir)

	if _, err := svc.Build(ctx, generator.BuildOptions{}); err != nil {
		t.Fatalf("second build: %v", err)
	}
	second := snapshotTree(t, outputDir)

	if len(first) != len(second) {
		t.Fatalf("expected identical file sets, got %d then %d", len(first), len(second))
	}
	for rel, content := range first {
		other, ok := second[rel]
		if !ok {
			t.Fatalf("file %s missing from rebuild", rel)
		}
		if content != other {
			t.Fatalf("file %s changed between identical builds", rel)
		}
	}
}

func TestIntegrationIncrementalSkipsUnchangedArtifacts(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	contentDir := seedContent(t, root)
	outputDir := filepath.ToSlash(filepath.Join(root, "site"))

	svc := newIntegrationService(t, contentDir, outputDir, func(cfg *generator.Config) {
		cfg.Incremental = true
	})

	initial, err := svc.Build(ctx, generator.BuildOptions{})
	if err != nil {
		t.Fatalf("initial build: %v", err)
	}
	if initial.PagesSkipped != 0 || initial.AssetsSkipped != 0 {
		t.Fatalf("expected full first build, got %d/%d skipped", initial.PagesSkipped, initial.AssetsSkipped)
	}

	repeat, err := svc.Build(ctx, generator.BuildOptions{})
	if err != nil {
		t.Fatalf("repeat build: %v", err)
	}
	if repeat.PagesBuilt != 0 {
		t.Fatalf("expected no rebuilt pages, got %d", repeat.PagesBuilt)
	}
	if repeat.PagesSkipped != initial.PagesBuilt {
		t.Fatalf("expected %d skipped pages, got %d", initial.PagesBuilt, repeat.PagesSkipped)
	}
	if repeat.AssetsSkipped != initial.AssetsBuilt {
		t.Fatalf("expected %d skipped assets, got %d", initial.AssetsBuilt, repeat.AssetsSkipped)
	}

	// Touching a source invalidates its page but leaves the rest skipped.
	postPath := filepath.Join(contentDir, "_posts", "2024-03-05-hello-world.md")
	raw, err := os.ReadFile(postPath)
	if err != nil {
		t.Fatalf("read post: %v", err)
	}
	if err := os.WriteFile(postPath, append(raw, []byte("\nAppended line.\n")...), 0o644); err != nil {
		t.Fatalf("touch post: %v", err)
	}

	touched, err := svc.Build(ctx, generator.BuildOptions{})
	if err != nil {
		t.Fatalf("touched build: %v", err)
	}
	if touched.PagesBuilt == 0 {
		t.Fatalf("expected edited post to rebuild")
	}
	if touched.PagesSkipped == 0 {
		t.Fatalf("expected untouched pages to stay skipped")
	}

	forced, err := svc.Build(ctx, generator.BuildOptions{Force: true})
	if err != nil {
		t.Fatalf("forced build: %v", err)
	}
	if forced.PagesSkipped != 0 {
		t.Fatalf("expected force to rebuild everything, got %d skipped", forced.PagesSkipped)
	}
}

func TestIntegrationMalformedDocumentFailsBuildButNotSiblings(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	contentDir := seedContent(t, root)
	writeContentFile(t, contentDir, "_posts/2024-05-01-broken.md", `---
author: Nobody
---

This post declares front matter without a title.
`)
	outputDir := filepath.ToSlash(filepath.Join(root, "site"))

	svc := newIntegrationService(t, contentDir, outputDir, nil)

	result, err := svc.Build(ctx, generator.BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	buildErr := result.Err()
	if buildErr == nil {
		t.Fatalf("expected aggregated failure for malformed front matter")
	}
	if !errors.Is(buildErr, markdown.ErrMalformedFrontMatter) {
		t.Fatalf("expected malformed front matter cause, got %v", buildErr)
	}
	if result.Documents != 3 {
		t.Fatalf("expected siblings to survive, got %d documents", result.Documents)
	}

	if _, statErr := os.Stat(filepath.Join(filepath.FromSlash(outputDir), "2024", "05", "01", "broken", "index.html")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no page for malformed document, got %v", statErr)
	}
	if _, statErr := os.Stat(filepath.Join(filepath.FromSlash(outputDir), "2024", "03", "05", "hello-world", "index.html")); statErr != nil {
		t.Fatalf("expected sibling page built: %v", statErr)
	}
}

func TestIntegrationStrictModeRejectsUnterminatedHTML(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	contentDir := seedContent(t, root)
	writeContentFile(t, contentDir, "_posts/2024-05-02-open-tag.md", `---
title: Open Tag
---

Before the markup.

<pre class="terminal">
session output that never ends
`)
	outputDir := filepath.ToSlash(filepath.Join(root, "site"))

	svc := newIntegrationService(t, contentDir, outputDir, func(cfg *generator.Config) {
		cfg.Markdown.Strict = true
	})

	result, err := svc.Build(ctx, generator.BuildOptions{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	buildErr := result.Err()
	if buildErr == nil {
		t.Fatalf("expected strict mode failure")
	}
	if !errors.Is(buildErr, markdown.ErrUnterminatedHTML) {
		t.Fatalf("expected unterminated html cause, got %v", buildErr)
	}
}

func TestIntegrationDryRunLeavesDiskUntouched(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	contentDir := seedContent(t, root)
	outputDir := filepath.ToSlash(filepath.Join(root, "site"))

	svc := newIntegrationService(t, contentDir, outputDir, nil)

	result, err := svc.Build(ctx, generator.BuildOptions{DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !result.DryRun || result.PagesBuilt == 0 {
		t.Fatalf("expected dry run to report planned pages, got %+v", result)
	}
	if _, statErr := os.Stat(filepath.FromSlash(outputDir)); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no output directory after dry run, got %v", statErr)
	}
}

func TestIntegrationCleanRemovesOutput(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	contentDir := seedContent(t, root)
	outputDir := filepath.ToSlash(filepath.Join(root, "site"))

	svc := newIntegrationService(t, contentDir, outputDir, nil)
	if _, err := svc.Build(ctx, generator.BuildOptions{}); err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := svc.Clean(ctx); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if _, statErr := os.Stat(filepath.FromSlash(outputDir)); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected output removed, got %v", statErr)
	}
}

// Test fixtures ---------------------------------------------------------------

func newIntegrationService(t *testing.T, contentDir, outputDir string, mutate func(*generator.Config)) generator.Service {
	t.Helper()

	cfg := generator.Config{
		Site: generator.SiteMetadata{
			Title:       "Integration Site",
			Description: "Fixture corpus",
			Author:      "Site Crew",
			BaseURL:     "https://example.com",
			Language:    "en",
		},
		OutputDir:       outputDir,
		CopyAssets:      true,
		GenerateSitemap: true,
		GenerateRobots:  true,
		GenerateFeeds:   true,
		Markdown: interfaces.ParseOptions{
			Highlight: "monokai",
		},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	loader := markdown.NewLoader(os.DirFS(contentDir), markdown.LoaderConfig{})
	parser := markdown.NewGoldmarkParser(cfg.Markdown)

	svc, err := generator.NewService(cfg, generator.Dependencies{
		Loader: loader,
		Parser: parser,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedContent(t *testing.T, root string) string {
	t.Helper()
	contentDir := filepath.Join(root, "content")

	writeContentFile(t, contentDir, "_posts/2024-03-05-hello-world.md", `---
title: Hello World
pin: true
categories: [Go Tips]
tags: [release]
---

Hello **world** from the fixture.
`)
	writeContentFile(t, contentDir, "_posts/2024-04-01-second-post.md", `---
title: Second Post
author: Guest Writer
---

Second post body with some prose.
`)
	writeContentFile(t, contentDir, "_tabs/about.md", `---
title: About
order: 1
icon: info
---

About this site.
`)

	return contentDir
}

func writeContentFile(t *testing.T, contentDir, rel, content string) {
	t.Helper()
	target := filepath.Join(contentDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func readOutput(t *testing.T, outputDir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(filepath.FromSlash(outputDir), filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func snapshotTree(t *testing.T, outputDir string) map[string]string {
	t.Helper()
	snapshot := map[string]string{}
	base := filepath.FromSlash(outputDir)
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		rel, relErr := filepath.Rel(base, path)
		if relErr != nil {
			return relErr
		}
		snapshot[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("snapshot %s: %v", outputDir, err)
	}
	return snapshot
}
