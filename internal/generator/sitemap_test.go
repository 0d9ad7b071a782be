package generator

import (
	"strings"
	"testing"
	"time"
)

func TestBuildSitemapSortsAndDeduplicates(t *testing.T) {
	fallback := time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC)
	pages := []RenderedPage{
		{Route: "/zulu/", Metadata: DependencyMetadata{LastModified: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)}},
		{Route: "/alpha/"},
		{Route: "/zulu/", Metadata: DependencyMetadata{LastModified: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}},
	}

	sitemap := buildSitemap("https://example.com", pages, fallback)

	alpha := strings.Index(sitemap, "<loc>https://example.com/alpha/</loc>")
	zulu := strings.Index(sitemap, "<loc>https://example.com/zulu/</loc>")
	if alpha == -1 || zulu == -1 {
		t.Fatalf("expected both locations present:\n%s", sitemap)
	}
	if alpha > zulu {
		t.Fatalf("expected locations sorted:\n%s", sitemap)
	}
	if strings.Count(sitemap, "https://example.com/zulu/") != 1 {
		t.Fatalf("expected duplicate route collapsed:\n%s", sitemap)
	}
	if !strings.Contains(sitemap, "<lastmod>2024-03-05T18:00:00Z</lastmod>") {
		t.Fatalf("expected fallback lastmod for pages without metadata:\n%s", sitemap)
	}
	if !strings.Contains(sitemap, "<lastmod>2024-04-01T09:00:00Z</lastmod>") {
		t.Fatalf("expected first-seen entry to win:\n%s", sitemap)
	}
	if !strings.HasPrefix(sitemap, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Fatalf("expected XML declaration:\n%s", sitemap)
	}
	if !strings.Contains(sitemap, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`) {
		t.Fatalf("expected sitemap namespace:\n%s", sitemap)
	}
}

func TestBuildSitemapIsDeterministic(t *testing.T) {
	fallback := time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC)
	pages := []RenderedPage{
		{Route: "/b/"},
		{Route: "/a/"},
	}
	reordered := []RenderedPage{
		{Route: "/a/"},
		{Route: "/b/"},
	}
	if buildSitemap("https://example.com", pages, fallback) != buildSitemap("https://example.com", reordered, fallback) {
		t.Fatalf("expected input order not to matter")
	}
}

func TestBuildSitemapEscapesLocations(t *testing.T) {
	pages := []RenderedPage{{Route: "/tags/c&c/"}}
	sitemap := buildSitemap("https://example.com", pages, time.Time{})
	if !strings.Contains(sitemap, "/tags/c&amp;c/") {
		t.Fatalf("expected escaped location:\n%s", sitemap)
	}
}

func TestBuildRobots(t *testing.T) {
	robots := buildRobots("https://example.com", true)
	if !strings.HasPrefix(robots, "User-agent: *\nAllow: /\n") {
		t.Fatalf("unexpected robots preamble:\n%s", robots)
	}
	if !strings.Contains(robots, "Sitemap: https://example.com/sitemap.xml") {
		t.Fatalf("expected sitemap reference:\n%s", robots)
	}

	robots = buildRobots("", false)
	if strings.Contains(robots, "Sitemap:") {
		t.Fatalf("expected no sitemap reference:\n%s", robots)
	}
}
