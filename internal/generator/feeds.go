package generator

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pagemill/pagemill/internal/identity"
	"github.com/pagemill/pagemill/pkg/interfaces"
)

const (
	defaultFeedLimit = 100
	feedExcerptLimit = 280

	rssFeedFileName  = "feed.xml"
	atomFeedFileName = "atom.xml"
)

type feedItem struct {
	Title       string
	Summary     string
	Author      string
	Link        string
	GUID        string
	Categories  []string
	PublishedAt time.Time
	UpdatedAt   time.Time
}

// buildFeedItems collects the feed entries for this build: every routed post,
// newest first, capped at the configured limit. GUIDs derive from the source
// path so entries keep their identity when permalinks change.
func (s *service) buildFeedItems(buildCtx *BuildContext, routes map[string]string) []feedItem {
	if buildCtx == nil || buildCtx.Index == nil || len(buildCtx.Index.Posts) == 0 {
		return nil
	}

	seen := map[string]struct{}{}
	items := make([]feedItem, 0, len(buildCtx.Index.Posts))
	for _, doc := range buildCtx.Index.Posts {
		route, ok := routes[doc.FilePath]
		if !ok {
			continue
		}
		guid := identity.FeedGUID(doc.FilePath).String()
		if _, dup := seen[guid]; dup {
			continue
		}
		seen[guid] = struct{}{}

		published := firstNonZeroTime(doc.PublishedAt, doc.LastModified)
		if published.IsZero() {
			published = buildCtx.GeneratedAt
		}
		updated := firstNonZeroTime(doc.LastModified, published)

		items = append(items, feedItem{
			Title:       documentTitle(doc),
			Summary:     feedExcerpt(doc),
			Author:      strings.TrimSpace(doc.FrontMatter.Author),
			Link:        absoluteURL(s.cfg.Site.BaseURL, route),
			GUID:        guid,
			Categories:  doc.FrontMatter.Categories,
			PublishedAt: published,
			UpdatedAt:   updated,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].PublishedAt.Equal(items[j].PublishedAt) {
			return items[i].GUID < items[j].GUID
		}
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})

	limit := s.cfg.FeedLimit
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if len(items) > limit {
		items = append([]feedItem(nil), items[:limit]...)
	}
	return items
}

func (s *service) writeFeeds(
	ctx context.Context,
	writer interfaces.ArtifactWriter,
	dirCache map[string]struct{},
	site SiteMetadata,
	generatedAt time.Time,
	items []feedItem,
) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	baseDir := s.outputDir()

	feeds := []struct {
		name        string
		content     string
		contentType string
	}{
		{rssFeedFileName, buildRSSFeed(site, items, generatedAt), "application/rss+xml"},
		{atomFeedFileName, buildAtomFeed(site, items, generatedAt), "application/atom+xml"},
	}

	total := 0
	for _, feed := range feeds {
		target := joinOutputPath(baseDir, feed.name)
		if err := ensureDir(ctx, writer, dirCache, manifestDir(target)); err != nil {
			return total, err
		}
		if err := writer.WriteFile(ctx, interfaces.WriteFileRequest{
			Path:        target,
			Content:     strings.NewReader(feed.content),
			Size:        int64(len(feed.content)),
			Category:    interfaces.WriteCategoryFeed,
			ContentType: feed.contentType,
			Checksum:    computeHashFromString(feed.content),
			Metadata: map[string]string{
				"generated_at": generatedAt.UTC().Format(time.RFC3339),
			},
		}); err != nil {
			return total, err
		}
		total++
	}
	return total, nil
}

func buildRSSFeed(site SiteMetadata, items []feedItem, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(site.BaseURL)
	title := siteTitle(site)
	description := siteDescription(site)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0">` + "\n")
	builder.WriteString("  <channel>\n")
	fmt.Fprintf(&builder, "    <title>%s</title>\n", escapeXML(title))
	fmt.Fprintf(&builder, "    <link>%s</link>\n", escapeXML(baseLink))
	fmt.Fprintf(&builder, "    <description>%s</description>\n", escapeXML(description))
	if site.Language != "" {
		fmt.Fprintf(&builder, "    <language>%s</language>\n", escapeXML(site.Language))
	}
	fmt.Fprintf(&builder, "    <lastBuildDate>%s</lastBuildDate>\n", generatedAt.UTC().Format(time.RFC1123Z))
	for _, item := range items {
		pub := item.PublishedAt
		if pub.IsZero() {
			pub = generatedAt
		}
		builder.WriteString("    <item>\n")
		fmt.Fprintf(&builder, "      <title>%s</title>\n", escapeXML(item.Title))
		fmt.Fprintf(&builder, "      <link>%s</link>\n", escapeXML(item.Link))
		fmt.Fprintf(&builder, "      <guid isPermaLink=\"false\">%s</guid>\n", escapeXML(item.GUID))
		fmt.Fprintf(&builder, "      <pubDate>%s</pubDate>\n", pub.UTC().Format(time.RFC1123Z))
		for _, category := range item.Categories {
			if strings.TrimSpace(category) == "" {
				continue
			}
			fmt.Fprintf(&builder, "      <category>%s</category>\n", escapeXML(category))
		}
		if item.Summary != "" {
			fmt.Fprintf(&builder, "      <description>%s</description>\n", escapeXML(item.Summary))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString("</rss>\n")
	return builder.String()
}

func buildAtomFeed(site SiteMetadata, items []feedItem, generatedAt time.Time) string {
	baseLink := baseURLWithFallback(site.BaseURL)
	feedID := baseLink + "/" + atomFeedFileName
	title := siteTitle(site)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&builder, `<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="%s">`+"\n", escapeXMLAttr(site.Language))
	fmt.Fprintf(&builder, "  <id>%s</id>\n", escapeXML(feedID))
	fmt.Fprintf(&builder, "  <title>%s</title>\n", escapeXML(title))
	fmt.Fprintf(&builder, "  <updated>%s</updated>\n", generatedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&builder, `  <link rel="alternate" href="%s" />`+"\n", escapeXMLAttr(baseLink))
	fmt.Fprintf(&builder, `  <link rel="self" href="%s" />`+"\n", escapeXMLAttr(feedID))
	for _, item := range items {
		updated := item.UpdatedAt
		if updated.IsZero() {
			updated = item.PublishedAt
		}
		if updated.IsZero() {
			updated = generatedAt
		}
		builder.WriteString("  <entry>\n")
		fmt.Fprintf(&builder, "    <id>%s</id>\n", escapeXML(item.GUID))
		fmt.Fprintf(&builder, "    <title>%s</title>\n", escapeXML(item.Title))
		fmt.Fprintf(&builder, `    <link href="%s" />`+"\n", escapeXMLAttr(item.Link))
		fmt.Fprintf(&builder, "    <updated>%s</updated>\n", updated.UTC().Format(time.RFC3339))
		if !item.PublishedAt.IsZero() {
			fmt.Fprintf(&builder, "    <published>%s</published>\n", item.PublishedAt.UTC().Format(time.RFC3339))
		}
		if item.Author != "" {
			fmt.Fprintf(&builder, "    <author><name>%s</name></author>\n", escapeXML(item.Author))
		}
		for _, category := range item.Categories {
			if strings.TrimSpace(category) == "" {
				continue
			}
			fmt.Fprintf(&builder, `    <category term="%s" />`+"\n", escapeXMLAttr(category))
		}
		if item.Summary != "" {
			fmt.Fprintf(&builder, "    <summary>%s</summary>\n", escapeXML(item.Summary))
		}
		builder.WriteString("  </entry>\n")
	}
	builder.WriteString("</feed>\n")
	return builder.String()
}

// feedExcerpt lifts the first paragraph of the document body as a plain-text
// summary. Leading headings and code fences produce no excerpt rather than a
// mangled one.
func feedExcerpt(doc *interfaces.Document) string {
	var collected []string
	for _, line := range strings.Split(string(doc.Body), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(collected) > 0 {
				break
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") {
			break
		}
		if strings.HasPrefix(trimmed, "#") {
			if len(collected) > 0 {
				break
			}
			continue
		}
		collected = append(collected, trimmed)
	}

	excerpt := normalizeWhitespace(strings.Join(collected, " "))
	if utf8.RuneCountInString(excerpt) > feedExcerptLimit {
		runes := []rune(excerpt)
		excerpt = strings.TrimSpace(string(runes[:feedExcerptLimit])) + "…"
	}
	return excerpt
}

func siteTitle(site SiteMetadata) string {
	if title := strings.TrimSpace(site.Title); title != "" {
		return title
	}
	if base := strings.TrimSpace(site.BaseURL); base != "" {
		return base
	}
	return "Site Feed"
}

func siteDescription(site SiteMetadata) string {
	if desc := strings.TrimSpace(site.Description); desc != "" {
		return desc
	}
	return "Latest updates"
}

func baseURLWithFallback(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "http://localhost"
	}
	return trimmed
}

func firstNonZeroTime(instants ...time.Time) time.Time {
	for _, ts := range instants {
		if !ts.IsZero() {
			return ts
		}
	}
	return time.Time{}
}

func normalizeWhitespace(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	return strings.Join(strings.Fields(input), " ")
}

func escapeXML(value string) string {
	return html.EscapeString(value)
}

func escapeXMLAttr(value string) string {
	return html.EscapeString(value)
}
