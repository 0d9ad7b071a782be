package generator

import (
	"crypto/sha256"
	"encoding/hex"
	htmltemplate "html/template"
	"sort"
	"strconv"
	"strings"
	"time"

	gotheme "github.com/goliatone/go-theme"

	"github.com/pagemill/pagemill/internal/taxonomy"
	"github.com/pagemill/pagemill/pkg/interfaces"
)

// BuildContext aggregates the loaded corpus a build renders from. It is
// assembled once per run, after the load phase has finished and the taxonomy
// index exists.
type BuildContext struct {
	GeneratedAt time.Time
	Documents   []*interfaces.Document
	Index       *taxonomy.Index
	Selection   *gotheme.Selection
	Options     BuildOptions
}

// SiteMetadata describes the site shell every layout receives.
type SiteMetadata struct {
	Title       string
	Description string
	Author      string
	BaseURL     string
	Language    string
}

// NavigationItem is one tab entry in the rendered navigation bar.
type NavigationItem struct {
	Title  string
	URL    string
	Icon   string
	Active bool
}

// TaxonomyLink points at a category or tag listing page.
type TaxonomyLink struct {
	Name  string
	Slug  string
	URL   string
	Count int
}

// NavigationContext carries the cross-links injected into every page: the
// ordered tab bar plus the category and tag indices.
type NavigationContext struct {
	Tabs       []NavigationItem
	Categories []TaxonomyLink
	Tags       []TaxonomyLink
}

// PageContext describes the single document a layout is rendering.
type PageContext struct {
	Title      string
	Author     string
	Icon       string
	Kind       string
	URL        string
	Date       time.Time
	Modified   time.Time
	Pinned     bool
	Categories []TaxonomyLink
	Tags       []TaxonomyLink
	Content    htmltemplate.HTML
	Custom     map[string]any
}

// PostSummary is one row in a listing page.
type PostSummary struct {
	Title      string
	URL        string
	Author     string
	Date       time.Time
	Pinned     bool
	Categories []TaxonomyLink
	Tags       []TaxonomyLink
}

// ListingContext feeds the home, category, tag and overview layouts.
type ListingContext struct {
	Name   string
	Slug   string
	URL    string
	Posts  []PostSummary
	Pinned []PostSummary
	Terms  []TaxonomyLink
}

// ThemeContext mirrors the selected theme for template authors.
type ThemeContext struct {
	Name     string
	Variant  string
	Tokens   map[string]string
	CSSVars  map[string]string
	AssetURL func(string) string
}

// TemplateContext is the root value handed to every layout execution. Fields
// are values rather than pointers so templates never dereference nil.
type TemplateContext struct {
	Site        SiteMetadata
	Nav         NavigationContext
	Page        PageContext
	Listing     ListingContext
	Theme       ThemeContext
	GeneratedAt time.Time
}

// DependencyMetadata tracks hashes and timestamps for incremental builds.
type DependencyMetadata struct {
	Sources      map[string]string
	Hash         string
	LastModified time.Time
}

func (s *service) siteMetadata() SiteMetadata {
	site := SiteMetadata{
		Title:       strings.TrimSpace(s.cfg.Site.Title),
		Description: strings.TrimSpace(s.cfg.Site.Description),
		Author:      strings.TrimSpace(s.cfg.Site.Author),
		BaseURL:     strings.TrimSuffix(strings.TrimSpace(s.cfg.Site.BaseURL), "/"),
		Language:    strings.TrimSpace(s.cfg.Site.Language),
	}
	if site.Language == "" {
		site.Language = "en"
	}
	return site
}

// href converts a site-relative route into the link emitted in markup. When a
// base URL is configured links become absolute, matching the feed and sitemap
// output.
func (s *service) href(route string) string {
	base := strings.TrimSuffix(strings.TrimSpace(s.cfg.Site.BaseURL), "/")
	if base == "" {
		return route
	}
	return base + route
}

func (s *service) buildNavigation(index *taxonomy.Index) (NavigationContext, error) {
	nav := NavigationContext{
		Tabs: make([]NavigationItem, 0, len(index.Tabs)+1),
	}

	homeRoute, err := s.routes.homeRoute()
	if err != nil {
		return NavigationContext{}, err
	}
	nav.Tabs = append(nav.Tabs, NavigationItem{Title: "Home", URL: s.href(homeRoute)})

	for _, tab := range index.Tabs {
		route, err := s.routes.tabRoute(tab.Slug)
		if err != nil {
			return NavigationContext{}, err
		}
		nav.Tabs = append(nav.Tabs, NavigationItem{
			Title: documentTitle(tab),
			URL:   s.href(route),
			Icon:  tab.FrontMatter.Icon,
		})
	}

	categories, err := s.taxonomyLinks(index.Categories, routeCategory)
	if err != nil {
		return NavigationContext{}, err
	}
	tags, err := s.taxonomyLinks(index.Tags, routeTag)
	if err != nil {
		return NavigationContext{}, err
	}
	nav.Categories = categories
	nav.Tags = tags
	return nav, nil
}

func (s *service) taxonomyLinks(buckets []taxonomy.Bucket, route string) ([]TaxonomyLink, error) {
	if len(buckets) == 0 {
		return nil, nil
	}
	links := make([]TaxonomyLink, 0, len(buckets))
	for _, bucket := range buckets {
		target, err := s.routes.termRoute(route, bucket.Slug)
		if err != nil {
			return nil, err
		}
		links = append(links, TaxonomyLink{
			Name:  bucket.Name,
			Slug:  bucket.Slug,
			URL:   s.href(target),
			Count: len(bucket.Docs),
		})
	}
	return links, nil
}

// activateTabs returns a copy of the tab bar with the entry matching the
// current page marked active.
func activateTabs(items []NavigationItem, pageURL string) []NavigationItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]NavigationItem, len(items))
	copy(out, items)
	for i := range out {
		out[i].Active = out[i].URL == pageURL
	}
	return out
}

// linkIndex keys taxonomy links by lowercased name and by slug so documents
// can resolve their declared terms to canonical bucket links.
func linkIndex(links []TaxonomyLink) map[string]TaxonomyLink {
	if len(links) == 0 {
		return nil
	}
	idx := make(map[string]TaxonomyLink, len(links)*2)
	for _, link := range links {
		idx[strings.ToLower(link.Name)] = link
		idx[link.Slug] = link
	}
	return idx
}

func lookupTerms(idx map[string]TaxonomyLink, names []string) []TaxonomyLink {
	if len(names) == 0 || len(idx) == 0 {
		return nil
	}
	out := make([]TaxonomyLink, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if link, ok := idx[key]; ok {
			out = append(out, link)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (s *service) pageContext(doc *interfaces.Document, href string, categories, tags map[string]TaxonomyLink) PageContext {
	author := strings.TrimSpace(doc.FrontMatter.Author)
	if author == "" {
		author = strings.TrimSpace(s.cfg.Site.Author)
	}
	return PageContext{
		Title:      documentTitle(doc),
		Author:     author,
		Icon:       doc.FrontMatter.Icon,
		Kind:       string(doc.Kind),
		URL:        href,
		Date:       doc.PublishedAt,
		Modified:   doc.LastModified,
		Pinned:     doc.FrontMatter.Pin,
		Categories: lookupTerms(categories, doc.FrontMatter.Categories),
		Tags:       lookupTerms(tags, doc.FrontMatter.Tags),
		Content:    htmltemplate.HTML(doc.BodyHTML),
		Custom:     doc.FrontMatter.Custom,
	}
}

func (s *service) postSummaries(docs []*interfaces.Document, hrefs map[string]string, categories, tags map[string]TaxonomyLink) []PostSummary {
	if len(docs) == 0 {
		return nil
	}
	out := make([]PostSummary, 0, len(docs))
	for _, doc := range docs {
		href, ok := hrefs[doc.FilePath]
		if !ok {
			continue
		}
		out = append(out, PostSummary{
			Title:      documentTitle(doc),
			URL:        href,
			Author:     strings.TrimSpace(doc.FrontMatter.Author),
			Date:       doc.SortTime(),
			Pinned:     doc.FrontMatter.Pin,
			Categories: lookupTerms(categories, doc.FrontMatter.Categories),
			Tags:       lookupTerms(tags, doc.FrontMatter.Tags),
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func documentTitle(doc *interfaces.Document) string {
	if title := strings.TrimSpace(doc.FrontMatter.Title); title != "" {
		return title
	}
	return doc.Slug
}

func buildThemeContext(selection *gotheme.Selection, assetURL func(string) string) ThemeContext {
	if assetURL == nil {
		assetURL = func(string) string { return "" }
	}
	if selection == nil {
		return ThemeContext{
			Tokens:   map[string]string{},
			CSSVars:  map[string]string{},
			AssetURL: assetURL,
		}
	}
	return ThemeContext{
		Name:     selection.Theme,
		Variant:  selection.Variant,
		Tokens:   selection.Tokens(),
		CSSVars:  selection.CSSVariables(""),
		AssetURL: assetURL,
	}
}

func documentMetadata(doc *interfaces.Document, layout, theme, navigation string) DependencyMetadata {
	sources := map[string]string{
		"document": joinParts(
			doc.FilePath,
			doc.Slug,
			hex.EncodeToString(doc.Checksum),
			doc.LastModified.UTC().Format(time.RFC3339Nano),
		),
		"layout": layout,
	}
	if theme != "" {
		sources["theme"] = theme
	}
	if navigation != "" {
		sources["navigation"] = navigation
	}
	return DependencyMetadata{
		Sources:      sources,
		Hash:         hashSources(sources),
		LastModified: doc.LastModified,
	}
}

func listingMetadata(kind, slug, layout string, docs []*interfaces.Document, theme, navigation string) DependencyMetadata {
	members := make([]string, 0, len(docs))
	var last time.Time
	for _, doc := range docs {
		members = append(members, joinParts(doc.FilePath, hex.EncodeToString(doc.Checksum)))
		if doc.LastModified.After(last) {
			last = doc.LastModified
		}
	}
	sort.Strings(members)

	sources := map[string]string{
		"listing": joinParts(kind, slug),
		"members": hashStrings(members),
		"layout":  layout,
	}
	if theme != "" {
		sources["theme"] = theme
	}
	if navigation != "" {
		sources["navigation"] = navigation
	}
	return DependencyMetadata{
		Sources:      sources,
		Hash:         hashSources(sources),
		LastModified: last,
	}
}

// navigationFingerprint summarizes the cross-link surface so a taxonomy or
// tab change invalidates every page that embeds the navigation.
func navigationFingerprint(nav NavigationContext) string {
	values := make([]string, 0, len(nav.Tabs)+len(nav.Categories)+len(nav.Tags))
	for _, tab := range nav.Tabs {
		values = append(values, joinParts("tab", tab.Title, tab.URL, tab.Icon))
	}
	for _, link := range nav.Categories {
		values = append(values, joinParts("category", link.Name, link.URL, strconv.Itoa(link.Count)))
	}
	for _, link := range nav.Tags {
		values = append(values, joinParts("tag", link.Name, link.URL, strconv.Itoa(link.Count)))
	}
	sort.Strings(values)
	return hashStrings(values)
}

func themeFingerprint(selection *gotheme.Selection) string {
	if selection == nil {
		return ""
	}
	version := ""
	if selection.Manifest != nil {
		version = selection.Manifest.Version
	}
	return joinParts(selection.Theme, selection.Variant, version)
}

func joinParts(parts ...string) string {
	return strings.Join(parts, "|")
}

func hashStrings(values []string) string {
	if len(values) == 0 {
		return ""
	}
	hasher := sha256.New()
	for _, value := range values {
		hasher.Write([]byte(value))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

func hashSources(sources map[string]string) string {
	if len(sources) == 0 {
		return ""
	}
	keys := make([]string, 0, len(sources))
	for key := range sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	hasher := sha256.New()
	for _, key := range keys {
		hasher.Write([]byte(key))
		hasher.Write([]byte("="))
		hasher.Write([]byte(sources[key]))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

// latestModification picks the newest document timestamp so build artifacts
// carry a reproducible generation time instead of the wall clock.
func latestModification(docs []*interfaces.Document) time.Time {
	var max time.Time
	for _, doc := range docs {
		if doc.LastModified.After(max) {
			max = doc.LastModified
		}
		if doc.PublishedAt.After(max) {
			max = doc.PublishedAt
		}
	}
	return max
}
