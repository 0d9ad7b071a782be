package generator

import (
	"crypto/sha256"
	"testing"
	"time"

	"github.com/pagemill/pagemill/internal/identity"
	"github.com/pagemill/pagemill/internal/taxonomy"
	"github.com/pagemill/pagemill/pkg/interfaces"
)

func TestBuildNavigationOrdersTabsAfterHome(t *testing.T) {
	svc := newTestService(t, Config{})

	first := 1
	index := &taxonomy.Index{
		Tabs: []*interfaces.Document{
			docFixture("_tabs/about.md", "about", interfaces.KindTab, time.Time{}, func(doc *interfaces.Document) {
				doc.FrontMatter.Title = "About"
				doc.FrontMatter.Order = &first
				doc.FrontMatter.Icon = "info"
			}),
			docFixture("_tabs/archive.md", "archive", interfaces.KindTab, time.Time{}, func(doc *interfaces.Document) {
				doc.FrontMatter.Title = "Archive"
			}),
		},
		Categories: []taxonomy.Bucket{
			{Name: "Go Tips", Slug: "go-tips", Docs: []*interfaces.Document{
				docFixture("_posts/2024-03-05-hello.md", "hello", interfaces.KindPost, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)),
			}},
		},
		Tags: []taxonomy.Bucket{
			{Name: "release", Slug: "release", Docs: []*interfaces.Document{
				docFixture("_posts/2024-03-05-hello.md", "hello", interfaces.KindPost, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)),
			}},
		},
	}

	nav, err := svc.buildNavigation(index)
	if err != nil {
		t.Fatalf("build navigation: %v", err)
	}

	if len(nav.Tabs) != 3 {
		t.Fatalf("expected home plus two tabs, got %d", len(nav.Tabs))
	}
	if nav.Tabs[0].Title != "Home" || nav.Tabs[0].URL != "/" {
		t.Fatalf("expected home entry first, got %+v", nav.Tabs[0])
	}
	if nav.Tabs[1].Title != "About" || nav.Tabs[1].URL != "/about/" {
		t.Fatalf("expected about tab second, got %+v", nav.Tabs[1])
	}
	if nav.Tabs[1].Icon != "info" {
		t.Fatalf("expected tab icon to survive, got %q", nav.Tabs[1].Icon)
	}
	if nav.Tabs[2].URL != "/archive/" {
		t.Fatalf("expected archive tab last, got %+v", nav.Tabs[2])
	}

	if len(nav.Categories) != 1 {
		t.Fatalf("expected one category link, got %d", len(nav.Categories))
	}
	category := nav.Categories[0]
	if category.Name != "Go Tips" || category.Slug != "go-tips" {
		t.Fatalf("unexpected category link %+v", category)
	}
	if category.URL != "/categories/go-tips/" {
		t.Fatalf("unexpected category URL %q", category.URL)
	}
	if category.Count != 1 {
		t.Fatalf("expected category count 1, got %d", category.Count)
	}
	if len(nav.Tags) != 1 || nav.Tags[0].URL != "/tags/release/" {
		t.Fatalf("unexpected tag links %+v", nav.Tags)
	}
}

func TestBuildNavigationPrefixesBaseURL(t *testing.T) {
	svc := newTestService(t, Config{Site: SiteMetadata{BaseURL: "https://example.com/"}})

	index := &taxonomy.Index{
		Tabs: []*interfaces.Document{
			docFixture("_tabs/about.md", "about", interfaces.KindTab, time.Time{}),
		},
		Categories: []taxonomy.Bucket{},
		Tags:       []taxonomy.Bucket{},
	}

	nav, err := svc.buildNavigation(index)
	if err != nil {
		t.Fatalf("build navigation: %v", err)
	}
	if nav.Tabs[0].URL != "https://example.com/" {
		t.Fatalf("expected absolute home link, got %q", nav.Tabs[0].URL)
	}
	if nav.Tabs[1].URL != "https://example.com/about/" {
		t.Fatalf("expected absolute tab link, got %q", nav.Tabs[1].URL)
	}
}

func TestActivateTabsMarksCurrentPage(t *testing.T) {
	items := []NavigationItem{
		{Title: "Home", URL: "/"},
		{Title: "About", URL: "/about/"},
	}

	activated := activateTabs(items, "/about/")
	if !activated[1].Active {
		t.Fatalf("expected about tab active, got %+v", activated)
	}
	if activated[0].Active {
		t.Fatalf("expected home tab inactive, got %+v", activated)
	}
	if items[1].Active {
		t.Fatalf("expected source slice untouched, got %+v", items)
	}
	if activateTabs(nil, "/") != nil {
		t.Fatalf("expected nil tabs to stay nil")
	}
}

func TestLinkIndexResolvesNamesAndSlugs(t *testing.T) {
	links := []TaxonomyLink{
		{Name: "Go Tips", Slug: "go-tips", URL: "/categories/go-tips/"},
		{Name: "Release", Slug: "release", URL: "/categories/release/"},
	}
	idx := linkIndex(links)

	terms := lookupTerms(idx, []string{"go tips", "go-tips", "  Release ", "missing"})
	if len(terms) != 3 {
		t.Fatalf("expected three resolved terms, got %d: %+v", len(terms), terms)
	}
	if terms[0].Slug != "go-tips" || terms[1].Slug != "go-tips" {
		t.Fatalf("expected name and slug lookups to hit the same bucket, got %+v", terms)
	}
	if terms[2].Name != "Release" {
		t.Fatalf("expected trimmed name lookup, got %+v", terms[2])
	}

	if lookupTerms(idx, nil) != nil {
		t.Fatalf("expected nil terms for empty names")
	}
	if lookupTerms(nil, []string{"go-tips"}) != nil {
		t.Fatalf("expected nil terms for empty index")
	}
	if lookupTerms(idx, []string{"missing"}) != nil {
		t.Fatalf("expected nil terms when nothing resolves")
	}
}

func TestPageContextFallsBackToSiteAuthor(t *testing.T) {
	svc := newTestService(t, Config{Site: SiteMetadata{Author: "Site Crew"}})

	published := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	doc := docFixture("_posts/2024-03-05-hello.md", "hello", interfaces.KindPost, published, func(doc *interfaces.Document) {
		doc.FrontMatter.Title = "Hello"
		doc.FrontMatter.Categories = []string{"Go Tips"}
		doc.BodyHTML = []byte("<p>hi</p>")
	})
	catIdx := linkIndex([]TaxonomyLink{{Name: "Go Tips", Slug: "go-tips", URL: "/categories/go-tips/"}})

	page := svc.pageContext(doc, "/2024/03/05/hello/", catIdx, nil)
	if page.Author != "Site Crew" {
		t.Fatalf("expected site author fallback, got %q", page.Author)
	}
	if page.Title != "Hello" || page.URL != "/2024/03/05/hello/" {
		t.Fatalf("unexpected page context %+v", page)
	}
	if !page.Date.Equal(published) {
		t.Fatalf("expected publication date, got %v", page.Date)
	}
	if len(page.Categories) != 1 || page.Categories[0].URL != "/categories/go-tips/" {
		t.Fatalf("expected resolved category chip, got %+v", page.Categories)
	}
	if string(page.Content) != "<p>hi</p>" {
		t.Fatalf("expected rendered body, got %q", page.Content)
	}

	doc.FrontMatter.Author = "Guest"
	page = svc.pageContext(doc, "/2024/03/05/hello/", catIdx, nil)
	if page.Author != "Guest" {
		t.Fatalf("expected document author to win, got %q", page.Author)
	}
}

func TestPostSummariesSkipDocsWithoutRoutes(t *testing.T) {
	svc := newTestService(t, Config{})

	published := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	routed := docFixture("_posts/2024-03-05-hello.md", "hello", interfaces.KindPost, published, func(doc *interfaces.Document) {
		doc.FrontMatter.Title = "Hello"
	})
	unrouted := docFixture("_posts/2024-04-01-lost.md", "lost", interfaces.KindPost, published.AddDate(0, 1, 0))

	hrefs := map[string]string{routed.FilePath: "/2024/03/05/hello/"}
	summaries := svc.postSummaries([]*interfaces.Document{routed, unrouted}, hrefs, nil, nil)
	if len(summaries) != 1 {
		t.Fatalf("expected one summary, got %d", len(summaries))
	}
	if summaries[0].Title != "Hello" || summaries[0].URL != "/2024/03/05/hello/" {
		t.Fatalf("unexpected summary %+v", summaries[0])
	}
	if !summaries[0].Date.Equal(routed.SortTime()) {
		t.Fatalf("expected sort time, got %v", summaries[0].Date)
	}

	if svc.postSummaries(nil, hrefs, nil, nil) != nil {
		t.Fatalf("expected nil summaries for empty input")
	}
	if svc.postSummaries([]*interfaces.Document{unrouted}, hrefs, nil, nil) != nil {
		t.Fatalf("expected nil summaries when nothing resolves")
	}
}

func TestDocumentMetadataTracksDependencies(t *testing.T) {
	published := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	doc := docFixture("_posts/2024-03-05-hello.md", "hello", interfaces.KindPost, published)

	base := documentMetadata(doc, "post", "", "nav-a")
	same := documentMetadata(doc, "post", "", "nav-a")
	if base.Hash == "" {
		t.Fatalf("expected non-empty hash")
	}
	if base.Hash != same.Hash {
		t.Fatalf("expected identical inputs to hash identically")
	}
	if !base.LastModified.Equal(doc.LastModified) {
		t.Fatalf("expected document modification time, got %v", base.LastModified)
	}

	changed := docFixture("_posts/2024-03-05-hello.md", "hello", interfaces.KindPost, published, func(d *interfaces.Document) {
		sum := sha256.Sum256([]byte("edited"))
		d.Checksum = sum[:]
	})
	if documentMetadata(changed, "post", "", "nav-a").Hash == base.Hash {
		t.Fatalf("expected content change to invalidate hash")
	}
	if documentMetadata(doc, "post", "", "nav-b").Hash == base.Hash {
		t.Fatalf("expected navigation change to invalidate hash")
	}
	if documentMetadata(doc, "page", "", "nav-a").Hash == base.Hash {
		t.Fatalf("expected layout change to invalidate hash")
	}
	if documentMetadata(doc, "post", "aurora|dark|1.0.0", "nav-a").Hash == base.Hash {
		t.Fatalf("expected theme change to invalidate hash")
	}
}

func TestListingMetadataIgnoresMemberOrder(t *testing.T) {
	published := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	first := docFixture("_posts/2024-03-05-hello.md", "hello", interfaces.KindPost, published)
	second := docFixture("_posts/2024-04-01-next.md", "next", interfaces.KindPost, published.AddDate(0, 1, 0))

	forward := listingMetadata("category", "go-tips", "category", []*interfaces.Document{first, second}, "", "nav")
	reversed := listingMetadata("category", "go-tips", "category", []*interfaces.Document{second, first}, "", "nav")
	if forward.Hash != reversed.Hash {
		t.Fatalf("expected member order not to matter")
	}
	if !forward.LastModified.Equal(second.LastModified) {
		t.Fatalf("expected newest member modification, got %v", forward.LastModified)
	}

	other := listingMetadata("category", "go-tips", "category", []*interfaces.Document{first}, "", "nav")
	if other.Hash == forward.Hash {
		t.Fatalf("expected member set change to invalidate hash")
	}
	if listingMetadata("tag", "go-tips", "category", []*interfaces.Document{first, second}, "", "nav").Hash == forward.Hash {
		t.Fatalf("expected listing identity to participate in hash")
	}
}

func TestNavigationFingerprintReflectsLinkChanges(t *testing.T) {
	nav := NavigationContext{
		Tabs:       []NavigationItem{{Title: "Home", URL: "/"}},
		Categories: []TaxonomyLink{{Name: "Go Tips", URL: "/categories/go-tips/", Count: 2}},
		Tags:       []TaxonomyLink{{Name: "release", URL: "/tags/release/", Count: 1}},
	}

	base := navigationFingerprint(nav)
	if base == "" {
		t.Fatalf("expected non-empty fingerprint")
	}
	if navigationFingerprint(nav) != base {
		t.Fatalf("expected stable fingerprint for identical navigation")
	}

	moreDocs := nav
	moreDocs.Categories = []TaxonomyLink{{Name: "Go Tips", URL: "/categories/go-tips/", Count: 3}}
	if navigationFingerprint(moreDocs) == base {
		t.Fatalf("expected count change to alter fingerprint")
	}

	renamedTab := nav
	renamedTab.Tabs = []NavigationItem{{Title: "Start", URL: "/"}}
	if navigationFingerprint(renamedTab) == base {
		t.Fatalf("expected tab rename to alter fingerprint")
	}
}

func TestLatestModificationPicksNewestTimestamp(t *testing.T) {
	if !latestModification(nil).IsZero() {
		t.Fatalf("expected zero time for empty corpus")
	}

	older := docFixture("_posts/2024-03-05-hello.md", "hello", interfaces.KindPost, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	newer := docFixture("_tabs/about.md", "about", interfaces.KindTab, time.Time{}, func(doc *interfaces.Document) {
		doc.LastModified = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	})

	got := latestModification([]*interfaces.Document{older, newer})
	if !got.Equal(newer.LastModified) {
		t.Fatalf("expected newest modification, got %v", got)
	}

	future := docFixture("_posts/2024-07-01-soon.md", "soon", interfaces.KindPost, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), func(doc *interfaces.Document) {
		doc.LastModified = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	})
	got = latestModification([]*interfaces.Document{older, newer, future})
	if !got.Equal(future.PublishedAt) {
		t.Fatalf("expected publication date to win when newer, got %v", got)
	}
}

func TestBuildThemeContextWithoutSelection(t *testing.T) {
	theme := buildThemeContext(nil, nil)
	if theme.Tokens == nil || theme.CSSVars == nil {
		t.Fatalf("expected empty maps instead of nil")
	}
	if theme.AssetURL == nil {
		t.Fatalf("expected usable asset URL helper")
	}
	if got := theme.AssetURL("css/site.css"); got != "" {
		t.Fatalf("expected empty asset URL without selection, got %q", got)
	}
}

func TestSiteMetadataDefaultsLanguage(t *testing.T) {
	svc := newTestService(t, Config{Site: SiteMetadata{
		Title:   "  Demo  ",
		BaseURL: "https://example.com/",
	}})

	site := svc.siteMetadata()
	if site.Title != "Demo" {
		t.Fatalf("expected trimmed title, got %q", site.Title)
	}
	if site.BaseURL != "https://example.com" {
		t.Fatalf("expected trailing slash removed, got %q", site.BaseURL)
	}
	if site.Language != "en" {
		t.Fatalf("expected default language, got %q", site.Language)
	}

	if svc.href("/about/") != "https://example.com/about/" {
		t.Fatalf("unexpected href %q", svc.href("/about/"))
	}
}

// Test fixtures ---------------------------------------------------------------

func newTestService(t *testing.T, cfg Config) *service {
	t.Helper()
	svc, err := NewService(cfg, Dependencies{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc.(*service)
}

func docFixture(filePath, slug string, kind interfaces.DocumentKind, published time.Time, mutate ...func(*interfaces.Document)) *interfaces.Document {
	sum := sha256.Sum256([]byte(filePath))
	modified := published
	if modified.IsZero() {
		modified = time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	}
	doc := &interfaces.Document{
		FilePath:     filePath,
		ID:           identity.DocumentUUID(filePath),
		Kind:         kind,
		Slug:         slug,
		Body:         []byte("body"),
		PublishedAt:  published,
		LastModified: modified,
		Checksum:     sum[:],
	}
	for _, fn := range mutate {
		fn(doc)
	}
	return doc
}
