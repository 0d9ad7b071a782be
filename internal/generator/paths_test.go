package generator

import (
	"strings"
	"testing"
	"time"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/pagemill/pagemill/pkg/interfaces"
)

func TestDocumentRouteShapes(t *testing.T) {
	nav, err := newNavigator(nil)
	if err != nil {
		t.Fatalf("new navigator: %v", err)
	}

	published := time.Date(2024, 3, 5, 18, 45, 0, 0, time.UTC)
	post := docFixture("_posts/2024-03-05-hello-world.md", "hello-world", interfaces.KindPost, published)

	route, err := nav.documentRoute(post)
	if err != nil {
		t.Fatalf("post route: %v", err)
	}
	if route != "/2024/03/05/hello-world/" {
		t.Fatalf("expected zero-padded dated route, got %q", route)
	}

	tab := docFixture("_tabs/about.md", "about", interfaces.KindTab, time.Time{})
	route, err = nav.documentRoute(tab)
	if err != nil {
		t.Fatalf("tab route: %v", err)
	}
	if route != "/about/" {
		t.Fatalf("expected flat tab route, got %q", route)
	}

	undated := docFixture("_posts/2024-03-05-hello.md", "hello", interfaces.KindPost, time.Time{})
	if _, err := nav.documentRoute(undated); err == nil {
		t.Fatalf("expected error for post without publication date")
	}

	unknown := docFixture("misc/readme.md", "readme", "memo", time.Time{})
	if _, err := nav.documentRoute(unknown); err == nil {
		t.Fatalf("expected error for unroutable document kind")
	}
}

func TestTermAndOverviewRoutes(t *testing.T) {
	nav, err := newNavigator(nil)
	if err != nil {
		t.Fatalf("new navigator: %v", err)
	}

	route, err := nav.termRoute(routeCategory, "go-tips")
	if err != nil {
		t.Fatalf("category route: %v", err)
	}
	if route != "/categories/go-tips/" {
		t.Fatalf("unexpected category route %q", route)
	}

	route, err = nav.termRoute(routeTag, "release")
	if err != nil {
		t.Fatalf("tag route: %v", err)
	}
	if route != "/tags/release/" {
		t.Fatalf("unexpected tag route %q", route)
	}

	route, err = nav.overviewRoute(routeCategories)
	if err != nil {
		t.Fatalf("categories overview: %v", err)
	}
	if route != "/categories/" {
		t.Fatalf("unexpected categories route %q", route)
	}

	if _, err := nav.build("missing-route", nil); err == nil {
		t.Fatalf("expected error for unknown route name")
	}
}

func TestNewNavigatorRejectsMissingGroup(t *testing.T) {
	cfg := &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{Name: "admin", Paths: map[string]string{"home": "/"}},
		},
	}
	if _, err := newNavigator(cfg); err == nil {
		t.Fatalf("expected error when site group is absent")
	}
}

func TestNavigatorStripsConfiguredHost(t *testing.T) {
	cfg := &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    siteRouteGroup,
				BaseURL: "https://example.com",
				Paths: map[string]string{
					routeHome:       "/",
					routePost:       "/blog/:year/:month/:day/:slug/",
					routeTab:        "/:slug/",
					routeCategories: "/categories/",
					routeCategory:   "/categories/:slug/",
					routeTags:       "/tags/",
					routeTag:        "/tags/:slug/",
				},
			},
		},
	}
	nav, err := newNavigator(cfg)
	if err != nil {
		t.Fatalf("new navigator: %v", err)
	}

	post := docFixture("_posts/2024-03-05-hello.md", "hello", interfaces.KindPost, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	route, err := nav.documentRoute(post)
	if err != nil {
		t.Fatalf("post route: %v", err)
	}
	if strings.Contains(route, "example.com") {
		t.Fatalf("expected host stripped from route, got %q", route)
	}
	if route != "/blog/2024/03/05/hello/" {
		t.Fatalf("unexpected customized route %q", route)
	}
}

func TestNormalizeRoute(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "/"},
		{"root", "/", "/"},
		{"missing slashes", "about", "/about/"},
		{"redundant segments", "/a//b/../c/", "/a/c/"},
		{"absolute URL", "https://example.com/blog/post", "/blog/post/"},
		{"whitespace", "  /about/  ", "/about/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeRoute(tc.in); got != tc.want {
				t.Fatalf("normalizeRoute(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestBuildOutputPath(t *testing.T) {
	if got := buildOutputPath("/"); got != "index.html" {
		t.Fatalf("expected root index, got %q", got)
	}
	if got := buildOutputPath("/2024/03/05/hello/"); got != "2024/03/05/hello/index.html" {
		t.Fatalf("unexpected nested output %q", got)
	}
	if got := buildOutputPath("/about/"); got != "about/index.html" {
		t.Fatalf("unexpected tab output %q", got)
	}
}

func TestJoinOutputPathKeepsAbsoluteBase(t *testing.T) {
	if got := joinOutputPath("/tmp/site", "about/index.html"); got != "/tmp/site/about/index.html" {
		t.Fatalf("unexpected join %q", got)
	}
	if got := joinOutputPath("_site", "index.html"); got != "_site/index.html" {
		t.Fatalf("unexpected join %q", got)
	}
	if got := joinOutputPath("", "index.html"); got != "index.html" {
		t.Fatalf("unexpected join %q", got)
	}
	if got := joinOutputPath("_site", ""); got != "_site" {
		t.Fatalf("unexpected join %q", got)
	}
}

func TestNormalizeOutputDir(t *testing.T) {
	if got := normalizeOutputDir(" /var/www/site/ "); got != "/var/www/site" {
		t.Fatalf("expected absolute dir preserved, got %q", got)
	}
	if got := normalizeOutputDir("_site/"); got != "_site" {
		t.Fatalf("expected trailing slash trimmed, got %q", got)
	}
	if got := normalizeOutputDir(""); got != "" {
		t.Fatalf("expected empty dir untouched, got %q", got)
	}
}

func TestAbsoluteURL(t *testing.T) {
	if got := absoluteURL("https://example.com", "/about/"); got != "https://example.com/about/" {
		t.Fatalf("unexpected absolute URL %q", got)
	}
	if got := absoluteURL("https://example.com/", "about/"); got != "https://example.com/about/" {
		t.Fatalf("expected separators repaired, got %q", got)
	}
	if got := absoluteURL("", "/about/"); got != "http://localhost/about/" {
		t.Fatalf("expected fallback host, got %q", got)
	}
}
