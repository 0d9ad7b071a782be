package generator

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/pagemill/pagemill/pkg/interfaces"
)

const (
	siteRouteGroup = "site"

	routeHome       = "home"
	routePost       = "post"
	routeTab        = "tab"
	routeCategory   = "category"
	routeCategories = "categories"
	routeTag        = "tag"
	routeTags       = "tags"
)

// defaultRouteConfig declares the conventional permalink shapes: dated post
// routes, flat tab routes, and the taxonomy listing tree. Hosts can replace
// the table wholesale through configuration as long as the route names stay.
func defaultRouteConfig() *urlkit.Config {
	return &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name: siteRouteGroup,
				Paths: map[string]string{
					routeHome:       "/",
					routePost:       "/:year/:month/:day/:slug/",
					routeTab:        "/:slug/",
					routeCategories: "/categories/",
					routeCategory:   "/categories/:slug/",
					routeTags:       "/tags/",
					routeTag:        "/tags/:slug/",
				},
			},
		},
	}
}

// navigator resolves document routes through a urlkit route table.
type navigator struct {
	group *urlkit.Group
}

func newNavigator(cfg *urlkit.Config) (*navigator, error) {
	if cfg == nil {
		cfg = defaultRouteConfig()
	}
	manager := urlkit.NewRouteManager(cfg)
	group, err := lookupRouteGroup(manager, siteRouteGroup)
	if err != nil {
		return nil, err
	}
	return &navigator{group: group}, nil
}

// lookupRouteGroup guards against urlkit's panic on unknown group names so a
// misconfigured route table surfaces as an error instead of a crash.
func lookupRouteGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			group = nil
			err = fmt.Errorf("generator: route group %q is not configured: %v", name, recovered)
		}
	}()
	group = manager.Group(name)
	if group == nil {
		return nil, fmt.Errorf("generator: route group %q is not configured", name)
	}
	return group, nil
}

func (n *navigator) homeRoute() (string, error) {
	return n.build(routeHome, nil)
}

func (n *navigator) postRoute(doc *interfaces.Document) (string, error) {
	published := doc.PublishedAt.UTC()
	return n.build(routePost, map[string]string{
		"year":  published.Format("2006"),
		"month": published.Format("01"),
		"day":   published.Format("02"),
		"slug":  doc.Slug,
	})
}

func (n *navigator) tabRoute(slug string) (string, error) {
	return n.build(routeTab, map[string]string{"slug": slug})
}

// termRoute resolves a category or tag bucket route by route name.
func (n *navigator) termRoute(route, slug string) (string, error) {
	return n.build(route, map[string]string{"slug": slug})
}

// overviewRoute resolves the categories or tags index route.
func (n *navigator) overviewRoute(route string) (string, error) {
	return n.build(route, nil)
}

func (n *navigator) documentRoute(doc *interfaces.Document) (string, error) {
	switch doc.Kind {
	case interfaces.KindPost:
		if doc.PublishedAt.IsZero() {
			return "", fmt.Errorf("generator: post %s has no publication date", doc.FilePath)
		}
		return n.postRoute(doc)
	case interfaces.KindTab:
		return n.tabRoute(doc.Slug)
	default:
		return "", fmt.Errorf("generator: no route for document kind %q", doc.Kind)
	}
}

func (n *navigator) build(route string, params map[string]string) (target string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			target = ""
			err = fmt.Errorf("generator: route %q is not configured: %v", route, recovered)
		}
	}()

	builder := n.group.Builder(route)
	for key, value := range params {
		builder = builder.WithParam(key, value)
	}
	raw, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("generator: build route %q: %w", route, err)
	}
	return normalizeRoute(raw), nil
}

// normalizeRoute reduces a built URL to a clean site-relative route with a
// leading and trailing slash. Absolute URLs keep only their path so the route
// table may carry a base URL without leaking it into output paths.
func normalizeRoute(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "/"
	}
	if parsed, parseErr := url.Parse(trimmed); parseErr == nil && parsed.Host != "" {
		trimmed = parsed.Path
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "/" || cleaned == "." {
		return "/"
	}
	return cleaned + "/"
}

// buildOutputPath maps a route onto its artifact path inside the output tree.
// Every route becomes a directory with an index.html so web servers need no
// rewrite rules.
func buildOutputPath(route string) string {
	trimmed := strings.Trim(strings.TrimSpace(route), "/")
	if trimmed == "" {
		return "index.html"
	}
	return trimmed + "/index.html"
}

// joinOutputPath anchors a slash-separated artifact path beneath the output
// directory while keeping the slash form writers expect.
func joinOutputPath(base, rel string) string {
	cleanedBase := strings.TrimSpace(base)
	cleanedRel := strings.TrimSpace(rel)
	if cleanedBase == "" {
		return cleanedRel
	}
	if cleanedRel == "" {
		return cleanedBase
	}
	return path.Join(cleanedBase, cleanedRel)
}

// absoluteURL joins a base URL and a site-relative route for artifacts that
// require absolute locations (sitemap, feeds).
func absoluteURL(base, route string) string {
	targetBase := baseURLWithFallback(base)
	normalized := strings.TrimSpace(route)
	if normalized == "" {
		normalized = "/"
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return targetBase + normalized
}
