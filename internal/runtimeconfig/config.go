package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

var ErrSourceDirRequired = errors.New("pagemill config: content source directory is required")
var ErrOutputDirRequired = errors.New("pagemill config: output directory is required")
var ErrOutputInsideSource = errors.New("pagemill config: output directory must not equal the source directory")
var ErrWorkersInvalid = errors.New("pagemill config: worker count must be zero or positive")
var ErrFeedLimitInvalid = errors.New("pagemill config: feed limit must be zero or positive")
var ErrBaseURLInvalid = errors.New("pagemill config: base URL must be absolute (http or https)")
var ErrLoggingLevelInvalid = errors.New("pagemill config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("pagemill config: logging format is invalid")

// Config aggregates runtime settings for the build pipeline. Fields
// intentionally use simple types so host applications can populate them from
// any configuration source.
type Config struct {
	Site       SiteConfig
	Content    ContentConfig
	Markdown   MarkdownConfig
	Build      BuildConfig
	Theme      ThemeConfig
	Navigation NavigationConfig
	Logging    LoggingConfig
}

// SiteConfig captures site-wide metadata injected into layouts and feeds.
type SiteConfig struct {
	Title       string
	Description string
	Author      string
	BaseURL     string
	Language    string
}

// ContentConfig captures where and how source documents are discovered.
type ContentConfig struct {
	SourceDir string
	PostsDir  string
	TabsDir   string
	Pattern   string
}

// MarkdownConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownConfig struct {
	Extensions []string
	HardWraps  bool
	Highlight  string
}

// BuildConfig captures behaviour for the site assembler.
type BuildConfig struct {
	OutputDir       string
	Strict          bool
	CleanBuild      bool
	Incremental     bool
	CopyAssets      bool
	GenerateSitemap bool
	GenerateRobots  bool
	GenerateFeeds   bool
	Workers         int
	FeedLimit       int
}

// ThemeConfig points at an optional theme directory overriding the embedded
// default layouts and assets.
type ThemeConfig struct {
	Path    string
	Name    string
	Variant string
}

// NavigationConfig lets hosts replace the default route shapes used for
// permalinks and cross-links.
type NavigationConfig struct {
	RouteConfig *urlkit.Config
}

// LoggingConfig captures provider options for runtime logging.
type LoggingConfig struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults for a conventional blog layout.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Language: "en",
		},
		Content: ContentConfig{
			SourceDir: ".",
			PostsDir:  "_posts",
			TabsDir:   "_tabs",
			Pattern:   "*.md",
		},
		Markdown: MarkdownConfig{
			Highlight: "monokai",
		},
		Build: BuildConfig{
			OutputDir:       "_site",
			CopyAssets:      true,
			GenerateSitemap: true,
			GenerateRobots:  true,
			GenerateFeeds:   true,
			Workers:         0,
			FeedLimit:       0,
		},
		Theme: ThemeConfig{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	source := strings.TrimSpace(cfg.Content.SourceDir)
	if source == "" {
		return ErrSourceDirRequired
	}
	output := strings.TrimSpace(cfg.Build.OutputDir)
	if output == "" {
		return ErrOutputDirRequired
	}
	if normalizePath(source) == normalizePath(output) {
		return ErrOutputInsideSource
	}
	if cfg.Build.Workers < 0 {
		return ErrWorkersInvalid
	}
	if cfg.Build.FeedLimit < 0 {
		return ErrFeedLimitInvalid
	}
	if base := strings.TrimSpace(cfg.Site.BaseURL); base != "" {
		if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
			return fmt.Errorf("%w: %s", ErrBaseURLInvalid, base)
		}
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	return nil
}

func normalizePath(path string) string {
	cleaned := strings.TrimSpace(path)
	cleaned = strings.TrimSuffix(cleaned, "/")
	if cleaned == "" {
		return "."
	}
	return cleaned
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
