package pagemill

import "github.com/pagemill/pagemill/internal/runtimeconfig"

var (
	ErrSourceDirRequired    = runtimeconfig.ErrSourceDirRequired
	ErrOutputDirRequired    = runtimeconfig.ErrOutputDirRequired
	ErrOutputInsideSource   = runtimeconfig.ErrOutputInsideSource
	ErrWorkersInvalid       = runtimeconfig.ErrWorkersInvalid
	ErrFeedLimitInvalid     = runtimeconfig.ErrFeedLimitInvalid
	ErrBaseURLInvalid       = runtimeconfig.ErrBaseURLInvalid
	ErrLoggingLevelInvalid  = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config           = runtimeconfig.Config
	SiteConfig       = runtimeconfig.SiteConfig
	ContentConfig    = runtimeconfig.ContentConfig
	MarkdownConfig   = runtimeconfig.MarkdownConfig
	BuildConfig      = runtimeconfig.BuildConfig
	ThemeConfig      = runtimeconfig.ThemeConfig
	NavigationConfig = runtimeconfig.NavigationConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
)

// DefaultConfig returns the conventional blog-layout defaults.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
