package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pagemill "github.com/pagemill/pagemill"
)

const envPrefix = "PAGEMILL"

// flagBindings maps CLI flags onto configuration keys. A bound flag overrides
// environment and file values only when it was set on the command line.
var flagBindings = []struct {
	flag string
	key  string
}{
	{"source", "content.source_dir"},
	{"output", "build.output_dir"},
	{"log-level", "logging.level"},
	{"log-format", "logging.format"},
	{"strict", "build.strict"},
	{"incremental", "build.incremental"},
	{"clean", "build.clean_build"},
	{"workers", "build.workers"},
	{"base-url", "site.base_url"},
	{"theme", "theme.path"},
}

// loadConfig resolves the layered configuration: defaults, then an optional
// pagemill.yaml, then PAGEMILL_* environment variables, then flags present on
// cmd. It returns the config file actually read, empty when none was found.
func loadConfig(cfgFile string, cmd *cobra.Command) (pagemill.Config, string, error) {
	v := viper.New()
	setDefaults(v, pagemill.DefaultConfig())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("pagemill")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if cmd != nil {
		if err := bindFlags(v, cmd); err != nil {
			return pagemill.Config{}, "", err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return pagemill.Config{}, "", fmt.Errorf("read config: %w", err)
		}
	}

	return configFromViper(v), v.ConfigFileUsed(), nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for _, binding := range flagBindings {
		flag := cmd.Flags().Lookup(binding.flag)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(binding.key, flag); err != nil {
			return fmt.Errorf("bind flag --%s: %w", binding.flag, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper, cfg pagemill.Config) {
	v.SetDefault("site.title", cfg.Site.Title)
	v.SetDefault("site.description", cfg.Site.Description)
	v.SetDefault("site.author", cfg.Site.Author)
	v.SetDefault("site.base_url", cfg.Site.BaseURL)
	v.SetDefault("site.language", cfg.Site.Language)

	v.SetDefault("content.source_dir", cfg.Content.SourceDir)
	v.SetDefault("content.posts_dir", cfg.Content.PostsDir)
	v.SetDefault("content.tabs_dir", cfg.Content.TabsDir)
	v.SetDefault("content.pattern", cfg.Content.Pattern)

	v.SetDefault("markdown.extensions", cfg.Markdown.Extensions)
	v.SetDefault("markdown.hard_wraps", cfg.Markdown.HardWraps)
	v.SetDefault("markdown.highlight", cfg.Markdown.Highlight)

	v.SetDefault("build.output_dir", cfg.Build.OutputDir)
	v.SetDefault("build.strict", cfg.Build.Strict)
	v.SetDefault("build.clean_build", cfg.Build.CleanBuild)
	v.SetDefault("build.incremental", cfg.Build.Incremental)
	v.SetDefault("build.copy_assets", cfg.Build.CopyAssets)
	v.SetDefault("build.generate_sitemap", cfg.Build.GenerateSitemap)
	v.SetDefault("build.generate_robots", cfg.Build.GenerateRobots)
	v.SetDefault("build.generate_feeds", cfg.Build.GenerateFeeds)
	v.SetDefault("build.workers", cfg.Build.Workers)
	v.SetDefault("build.feed_limit", cfg.Build.FeedLimit)

	v.SetDefault("theme.path", cfg.Theme.Path)
	v.SetDefault("theme.name", cfg.Theme.Name)
	v.SetDefault("theme.variant", cfg.Theme.Variant)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.add_source", cfg.Logging.AddSource)
	v.SetDefault("logging.focus", cfg.Logging.Focus)
}

func configFromViper(v *viper.Viper) pagemill.Config {
	cfg := pagemill.DefaultConfig()

	cfg.Site.Title = v.GetString("site.title")
	cfg.Site.Description = v.GetString("site.description")
	cfg.Site.Author = v.GetString("site.author")
	cfg.Site.BaseURL = v.GetString("site.base_url")
	cfg.Site.Language = v.GetString("site.language")

	cfg.Content.SourceDir = v.GetString("content.source_dir")
	cfg.Content.PostsDir = v.GetString("content.posts_dir")
	cfg.Content.TabsDir = v.GetString("content.tabs_dir")
	cfg.Content.Pattern = v.GetString("content.pattern")

	cfg.Markdown.Extensions = v.GetStringSlice("markdown.extensions")
	cfg.Markdown.HardWraps = v.GetBool("markdown.hard_wraps")
	cfg.Markdown.Highlight = v.GetString("markdown.highlight")

	cfg.Build.OutputDir = v.GetString("build.output_dir")
	cfg.Build.Strict = v.GetBool("build.strict")
	cfg.Build.CleanBuild = v.GetBool("build.clean_build")
	cfg.Build.Incremental = v.GetBool("build.incremental")
	cfg.Build.CopyAssets = v.GetBool("build.copy_assets")
	cfg.Build.GenerateSitemap = v.GetBool("build.generate_sitemap")
	cfg.Build.GenerateRobots = v.GetBool("build.generate_robots")
	cfg.Build.GenerateFeeds = v.GetBool("build.generate_feeds")
	cfg.Build.Workers = v.GetInt("build.workers")
	cfg.Build.FeedLimit = v.GetInt("build.feed_limit")

	cfg.Theme.Path = v.GetString("theme.path")
	cfg.Theme.Name = v.GetString("theme.name")
	cfg.Theme.Variant = v.GetString("theme.variant")

	cfg.Logging.Level = v.GetString("logging.level")
	cfg.Logging.Format = v.GetString("logging.format")
	cfg.Logging.AddSource = v.GetBool("logging.add_source")
	cfg.Logging.Focus = v.GetStringSlice("logging.focus")

	return cfg
}
