package generator

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"

	"github.com/pagemill/pagemill/internal/templates"
)

type themeManifestLoader interface {
	Load(themePath string) (*gotheme.Manifest, error)
}

type fsThemeManifestLoader struct{}

func (fsThemeManifestLoader) Load(themePath string) (*gotheme.Manifest, error) {
	cleaned := filepath.Clean(strings.TrimSpace(themePath))
	if strings.TrimSpace(themePath) == "" {
		return nil, fmt.Errorf("theme path required")
	}

	return gotheme.LoadDir(os.DirFS(cleaned), ".")
}

type themeSelector struct {
	registry       *gotheme.MemoryRegistry
	loader         themeManifestLoader
	defaultVariant string

	mu        sync.Mutex
	manifests map[string]*gotheme.Manifest
}

func newThemeSelector(cfg ThemeSettings, loader themeManifestLoader) *themeSelector {
	if loader == nil {
		loader = fsThemeManifestLoader{}
	}
	return &themeSelector{
		registry:       gotheme.NewRegistry(),
		loader:         loader,
		defaultVariant: strings.TrimSpace(cfg.Variant),
		manifests:      map[string]*gotheme.Manifest{},
	}
}

func (s *themeSelector) Selection(themePath, name, variant string) (*gotheme.Selection, error) {
	manifest, err := s.ensureManifest(themePath, name)
	if err != nil {
		return nil, err
	}

	selector := gotheme.Selector{
		Registry:       s.registry,
		DefaultTheme:   manifest.Name,
		DefaultVariant: s.defaultVariant,
	}

	resolvedName := strings.TrimSpace(name)
	if resolvedName == "" {
		resolvedName = manifest.Name
	}
	resolvedVariant := strings.TrimSpace(variant)
	if resolvedVariant == "" {
		resolvedVariant = s.defaultVariant
	}

	selection, err := selector.Select(resolvedName, resolvedVariant)
	if err != nil {
		return nil, fmt.Errorf("select theme %s: %w", resolvedName, err)
	}
	return selection, nil
}

func (s *themeSelector) ensureManifest(themePath, name string) (*gotheme.Manifest, error) {
	key := filepath.Clean(strings.TrimSpace(themePath))

	s.mu.Lock()
	defer s.mu.Unlock()

	if manifest, ok := s.manifests[key]; ok {
		return manifest, nil
	}

	manifest, err := s.loader.Load(themePath)
	if err != nil {
		return nil, fmt.Errorf("load theme manifest from %s: %w", themePath, err)
	}

	normalized := *manifest
	if trimmed := strings.TrimSpace(name); trimmed != "" && !strings.EqualFold(normalized.Name, trimmed) {
		normalized.Name = trimmed
	}
	if strings.TrimSpace(normalized.Name) == "" {
		return nil, fmt.Errorf("theme name required for manifest registration")
	}

	if err := s.registry.Register(&normalized); err != nil {
		return nil, fmt.Errorf("register theme manifest: %w", err)
	}
	s.manifests[key] = &normalized
	return &normalized, nil
}

// resolveTheme picks the layout source for this build: a configured theme
// directory backed by a go-theme manifest, or the embedded default layouts
// when no theme is configured.
func (s *service) resolveTheme() (*gotheme.Selection, fs.FS, error) {
	themePath := strings.TrimSpace(s.cfg.Theme.Path)
	if themePath == "" {
		return nil, templates.DefaultFS(), nil
	}

	selection, err := s.themes.Selection(themePath, s.cfg.Theme.Name, s.cfg.Theme.Variant)
	if err != nil {
		return nil, nil, fmt.Errorf("generator: %w", err)
	}
	return selection, os.DirFS(filepath.Clean(themePath)), nil
}

// themeAssetURL builds the asset link resolver templates call through
// {{.Theme.AssetURL "key"}}. Manifest-declared assets win; everything else
// falls back to the conventional assets directory.
func (s *service) themeAssetURL(selection *gotheme.Selection) func(string) string {
	return func(key string) string {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			return ""
		}
		if selection != nil {
			if asset, err := selection.Asset(trimmed); err == nil && strings.TrimSpace(asset) != "" {
				return s.href(assetRoute(asset))
			}
		}
		return s.href(assetRoute(path.Join(assetsDir, trimmed)))
	}
}

func assetRoute(rel string) string {
	cleaned := path.Clean("/" + strings.TrimSpace(rel))
	if cleaned == "/" || cleaned == "." {
		return "/"
	}
	return cleaned
}
