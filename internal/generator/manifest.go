package generator

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

const (
	manifestFileName    = ".pagemill-manifest.json"
	manifestFileVersion = 1
)

// buildManifest stores metadata about the last successful build to support
// incremental runs. Timestamps inside the manifest derive from source file
// modification times, so rebuilding an unchanged tree reproduces the manifest
// byte for byte.
type buildManifest struct {
	Version     int                      `json:"version"`
	GeneratedAt time.Time                `json:"generated_at"`
	Pages       map[string]manifestPage  `json:"pages"`
	Assets      map[string]manifestAsset `json:"assets"`
}

type manifestPage struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Source       string    `json:"source,omitempty"`
	Route        string    `json:"route"`
	Output       string    `json:"output"`
	Layout       string    `json:"layout"`
	Hash         string    `json:"hash"`
	Checksum     string    `json:"checksum"`
	LastModified time.Time `json:"last_modified"`
}

type manifestAsset struct {
	Key      string `json:"key"`
	Source   string `json:"source"`
	Output   string `json:"output"`
	Checksum string `json:"checksum"`
	Size     int64  `json:"size"`
}

func newBuildManifest() *buildManifest {
	return &buildManifest{
		Version: manifestFileVersion,
		Pages:   map[string]manifestPage{},
		Assets:  map[string]manifestAsset{},
	}
}

func parseManifest(data []byte) (*buildManifest, error) {
	if len(data) == 0 {
		return newBuildManifest(), nil
	}
	var envelope struct {
		Version     int             `json:"version"`
		GeneratedAt time.Time       `json:"generated_at"`
		Pages       json.RawMessage `json:"pages"`
		Assets      json.RawMessage `json:"assets"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}

	manifest := newBuildManifest()
	if envelope.Version != 0 {
		manifest.Version = envelope.Version
	}
	manifest.GeneratedAt = envelope.GeneratedAt

	pages, err := decodeManifestEntries[manifestPage](envelope.Pages)
	if err != nil {
		return nil, fmt.Errorf("generator: parse manifest pages: %w", err)
	}
	for _, entry := range pages {
		manifest.setPage(entry)
	}

	assets, err := decodeManifestEntries[manifestAsset](envelope.Assets)
	if err != nil {
		return nil, fmt.Errorf("generator: parse manifest assets: %w", err)
	}
	for _, entry := range assets {
		manifest.setAsset(entry)
	}
	return manifest, nil
}

// decodeManifestEntries accepts both serialized forms: the sorted list the
// writer emits and the keyed map from manually edited manifests.
func decodeManifestEntries[T any](raw json.RawMessage) ([]T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var keyed map[string]T
	if err := json.Unmarshal(raw, &keyed); err != nil {
		return nil, err
	}
	out := make([]T, 0, len(keyed))
	for _, entry := range keyed {
		out = append(out, entry)
	}
	return out, nil
}

func (m *buildManifest) marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	cloned := *m
	if cloned.Version == 0 {
		cloned.Version = manifestFileVersion
	}
	// Stable ordering for deterministic output.
	type orderedManifest struct {
		Version     int             `json:"version"`
		GeneratedAt time.Time       `json:"generated_at"`
		Pages       []manifestPage  `json:"pages"`
		Assets      []manifestAsset `json:"assets"`
	}
	ordered := orderedManifest{
		Version:     cloned.Version,
		GeneratedAt: cloned.GeneratedAt,
	}
	if len(cloned.Pages) > 0 {
		ordered.Pages = make([]manifestPage, 0, len(cloned.Pages))
		for _, entry := range cloned.Pages {
			ordered.Pages = append(ordered.Pages, entry)
		}
		sort.Slice(ordered.Pages, func(i, j int) bool {
			return ordered.Pages[i].Route < ordered.Pages[j].Route
		})
	}
	if len(cloned.Assets) > 0 {
		ordered.Assets = make([]manifestAsset, 0, len(cloned.Assets))
		for _, entry := range cloned.Assets {
			ordered.Assets = append(ordered.Assets, entry)
		}
		sort.Slice(ordered.Assets, func(i, j int) bool {
			return ordered.Assets[i].Key < ordered.Assets[j].Key
		})
	}
	return json.MarshalIndent(ordered, "", "  ")
}

func (m *buildManifest) pageKey(route string) string {
	return strings.ToLower(strings.TrimSpace(route))
}

func (m *buildManifest) lookupPage(route string) (manifestPage, bool) {
	if m == nil || len(m.Pages) == 0 {
		return manifestPage{}, false
	}
	entry, ok := m.Pages[m.pageKey(route)]
	return entry, ok
}

func (m *buildManifest) setPage(entry manifestPage) {
	if m == nil {
		return
	}
	if m.Pages == nil {
		m.Pages = map[string]manifestPage{}
	}
	m.Pages[m.pageKey(entry.Route)] = entry
}

// shouldSkipPage reports whether the previous build already produced this
// page with the same dependency hash and destination.
func (m *buildManifest) shouldSkipPage(route, hash, output string) bool {
	entry, ok := m.lookupPage(route)
	if !ok {
		return false
	}
	if hash == "" || entry.Hash != hash {
		return false
	}
	if strings.TrimSpace(entry.Output) != strings.TrimSpace(output) {
		return false
	}
	return true
}

func (m *buildManifest) assetKey(source string) string {
	return strings.TrimSpace(source)
}

func (m *buildManifest) lookupAsset(source string) (manifestAsset, bool) {
	if m == nil || len(m.Assets) == 0 {
		return manifestAsset{}, false
	}
	entry, ok := m.Assets[m.assetKey(source)]
	return entry, ok
}

func (m *buildManifest) setAsset(entry manifestAsset) {
	if m == nil {
		return
	}
	if m.Assets == nil {
		m.Assets = map[string]manifestAsset{}
	}
	if strings.TrimSpace(entry.Key) == "" {
		entry.Key = m.assetKey(entry.Source)
	}
	m.Assets[entry.Key] = entry
}

func (m *buildManifest) shouldSkipAsset(source, checksum, output string) bool {
	entry, ok := m.lookupAsset(source)
	if !ok {
		return false
	}
	if checksum == "" || entry.Checksum != checksum {
		return false
	}
	if strings.TrimSpace(entry.Output) != strings.TrimSpace(output) {
		return false
	}
	return true
}

func (m *buildManifest) manifestPath(baseDir string) string {
	return joinOutputPath(normalizeOutputDir(baseDir), manifestFileName)
}

func (m *buildManifest) prunePages(keys map[string]struct{}) {
	if len(m.Pages) == 0 {
		return
	}
	for key := range m.Pages {
		if _, ok := keys[key]; !ok {
			delete(m.Pages, key)
		}
	}
}

func (m *buildManifest) pruneAssets(keys map[string]struct{}) {
	if len(m.Assets) == 0 {
		return
	}
	for key := range m.Assets {
		if _, ok := keys[key]; !ok {
			delete(m.Assets, key)
		}
	}
}

func manifestDir(pathValue string) string {
	dir := strings.TrimSpace(path.Dir(strings.TrimSpace(pathValue)))
	if dir == "." {
		return ""
	}
	return dir
}
