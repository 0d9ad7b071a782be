package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"sort"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/pagemill/pagemill/pkg/interfaces"
)

const (
	assetsDir          = "assets"
	highlightAssetName = "highlight.css"
)

type assetArtifact struct {
	Source      string
	Output      string
	ContentType string
	Checksum    string
	Data        []byte
}

// collectThemeAssets gathers every file beneath the theme's assets directory.
// A theme without assets is not an error.
func (s *service) collectThemeAssets(themeFS fs.FS) ([]assetArtifact, error) {
	if themeFS == nil {
		return nil, nil
	}

	var artifacts []assetArtifact
	err := fs.WalkDir(themeFS, assetsDir, func(entry string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		data, readErr := fs.ReadFile(themeFS, entry)
		if readErr != nil {
			return fmt.Errorf("generator: read theme asset %s: %w", entry, readErr)
		}
		artifacts = append(artifacts, assetArtifact{
			Source:      entry,
			Output:      entry,
			ContentType: detectAssetContentType(entry, data),
			Checksum:    computeHash(data),
			Data:        data,
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return artifacts, nil
		}
		return nil, err
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Source < artifacts[j].Source
	})
	return artifacts, nil
}

// highlightAsset renders the chroma stylesheet for the configured highlight
// style. Themes shipping their own highlight.css win over the generated one.
func (s *service) highlightAsset(existing map[string]struct{}) (*assetArtifact, error) {
	style := strings.TrimSpace(s.cfg.Markdown.Highlight)
	if style == "" {
		return nil, nil
	}
	output := path.Join(assetsDir, highlightAssetName)
	if _, ok := existing[output]; ok {
		return nil, nil
	}

	formatter := chromahtml.New(chromahtml.WithClasses(true))
	var buf bytes.Buffer
	if err := formatter.WriteCSS(&buf, styles.Get(style)); err != nil {
		return nil, fmt.Errorf("generator: render highlight stylesheet for style %s: %w", style, err)
	}

	data := buf.Bytes()
	return &assetArtifact{
		Source:      "chroma:" + style,
		Output:      output,
		ContentType: "text/css; charset=utf-8",
		Checksum:    computeHash(data),
		Data:        data,
	}, nil
}

// copyAssets writes theme and generated assets beneath the output directory,
// skipping files the manifest proves unchanged. It returns counts plus the
// manifest keys touched so stale entries can be pruned.
func (s *service) copyAssets(
	ctx context.Context,
	writer interfaces.ArtifactWriter,
	dirCache map[string]struct{},
	themeFS fs.FS,
	manifest *buildManifest,
	force bool,
) (int, int, map[string]struct{}, error) {
	baseDir := s.outputDir()
	touched := map[string]struct{}{}

	artifacts, err := s.collectThemeAssets(themeFS)
	if err != nil {
		return 0, 0, touched, err
	}

	present := make(map[string]struct{}, len(artifacts))
	for _, artifact := range artifacts {
		present[artifact.Output] = struct{}{}
	}
	if highlight, hlErr := s.highlightAsset(present); hlErr != nil {
		return 0, 0, touched, hlErr
	} else if highlight != nil {
		artifacts = append(artifacts, *highlight)
	}

	built := 0
	skipped := 0
	for _, artifact := range artifacts {
		if err := ctx.Err(); err != nil {
			return built, skipped, touched, err
		}

		output := joinOutputPath(baseDir, artifact.Output)
		key := manifest.assetKey(artifact.Source)
		touched[key] = struct{}{}

		if !force && s.cfg.Incremental && manifest.shouldSkipAsset(artifact.Source, artifact.Checksum, output) {
			skipped++
			continue
		}

		if err := ensureDir(ctx, writer, dirCache, manifestDir(output)); err != nil {
			return built, skipped, touched, err
		}
		if err := writer.WriteFile(ctx, interfaces.WriteFileRequest{
			Path:        output,
			Content:     bytes.NewReader(artifact.Data),
			Size:        int64(len(artifact.Data)),
			Category:    interfaces.WriteCategoryAsset,
			ContentType: artifact.ContentType,
			Checksum:    artifact.Checksum,
		}); err != nil {
			return built, skipped, touched, fmt.Errorf("generator: write asset %s: %w", artifact.Output, err)
		}
		built++

		manifest.setAsset(manifestAsset{
			Key:      key,
			Source:   artifact.Source,
			Output:   output,
			Checksum: artifact.Checksum,
			Size:     int64(len(artifact.Data)),
		})
	}

	return built, skipped, touched, nil
}

func detectAssetContentType(name string, data []byte) string {
	if contentType := mime.TypeByExtension(path.Ext(name)); contentType != "" {
		return contentType
	}
	if len(data) > 0 {
		return http.DetectContentType(data)
	}
	return "application/octet-stream"
}
