package interfaces

import (
	"context"
	"io"
)

// WriteCategory labels the artifact flavour routed through a writer so
// implementations can apply per-category policies (metadata, logging).
type WriteCategory string

const (
	WriteCategoryPage     WriteCategory = "page"
	WriteCategoryAsset    WriteCategory = "asset"
	WriteCategorySitemap  WriteCategory = "sitemap"
	WriteCategoryRobots   WriteCategory = "robots"
	WriteCategoryFeed     WriteCategory = "feed"
	WriteCategoryManifest WriteCategory = "manifest"
)

// WriteFileRequest describes a single artifact write routed through an
// ArtifactWriter.
type WriteFileRequest struct {
	Path        string
	Content     io.Reader
	Size        int64
	Category    WriteCategory
	ContentType string
	Checksum    string
	Metadata    map[string]string
}

// ArtifactWriter abstracts output-tree writes for the site assembler.
// Implementations must guarantee that WriteFile is atomic per path: the
// destination either keeps its previous bytes or receives the full new
// content, never a partial write.
type ArtifactWriter interface {
	EnsureDir(ctx context.Context, path string) error
	WriteFile(ctx context.Context, req WriteFileRequest) error
}
