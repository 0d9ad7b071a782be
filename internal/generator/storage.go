package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	retry "github.com/sethvargo/go-retry"

	"github.com/pagemill/pagemill/pkg/interfaces"
)

const (
	defaultWriteRetries = 3
	defaultWriteBackoff = 25 * time.Millisecond
	outputFileMode      = 0o644
	outputDirMode       = 0o755
)

var errChecksumMismatch = errors.New("generator: artifact checksum mismatch")

func newArtifactWriter(writer interfaces.ArtifactWriter) interfaces.ArtifactWriter {
	if writer == nil {
		return NewOSWriter()
	}
	return writer
}

// OSWriter persists artifacts on the local filesystem. Writes go through a
// temp file in the destination directory followed by a rename, so an aborted
// build never leaves a partially written page behind. Failed writes are
// retried with bounded exponential backoff.
type OSWriter struct {
	retries uint64
	backoff time.Duration
}

// NewOSWriter returns a filesystem writer with default retry behaviour.
func NewOSWriter() *OSWriter {
	return &OSWriter{
		retries: defaultWriteRetries,
		backoff: defaultWriteBackoff,
	}
}

var _ interfaces.ArtifactWriter = (*OSWriter)(nil)

func (w *OSWriter) EnsureDir(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" || path == "." {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.MkdirAll(filepath.FromSlash(path), outputDirMode)
}

func (w *OSWriter) WriteFile(ctx context.Context, req interfaces.WriteFileRequest) error {
	if req.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("generator: write requires path")
	}

	data, err := io.ReadAll(req.Content)
	if err != nil {
		return fmt.Errorf("generator: read artifact content for %s: %w", req.Path, err)
	}
	if req.Checksum != "" {
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != req.Checksum {
			return fmt.Errorf("%w: %s", errChecksumMismatch, req.Path)
		}
	}

	target := filepath.FromSlash(req.Path)
	backoff := retry.WithMaxRetries(w.retries, retry.NewExponential(w.backoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := writeAtomic(target, data); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func writeAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, ".pagemill-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(outputFileMode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// recordingWriter captures write requests without touching the filesystem.
// Dry runs route through it so they can report what a real build would emit.
type recordingWriter struct {
	mu     sync.Mutex
	dirs   []string
	writes []recordedWrite
}

type recordedWrite struct {
	Path        string
	Size        int64
	Category    interfaces.WriteCategory
	ContentType string
	Checksum    string
}

func (w *recordingWriter) EnsureDir(_ context.Context, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirs = append(w.dirs, path)
	return nil
}

func (w *recordingWriter) WriteFile(_ context.Context, req interfaces.WriteFileRequest) error {
	size := req.Size
	if req.Content != nil {
		if counted, err := io.Copy(io.Discard, req.Content); err == nil && counted > 0 {
			size = counted
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, recordedWrite{
		Path:        req.Path,
		Size:        size,
		Category:    req.Category,
		ContentType: req.ContentType,
		Checksum:    req.Checksum,
	})
	return nil
}

func (w *recordingWriter) Writes() []recordedWrite {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]recordedWrite, len(w.writes))
	copy(out, w.writes)
	return out
}

type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error { return nil }

func (noopWriter) WriteFile(context.Context, interfaces.WriteFileRequest) error { return nil }
