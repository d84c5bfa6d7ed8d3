package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"PopulationSnapshot/internal/domain"
	"PopulationSnapshot/internal/ports"
)

// NameFile is the registry name of the JSON file sink.
const NameFile = "file"

// FileSink writes the snapshot artifact to a local path.
type FileSink struct {
	path string
}

var _ ports.SnapshotSink = (*FileSink)(nil)

// NewFileSink targets path.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Name identifies the sink inside the registry.
func (f *FileSink) Name() string {
	return NameFile
}

// Path returns the destination file.
func (f *FileSink) Path() string {
	return f.path
}

// Write encodes the snapshot and moves it into place atomically, so readers never observe a partial file.
func (f *FileSink) Write(ctx context.Context, snapshot domain.Snapshot) error {
	if f.path == "" {
		return fmt.Errorf("file sink: no output path configured")
	}

	payload, err := snapshot.Encode()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("move snapshot into place: %w", err)
	}
	return nil
}
