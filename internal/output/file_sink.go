package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink writes the document to a local path atomically: the bytes go to a
// temporary file in the same directory which is then renamed over the target.
// It implements port.OutputSink.
type FileSink struct {
	path      string
	createDir bool
}

// NewFileSink creates a FileSink. When createDir is set the parent directory
// is created if missing.
func NewFileSink(path string, createDir bool) *FileSink {
	return &FileSink{path: path, createDir: createDir}
}

func (s *FileSink) Name() string {
	return "file:" + s.path
}

func (s *FileSink) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if s.createDir {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}
