package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/unixblacksteel/mindmap/pkg/errors"
)

// Sink receives finished artifacts. Save returns where the bytes went.
type Sink interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// DirSink writes artifacts into a directory, creating it when missing.
type DirSink struct {
	Dir string
}

// Save implements Sink.
func (s DirSink) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := errors.ValidateFilename(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, name)
	// temp file plus rename, so readers never see a partial file
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return path, nil
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, name string, data []byte) (string, error)

// Save implements Sink.
func (f SinkFunc) Save(ctx context.Context, name string, data []byte) (string, error) {
	return f(ctx, name, data)
}
