// Package share hands exported files to wherever the user wants them.
package share

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sharer receives an exported file and returns where it can be found: a
// path, a URL or a link.
type Sharer interface {
	Share(ctx context.Context, name string, data []byte) (string, error)
}

// checkName rejects names that would escape the target location.
func checkName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == ".." {
		return fmt.Errorf("invalid export file name %q", name)
	}
	return nil
}

// Dir writes exports into a local directory.
type Dir struct {
	Path string
}

// Share atomically writes data to Path/name and returns the file path.
func (d Dir) Share(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkName(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.Path, 0o700); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	path := filepath.Join(d.Path, name)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("saving export: %w", err)
	}
	return path, nil
}
