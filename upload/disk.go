package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStorage writes files into Dir and serves them under BaseURL.
type DiskStorage struct {
	Dir     string
	BaseURL string
}

// UploadFiles writes each file to Dir. A file that cannot be written gets a
// per-file error; only a missing directory fails the whole call.
func (d *DiskStorage) UploadFiles(ctx context.Context, files ...File) ([]Result, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	results := make([]Result, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := filepath.Base(f.Name)
		if name != f.Name || name == "." || name == ".." {
			results = append(results, Result{Err: fmt.Errorf("invalid file name %q", f.Name)})
			continue
		}
		if err := os.WriteFile(filepath.Join(d.Dir, name), f.Data, 0o644); err != nil {
			results = append(results, Result{Err: fmt.Errorf("write %s: %w", name, err)})
			continue
		}
		results = append(results, Result{Data: &UploadedFile{
			Key:  name,
			Name: name,
			URL:  strings.TrimRight(d.BaseURL, "/") + "/" + name,
			Size: int64(len(f.Data)),
		}})
	}
	return results, nil
}

// DeleteFiles removes stored files. Files that are already gone are ignored.
func (d *DiskStorage) DeleteFiles(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		name := filepath.Base(k)
		if name != k {
			return fmt.Errorf("invalid key %q", k)
		}
		if err := os.Remove(filepath.Join(d.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}
