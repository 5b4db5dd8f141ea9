// Package localfs discovers ingestible files in a local directory tree.
package localfs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kirillkom/knowledge-ingest/internal/core/domain"
)

type Lister struct{}

func NewLister() *Lister {
	return &Lister{}
}

// List walks root recursively and keeps supported, non-lock files sorted by path.
func (l *Lister) List(ctx context.Context, root string) ([]domain.SourceFile, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidConfig, "stat root folder", err)
	}
	if !info.IsDir() {
		return nil, domain.WrapError(domain.ErrInvalidConfig, "stat root folder", fmt.Errorf("%s is not a directory", absRoot))
	}

	var files []domain.SourceFile
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !Accepts(d.Name()) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if !fi.Mode().IsRegular() {
			return nil
		}
		files = append(files, domain.NewSourceFile(path, fi.Size()))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", absRoot, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Accepts reports whether a file name is a candidate for ingestion.
func Accepts(name string) bool {
	if strings.HasPrefix(name, domain.LockFilePrefix) {
		return false
	}
	_, err := domain.ParserForExt(filepath.Ext(name))
	return err == nil
}
