// Package writer writes output files to disk
package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// File to write. Path is slash-separated and relative to the target.
type File struct {
	Path string
	Data []byte
}

// Write files to target. A single file is written to target itself when
// target ends in .js, otherwise target is a directory.
func Write(ctx context.Context, target string, files []*File) error {
	if len(files) == 1 && filepath.Ext(target) == ".js" {
		return writeFile(target, files[0].Data)
	}
	eg, ctx := errgroup.WithContext(ctx)
	for _, file := range files {
		file := file
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return writeFile(filepath.Join(target, filepath.FromSlash(file.Path)), file.Data)
		})
	}
	return eg.Wait()
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("writer: unable to create directory for %q. %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writer: unable to write %q. %w", path, err)
	}
	return nil
}
