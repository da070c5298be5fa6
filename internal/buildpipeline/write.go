package buildpipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"irforge/internal/diag"
)

// writeOutputs writes data to the file at path and to stdout concurrently.
// Both destinations receive the same bytes; data is never modified.
func writeOutputs(ctx context.Context, data []byte, path string, stdout io.Writer) error {
	g, gctx := errgroup.WithContext(ctx)
	if path != "" {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := writeFileAtomic(path, data); err != nil {
				return diag.Errorf(diag.IOWriteFail, path, "%v", err)
			}
			return nil
		})
	}
	if stdout != nil {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := stdout.Write(data); err != nil {
				return diag.Errorf(diag.IOWriteFail, "stdout", "%v", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it into place.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".irforge-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = fmt.Errorf("failed to remove temp file: %w", rmErr)
		}
	}()
	if _, err := f.Write(data); err != nil {
		_ = f.Close() //nolint:errcheck
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// #nosec G302 -- output is a regular artefact readable by the user's group
	if err := os.Chmod(f.Name(), 0o640); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
