package driver

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// writeAtomic writes through a temp file in the target directory and
// renames it over path, so readers never see a half-written file.
func writeAtomic(path string, perm fs.FileMode, write func(io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), ".texlint-*")
	if err != nil {
		return err
	}
	defer func() {
		// после успешного rename временного файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(perm); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
