package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultExtensions lists the file extensions collected from directories.
var DefaultExtensions = []string{".tex"}

// CollectFiles expands paths into a sorted, deduplicated list of files.
// Directories are walked recursively and filtered by exts (DefaultExtensions
// when empty); hidden directories are skipped. Files named explicitly are
// kept whatever their extension.
func CollectFiles(ctx context.Context, paths []string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	var files []string
	for _, root := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, filepath.Clean(root))
			continue
		}
		walked, err := walkDir(ctx, root, exts)
		if err != nil {
			return nil, err
		}
		files = append(files, walked...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

func walkDir(ctx context.Context, root string, exts []string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case ctx.Err() != nil:
			return ctx.Err()
		case d.IsDir() && path != root && strings.HasPrefix(d.Name(), "."):
			return filepath.SkipDir
		case !d.IsDir() && hasExtension(path, exts):
			out = append(out, filepath.Clean(path))
		}
		return nil
	})
	return out, err
}

func hasExtension(path string, exts []string) bool {
	ext := filepath.Ext(path)
	return slices.ContainsFunc(exts, func(e string) bool { return strings.EqualFold(ext, e) })
}
