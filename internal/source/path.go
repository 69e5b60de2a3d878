package source

import (
	"os"
	"path/filepath"
	"strings"
)

func cleanPath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// AbsolutePath returns the cleaned absolute form of path.
func AbsolutePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return cleanPath(abs), nil
}

// RelativePath returns path relative to baseDir (the working directory
// when empty). Paths that would escape baseDir fall back to their absolute
// form.
func RelativePath(path, baseDir string) (string, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		baseDir = wd
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return cleanPath(absPath), nil
	}
	return cleanPath(rel), nil
}

// ShortPath keeps relative and short paths as they are and reduces long
// absolute ones to their base name.
func ShortPath(path string) string {
	if len(path) < 40 || !filepath.IsAbs(path) {
		return path
	}
	return filepath.Base(path)
}
