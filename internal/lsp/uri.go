package lsp

import (
	"net/url"
	"path/filepath"

	"texlint/internal/source"
)

// uriToPath turns a file:// URI (or a bare path) into an absolute local
// path. Other schemes yield "".
func uriToPath(uri string) string {
	if uri == "" {
		return ""
	}
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	var path string
	switch u.Scheme {
	case "":
		path = uri
	case "file":
		path = filepath.FromSlash(u.Path)
	default:
		return ""
	}
	if abs, err := source.AbsolutePath(path); err == nil {
		return abs
	}
	return path
}

func pathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := source.AbsolutePath(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// canonicalURI maps differently escaped spellings of one file to one key.
// Non-file URIs are kept as sent.
func canonicalURI(uri string) string {
	if path := uriToPath(uri); path != "" {
		return pathToURI(path)
	}
	return uri
}
