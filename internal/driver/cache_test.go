package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"texlint/internal/diag"
	"texlint/internal/driver"
	"texlint/internal/latex"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := driver.NewCacheKey([]byte("50% off"), latex.Options{})
	var miss driver.DiskPayload
	if ok, err := cache.Get(key, &miss); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	in := &driver.DiskPayload{
		Path: "cv.tex",
		Diagnostics: []diag.Diagnostic{
			diag.NewWarning(diag.TexUnescapedChar, 0, 2, "Unescaped special character '%'. Use \\% instead"),
			diag.NewError(diag.TexEnvMismatch, 3, 0, "Expected \\end{a}, found \\end{b}").WithNote(1, 0, "\\begin{a} opened here"),
		},
	}
	if err := cache.Put(key, in); err != nil {
		t.Fatal(err)
	}

	var out driver.DiskPayload
	ok, err := cache.Get(key, &out)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(out.Diagnostics) != 2 || out.Diagnostics[1].Notes[0].Line != 1 || out.Diagnostics[0].Column != 2 {
		t.Fatalf("payload mismatch: %+v", out)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := cache.Get(key, &out); ok {
		t.Fatal("entry survived DropAll")
	}
}

func TestCacheKeyDependsOnOptions(t *testing.T) {
	content := []byte("{")
	a := driver.NewCacheKey(content, latex.Options{})
	b := driver.NewCacheKey(content, latex.Options{ReportUnclosedBrackets: true})
	if a == b {
		t.Fatal("options must change the key")
	}
	if a != driver.NewCacheKey([]byte("{"), latex.Options{}) {
		t.Fatal("key must be deterministic")
	}
}

func TestCheckPathsUsesCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.tex")
	if err := os.WriteFile(path, []byte("R&D\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cache, err := driver.OpenDiskCacheAt(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	opts := driver.CheckOptions{Cache: cache, Extensions: []string{".tex"}}

	first, err := driver.CheckPaths(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := driver.CheckPaths(context.Background(), []string{path}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first[0].Cached || !second[0].Cached {
		t.Fatalf("cached flags: first=%v second=%v", first[0].Cached, second[0].Cached)
	}
	if diag.FormatShortDiagnostics("cv.tex", first[0].Bag.Items(), true) != diag.FormatShortDiagnostics("cv.tex", second[0].Bag.Items(), true) {
		t.Fatal("cached diagnostics differ from fresh ones")
	}
}
