package main

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestBundleZip(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		filepath.Join(dir, "a.jpg"):  "alpha",
		filepath.Join(sub, "b.webp"): "beta",
	}
	var paths []string
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, path)
	}

	zipPath := filepath.Join(t.TempDir(), "bundle.zip")
	if err := BundleZip(zipPath, dir, paths); err != nil {
		t.Fatal(err)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	got := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		got[f.Name] = string(data)
	}

	want := map[string]string{"a.jpg": "alpha", "sub/b.webp": "beta"}
	if len(got) != len(want) {
		t.Fatalf("archive holds %v, want %v", got, want)
	}
	for name, content := range want {
		if got[name] != content {
			t.Errorf("entry %q = %q, want %q", name, got[name], content)
		}
	}
}

func TestBundleZipMissingFile(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "bundle.zip")
	err := BundleZip(zipPath, ".", []string{"does-not-exist.jpg"})
	if err == nil {
		t.Fatal("missing input file should fail")
	}
}
