package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConvertImage(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "photo.png")
	writeTestPNG(t, input, 100, 50)

	out := OutputConfig{JpegQuality: 85, WebpQuality: 80}
	policy := ResizePolicy{Mode: ResizePercentage, Scale: 50}

	written, err := ConvertImage(input, filepath.Join(dir, "out", "photo"), []Format{FormatJPEG, FormatPNG}, policy, out)
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 2 {
		t.Fatalf("wrote %d files, want 2", len(written))
	}

	for _, path := range written {
		img, _, err := DecodeImageFile(path)
		if err != nil {
			t.Fatalf("decoding %s: %v", path, err)
		}
		if got := SourceDimensions(img); got != (Dimensions{50, 25}) {
			t.Errorf("%s dimensions = %v, want {50 25}", path, got)
		}
	}
}

func TestConvertImageBadInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "junk.png")
	if err := os.WriteFile(input, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ConvertImage(input, filepath.Join(dir, "out"), []Format{FormatJPEG}, ResizePolicy{}, OutputConfig{JpegQuality: 85}); err == nil {
		t.Error("undecodable input should fail")
	}
}

func TestOutBaseFor(t *testing.T) {
	got := outBaseFor("/in", "/out", "/in/sub/pic.jpeg")
	want := filepath.Join("/out", "sub", "pic")
	if got != want {
		t.Errorf("outBaseFor = %q, want %q", got, want)
	}
}

func TestIsConvertedUpToDate(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.png")
	writeTestPNG(t, input, 8, 8)
	outBase := filepath.Join(dir, "out", "a")
	formats := []Format{FormatJPEG, FormatPNG}

	if isConvertedUpToDate(input, outBase, formats) {
		t.Error("missing outputs should not be up to date")
	}

	if _, err := ConvertImage(input, outBase, formats, ResizePolicy{}, OutputConfig{JpegQuality: 85}); err != nil {
		t.Fatal(err)
	}
	if !isConvertedUpToDate(input, outBase, formats) {
		t.Error("fresh outputs should be up to date")
	}

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(input, future, future); err != nil {
		t.Fatal(err)
	}
	if isConvertedUpToDate(input, outBase, formats) {
		t.Error("newer input should invalidate outputs")
	}
}

func TestConvertDirectory(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	for _, name := range []string{"a.png", "b.png", filepath.Join("nested", "c.png")} {
		path := filepath.Join(inDir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		writeTestPNG(t, path, 20, 20)
	}
	// A non-image bystander must be ignored.
	if err := os.WriteFile(filepath.Join(inDir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	var lastDone int
	res, skipped, err := convertDirectory(inDir, outDir, []Format{FormatJPEG}, ResizePolicy{}, OutputConfig{JpegQuality: 85}, func(done, total int) {
		if done < lastDone {
			t.Errorf("progress went backwards: %d after %d", done, lastDone)
		}
		lastDone = done
		if total != 3 {
			t.Errorf("progress total = %d, want 3", total)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
	if len(res.errs) != 0 {
		t.Fatalf("unexpected errors: %v", res.errs)
	}
	if len(res.written) != 3 {
		t.Fatalf("wrote %d files, want 3", len(res.written))
	}
	if lastDone != 3 {
		t.Errorf("final progress = %d, want 3", lastDone)
	}

	if _, err := os.Stat(filepath.Join(outDir, "nested", "c.jpg")); err != nil {
		t.Errorf("nested output missing: %v", err)
	}

	// Second run: everything is up to date.
	res, skipped, err = convertDirectory(inDir, outDir, []Format{FormatJPEG}, ResizePolicy{}, OutputConfig{JpegQuality: 85}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 3 || len(res.written) != 0 {
		t.Errorf("rerun: skipped = %d written = %d, want 3 and 0", skipped, len(res.written))
	}
}

func TestConvertDirectoryCollectsPerItemErrors(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeTestPNG(t, filepath.Join(inDir, "good.png"), 10, 10)
	if err := os.WriteFile(filepath.Join(inDir, "bad.png"), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	res, _, err := convertDirectory(inDir, outDir, []Format{FormatJPEG}, ResizePolicy{}, OutputConfig{JpegQuality: 85}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.errs) != 1 {
		t.Errorf("errs = %v, want exactly one", res.errs)
	}
	if len(res.written) != 1 {
		t.Errorf("the good file should still convert, written = %v", res.written)
	}
}
