package main

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BundleZip writes the given files into a single ZIP archive. Entry names are
// relative to baseDir so the archive mirrors the output tree; a file outside
// baseDir falls back to its base name.
func BundleZip(zipPath, baseDir string, files []string) error {
	if dir := filepath.Dir(zipPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(out)
	for _, path := range files {
		if err := addZipEntry(zw, baseDir, path); err != nil {
			zw.Close()
			out.Close()
			return fmt.Errorf("adding '%s': %w", path, err)
		}
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func addZipEntry(zw *zip.Writer, baseDir, path string) error {
	name, err := filepath.Rel(baseDir, path)
	if err != nil || name == "" || name[0] == '.' {
		name = filepath.Base(path)
	}
	name = filepath.ToSlash(name)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
