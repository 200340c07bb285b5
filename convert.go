package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// ProgressFunc receives batch progress after each completed item. done never
// decreases across calls for a given batch.
type ProgressFunc func(done, total int)

// ConvertImage converts one source image into every requested format. The
// source is decoded and resampled once; each format re-encodes the same
// bitmap. Output files are named outBase plus the format extension. Returns
// the written paths.
func ConvertImage(inputPath, outBase string, formats []Format, policy ResizePolicy, out OutputConfig) ([]string, error) {
	img, _, err := DecodeImageFile(inputPath)
	if err != nil {
		return nil, err
	}

	target := ResolveDimensions(SourceDimensions(img), policy)
	img = RenderTarget(img, target)

	if dir := filepath.Dir(outBase); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	var written []string
	for _, format := range formats {
		outPath := outBase + format.Ext()
		f, err := os.Create(outPath)
		if err != nil {
			return written, err
		}
		if err := EncodeImage(f, img, format, out); err != nil {
			f.Close()
			os.Remove(outPath)
			return written, fmt.Errorf("encoding %s as %s: %w", inputPath, format, err)
		}
		if err := f.Close(); err != nil {
			return written, err
		}
		written = append(written, outPath)
	}
	return written, nil
}

type convJob struct {
	input   string
	outBase string
}

// outBaseFor maps an input file to its output base path (no extension),
// mirroring the input's position under inputDir.
func outBaseFor(inputDir, outputDir, path string) string {
	rel, err := filepath.Rel(inputDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return filepath.Join(outputDir, strings.TrimSuffix(rel, filepath.Ext(rel)))
}

// isConvertedUpToDate reports whether every format output for input already
// exists and is at least as new as the input.
func isConvertedUpToDate(input, outBase string, formats []Format) bool {
	inInfo, err := os.Stat(input)
	if err != nil {
		return false
	}
	for _, format := range formats {
		outInfo, err := os.Stat(outBase + format.Ext())
		if err != nil || outInfo.ModTime().Before(inInfo.ModTime()) {
			return false
		}
	}
	return true
}

// batchResult collects the outcome of a directory batch.
type batchResult struct {
	written []string
	errs    []string
}

// convertDirectory walks inputDir, converting every image file that is not
// already up to date. Jobs run on a GOMAXPROCS-bounded worker pool; per-item
// failures are collected and reported without aborting the batch.
func convertDirectory(inputDir, outputDir string, formats []Format, policy ResizePolicy, out OutputConfig, progress ProgressFunc) (batchResult, int, error) {
	var jobs []convJob
	var numSkipped int

	err := filepath.WalkDir(inputDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isImageFile(path) {
			return nil
		}
		outBase := outBaseFor(inputDir, outputDir, path)
		if isConvertedUpToDate(path, outBase, formats) {
			numSkipped++
			return nil
		}
		jobs = append(jobs, convJob{input: path, outBase: outBase})
		return nil
	})
	if err != nil {
		return batchResult{}, 0, err
	}
	if len(jobs) == 0 {
		return batchResult{}, numSkipped, nil
	}

	var (
		res       batchResult
		mu        sync.Mutex
		completed atomic.Int64
		wg        sync.WaitGroup
	)
	total := len(jobs)
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))

	for _, j := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer func() { <-sem; wg.Done() }()
			written, err := ConvertImage(j.input, j.outBase, formats, policy, out)
			mu.Lock()
			res.written = append(res.written, written...)
			if err != nil {
				res.errs = append(res.errs, fmt.Sprintf("failed to convert '%s': %v", j.input, err))
			}
			mu.Unlock()
			if progress != nil {
				progress(int(completed.Add(1)), total)
			}
		}()
	}
	wg.Wait()

	return res, numSkipped, nil
}

// ProcessDirectory converts a directory tree and optionally bundles the fresh
// outputs into a ZIP archive at zipPath.
func ProcessDirectory(inputDir, outputDir, zipPath string, formats []Format, policy ResizePolicy, out OutputConfig) error {
	if info, err := os.Stat(outputDir); err == nil && !info.IsDir() {
		return fmt.Errorf("input is a directory, but output '%s' is a file; specify an output directory", outputDir)
	}

	fmt.Printf("Scanning for images in '%s'...\n", inputDir)
	start := time.Now()

	res, numSkipped, err := convertDirectory(inputDir, outputDir, formats, policy, out, func(done, total int) {
		fmt.Printf("\r[%d/%d] %d%%", done, total, done*100/total)
	})
	if err != nil {
		return err
	}

	if len(res.written) == 0 && len(res.errs) == 0 {
		if numSkipped > 0 {
			fmt.Printf("All %d files are already up-to-date. Nothing to do.\n", numSkipped)
		} else {
			fmt.Println("No image files found. Exiting.")
		}
		return nil
	}

	fmt.Println()
	for _, msg := range res.errs {
		fmt.Fprintln(os.Stderr, msg)
	}
	fmt.Printf("Wrote %d files in %.2fs (%d up-to-date, skipped)\n", len(res.written), time.Since(start).Seconds(), numSkipped)

	if zipPath != "" && len(res.written) > 0 {
		if err := BundleZip(zipPath, outputDir, res.written); err != nil {
			return fmt.Errorf("writing archive: %w", err)
		}
		fmt.Printf("Bundled %d files into '%s'\n", len(res.written), zipPath)
	}
	return nil
}

// ProcessSingleFile converts one image. The output path's extension selects
// the format unless explicit formats are given, in which case the output path
// is treated as a base name.
func ProcessSingleFile(inputPath, outputPath string, formats []Format, policy ResizePolicy, out OutputConfig, zipPath string) error {
	if !isImageFile(inputPath) {
		return fmt.Errorf("input file '%s' is not a supported image (jpeg, png, gif, webp, bmp)", inputPath)
	}
	if info, err := os.Stat(outputPath); err == nil && info.IsDir() {
		outputPath = filepath.Join(outputPath, filepath.Base(inputPath))
	}

	outBase := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
	if len(formats) == 0 {
		f, err := FormatForPath(outputPath)
		if err != nil {
			return err
		}
		formats = []Format{f}
	}

	start := time.Now()
	written, err := ConvertImage(inputPath, outBase, formats, policy, out)
	if err != nil {
		return err
	}
	fmt.Printf("Converted '%s' into %d file(s) in %.2fs\n", inputPath, len(written), time.Since(start).Seconds())

	if zipPath != "" {
		if err := BundleZip(zipPath, filepath.Dir(outBase), written); err != nil {
			return fmt.Errorf("writing archive: %w", err)
		}
		fmt.Printf("Bundled %d files into '%s'\n", len(written), zipPath)
	}
	return nil
}
