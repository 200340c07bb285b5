package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

func main() {
	var input, output, configPath, formatsFlag, zipPath string
	var width, height int
	var scale float64
	var preset, layoutFlag, titleFlag string
	var noLock, sheet, watch, verbose bool

	flag.StringVar(&input, "i", "", "Input image file or directory")
	flag.StringVar(&input, "input", "", "Input image file or directory")
	flag.StringVar(&output, "o", "", "Output file or directory")
	flag.StringVar(&output, "output", "", "Output file or directory")
	flag.StringVar(&formatsFlag, "formats", "", "Comma-separated output formats: jpeg, png, webp")
	flag.IntVar(&width, "width", 0, "Target width in pixels (0 = derive from height)")
	flag.IntVar(&height, "height", 0, "Target height in pixels (0 = derive from width)")
	flag.Float64Var(&scale, "scale", 0, "Scale as percent of source (1-100)")
	flag.StringVar(&preset, "preset", "", "Named target size: "+PresetNames())
	flag.BoolVar(&noLock, "no-lock", false, "Do not preserve the source aspect ratio")
	flag.StringVar(&zipPath, "zip", "", "Bundle converted outputs into a ZIP archive at this path")
	flag.BoolVar(&sheet, "sheet", false, "Assemble input images into a contact-sheet PDF")
	flag.StringVar(&layoutFlag, "layout", "", "Sheet grid: 1, 2, 4 or RxC (e.g. 3x2)")
	flag.StringVar(&titleFlag, "title", "", "Sheet title drawn in the reserved band of each page")
	flag.StringVar(&configPath, "config", "config.toml", "Path to config file (TOML)")
	flag.BoolVar(&watch, "watch", false, "Run as daemon, watching directories from config [watch] section")
	flag.BoolVar(&verbose, "v", false, "Verbose daemon logging")
	flag.BoolVar(&verbose, "verbose", false, "Verbose daemon logging")
	flag.Parse()

	cfg, err := LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg, formatsFlag, width, height, scale, preset, noLock, layoutFlag, titleFlag)

	if watch {
		if cfg.Watch.Location == "" {
			fmt.Fprintln(os.Stderr, "Error: [watch] location must be set in config for --watch mode")
			os.Exit(1)
		}
		if len(cfg.Watch.InputDirs()) == 0 {
			fmt.Fprintln(os.Stderr, "Error: [watch] requires at least one entry in dirs")
			os.Exit(1)
		}
		if err := runWatchMode(cfg, verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if input == "" || output == "" {
		fmt.Fprintln(os.Stderr, "Usage: pixmill -i <input> -o <output> [--formats jpeg,png,webp] [flags]")
		fmt.Fprintln(os.Stderr, "       pixmill --sheet -i <dir> -o sheet.pdf [--layout 4] [--title ...]")
		fmt.Fprintln(os.Stderr, "       pixmill --watch [--config config.toml]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if sheet {
		err = buildSheet(input, output, titleFlag, cfg)
	} else {
		err = convert(input, output, zipPath, cfg, formatsFlag != "")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// applyFlagOverrides layers CLI flags over the loaded config. A flag left at
// its zero value keeps the config setting.
func applyFlagOverrides(cfg *Config, formats string, width, height int, scale float64, preset string, noLock bool, layout, title string) {
	if formats != "" {
		cfg.Output.Formats = strings.Split(formats, ",")
	}
	switch {
	case preset != "":
		cfg.Resize = ResizeConfig{Mode: "preset", Preset: preset, LockAspect: !noLock}
	case scale > 0:
		cfg.Resize = ResizeConfig{Mode: "percentage", Scale: scale, LockAspect: !noLock}
	case width > 0 || height > 0:
		cfg.Resize = ResizeConfig{Mode: "explicit", Width: width, Height: height, LockAspect: !noLock}
	default:
		if noLock {
			cfg.Resize.LockAspect = false
		}
	}
	if layout != "" {
		cfg.Sheet.Layout = layout
	}
	if title != "" {
		cfg.Sheet.Title = title
	}
}

func convert(input, output, zipPath string, cfg *Config, explicitFormats bool) error {
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("input path '%s' does not exist", input)
	}

	policy, err := cfg.Resize.Policy()
	if err != nil {
		return err
	}
	formats, err := cfg.Output.FormatList()
	if err != nil {
		return err
	}

	if info.IsDir() {
		return ProcessDirectory(input, output, zipPath, formats, policy, cfg.Output)
	}
	if !explicitFormats {
		// Single-file mode: without --formats the output extension decides.
		formats = nil
	}
	return ProcessSingleFile(input, output, formats, policy, cfg.Output, zipPath)
}

func buildSheet(input, output, title string, cfg *Config) error {
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("input path '%s' does not exist", input)
	}
	if !strings.HasSuffix(strings.ToLower(output), ".pdf") {
		return fmt.Errorf("sheet output '%s' must have a .pdf extension", output)
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	var paths []string
	if info.IsDir() {
		err := filepath.WalkDir(input, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() || !isImageFile(path) {
				return nil
			}
			paths = append(paths, path)
			return nil
		})
		if err != nil {
			return err
		}
		slices.Sort(paths)
	} else {
		if !isImageFile(input) {
			return fmt.Errorf("input file '%s' is not a supported image", input)
		}
		paths = []string{input}
	}

	if len(paths) == 0 {
		return fmt.Errorf("no image files found in '%s'", input)
	}

	if title == "" {
		title = cfg.Sheet.Title
	}
	if title == "" {
		title = filepath.Base(strings.TrimSuffix(input, string(filepath.Separator)))
	}

	return BuildContactSheet(paths, output, title, cfg)
}
