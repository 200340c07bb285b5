package main

import (
	"errors"
	"fmt"
	"image/png"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type OutputConfig struct {
	Formats        []string `toml:"formats"`
	JpegQuality    int      `toml:"jpeg_quality"`
	PNGCompression string   `toml:"png_compression"` // default, best, fast, none
	WebpQuality    float64  `toml:"webp_quality"`
}

func (o OutputConfig) PNGLevel() png.CompressionLevel {
	switch strings.ToLower(o.PNGCompression) {
	case "best":
		return png.BestCompression
	case "fast":
		return png.BestSpeed
	case "none":
		return png.NoCompression
	default:
		return png.DefaultCompression
	}
}

func (o OutputConfig) FormatList() ([]Format, error) {
	return ParseFormats(strings.Join(o.Formats, ","))
}

type ResizeConfig struct {
	Mode       string  `toml:"mode"` // none, explicit, percentage, preset
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	Scale      float64 `toml:"scale"`
	Preset     string  `toml:"preset"`
	LockAspect bool    `toml:"lock_aspect"`
}

func (r ResizeConfig) Policy() (ResizePolicy, error) {
	mode, err := ParseResizeMode(r.Mode)
	if err != nil {
		return ResizePolicy{}, err
	}
	return ResizePolicy{
		Mode:       mode,
		Width:      r.Width,
		Height:     r.Height,
		Scale:      r.Scale,
		Preset:     strings.ToLower(strings.TrimSpace(r.Preset)),
		LockAspect: r.LockAspect,
	}, nil
}

type SheetConfig struct {
	PageSize    string  `toml:"page_size"`   // a4, letter
	Orientation string  `toml:"orientation"` // portrait, landscape
	MarginMM    float64 `toml:"margin_mm"`
	TitleMM     float64 `toml:"title_mm"`
	Layout      string  `toml:"layout"` // 1, 2, 4 or RxC
	Title       string  `toml:"title"`
	Optimize    bool    `toml:"optimize"`
}

// Page resolves the configured page size and orientation to millimeters.
func (s SheetConfig) Page() (SheetPage, error) {
	var p SheetPage
	switch strings.ToLower(s.PageSize) {
	case "", "a4":
		p = SheetPage{Width: 210, Height: 297}
	case "letter":
		p = SheetPage{Width: 215.9, Height: 279.4}
	default:
		return SheetPage{}, fmt.Errorf("unknown page size %q (a4, letter)", s.PageSize)
	}
	p.Margin = s.MarginMM
	p.TitleHeight = s.TitleMM

	switch strings.ToLower(s.Orientation) {
	case "", "portrait":
	case "landscape":
		p = p.Landscape()
	default:
		return SheetPage{}, fmt.Errorf("unknown orientation %q (portrait, landscape)", s.Orientation)
	}
	return p, nil
}

func (s SheetConfig) LayoutSpec() (LayoutSpec, error) {
	return ParseLayout(s.Layout)
}

type WatchConfig struct {
	Dirs         []string `toml:"dirs"`
	Location     string   `toml:"location"`
	PollInterval int      `toml:"poll_interval"` // seconds, 0 = default (5s)
	DebounceMS   int      `toml:"debounce_ms"`   // 0 = default (500ms)
}

func (w WatchConfig) PollDuration() time.Duration {
	if w.PollInterval > 0 {
		return time.Duration(w.PollInterval) * time.Second
	}
	return 5 * time.Second
}

func (w WatchConfig) DebounceDuration() time.Duration {
	if w.DebounceMS > 0 {
		return time.Duration(w.DebounceMS) * time.Millisecond
	}
	return 500 * time.Millisecond
}

func (w WatchConfig) InputDirs() []string {
	var dirs []string
	for _, d := range w.Dirs {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

type Config struct {
	Output OutputConfig `toml:"output"`
	Resize ResizeConfig `toml:"resize"`
	Sheet  SheetConfig  `toml:"sheet"`
	Watch  WatchConfig  `toml:"watch"`
}

func defaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Formats:        []string{"jpeg"},
			JpegQuality:    85,
			PNGCompression: "default",
			WebpQuality:    80,
		},
		Resize: ResizeConfig{
			Mode:       "none",
			LockAspect: true,
		},
		Sheet: SheetConfig{
			PageSize:    "a4",
			Orientation: "portrait",
			MarginMM:    10,
			TitleMM:     12,
			Layout:      "4",
			Optimize:    true,
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
