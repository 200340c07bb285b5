package main

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Format is an output encoding. Decoding additionally accepts GIF and BMP via
// the registered decoders above.
type Format int

const (
	FormatJPEG Format = iota
	FormatPNG
	FormatWEBP
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWEBP, nil
	}
	return FormatJPEG, fmt.Errorf("unsupported output format %q (jpeg, png, webp)", s)
}

// FormatForPath infers the output format from a file extension.
func FormatForPath(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return FormatJPEG, fmt.Errorf("output path %q has no extension", path)
	}
	return ParseFormat(ext)
}

func (f Format) Ext() string {
	switch f {
	case FormatPNG:
		return ".png"
	case FormatWEBP:
		return ".webp"
	default:
		return ".jpg"
	}
}

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatWEBP:
		return "webp"
	default:
		return "jpeg"
	}
}

// ParseFormats splits a comma-separated format list, deduplicating entries.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	seen := make(map[Format]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no output formats given")
	}
	return out, nil
}

// isImageFile reports whether a path looks like a supported input image.
func isImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp":
		return true
	}
	return false
}

// DecodeImageFile opens and decodes an image, returning the decoded pixels
// and the sniffed source format name.
func DecodeImageFile(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	img, name, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, name, nil
}

// SourceDimensions reads the pixel extent of a decoded image.
func SourceDimensions(img image.Image) Dimensions {
	b := img.Bounds()
	return Dimensions{Width: b.Dx(), Height: b.Dy()}
}

// RenderTarget resamples img to the target extent with a Lanczos filter.
// A target equal to the source is returned untouched.
func RenderTarget(img image.Image, target Dimensions) image.Image {
	if SourceDimensions(img) == target {
		return img
	}
	return imaging.Resize(img, target.Width, target.Height, imaging.Lanczos)
}

// EncodeImage writes img in the given format. Quality factors come from the
// [output] config section.
func EncodeImage(w io.Writer, img image.Image, format Format, out OutputConfig) error {
	switch format {
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: out.PNGLevel()}
		return enc.Encode(w, img)
	case FormatWEBP:
		return webp.Encode(w, img, &webp.Options{Quality: float32(out.WebpQuality)})
	default:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: out.JpegQuality})
	}
}
