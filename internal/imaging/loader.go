package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Limits on accepted sources. MaxSourcePixels is checked against the
// dimensions in the image header before any pixel is decoded.
const (
	MaxSourceBytes  = 64 << 20
	MaxSourcePixels = 100 << 20
)

// inputFormats maps every accepted format hint to its canonical name.
// Canonical names match the extensions reported by filetype.
var inputFormats = map[string]string{
	"png":  "png",
	"jpg":  "jpg",
	"jpeg": "jpg",
	"gif":  "gif",
	"bmp":  "bmp",
	"tif":  "tif",
	"tiff": "tif",
	"webp": "webp",
}

// NormalizeFormat maps a format hint to its canonical name.
//
// The hint may be an extension with or without the leading dot ("png",
// ".jpeg") or a MIME type ("image/png"). An empty hint returns "" and no
// error, meaning the format is sniffed from content.
func NormalizeFormat(hint string) (string, error) {
	h := strings.ToLower(strings.TrimSpace(hint))
	h = strings.TrimPrefix(h, "image/")
	h = strings.TrimPrefix(h, ".")
	if h == "" {
		return "", nil
	}
	if f, ok := inputFormats[h]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: input format %q", ErrUnsupportedFormat, hint)
}

// Source is a decoded input image together with what was learned while
// reading it.
type Source struct {
	Image image.Image

	// Format is the canonical format name detected from the content.
	Format string

	// Size is the length of the encoded stream in bytes.
	Size int64
}

// Width returns the source width in pixels.
func (s *Source) Width() int { return s.Image.Bounds().Dx() }

// Height returns the source height in pixels.
func (s *Source) Height() int { return s.Image.Bounds().Dy() }

// Decode reads an encoded image from r.
//
// The container type is sniffed from the content; the hint, when not empty,
// must name a supported format but the content decides how it is decoded.
//
// # Errors
//
//   - ErrUnsupportedFormat if the hint or the sniffed content is not a
//     supported raster format
//   - ErrInvalidInput if the stream is larger than MaxSourceBytes, declares
//     more than MaxSourcePixels or decodes to an empty image
func Decode(r io.Reader, hint string) (*Source, error) {
	if _, err := NormalizeFormat(hint); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > MaxSourceBytes {
		return nil, fmt.Errorf("%w: image larger than %d bytes", ErrInvalidInput, MaxSourceBytes)
	}
	return DecodeBytes(data, hint)
}

// DecodeBytes is Decode for an in-memory stream.
func DecodeBytes(data []byte, hint string) (*Source, error) {
	if _, err := NormalizeFormat(hint); err != nil {
		return nil, err
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return nil, fmt.Errorf("%w: unrecognized image data", ErrUnsupportedFormat)
	}
	format, ok := inputFormats[kind.Extension]
	if !ok {
		return nil, fmt.Errorf("%w: %s content", ErrUnsupportedFormat, kind.MIME.Value)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if cfg.Width > 0 && cfg.Height > MaxSourcePixels/cfg.Width {
		return nil, fmt.Errorf("%w: image of %dx%d exceeds %d pixels", ErrInvalidInput, cfg.Width, cfg.Height, MaxSourcePixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: image has zero size", ErrInvalidInput)
	}

	return &Source{Image: img, Format: format, Size: int64(len(data))}, nil
}

// LoadFile decodes the image stored at path, using its extension as hint.
func LoadFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return Decode(f, filepath.Ext(path))
}

// ImageInfo contains metadata about a decoded image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the canonical format detected from content, e.g. "png", "jpg".
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the image has an alpha (transparency) channel.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the length of the encoded image in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// Info describes a decoded source.
//
// Color depth is determined by the Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func (s *Source) Info() *ImageInfo {
	hasAlpha := false
	colorDepth := "8-bit"
	switch s.Image.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	return &ImageInfo{
		Width:      s.Width(),
		Height:     s.Height(),
		Format:     s.Format,
		ColorDepth: colorDepth,
		HasAlpha:   hasAlpha,
		SizeBytes:  s.Size,
	}
}
