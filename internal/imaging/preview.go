package imaging

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/clone"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Default preview geometry.
const (
	DefaultThumbnailSize = 150
	DefaultGutter        = 8
	DefaultBackground    = "#FFFFFF"
)

// Thumbnail resizes img to exactly width x height with a Lanczos filter.
// The aspect ratio is not preserved.
func Thumbnail(img image.Image, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: thumbnail size must be positive, got %dx%d", ErrInvalidInput, width, height)
	}
	return imaging.Resize(img, width, height, imaging.Lanczos), nil
}

// PreviewOptions controls the contact sheet produced by Preview.
type PreviewOptions struct {
	// CellWidth and CellHeight bound each page thumbnail. Zero means
	// DefaultThumbnailSize.
	CellWidth  int
	CellHeight int

	// Gutter is the space in pixels around each thumbnail. Negative means
	// DefaultGutter.
	Gutter int

	// Background is a "#RRGGBB" color for the sheet. Empty means
	// DefaultBackground.
	Background string
}

func (o PreviewOptions) withDefaults() PreviewOptions {
	if o.CellWidth <= 0 {
		o.CellWidth = DefaultThumbnailSize
	}
	if o.CellHeight <= 0 {
		o.CellHeight = DefaultThumbnailSize
	}
	if o.Gutter < 0 {
		o.Gutter = DefaultGutter
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	return o
}

// Preview lays page thumbnails out on one sheet in row-major grid order,
// columns pages per row, the way the panel will be assembled.
//
// Each page is fitted into a CellWidth x CellHeight cell keeping its aspect
// ratio and centered there; cells are separated by the gutter.
func Preview(pages []image.Image, columns int, opts PreviewOptions) (*image.RGBA, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no pages to preview", ErrInvalidInput)
	}
	if columns < 1 {
		return nil, fmt.Errorf("%w: columns must be >= 1, got %d", ErrInvalidInput, columns)
	}
	opts = opts.withDefaults()

	bg, err := colorful.Hex(opts.Background)
	if err != nil {
		return nil, fmt.Errorf("%w: background color %q", ErrInvalidInput, opts.Background)
	}

	rows := (len(pages) + columns - 1) / columns
	pad := opts.Gutter / 2
	cellW := opts.CellWidth + 2*pad
	cellH := opts.CellHeight + 2*pad

	sheet := image.NewRGBA(image.Rect(0, 0, columns*cellW, rows*cellH))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for i, page := range pages {
		thumb := imaging.Fit(page, opts.CellWidth, opts.CellHeight, imaging.Lanczos)
		padded := clone.Pad(thumb, pad, pad, clone.NoFill)

		col, row := i%columns, i/columns
		offX := (opts.CellWidth - thumb.Bounds().Dx()) / 2
		offY := (opts.CellHeight - thumb.Bounds().Dy()) / 2
		origin := image.Pt(col*cellW+offX, row*cellH+offY)
		dst := image.Rectangle{Min: origin, Max: origin.Add(padded.Bounds().Size())}
		draw.Draw(sheet, dst, padded, padded.Bounds().Min, draw.Over)
	}

	return sheet, nil
}
