package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultOverlayColor is the cut-line color used by LayoutOverlay.
const DefaultOverlayColor = "#FF0000"

// LayoutOverlay draws the outline and 1-based number of every page of grid
// onto a copy of img, showing where the cuts fall. Pixels outside all pages
// (margins and the untiled edge strip) are dimmed.
func LayoutOverlay(img image.Image, grid PageGrid, lineColorHex string) (*image.RGBA, error) {
	if lineColorHex == "" {
		lineColorHex = DefaultOverlayColor
	}
	c, err := colorful.Hex(lineColorHex)
	if err != nil {
		return nil, fmt.Errorf("%w: overlay color %q", ErrInvalidInput, lineColorHex)
	}
	r, g, b := c.RGB255()
	lineColor := color.RGBA{r, g, b, 255}

	bounds := img.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	// Dim everything, then restore the pages themselves.
	shade := image.NewUniform(color.RGBA{0, 0, 0, 128})
	draw.Draw(result, result.Bounds(), shade, image.Point{}, draw.Over)
	for _, p := range grid.Pages {
		if p.Empty() {
			continue
		}
		r := p.Rect().Intersect(result.Bounds())
		draw.Draw(result, r, img, bounds.Min.Add(r.Min), draw.Src)
	}

	labelColor := color.RGBA{255, 255, 255, 255}
	bgColor := color.RGBA{0, 0, 0, 180}

	for row := 0; row < grid.Spec.Rows; row++ {
		for col := 0; col < grid.Spec.Columns; col++ {
			p := grid.At(row, col)
			if p.Empty() {
				continue
			}
			drawOutline(result, p.Rect(), lineColor)
			number := row*grid.Spec.Columns + col + 1
			drawLabel(result, p.Left+2, p.Top+2, strconv.Itoa(number), labelColor, bgColor)
		}
	}

	return result, nil
}

// drawOutline draws a 1-pixel border just inside r.
func drawOutline(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

// drawLabel draws a simple text label at the given position
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	// Simple 3x5 pixel font for digits
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if image.Pt(px, py).In(bounds) {
				img.SetRGBA(px, py, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row+1
					if image.Pt(px, py).In(bounds) {
						img.SetRGBA(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
