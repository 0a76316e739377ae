package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newFilledImage creates an in-memory image filled with one color.
func newFilledImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// newQuadrantImage creates an image with different colors in each quadrant:
// red top-left, green top-right, blue bottom-left, white bottom-right.
func newQuadrantImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var c color.Color
			if x < width/2 && y < height/2 {
				c = color.RGBA{255, 0, 0, 255}
			} else if x >= width/2 && y < height/2 {
				c = color.RGBA{0, 255, 0, 255}
			} else if x < width/2 && y >= height/2 {
				c = color.RGBA{0, 0, 255, 255}
			} else {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// encodePNG encodes img as PNG bytes.
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return buf.Bytes()
}

// writeTempPNG writes img to a PNG file in a test-scoped directory.
func writeTempPNG(t *testing.T, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, encodePNG(t, img), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

// rgb8 returns the 8-bit RGB components of the pixel at (x, y).
func rgb8(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func containsString(s, sub string) bool {
	return strings.Contains(s, sub)
}
