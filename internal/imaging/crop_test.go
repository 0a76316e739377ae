package imaging

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestCrop(t *testing.T) {
	img := newQuadrantImage(100, 100)

	page, err := Crop(img, PageRect{0, 0, 50, 50})
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if page.Bounds().Dx() != 50 || page.Bounds().Dy() != 50 {
		t.Errorf("dimensions: got %dx%d, want 50x50", page.Bounds().Dx(), page.Bounds().Dy())
	}
	if r, g, b := rgb8(page, 25, 25); r != 255 || g != 0 || b != 0 {
		t.Errorf("cropped color: got (%d,%d,%d), want (255,0,0)", r, g, b)
	}
}

func TestCrop_SubImageOrigin(t *testing.T) {
	full := newQuadrantImage(100, 100)
	sub := full.SubImage(image.Rect(50, 0, 100, 100))

	// (0,0)-(50,50) of the sub-image is the green top-right quadrant.
	page, err := Crop(sub, PageRect{0, 0, 50, 50})
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	if r, g, b := rgb8(page, 10, 10); r != 0 || g != 255 || b != 0 {
		t.Errorf("cropped color: got (%d,%d,%d), want (0,255,0)", r, g, b)
	}
}

func TestCrop_Rejects(t *testing.T) {
	img := newFilledImage(100, 100, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name string
		page PageRect
		want error
	}{
		{"left negative", PageRect{-1, 0, 50, 50}, ErrInvalidInput},
		{"right too large", PageRect{0, 0, 101, 50}, ErrInvalidInput},
		{"bottom too large", PageRect{0, 0, 50, 101}, ErrInvalidInput},
		{"zero width", PageRect{50, 0, 50, 50}, ErrDegenerateGeometry},
		{"inverted", PageRect{60, 60, 50, 50}, ErrDegenerateGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Crop(img, tt.page)
			if !errors.Is(err, tt.want) {
				t.Errorf("Crop(%v) error = %v, want %v", tt.page, err, tt.want)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	img := newQuadrantImage(100, 100)

	grid, pages, err := Split(context.Background(), img, GridSpec{Columns: 2, Rows: 2}, SplitOptions{})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(pages) != 4 || len(grid.Pages) != 4 {
		t.Fatalf("got %d pages and %d rects, want 4", len(pages), len(grid.Pages))
	}

	want := [][3]uint8{
		{255, 0, 0},
		{0, 255, 0},
		{0, 0, 255},
		{255, 255, 255},
	}
	for i, page := range pages {
		if page.Bounds().Dx() != 50 || page.Bounds().Dy() != 50 {
			t.Errorf("page %d: got %dx%d, want 50x50", i+1, page.Bounds().Dx(), page.Bounds().Dy())
		}
		r, g, b := rgb8(page, 25, 25)
		if [3]uint8{r, g, b} != want[i] {
			t.Errorf("page %d color: got (%d,%d,%d), want %v", i+1, r, g, b, want[i])
		}
	}
}

func TestSplit_SingleWorker(t *testing.T) {
	img := newQuadrantImage(90, 60)

	_, pages, err := Split(context.Background(), img, GridSpec{Columns: 3, Rows: 2, Margin: 3}, SplitOptions{Workers: 1})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	for i, page := range pages {
		if page.Bounds().Dx() != 28 || page.Bounds().Dy() != 28 {
			t.Errorf("page %d: got %dx%d, want 28x28", i+1, page.Bounds().Dx(), page.Bounds().Dy())
		}
	}
}

func TestSplit_Degenerate(t *testing.T) {
	img := newFilledImage(50, 50, color.White)

	_, pages, err := Split(context.Background(), img, GridSpec{Columns: 5, Rows: 5, Margin: 20}, SplitOptions{})
	if !errors.Is(err, ErrDegenerateGeometry) {
		t.Fatalf("got %v, want ErrDegenerateGeometry", err)
	}
	if pages != nil {
		t.Error("no pages should be returned on error")
	}
}

func TestSplit_Cancelled(t *testing.T) {
	img := newFilledImage(50, 50, color.White)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Split(ctx, img, GridSpec{Columns: 2, Rows: 2}, SplitOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestSplitPage(t *testing.T) {
	img := newQuadrantImage(100, 100)

	_, page, err := SplitPage(img, GridSpec{Columns: 2, Rows: 2}, 3)
	if err != nil {
		t.Fatalf("SplitPage failed: %v", err)
	}
	if r, g, b := rgb8(page, 10, 10); r != 0 || g != 0 || b != 255 {
		t.Errorf("page 3 color: got (%d,%d,%d), want (0,0,255)", r, g, b)
	}
}

func TestSplitPage_OutOfRange(t *testing.T) {
	img := newQuadrantImage(100, 100)

	for _, n := range []int{0, -1, 5} {
		_, _, err := SplitPage(img, GridSpec{Columns: 2, Rows: 2}, n)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("page %d: got %v, want ErrInvalidInput", n, err)
		}
	}
}
