package imaging

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

// Crop extracts one page from an image.
//
// The page is interpreted relative to the image origin, so it works for
// sub-images whose bounds do not start at (0,0). Empty pages and pages
// that extend past the image bounds are rejected rather than clamped.
func Crop(img image.Image, page PageRect) (*image.NRGBA, error) {
	bounds := img.Bounds()

	if page.Empty() {
		return nil, fmt.Errorf("%w: page (%d,%d)-(%d,%d) has no area",
			ErrDegenerateGeometry, page.Left, page.Top, page.Right, page.Bottom)
	}
	r := page.Rect().Add(bounds.Min)
	if !r.In(bounds) {
		return nil, fmt.Errorf("%w: page (%d,%d)-(%d,%d) outside image bounds %dx%d",
			ErrInvalidInput, page.Left, page.Top, page.Right, page.Bottom, bounds.Dx(), bounds.Dy())
	}

	return imaging.Crop(img, r), nil
}

// SplitOptions tunes Split.
type SplitOptions struct {
	// Workers bounds the number of pages cropped concurrently.
	// Zero means runtime.NumCPU().
	Workers int
}

// Split partitions img with spec and crops every page.
//
// Pages are returned in row-major order together with the grid that produced
// them. Cropping runs concurrently; the first failure or a cancelled context
// stops the remaining work and no pages are returned.
func Split(ctx context.Context, img image.Image, spec GridSpec, opts SplitOptions) (PageGrid, []image.Image, error) {
	b := img.Bounds()
	grid, err := Plan(b.Dx(), b.Dy(), spec)
	if err != nil {
		return PageGrid{}, nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	pages := make([]image.Image, len(grid.Pages))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, rect := range grid.Pages {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			page, err := Crop(img, rect)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			pages[i] = page
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return PageGrid{}, nil, err
	}
	return grid, pages, nil
}

// SplitPage crops only the page with the given 1-based number.
func SplitPage(img image.Image, spec GridSpec, number int) (PageGrid, image.Image, error) {
	b := img.Bounds()
	grid, err := Plan(b.Dx(), b.Dy(), spec)
	if err != nil {
		return PageGrid{}, nil, err
	}
	if number < 1 || number > len(grid.Pages) {
		return PageGrid{}, nil, fmt.Errorf("%w: page %d out of range 1-%d", ErrInvalidInput, number, len(grid.Pages))
	}

	page, err := Crop(img, grid.Pages[number-1])
	if err != nil {
		return PageGrid{}, nil, err
	}
	return grid, page, nil
}
