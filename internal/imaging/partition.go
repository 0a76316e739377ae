package imaging

import (
	"fmt"
	"image"

	"go.uber.org/multierr"
)

// GridSpec describes how an image is divided into pages.
type GridSpec struct {
	// Columns is the number of pages across. Must be at least 1.
	Columns int `json:"columns"`

	// Rows is the number of pages down. Must be at least 1.
	Rows int `json:"rows"`

	// Margin is the gap in pixels removed between adjacent pages.
	// Must be non-negative; 0 means pages touch.
	Margin int `json:"margin"`
}

// MaxPages bounds Columns*Rows so a request cannot allocate an unbounded
// page list.
const MaxPages = 10000

// Validate reports every reason the spec cannot be partitioned.
//
// The returned error wraps ErrInvalidInput. When more than one field is
// wrong the individual problems are combined, so the caller can show them
// all at once.
func (g GridSpec) Validate() error {
	var err error
	if g.Columns < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: columns must be >= 1, got %d", ErrInvalidInput, g.Columns))
	}
	if g.Rows < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: rows must be >= 1, got %d", ErrInvalidInput, g.Rows))
	}
	if g.Margin < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: margin must be >= 0, got %d", ErrInvalidInput, g.Margin))
	}
	// Each factor is bounded first so the product cannot overflow.
	if g.Columns > MaxPages || g.Rows > MaxPages || (g.Columns >= 1 && g.Rows >= 1 && g.Columns*g.Rows > MaxPages) {
		err = multierr.Append(err, fmt.Errorf("%w: %dx%d grid exceeds %d pages", ErrInvalidInput, g.Columns, g.Rows, MaxPages))
	}
	return err
}

// Pages returns the number of pages the spec produces.
func (g GridSpec) Pages() int {
	return g.Columns * g.Rows
}

// PageRect is the crop rectangle of one page in source pixel coordinates.
// (Left, Top) is inclusive, (Right, Bottom) is exclusive.
type PageRect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Rect converts the page to an image.Rectangle.
func (r PageRect) Rect() image.Rectangle {
	return image.Rectangle{Min: image.Pt(r.Left, r.Top), Max: image.Pt(r.Right, r.Bottom)}
}

// Empty reports whether the page has no area.
func (r PageRect) Empty() bool {
	return r.Left >= r.Right || r.Top >= r.Bottom
}

// Dx returns the page width.
func (r PageRect) Dx() int { return r.Right - r.Left }

// Dy returns the page height.
func (r PageRect) Dy() int { return r.Bottom - r.Top }

// PageGrid is the ordered result of partitioning an image.
//
// Pages are in row-major order: index i is row i/Columns, column
// i%Columns. The preview and the 1-based page numbering depend on it.
type PageGrid struct {
	Spec       GridSpec   `json:"spec"`
	PageWidth  int        `json:"page_width"`
	PageHeight int        `json:"page_height"`
	Pages      []PageRect `json:"pages"`
}

// At returns the page at the given row and column.
func (g PageGrid) At(row, col int) PageRect {
	return g.Pages[row*g.Spec.Columns+col]
}

// pageSize returns the truncated page dimensions for the given source size.
// The values may be zero or negative when margins exceed the available space.
func pageSize(width, height int, spec GridSpec) (int, int) {
	pw := (width - (spec.Columns-1)*spec.Margin) / spec.Columns
	ph := (height - (spec.Rows-1)*spec.Margin) / spec.Rows
	return pw, ph
}

// Partition computes the crop rectangles for every page of an image with the
// given pixel dimensions.
//
// Page dimensions use truncating integer division, so when the source does
// not divide evenly a strip on the right and bottom edges is left untiled.
// Partition depends only on the dimensions and never inspects pixels.
//
// Partition does not validate its inputs. spec must pass GridSpec.Validate. When the margins leave no positive page
// area the returned rectangles are empty or inverted; use CheckGeometry or
// Plan to reject that case before cropping.
func Partition(width, height int, spec GridSpec) PageGrid {
	pw, ph := pageSize(width, height, spec)

	pages := make([]PageRect, 0, spec.Pages())
	for y := 0; y < spec.Rows; y++ {
		for x := 0; x < spec.Columns; x++ {
			left := x * (pw + spec.Margin)
			top := y * (ph + spec.Margin)
			pages = append(pages, PageRect{
				Left:   left,
				Top:    top,
				Right:  left + pw,
				Bottom: top + ph,
			})
		}
	}

	return PageGrid{
		Spec:       spec,
		PageWidth:  pw,
		PageHeight: ph,
		Pages:      pages,
	}
}

// CheckGeometry returns ErrDegenerateGeometry when spec applied to a
// width x height image leaves no positive page area. It never multiplies
// margins out, so it is safe for any int inputs.
func CheckGeometry(width, height int, spec GridSpec) error {
	if fits(width, spec.Columns, spec.Margin) && fits(height, spec.Rows, spec.Margin) {
		return nil
	}
	return fmt.Errorf("%w: %dx%d pages with %dpx margin leave no page area on a %dx%d image",
		ErrDegenerateGeometry, spec.Columns, spec.Rows, spec.Margin, width, height)
}

// fits reports whether n pages of at least one pixel, separated by margin,
// fit into size; that is (n-1)*margin + n <= size.
func fits(size, n, margin int) bool {
	if n < 1 || size < n {
		return false
	}
	if n == 1 || margin <= 0 {
		return true
	}
	return margin <= (size-n)/(n-1)
}

// Plan validates the inputs, partitions the image and rejects degenerate
// geometry. It is the entry point used before any page is cropped.
//
// # Errors
//
//   - ErrInvalidInput if width or height is not positive or the spec is invalid
//   - ErrDegenerateGeometry if no positive page area remains
func Plan(width, height int, spec GridSpec) (PageGrid, error) {
	var err error
	if width <= 0 || height <= 0 {
		err = fmt.Errorf("%w: image must have positive size, got %dx%d", ErrInvalidInput, width, height)
	}
	err = multierr.Append(err, spec.Validate())
	if err != nil {
		return PageGrid{}, err
	}
	if err := CheckGeometry(width, height, spec); err != nil {
		return PageGrid{}, err
	}
	return Partition(width, height, spec), nil
}
