// Package imaging splits a raster image into a grid of printable pages.
//
// The core is Partition, a pure function from image dimensions and a
// GridSpec to the PageGrid of crop rectangles. Everything else in the
// package works around it: decoding the input (Decode, LoadFile), cropping
// pages (Crop, Split), encoding them (EncodeSingle, EncodeMulti), and
// previews (Thumbnail, Preview, LayoutOverlay).
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For pages, (Left,Top) is inclusive and (Right,Bottom) is exclusive
//
// # Page Order
//
// Pages are always row-major: all columns of row 0, then row 1, and so on.
// Page numbers shown to users are 1-based indexes into that order.
//
// # Geometry
//
// Page sizes use truncating integer division:
//
//	pageWidth  = (width  - (columns-1)*margin) / columns
//	pageHeight = (height - (rows-1)*margin) / rows
//
// A strip on the right and bottom edges may stay untiled; that is expected.
// When the margins leave no positive page area Partition still returns
// rectangles, and Plan reports ErrDegenerateGeometry.
//
// # Thread Safety
//
// All functions are stateless and may be called concurrently. Split crops
// pages in parallel internally.
//
// # Error Handling
//
// Errors wrap one of ErrInvalidInput, ErrDegenerateGeometry or
// ErrUnsupportedFormat; use errors.Is to classify them.
package imaging
