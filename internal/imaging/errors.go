package imaging

import "errors"

// Error categories returned by this package. Callers should match them with
// errors.Is; the returned errors carry the details in their message.
var (
	// ErrInvalidInput reports a grid spec, image or page index that cannot be
	// partitioned at all (non-positive columns/rows, negative margin, empty
	// image, page out of range).
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateGeometry reports a grid whose margins leave no positive
	// page area.
	ErrDegenerateGeometry = errors.New("margin too large for this grid")

	// ErrUnsupportedFormat reports an input or output format the codec
	// cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported format")
)
