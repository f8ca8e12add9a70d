package atlas

import (
	"errors"
	"fmt"
)

// Half selects which sample of each tap readout to extract.
type Half int

const (
	// Signal is the first half of each tap column block.
	Signal Half = iota
	// Reset is the second half of each tap column block.
	Reset
)

func (h Half) String() string {
	switch h {
	case Signal:
		return "signal"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// Mode controls how ingested frames rotate through the cache.
type Mode int

const (
	// ModeSingle displays one frame at a time; every ingest replaces slot 0.
	ModeSingle Mode = iota
	// ModePaired compares two frames side by side ("match mode").
	ModePaired
)

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModePaired:
		return "paired"
	default:
		return "unknown"
	}
}

// TapLayout describes how a raw readout width decomposes into taps.
// A conforming raw frame is TapWidth*(NumTaps+1) columns wide; the extra
// tap width is overscan margin present in the source layout.
type TapLayout struct {
	TapWidth int
	NumTaps  int
}

// DefaultTapLayout matches the H2RG-style 32-tap, 128-column readout.
var DefaultTapLayout = TapLayout{TapWidth: 128, NumTaps: 32}

// RawWidth returns the raw frame width required by the layout.
func (l TapLayout) RawWidth() int { return l.TapWidth * (l.NumTaps + 1) }

// HalfWidth returns the per-tap width of one extracted half.
func (l TapLayout) HalfWidth() int { return l.TapWidth / 2 }

// OutWidth returns the width of a demultiplexed image.
func (l TapLayout) OutWidth() int { return l.NumTaps * l.HalfWidth() }

// Validate reports whether the layout itself is usable.
func (l TapLayout) Validate() error {
	if l.TapWidth <= 0 || l.TapWidth%2 != 0 {
		return fmt.Errorf("tap width must be positive and even, got %d", l.TapWidth)
	}
	if l.NumTaps <= 0 {
		return fmt.Errorf("number of taps must be positive, got %d", l.NumTaps)
	}
	return nil
}

// Plane is a single-band row-major 16-bit image.
type Plane struct {
	Pix    []uint16
	Width  int
	Height int
}

// NewPlane allocates a zero-filled plane.
func NewPlane(width, height int) Plane {
	return Plane{Pix: make([]uint16, width*height), Width: width, Height: height}
}

// Row returns the pixels of row y.
func (p Plane) Row(y int) []uint16 {
	off := y * p.Width
	return p.Pix[off : off+p.Width]
}

// DifferenceFrame is a signed 16-bit reset-minus-signal image.
type DifferenceFrame struct {
	Pix    []int16
	Width  int
	Height int
}

// ErrNoData reports a FITS file whose primary data unit is empty.
var ErrNoData = errors.New("no data found in primary data unit")

// ErrInsufficientFrames reports that an operation needs more cached or
// on-disk frames than are available. It is a status, not a failure: the
// cache is left untouched.
var ErrInsufficientFrames = errors.New("not enough images")

// ShapeMismatchError reports a raw width that does not satisfy the tap
// layout formula, or mismatched operand shapes in a difference.
type ShapeMismatchError struct {
	Op       string
	Expected int
	Actual   int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: width %d does not match expected %d", e.Op, e.Actual, e.Expected)
}

// UnsupportedShapeError reports image dimensionality the viewer cannot
// handle.
type UnsupportedShapeError struct {
	NAxis int
	Bands int
}

func (e *UnsupportedShapeError) Error() string {
	if e.NAxis != 0 {
		return fmt.Sprintf("unsupported image shape: NAXIS=%d", e.NAxis)
	}
	return fmt.Sprintf("unsupported band count: %d", e.Bands)
}
