package atlas

import (
	"errors"
	"testing"
)

// smallLayout keeps content-level tests readable: 2 taps of 4 columns
// plus one tap width of overscan gives a 12-column raw frame.
var smallLayout = TapLayout{TapWidth: 4, NumTaps: 2}

func TestDemuxShapeLaw(t *testing.T) {
	layout := DefaultTapLayout
	raw := NewPlane(layout.RawWidth(), 3)
	for _, half := range []Half{Signal, Reset} {
		out, err := Demux(raw, layout, half)
		if err != nil {
			t.Fatalf("%v demux: %v", half, err)
		}
		if out.Width != 32*64 || out.Height != 3 {
			t.Fatalf("%v demux shape = %dx%d, want %dx3", half, out.Width, out.Height, 32*64)
		}
	}
}

func TestDemuxShapeMismatch(t *testing.T) {
	layout := DefaultTapLayout
	for _, width := range []int{layout.RawWidth() - 1, layout.RawWidth() + 128, 32 * 128, 1} {
		raw := NewPlane(width, 2)
		_, err := Demux(raw, layout, Signal)
		var shapeErr *ShapeMismatchError
		if !errors.As(err, &shapeErr) {
			t.Fatalf("width %d: got %v, want ShapeMismatchError", width, err)
		}
		if shapeErr.Expected != layout.RawWidth() || shapeErr.Actual != width {
			t.Errorf("width %d: error carries %d/%d", width, shapeErr.Expected, shapeErr.Actual)
		}
	}
}

func TestDemuxSelectsHalves(t *testing.T) {
	// Encode tap index, half, and column position into each pixel so
	// misplaced columns are detectable.
	raw := NewPlane(smallLayout.RawWidth(), 2)
	for y := 0; y < raw.Height; y++ {
		row := raw.Row(y)
		for x := range row {
			row[x] = uint16(1000*y) + uint16(x)
		}
	}

	signal, err := Demux(raw, smallLayout, Signal)
	if err != nil {
		t.Fatal(err)
	}
	reset, err := Demux(raw, smallLayout, Reset)
	if err != nil {
		t.Fatal(err)
	}

	// Tap 0 occupies raw columns 0..3, tap 1 columns 4..7; overscan 8..11
	// must never appear.
	wantSignal := []uint16{0, 1, 4, 5}
	wantReset := []uint16{2, 3, 6, 7}
	for y := 0; y < 2; y++ {
		base := uint16(1000 * y)
		for i := range wantSignal {
			if got := signal.Row(y)[i]; got != base+wantSignal[i] {
				t.Errorf("signal[%d][%d] = %d, want %d", y, i, got, base+wantSignal[i])
			}
			if got := reset.Row(y)[i]; got != base+wantReset[i] {
				t.Errorf("reset[%d][%d] = %d, want %d", y, i, got, base+wantReset[i])
			}
		}
	}
}

func TestDemuxPartitionRoundTrip(t *testing.T) {
	layout := TapLayout{TapWidth: 8, NumTaps: 4}
	raw := NewPlane(layout.RawWidth(), 3)
	for i := range raw.Pix {
		raw.Pix[i] = uint16(i * 7)
	}

	signal, err := Demux(raw, layout, Signal)
	if err != nil {
		t.Fatal(err)
	}
	reset, err := Demux(raw, layout, Reset)
	if err != nil {
		t.Fatal(err)
	}

	// Interleaving the halves back tap by tap must reconstruct every raw
	// column except the trailing overscan margin.
	half := layout.HalfWidth()
	for y := 0; y < raw.Height; y++ {
		for tap := 0; tap < layout.NumTaps; tap++ {
			for c := 0; c < half; c++ {
				wantSig := raw.Row(y)[tap*layout.TapWidth+c]
				wantRst := raw.Row(y)[tap*layout.TapWidth+half+c]
				if got := signal.Row(y)[tap*half+c]; got != wantSig {
					t.Fatalf("signal tap %d col %d row %d: got %d, want %d", tap, c, y, got, wantSig)
				}
				if got := reset.Row(y)[tap*half+c]; got != wantRst {
					t.Fatalf("reset tap %d col %d row %d: got %d, want %d", tap, c, y, got, wantRst)
				}
			}
		}
	}
}

func TestDemuxRejectsBadLayout(t *testing.T) {
	raw := NewPlane(10, 2)
	if _, err := Demux(raw, TapLayout{TapWidth: 3, NumTaps: 2}, Signal); err == nil {
		t.Error("odd tap width accepted")
	}
	if _, err := Demux(raw, TapLayout{TapWidth: 4, NumTaps: 0}, Signal); err == nil {
		t.Error("zero taps accepted")
	}
}
