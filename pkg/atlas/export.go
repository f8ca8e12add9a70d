package atlas

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/astrogo/fitsio"
)

// WritePlaneFITS writes a plane as a single-HDU 32-bit FITS image.
func WritePlaneFITS(path string, p Plane, cards ...fitsio.Card) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer w.Close()

	f, err := fitsio.Create(w)
	if err != nil {
		return fmt.Errorf("creating FITS %s: %w", path, err)
	}
	defer f.Close()

	img := fitsio.NewImage(32, []int{p.Width, p.Height})
	defer img.Close()

	if len(cards) > 0 {
		if err := img.Header().Append(cards...); err != nil {
			return fmt.Errorf("writing header %s: %w", path, err)
		}
	}

	data := make([]int32, len(p.Pix))
	for i, v := range p.Pix {
		data[i] = int32(v)
	}
	if err := img.Write(&data); err != nil {
		return fmt.Errorf("writing pixel data %s: %w", path, err)
	}
	if err := f.Write(img); err != nil {
		return fmt.Errorf("writing HDU %s: %w", path, err)
	}
	return nil
}

// ExportDemuxed demultiplexes the cached pair and writes signal.fits and
// reset.fits into dir. The pipeline never calls this on its own; it is an
// explicit export.
func (v *Viewer) ExportDemuxed(dir string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	older, newer := v.cache.Pair()
	if older == nil || newer == nil {
		return ErrInsufficientFrames
	}
	if older.Raw.Bands != 1 || newer.Raw.Bands != 1 {
		return &UnsupportedShapeError{NAxis: 3}
	}

	signal, err := Demux(older.Raw.Plane(0), v.layout, Signal)
	if err != nil {
		return err
	}
	reset, err := Demux(newer.Raw.Plane(0), v.layout, Reset)
	if err != nil {
		return err
	}

	halfCard := func(h Half) fitsio.Card {
		return fitsio.Card{Name: "TAPHALF", Value: h.String(), Comment: "extracted tap half"}
	}
	if err := WritePlaneFITS(filepath.Join(dir, "signal.fits"), signal, halfCard(Signal)); err != nil {
		return err
	}
	return WritePlaneFITS(filepath.Join(dir, "reset.fits"), reset, halfCard(Reset))
}
