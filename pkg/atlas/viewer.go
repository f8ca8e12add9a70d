package atlas

import (
	"fmt"
	"path/filepath"
	"sync"
)

// Viewer owns the frame cache and drives the ingest and differencing
// pipeline. One ingest sequence runs at a time: concurrent triggers (a
// poll timer firing during a manual open, say) serialize on the viewer's
// mutex, while reads for display go through the cache's own lock and
// never see a half-rotated pair.
type Viewer struct {
	mu     sync.Mutex
	cache  *FrameCache
	layout TapLayout
	mode   Mode
	dir    string
	result *DifferenceFrame
}

// NewViewer creates a viewer with an empty cache.
func NewViewer(layout TapLayout) *Viewer {
	return &Viewer{
		cache:  NewFrameCache(),
		layout: layout,
	}
}

// Cache exposes the viewer's frame cache.
func (v *Viewer) Cache() *FrameCache { return v.cache }

// Mode returns the current cache rotation mode.
func (v *Viewer) Mode() Mode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mode
}

// SetMode switches between single and paired display. Cached slots
// survive mode changes in both directions.
func (v *Viewer) SetMode(m Mode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode = m
}

// SetDirectory sets the directory UpdateFromDirectory scans.
func (v *Viewer) SetDirectory(dir string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dir = dir
}

// IngestFile loads a FITS file, prepares its display image and header
// text, and rotates it into the cache. On any load or shape failure the
// cache is left exactly as it was.
func (v *Viewer) IngestFile(path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ingestLocked(path)
}

func (v *Viewer) ingestLocked(path string) error {
	frame, err := v.loadFrame(path)
	if err != nil {
		return err
	}
	v.cache.Put(frame, v.mode)
	return nil
}

func (v *Viewer) loadFrame(path string) (*CachedFrame, error) {
	frame, err := ReadFITS(path)
	if err != nil {
		return nil, fmt.Errorf("ingesting %s: %w", filepath.Base(path), err)
	}
	display, err := DisplayImage(frame)
	if err != nil {
		return nil, fmt.Errorf("ingesting %s: %w", filepath.Base(path), err)
	}
	return &CachedFrame{
		Raw:        frame,
		Display:    display,
		HeaderText: frame.Header.Text(),
		Path:       path,
	}, nil
}

// UpdateFromDirectory selects the most recent FITS file(s) in the
// viewer's directory and feeds them through the normal ingest path,
// oldest first. In paired mode a directory with fewer than two FITS
// files yields ErrInsufficientFrames. Every selected frame loads before
// any slot rotates, so a file that fails to parse (one still being
// written, say) leaves the cache exactly as it was.
func (v *Viewer) UpdateFromDirectory() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.dir == "" {
		return ErrInsufficientFrames
	}
	paths, err := SelectLatest(v.dir, v.mode)
	if err != nil {
		return err
	}
	frames := make([]*CachedFrame, 0, len(paths))
	for _, p := range paths {
		frame, err := v.loadFrame(p)
		if err != nil {
			return err
		}
		frames = append(frames, frame)
	}
	for _, frame := range frames {
		v.cache.Put(frame, v.mode)
	}
	return nil
}

// Subtract demultiplexes the cached pair and computes the
// correlated-double-sample difference: the signal halves come from the
// older frame in slot 0, the reset halves from the newer frame in slot 1.
// Both demultiplexes read the slots' raw pixel data, never a re-decoded
// display image. With either slot empty it returns ErrInsufficientFrames
// and keeps any previous result.
func (v *Viewer) Subtract() (*DifferenceFrame, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	older, newer := v.cache.Pair()
	if older == nil || newer == nil {
		return nil, ErrInsufficientFrames
	}
	if older.Raw.Bands != 1 || newer.Raw.Bands != 1 {
		return nil, &UnsupportedShapeError{NAxis: 3}
	}

	signal, err := Demux(older.Raw.Plane(0), v.layout, Signal)
	if err != nil {
		return nil, err
	}
	reset, err := Demux(newer.Raw.Plane(0), v.layout, Reset)
	if err != nil {
		return nil, err
	}
	result, err := Difference(signal, reset, v.layout)
	if err != nil {
		return nil, err
	}
	v.result = result
	return result, nil
}

// Result returns the most recent difference frame, or nil.
func (v *Viewer) Result() *DifferenceFrame {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result
}

// HeaderTexts returns the header texts of the cached pair, empty strings
// for empty slots.
func (v *Viewer) HeaderTexts() (string, string) {
	var h0, h1 string
	s0, s1 := v.cache.Pair()
	if s0 != nil {
		h0 = s0.HeaderText
	}
	if s1 != nil {
		h1 = s1.HeaderText
	}
	return h0, h1
}

// Reset clears the cache and any computed difference.
func (v *Viewer) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cache.Reset()
	v.result = nil
}
