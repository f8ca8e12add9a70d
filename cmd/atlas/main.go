// Command atlas ingests multi-tap infrared detector readouts in FITS
// format, maintains the two-slot comparison cache, and computes the
// correlated-double-sample (reset minus signal) difference image.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/CaltechOpticalObservatories/atlas/pkg/atlas"
)

type options struct {
	dir       string
	match     bool
	diff      bool
	watch     bool
	interval  time.Duration
	outDir    string
	export    bool
	stretch   bool
	annotate  bool
	headers   bool
	maxWidth  int
	maxHeight int
	tapWidth  int
	numTaps   int
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts options
	fs := flag.NewFlagSet("atlas", flag.ContinueOnError)
	fs.StringVar(&opts.dir, "dir", "", "directory to scan for FITS files")
	fs.BoolVar(&opts.match, "match", false, "match mode: compare the two most recent frames")
	fs.BoolVar(&opts.diff, "diff", false, "compute the reset-signal difference image")
	fs.BoolVar(&opts.watch, "watch", false, "keep watching -dir for new frames")
	fs.DurationVar(&opts.interval, "interval", 2*time.Second, "poll interval in watch mode")
	fs.StringVar(&opts.outDir, "out", "", "write display PNGs into this directory")
	fs.BoolVar(&opts.export, "export", false, "write demuxed signal.fits and reset.fits into -out")
	fs.BoolVar(&opts.stretch, "stretch", false, "apply auto-contrast stretch to display PNGs")
	fs.BoolVar(&opts.annotate, "annotate", false, "burn slot labels into display PNGs")
	fs.BoolVar(&opts.headers, "headers", false, "print cached header texts")
	fs.IntVar(&opts.maxWidth, "maxw", 0, "fit display PNGs within this width (0 = no scaling)")
	fs.IntVar(&opts.maxHeight, "maxh", 0, "fit display PNGs within this height (0 = no scaling)")
	fs.IntVar(&opts.tapWidth, "tapwidth", atlas.DefaultTapLayout.TapWidth, "tap width in columns")
	fs.IntVar(&opts.numTaps, "taps", atlas.DefaultTapLayout.NumTaps, "number of readout taps")
	if err := fs.Parse(args); err != nil {
		return err
	}

	layout := atlas.TapLayout{TapWidth: opts.tapWidth, NumTaps: opts.numTaps}
	if err := layout.Validate(); err != nil {
		return err
	}
	viewer := atlas.NewViewer(layout)
	if opts.match {
		viewer.SetMode(atlas.ModePaired)
	}
	viewer.SetDirectory(opts.dir)

	files := fs.Args()
	if len(files) == 0 && opts.dir == "" {
		return errors.New("usage: atlas [flags] [file.fits ...] or atlas -dir <directory>")
	}

	for _, f := range files {
		if err := viewer.IngestFile(f); err != nil {
			return err
		}
		fmt.Printf("Loaded: %s\n", f)
	}
	if len(files) == 0 {
		if err := refresh(viewer, &opts); err != nil {
			return err
		}
	} else if err := produce(viewer, &opts); err != nil {
		return err
	}

	if opts.watch {
		return watch(viewer, &opts)
	}
	return nil
}

// refresh runs one select+ingest+output pass over the directory.
func refresh(viewer *atlas.Viewer, opts *options) error {
	if err := viewer.UpdateFromDirectory(); err != nil {
		if errors.Is(err, atlas.ErrInsufficientFrames) {
			fmt.Println("Not enough images in the directory.")
			return nil
		}
		return err
	}
	return produce(viewer, opts)
}

func produce(viewer *atlas.Viewer, opts *options) error {
	reportSlots(viewer)

	if opts.diff {
		result, err := viewer.Subtract()
		switch {
		case errors.Is(err, atlas.ErrInsufficientFrames):
			fmt.Println("Difference skipped: both slots must be populated.")
		case err != nil:
			return err
		default:
			fmt.Printf("Difference: %dx%d\n", result.Width, result.Height)
		}
	}

	if opts.headers {
		h0, h1 := viewer.HeaderTexts()
		if h0 != "" {
			fmt.Printf("--- slot 0 header ---\n%s\n", h0)
		}
		if h1 != "" {
			fmt.Printf("--- slot 1 header ---\n%s\n", h1)
		}
	}

	if opts.outDir != "" {
		if err := writeOutputs(viewer, opts); err != nil {
			return err
		}
		if opts.export {
			if err := viewer.ExportDemuxed(opts.outDir); err != nil {
				if errors.Is(err, atlas.ErrInsufficientFrames) {
					fmt.Println("Export skipped: both slots must be populated.")
				} else {
					return err
				}
			}
		}
	}
	return nil
}

func reportSlots(viewer *atlas.Viewer) {
	s0, s1 := viewer.Cache().Pair()
	for i, s := range []*atlas.CachedFrame{s0, s1} {
		if s == nil {
			continue
		}
		fmt.Printf("Slot %d: %s (%dx%d, %d band(s), %d-bit)\n",
			i, filepath.Base(s.Path), s.Raw.Width, s.Raw.Height, s.Raw.Bands, s.Raw.BitDepth)
	}
}

func writeOutputs(viewer *atlas.Viewer, opts *options) error {
	s0, s1 := viewer.Cache().Pair()
	slots := []struct {
		frame *atlas.CachedFrame
		label string
		name  string
	}{
		{s0, "slot 0", "slot0.png"},
		{s1, "slot 1", "slot1.png"},
	}
	for _, s := range slots {
		if s.frame == nil {
			continue
		}
		img := s.frame.Display
		if opts.stretch {
			if gray, ok := img.(*image.Gray); ok {
				bot, top, err := atlas.AutoStretchLimits(gray.Pix)
				if err != nil {
					return err
				}
				b := gray.Bounds()
				img = atlas.GrayImage(atlas.ApplyStretch(gray.Pix, bot, top), b.Dx(), b.Dy())
			}
		}
		if opts.annotate {
			img = atlas.Annotate(img, s.label+"  "+filepath.Base(s.frame.Path))
		}
		if opts.maxWidth > 0 && opts.maxHeight > 0 {
			img = atlas.FitDisplay(img, opts.maxWidth, opts.maxHeight)
		}
		if err := writePNG(filepath.Join(opts.outDir, s.name), img); err != nil {
			return err
		}
	}

	if result := viewer.Result(); result != nil {
		img := image.Image(atlas.DifferenceImage(result))
		if opts.maxWidth > 0 && opts.maxHeight > 0 {
			img = atlas.FitDisplay(img, opts.maxWidth, opts.maxHeight)
		}
		if err := writePNG(filepath.Join(opts.outDir, "difference.png"), img); err != nil {
			return err
		}
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
