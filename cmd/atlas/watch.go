package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/maruel/interrupt"
	fsnotify "gopkg.in/fsnotify.v1"

	"github.com/CaltechOpticalObservatories/atlas/pkg/atlas"
)

// watch re-runs the directory ingest pass on a timer and on filesystem
// events until interrupted. Triggers funnel through one goroutine, and
// the viewer serializes ingest internally, so a timer tick landing on top
// of an fsnotify event cannot interleave two ingest sequences.
func watch(viewer *atlas.Viewer, opts *options) error {
	if opts.dir == "" {
		return errors.New("watch mode needs -dir")
	}
	interrupt.HandleCtrlC()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(opts.dir); err != nil {
		return fmt.Errorf("watching %s: %w", opts.dir, err)
	}

	ticker := time.NewTicker(opts.interval)
	defer ticker.Stop()

	fmt.Printf("Watching %s every %s (Ctrl-C to stop)\n", opts.dir, opts.interval)
	for {
		select {
		case <-interrupt.Channel:
			return nil
		case err := <-watcher.Errors:
			return fmt.Errorf("watcher: %w", err)
		case ev := <-watcher.Events:
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			refreshAndReport(viewer, opts)
		case <-ticker.C:
			refreshAndReport(viewer, opts)
		}
	}
}

// refreshAndReport runs one directory pass and reports failures without
// stopping the loop. Watcher events routinely fire while a frame is
// still being written; such a file fails to parse now and parses fine on
// a later trigger.
func refreshAndReport(viewer *atlas.Viewer, opts *options) {
	if err := refresh(viewer, opts); err != nil {
		fmt.Fprintf(os.Stderr, "refresh: %v\n", err)
	}
}
