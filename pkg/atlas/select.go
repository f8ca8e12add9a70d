package atlas

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type fitsEntry struct {
	path    string
	modTime time.Time
}

// SelectLatest lists the FITS files in dir and picks which become the
// next displayed frame(s): the single most recently modified file in
// single mode, the two most recent in paired mode. Paths come back oldest
// first so feeding them through the ingest path in order lands the older
// frame in slot 0. A paired-mode directory with fewer than two FITS files
// yields ErrInsufficientFrames and no paths.
func SelectLatest(dir string, mode Mode) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing directory: %w", err)
	}

	var files []fitsEntry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".fits") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fitsEntry{
			path:    filepath.Join(dir, e.Name()),
			modTime: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	want := 1
	if mode == ModePaired {
		want = 2
	}
	if len(files) < want {
		return nil, ErrInsufficientFrames
	}

	paths := make([]string, 0, want)
	for _, f := range files[len(files)-want:] {
		paths = append(paths, f.path)
	}
	return paths, nil
}
