package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CaltechOpticalObservatories/atlas/pkg/atlas"
)

func fitsBytes(width, height int, value uint16) []byte {
	cards := []string{
		fmt.Sprintf("%-8s= %20s%50s", "SIMPLE", "T", ""),
		fmt.Sprintf("%-8s= %20s%50s", "BITPIX", "16", ""),
		fmt.Sprintf("%-8s= %20s%50s", "NAXIS", "2", ""),
		fmt.Sprintf("%-8s= %20d%50s", "NAXIS1", width, ""),
		fmt.Sprintf("%-8s= %20d%50s", "NAXIS2", height, ""),
		fmt.Sprintf("%-8s= %20s%50s", "BZERO", "32768", ""),
		fmt.Sprintf("%-80s", "END"),
	}
	header := strings.Join(cards, "")
	for len(header)%2880 != 0 {
		header += strings.Repeat(" ", 80)
	}
	data := make([]byte, width*height*2)
	for i := 0; i < width*height; i++ {
		binary.BigEndian.PutUint16(data[i*2:], uint16(int16(int32(value)-32768)))
	}
	for len(data)%2880 != 0 {
		data = append(data, 0)
	}
	return append([]byte(header), data...)
}

func TestRefreshAndReportSurvivesPartialFile(t *testing.T) {
	layout := atlas.TapLayout{TapWidth: 4, NumTaps: 2}
	dir := t.TempDir()

	good := fitsBytes(layout.RawWidth(), 2, 100)
	if err := os.WriteFile(filepath.Join(dir, "a.fits"), good, 0o644); err != nil {
		t.Fatal(err)
	}
	// A frame still being flushed: header cut off mid-card.
	partial := fitsBytes(layout.RawWidth(), 2, 130)
	if err := os.WriteFile(filepath.Join(dir, "b.fits"), partial[:100], 0o644); err != nil {
		t.Fatal(err)
	}

	viewer := atlas.NewViewer(layout)
	viewer.SetMode(atlas.ModePaired)
	viewer.SetDirectory(dir)
	opts := &options{dir: dir, match: true}

	// The failing pass reports instead of ending the watch loop, and
	// applies nothing.
	refreshAndReport(viewer, opts)
	if viewer.Cache().Slot(0) != nil || viewer.Cache().Slot(1) != nil {
		t.Fatal("failed pass mutated the cache")
	}

	// The write completes; the next trigger picks both frames up.
	if err := os.WriteFile(filepath.Join(dir, "b.fits"), partial, 0o644); err != nil {
		t.Fatal(err)
	}
	refreshAndReport(viewer, opts)
	if !viewer.Cache().Full() {
		t.Fatal("recovery pass did not fill the cache")
	}
}
