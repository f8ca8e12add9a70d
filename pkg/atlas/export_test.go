package atlas

import (
	"path/filepath"
	"testing"
)

func TestExportDemuxed(t *testing.T) {
	layout := TapLayout{TapWidth: 4, NumTaps: 2}
	srcDir := t.TempDir()
	outDir := t.TempDir()

	a := writeFITSFile(t, srcDir, "a.fits", layout.RawWidth(), 2, rawForLayout(layout, 2, 100, 9999))
	b := writeFITSFile(t, srcDir, "b.fits", layout.RawWidth(), 2, rawForLayout(layout, 2, 8888, 130))

	v := NewViewer(layout)
	v.SetMode(ModePaired)
	for _, p := range []string{a, b} {
		if err := v.IngestFile(p); err != nil {
			t.Fatal(err)
		}
	}
	if err := v.ExportDemuxed(outDir); err != nil {
		t.Fatal(err)
	}

	signal, err := ReadFITS(filepath.Join(outDir, "signal.fits"))
	if err != nil {
		t.Fatal(err)
	}
	reset, err := ReadFITS(filepath.Join(outDir, "reset.fits"))
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range []*Frame{signal, reset} {
		if f.Width != layout.OutWidth() || f.Height != 2 {
			t.Fatalf("exported shape = %dx%d, want %dx2", f.Width, f.Height, layout.OutWidth())
		}
	}
	// Signal halves come from the older frame, reset halves from the newer.
	if signal.Pixels[0] != 100 {
		t.Fatalf("signal pixel = %d, want 100", signal.Pixels[0])
	}
	if reset.Pixels[0] != 130 {
		t.Fatalf("reset pixel = %d, want 130", reset.Pixels[0])
	}
	if signal.Header.Get("TAPHALF") != "signal" || reset.Header.Get("TAPHALF") != "reset" {
		t.Fatal("TAPHALF cards missing from exported files")
	}
}

func TestExportDemuxedNeedsBothSlots(t *testing.T) {
	v := NewViewer(DefaultTapLayout)
	if err := v.ExportDemuxed(t.TempDir()); err == nil {
		t.Fatal("export with empty cache succeeded")
	}
}
