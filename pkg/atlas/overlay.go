package atlas

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Annotate burns a label (slot name, file name) into the top-left corner
// of a display image, returning a new image. The label sits on a dark
// backing strip so it stays readable over bright frames.
func Annotate(img image.Image, label string) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	if label == "" {
		return out
	}

	face := basicfont.Face7x13
	textW := font.MeasureString(face, label).Ceil()
	pad := 4
	stripW := textW + 2*pad
	stripH := face.Height + 2*pad
	if stripW > b.Dx() {
		stripW = b.Dx()
	}
	if stripH > b.Dy() {
		stripH = b.Dy()
	}

	strip := image.Rect(0, 0, stripW, stripH)
	draw.Draw(out, strip, &image.Uniform{color.RGBA{0, 0, 0, 200}}, image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(color.RGBA{255, 255, 0, 255}),
		Face: face,
		Dot:  fixed.P(pad, pad+face.Ascent),
	}
	d.DrawString(label)
	return out
}
