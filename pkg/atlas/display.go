package atlas

import (
	"fmt"
	"image"

	"github.com/montanaflynn/stats"
	"github.com/nfnt/resize"
)

// DisplayImage prepares a frame for display. A 2D frame is normalized to
// 8-bit grayscale. A 3- or 4-band frame is passed through as color
// without normalization. Any other band count is treated as
// multispectral and only band 0 is shown; the remaining bands are
// dropped.
func DisplayImage(f *Frame) (image.Image, error) {
	switch {
	case f.Bands == 1:
		return GrayImage(Normalize(f.Plane(0)), f.Width, f.Height), nil
	case f.RGB():
		return RGBImage(f), nil
	case f.Bands > 1:
		return GrayImage(Normalize(f.Plane(0)), f.Width, f.Height), nil
	default:
		return nil, &UnsupportedShapeError{Bands: f.Bands}
	}
}

// GrayImage wraps a normalized 8-bit plane as an image.
func GrayImage(display []uint8, width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+width], display[y*width:(y+1)*width])
	}
	return img
}

// DifferenceImage renders a difference frame for display by shifting the
// signed range into unsigned 16-bit grayscale.
func DifferenceImage(d *DifferenceFrame) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, d.Width, d.Height))
	for i, v := range d.Pix {
		u := uint16(int32(v) + 32768)
		img.Pix[i*2] = uint8(u >> 8)
		img.Pix[i*2+1] = uint8(u)
	}
	return img
}

// RGBImage converts a 3- or 4-band frame to a color image without
// normalization. Band values above 255 saturate.
func RGBImage(f *Frame) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	n := f.Width * f.Height
	band := func(b, i int) uint8 {
		v := f.Pixels[b*n+i]
		if v > 255 {
			return 255
		}
		return uint8(v)
	}
	for i := 0; i < n; i++ {
		o := i * 4
		img.Pix[o] = band(0, i)
		img.Pix[o+1] = band(1, i)
		img.Pix[o+2] = band(2, i)
		if f.Bands == 4 {
			img.Pix[o+3] = band(3, i)
		} else {
			img.Pix[o+3] = 255
		}
	}
	return img
}

// FitDisplay scales an image to fit within maxWidth x maxHeight while
// keeping its aspect ratio.
func FitDisplay(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return img
	}
	scaleX := float64(maxWidth) / float64(b.Dx())
	scaleY := float64(maxHeight) / float64(b.Dy())
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	w := uint(float64(b.Dx()) * scale)
	h := uint(float64(b.Dy()) * scale)
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return resize.Resize(w, h, img, resize.Lanczos3)
}

// AutoStretchLimits derives black/white display levels from the standard
// deviation of the mid-range pixels: black at -3 sigma, white at +5
// sigma, clamped to [0, 255]. Fully black and fully white pixels are
// excluded from the estimate.
func AutoStretchLimits(display []uint8) (float64, float64, error) {
	var data []float64
	for _, v := range display {
		if v > 0 && v < 255 {
			data = append(data, float64(v))
		}
	}
	if len(data) == 0 {
		return 0, 255, nil
	}
	std, err := stats.StandardDeviation(data)
	if err != nil {
		return 0, 0, fmt.Errorf("stretch limits: %w", err)
	}
	bot := -3 * std
	top := 5 * std
	if bot < 0 {
		bot = 0
	}
	if top > 255 {
		top = 255
	}
	return bot, top, nil
}

// ApplyStretch remaps display bytes so values at or below bot become 0
// and values at or above top become 255.
func ApplyStretch(display []uint8, bot, top float64) []uint8 {
	out := make([]uint8, len(display))
	if top <= bot {
		return out
	}
	scale := 255.0 / (top - bot)
	for i, v := range display {
		s := (float64(v) - bot) * scale
		if s < 0 {
			s = 0
		} else if s > 255 {
			s = 255
		}
		out[i] = uint8(s)
	}
	return out
}
