package atlas

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Card is one FITS header record, in file order.
type Card struct {
	Key   string
	Value string
}

// Header holds parsed FITS header cards. Cards preserves file order and
// keeps duplicate keys; lookups return the last occurrence.
type Header struct {
	Cards []Card
}

// NewHeader creates an empty Header.
func NewHeader() *Header {
	return &Header{}
}

func (h *Header) append(key, value string) {
	h.Cards = append(h.Cards, Card{Key: key, Value: value})
}

// Get returns the last value recorded for key (case-insensitive), or ""
// when the key is absent.
func (h *Header) Get(key string) string {
	key = strings.ToUpper(key)
	for i := len(h.Cards) - 1; i >= 0; i-- {
		if h.Cards[i].Key == key {
			return h.Cards[i].Value
		}
	}
	return ""
}

// GetInt parses the last value recorded for key as an integer.
func (h *Header) GetInt(key string) (int, bool) {
	v := h.Get(key)
	if v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return i, true
}

// GetDouble parses the last value recorded for key as a float.
func (h *Header) GetDouble(key string) (float64, bool) {
	v := h.Get(key)
	if v == "" {
		return 0, false
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return d, true
}

// Text renders the header one "KEY: value" line per card, in file order.
// Duplicate keys are not deduplicated.
func (h *Header) Text() string {
	var sb strings.Builder
	for i, c := range h.Cards {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(c.Key)
		sb.WriteString(": ")
		sb.WriteString(c.Value)
	}
	return sb.String()
}

// Frame is the primary data unit of a FITS file: pixel data plus header.
// Pixels are stored band-planar; Bands is 1 for a 2D image. Big-endian
// words from the file are decoded to native values before any arithmetic.
type Frame struct {
	Pixels   []uint16
	Width    int
	Height   int
	Bands    int
	BitDepth int
	Header   *Header
}

// Plane returns band b as a Plane sharing the frame's storage.
func (f *Frame) Plane(b int) Plane {
	n := f.Width * f.Height
	return Plane{Pix: f.Pixels[b*n : (b+1)*n], Width: f.Width, Height: f.Height}
}

// RGB reports whether the frame should be displayed as a color image
// without normalization.
func (f *Frame) RGB() bool { return f.Bands == 3 || f.Bands == 4 }

// ReadFITS reads the primary data unit of a FITS file.
func ReadFITS(filePath string) (*Frame, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening FITS file: %w", err)
	}
	defer f.Close()
	return readFITSFromReader(f)
}

// ReadFITSFromBytes reads the primary data unit from an in-memory FITS
// file.
func ReadFITSFromBytes(data []byte) (*Frame, error) {
	return readFITSFromReader(bytes.NewReader(data))
}

func readFITSFromReader(r io.Reader) (*Frame, error) {
	var bitpix, naxis, width, height, bands int
	bands = 1
	bzero := 0.0
	bscale := 1.0
	headerDone := false
	header := NewHeader()

	recordBuf := make([]byte, 80)

	for !headerDone {
		for i := 0; i < 36; i++ {
			_, err := io.ReadFull(r, recordBuf)
			if err != nil {
				return nil, fmt.Errorf("reading FITS header record: %w", err)
			}
			record := string(recordBuf)
			keyword := strings.TrimSpace(record[:8])

			if keyword == "END" {
				headerDone = true
				remaining := 35 - i
				if remaining > 0 {
					skipBuf := make([]byte, remaining*80)
					io.ReadFull(r, skipBuf)
				}
				break
			}

			if len(record) > 10 && record[8] == '=' && record[9] == ' ' {
				rawValue := strings.TrimSpace(strings.SplitN(record[10:], "/", 2)[0])
				parsedValue := parseFITSValue(rawValue)

				// Valueless cards stay in the card list so the header
				// text shows every key the file carries.
				if keyword != "" {
					header.append(strings.ToUpper(keyword), parsedValue)
				}

				switch keyword {
				case "BITPIX":
					bitpix, _ = strconv.Atoi(strings.TrimSpace(rawValue))
				case "NAXIS":
					naxis, _ = strconv.Atoi(strings.TrimSpace(rawValue))
				case "NAXIS1":
					width, _ = strconv.Atoi(strings.TrimSpace(rawValue))
				case "NAXIS2":
					height, _ = strconv.Atoi(strings.TrimSpace(rawValue))
				case "NAXIS3":
					bands, _ = strconv.Atoi(strings.TrimSpace(rawValue))
				case "BZERO":
					bzero, _ = strconv.ParseFloat(strings.TrimSpace(rawValue), 64)
				case "BSCALE":
					bscale, _ = strconv.ParseFloat(strings.TrimSpace(rawValue), 64)
				}
			} else if keyword != "" {
				// COMMENT, HISTORY and the like carry their text in the
				// value columns without a "= " indicator.
				header.append(strings.ToUpper(keyword), strings.TrimSpace(record[8:]))
			}
		}
	}

	if naxis == 0 {
		return nil, ErrNoData
	}
	if naxis < 2 || naxis > 3 {
		return nil, &UnsupportedShapeError{NAxis: naxis}
	}
	if width == 0 || height == 0 {
		return nil, ErrNoData
	}
	if naxis == 2 {
		bands = 1
	}
	if bands <= 0 {
		return nil, ErrNoData
	}

	effectiveBpp := 16
	if bitpix == 8 {
		effectiveBpp = 8
	}

	numPixels := width * height * bands
	pixels := make([]uint16, numPixels)

	switch bitpix {
	case 16:
		rawBytes := make([]byte, numPixels*2)
		if _, err := io.ReadFull(r, rawBytes); err != nil {
			return nil, fmt.Errorf("reading 16-bit pixel data: %w", err)
		}
		for i := 0; i < numPixels; i++ {
			signedVal := int16(binary.BigEndian.Uint16(rawBytes[i*2:]))
			physicalVal := float64(signedVal)*bscale + bzero
			pixels[i] = uint16(clampFloat64(physicalVal, 0, 65535))
		}

	case -32:
		rawBytes := make([]byte, numPixels*4)
		if _, err := io.ReadFull(r, rawBytes); err != nil {
			return nil, fmt.Errorf("reading -32 float pixel data: %w", err)
		}
		for i := 0; i < numPixels; i++ {
			intBits := binary.BigEndian.Uint32(rawBytes[i*4:])
			floatVal := math.Float32frombits(intBits)
			physicalVal := float64(floatVal)*bscale + bzero
			pixels[i] = uint16(clampFloat64(physicalVal, 0, 65535))
		}

	case 8:
		rawBytes := make([]byte, numPixels)
		if _, err := io.ReadFull(r, rawBytes); err != nil {
			return nil, fmt.Errorf("reading 8-bit pixel data: %w", err)
		}
		for i := 0; i < numPixels; i++ {
			physicalVal := float64(rawBytes[i])*bscale + bzero
			pixels[i] = uint16(clampFloat64(physicalVal, 0, 65535))
		}

	case 32:
		rawBytes := make([]byte, numPixels*4)
		if _, err := io.ReadFull(r, rawBytes); err != nil {
			return nil, fmt.Errorf("reading 32-bit pixel data: %w", err)
		}
		for i := 0; i < numPixels; i++ {
			intVal := int32(binary.BigEndian.Uint32(rawBytes[i*4:]))
			physicalVal := float64(intVal)*bscale + bzero
			pixels[i] = uint16(clampFloat64(physicalVal, 0, 65535))
		}

	default:
		return nil, fmt.Errorf("unsupported BITPIX: %d", bitpix)
	}

	return &Frame{
		Pixels:   pixels,
		Width:    width,
		Height:   height,
		Bands:    bands,
		BitDepth: effectiveBpp,
		Header:   header,
	}, nil
}

func clampFloat64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func parseFITSValue(rawValue string) string {
	if rawValue == "" {
		return ""
	}
	if rawValue == "T" {
		return "True"
	}
	if rawValue == "F" {
		return "False"
	}
	if strings.HasPrefix(rawValue, "'") {
		endQuote := strings.LastIndex(rawValue, "'")
		if endQuote > 0 {
			return strings.TrimRight(rawValue[1:endQuote], " ")
		}
		return strings.TrimLeft(strings.TrimRight(rawValue, " "), "'")
	}
	return rawValue
}
