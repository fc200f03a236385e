package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	fourier "github.com/yyyoichi/fourier_zero"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// NormalizedImage draws a [-1,1] buffer the way a clamped float image is shown:
// values are clipped to [0,1] and scaled to [0,255], so negatives render black.
func NormalizedImage(g *fourier.Grayscale) *image.Gray {
	n := g.Size()
	img := image.NewGray(image.Rect(0, 0, n, n))
	for y := range n {
		for x := range n {
			v := math.Min(1, math.Max(0, g.At(y, x)))
			img.Pix[y*img.Stride+x] = uint8(math.Round(v * 255))
		}
	}
	return img
}

// MagnitudeImage min-max scales the finite values of m onto [0,255].
// Non-finite bins are black.
func MagnitudeImage(m mat.Matrix) *image.Gray {
	r, c := m.Dims()
	img := image.NewGray(image.Rect(0, 0, c, r))
	lo, hi, ok := finiteRange(m)
	if !ok {
		return img
	}
	span := hi - lo
	for y := range r {
		for x := range c {
			v := m.At(y, x)
			if math.IsInf(v, 0) || math.IsNaN(v) {
				continue
			}
			var p float64
			if span > 0 {
				p = (v - lo) / span * 255
			} else {
				p = 255
			}
			img.Pix[y*img.Stride+x] = uint8(math.Round(p))
		}
	}
	return img
}

// finiteRange returns the smallest and largest finite values of m.
func finiteRange(m mat.Matrix) (lo, hi float64, ok bool) {
	r, c := m.Dims()
	values := make([]float64, 0, r*c)
	for y := range r {
		for x := range c {
			if v := m.At(y, x); !math.IsInf(v, 0) && !math.IsNaN(v) {
				values = append(values, v)
			}
		}
	}
	if len(values) == 0 {
		return 0, 0, false
	}
	return floats.Min(values), floats.Max(values), true
}

// numpy summarizes arrays above this many elements
const summaryThreshold = 1000

// PhaseText formats phase values in radians. Matrices with more than a
// thousand elements are cut down to excerpt rows and columns at each margin.
func PhaseText(m mat.Matrix, excerpt int) string {
	r, c := m.Dims()
	fopts := []mat.FormatOption{mat.Squeeze()}
	if r*c > summaryThreshold && excerpt > 0 {
		fopts = append(fopts, mat.Excerpt(excerpt))
	}
	return fmt.Sprintf("%.8f", mat.Formatted(m, fopts...))
}

func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

// DataURI returns img as a base64 PNG data URI.
func DataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
