package fourier

import (
	"fmt"
	"image"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// Grayscale is an n x n buffer of normalized intensities in [-1, 1].
type Grayscale struct {
	n    int
	data *mat.Dense
}

func newGrayscale(n int) *Grayscale {
	return &Grayscale{n: n, data: mat.NewDense(n, n, nil)}
}

// NewGrayscale wraps row-major values as an n x n buffer.
// The values are copied.
func NewGrayscale(n int, values []float64) (*Grayscale, error) {
	if n <= 0 || len(values) != n*n {
		return nil, fmt.Errorf("%w: %d values for side %d", ErrInvalidSize, len(values), n)
	}
	for i, v := range values {
		if !(v >= -1 && v <= 1) {
			return nil, fmt.Errorf("%w: index %d is %g", ErrOutOfRange, i, v)
		}
	}
	return &Grayscale{n: n, data: mat.NewDense(n, n, append([]float64(nil), values...))}, nil
}

// Size returns the side length.
func (g *Grayscale) Size() int { return g.n }

func (g *Grayscale) At(y, x int) float64 { return g.data.At(y, x) }

// Matrix returns a read-only view of the buffer.
func (g *Grayscale) Matrix() mat.Matrix { return g.data }

func (g *Grayscale) rows() [][]float64 {
	out := make([][]float64, g.n)
	for i := range g.n {
		out[i] = mat.Row(nil, i, g.data)
	}
	return out
}

// Spectrum is the centered complex 2D DFT of a Grayscale buffer.
// Element (n/2, n/2) holds the zero-frequency term.
type Spectrum struct {
	n    int
	data *mat.CDense
}

func newSpectrum(grid [][]complex128) *Spectrum {
	n := len(grid)
	s := &Spectrum{n: n, data: mat.NewCDense(n, n, nil)}
	for i, row := range grid {
		for j, v := range row {
			s.data.Set(i, j, v)
		}
	}
	return s
}

// Size returns the side length.
func (s *Spectrum) Size() int { return s.n }

func (s *Spectrum) At(y, x int) complex128 { return s.data.At(y, x) }

// DC returns the zero-frequency term.
func (s *Spectrum) DC() complex128 { return s.data.At(s.n/2, s.n/2) }

// Magnitude returns 20*ln|z| per bin. Empty bins are -Inf.
func (s *Spectrum) Magnitude() *mat.Dense {
	return s.project(logMagnitude)
}

// Phase returns arg(z) per bin in radians.
func (s *Spectrum) Phase() *mat.Dense {
	return s.project(cmplx.Phase)
}

// Energy returns |z|^2 of the zero-frequency bin and the sum over all bins.
func (s *Spectrum) Energy() (dc, total float64) {
	for i := range s.n {
		for j := range s.n {
			a := cmplx.Abs(s.data.At(i, j))
			total += a * a
		}
	}
	a := cmplx.Abs(s.DC())
	return a * a, total
}

func (s *Spectrum) project(f func(complex128) float64) *mat.Dense {
	out := mat.NewDense(s.n, s.n, nil)
	for i := range s.n {
		for j := range s.n {
			out.Set(i, j, f(s.data.At(i, j)))
		}
	}
	return out
}

func (s *Spectrum) grid() [][]complex128 {
	out := make([][]complex128, s.n)
	for i := range s.n {
		out[i] = make([]complex128, s.n)
		for j := range s.n {
			out[i][j] = s.data.At(i, j)
		}
	}
	return out
}

// Result bundles the outputs of one pipeline run.
type Result struct {
	Source        image.Image
	Gray          *image.Gray
	Grayscale     *Grayscale
	Spectrum      *Spectrum
	Reconstructed *image.Gray
	// RoundTripError is the largest |x - inverse(forward(x))| before the 8-bit rescale.
	RoundTripError float64
}

// Size returns the side length of the buffers in r.
func (r *Result) Size() int { return r.Grayscale.n }
