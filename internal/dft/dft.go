package dft

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Backend names accepted by Lookup.
const (
	DSP   = "dsp"
	Gonum = "gonum"
)

// Backend computes unnormalized forward and 1/(rows*cols) normalized inverse
// 2D discrete Fourier transforms on row-major grids.
type Backend interface {
	Forward(data [][]float64) [][]complex128
	Inverse(coeff [][]complex128) [][]complex128
}

// Lookup returns the backend registered under name.
func Lookup(name string) (Backend, error) {
	switch name {
	case DSP, "":
		return DSPBackend{}, nil
	case Gonum:
		return GonumBackend{}, nil
	}
	return nil, fmt.Errorf("unknown dft backend %q", name)
}

// DSPBackend delegates to the 2D routines of github.com/mjibson/go-dsp/fft.
type DSPBackend struct{}

func (DSPBackend) Forward(data [][]float64) [][]complex128 {
	return fft.FFT2Real(data)
}

func (DSPBackend) Inverse(coeff [][]complex128) [][]complex128 {
	return fft.IFFT2(coeff)
}

// GonumBackend runs row then column passes of gonum's complex FFT.
type GonumBackend struct{}

func (GonumBackend) Forward(data [][]float64) [][]complex128 {
	grid := make([][]complex128, len(data))
	for i, row := range data {
		grid[i] = make([]complex128, len(row))
		for j, v := range row {
			grid[i][j] = complex(v, 0)
		}
	}
	return transform2D(grid, false)
}

func (GonumBackend) Inverse(coeff [][]complex128) [][]complex128 {
	grid := make([][]complex128, len(coeff))
	for i, row := range coeff {
		grid[i] = append([]complex128(nil), row...)
	}
	return transform2D(grid, true)
}

// transform2D transforms grid in place and returns it.
func transform2D(grid [][]complex128, inverse bool) [][]complex128 {
	rows := len(grid)
	if rows == 0 {
		return grid
	}
	cols := len(grid[0])

	exec := func(f *fourier.CmplxFFT, dst, src []complex128) {
		if inverse {
			f.Sequence(dst, src)
		} else {
			f.Coefficients(dst, src)
		}
	}

	rowFFT := fourier.NewCmplxFFT(cols)
	buf := make([]complex128, cols)
	for i := range rows {
		exec(rowFFT, buf, grid[i])
		copy(grid[i], buf)
	}

	colFFT := fourier.NewCmplxFFT(rows)
	col := make([]complex128, rows)
	out := make([]complex128, rows)
	for j := range cols {
		for i := range rows {
			col[i] = grid[i][j]
		}
		exec(colFFT, out, col)
		for i := range rows {
			grid[i][j] = out[i]
		}
	}

	if inverse {
		// gonum leaves the inverse scaled by the sequence length
		scale := complex(float64(rows*cols), 0)
		for i := range rows {
			for j := range cols {
				grid[i][j] /= scale
			}
		}
	}
	return grid
}
