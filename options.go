package fourier

import (
	"fmt"

	"github.com/yyyoichi/fourier_zero/internal/dft"
	"github.com/yyyoichi/fourier_zero/internal/resize"
)

// DefaultSize is the side length used when WithSize is not given.
const DefaultSize = 256

type Option func(*Pipeline) error

// WithSize sets the side length n of the square buffers.
// n must lie in [MinSize, MaxSize] and be a multiple of SizeStep.
func WithSize(n int) Option {
	return func(p *Pipeline) error {
		if !ValidSize(n) {
			return fmt.Errorf("%w: %d (want %d..%d step %d)", ErrInvalidSize, n, MinSize, MaxSize, SizeStep)
		}
		p.size = n
		return nil
	}
}

// WithInterpolator selects the resize kernel by name:
// "nearest", "approx-bilinear", "bilinear" (default) or "catmull-rom".
func WithInterpolator(name string) Option {
	return func(p *Pipeline) error {
		ip, err := resize.Lookup(name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
		p.interpolator = ip
		return nil
	}
}

// WithBackend selects the DFT implementation by name: "dsp" (default) or "gonum".
func WithBackend(name string) Option {
	return func(p *Pipeline) error {
		b, err := dft.Lookup(name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
		p.backend = b
		return nil
	}
}
