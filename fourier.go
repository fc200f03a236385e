package fourier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"math/cmplx"

	_ "image/jpeg"
	_ "image/png"

	"github.com/yyyoichi/fourier_zero/internal/dft"
	"github.com/yyyoichi/fourier_zero/internal/luma"
	"github.com/yyyoichi/fourier_zero/internal/resize"
	"github.com/yyyoichi/fourier_zero/internal/shift"
	"golang.org/x/image/draw"
)

const (
	MinSize  = 32
	MaxSize  = 1024
	SizeStep = 32

	// DefaultMaxPixels is the largest width*height Decode accepts.
	// https://pillow.readthedocs.io/en/stable/reference/Image.html#PIL.Image.MAX_IMAGE_PIXELS
	DefaultMaxPixels = 89478485
)

var (
	ErrUnsupportedImage = errors.New("unsupported or malformed image")
	ErrInvalidSize      = errors.New("invalid image size")
	ErrInvalidOption    = errors.New("invalid option")
	ErrOutOfRange       = errors.New("value out of [-1, 1]")
	ErrImageTooLarge    = fmt.Errorf("%w: too many pixels", ErrUnsupportedImage)
)

// Decode reads a JPEG or PNG image of at most DefaultMaxPixels pixels and
// returns it with its format name.
func Decode(r io.Reader) (image.Image, string, error) {
	return DecodeLimit(r, DefaultMaxPixels)
}

// DecodeLimit is like Decode but rejects images whose header declares more
// than maxPixels pixels before any pixel data is allocated.
func DecodeLimit(r io.Reader, maxPixels int) (image.Image, string, error) {
	var header bytes.Buffer
	cfg, format, err := image.DecodeConfig(io.TeeReader(r, &header))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}
	if format != "jpeg" && format != "png" {
		return nil, "", fmt.Errorf("%w: format %q", ErrUnsupportedImage, format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxPixels/cfg.Height {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d", ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)
	}

	// replay the bytes consumed by the header read
	img, _, err := image.Decode(io.MultiReader(&header, r))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUnsupportedImage, err)
	}
	return img, format, nil
}

// Run executes the whole pipeline on src.
// This is a convenience function that creates a Pipeline instance and calls its Run method.
func Run(ctx context.Context, src image.Image, opts ...Option) (*Result, error) {
	p, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, src)
}

// Preprocess converts src to luminance, resizes it to n x n with bilinear
// interpolation and maps [0,255] onto [-1,1].
func Preprocess(src image.Image, n int) (*Grayscale, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	return preprocess(luma.ToGray(src), n, draw.BiLinear), nil
}

func preprocess(gray *image.Gray, n int, ip draw.Interpolator) *Grayscale {
	resized := resize.Square(gray, n, ip)
	g := newGrayscale(n)
	for y := range n {
		for x := range n {
			g.data.Set(y, x, normalize(resized.Pix[y*resized.Stride+x]))
		}
	}
	return g
}

// Forward computes the centered 2D DFT of g with the default backend.
func Forward(g *Grayscale) *Spectrum {
	return forward(g, dft.DSPBackend{})
}

func forward(g *Grayscale, b dft.Backend) *Spectrum {
	return newSpectrum(shift.Center(b.Forward(g.rows())))
}

// Inverse reconstructs an 8-bit image from a centered spectrum with the default backend.
func Inverse(s *Spectrum) *image.Gray {
	return reconstruct(inverseReal(s, dft.DSPBackend{}))
}

// InverseReal returns the real part of the inverse transform before the
// final [0,255] rescale.
func InverseReal(s *Spectrum) [][]float64 {
	return inverseReal(s, dft.DSPBackend{})
}

func inverseReal(s *Spectrum, b dft.Backend) [][]float64 {
	spatial := b.Inverse(shift.Uncenter(s.grid()))
	out := make([][]float64, len(spatial))
	for i, row := range spatial {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = real(v)
		}
	}
	return out
}

func reconstruct(values [][]float64) *image.Gray {
	n := len(values)
	img := image.NewGray(image.Rect(0, 0, n, n))
	for y, row := range values {
		for x, v := range row {
			img.Pix[y*img.Stride+x] = denormalize(v)
		}
	}
	return img
}

type Pipeline struct {
	size         int
	interpolator draw.Interpolator
	backend      dft.Backend
}

// New initializes a pipeline. Without options it uses size DefaultSize,
// bilinear resize and the go-dsp backend.
func New(opts ...Option) (*Pipeline, error) {
	p := new(Pipeline)
	if err := p.init(opts...); err != nil {
		return nil, err
	}
	return p, nil
}

// Size returns the side length of the square buffers produced by p.
func (p *Pipeline) Size() int { return p.size }

// Run executes every stage on src. The context is checked between stages;
// a cancelled run returns ctx.Err() and no partial result.
func (p *Pipeline) Run(ctx context.Context, src image.Image) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.run(ctx, src, luma.ToGray(src))
}

func (p *Pipeline) run(ctx context.Context, src image.Image, gray *image.Gray) (*Result, error) {
	r := &Result{Source: src, Gray: gray}

	r.Grayscale = preprocess(gray, p.size, p.interpolator)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.Spectrum = forward(r.Grayscale, p.backend)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values := inverseReal(r.Spectrum, p.backend)
	r.RoundTripError = maxAbsDiff(r.Grayscale, values)
	r.Reconstructed = reconstruct(values)
	return r, nil
}

func (p *Pipeline) init(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return err
		}
	}
	if p.size == 0 {
		p.size = DefaultSize
	}
	if p.interpolator == nil {
		p.interpolator = draw.BiLinear
	}
	if p.backend == nil {
		p.backend = dft.DSPBackend{}
	}
	return nil
}

// Batch keeps the luminance conversion of one image so repeated runs
// with different sizes only redo the stages from resize onward.
type Batch struct {
	source image.Image
	gray   *image.Gray
}

// NewBatch converts src to luminance once.
func NewBatch(src image.Image) *Batch {
	return &Batch{source: src, gray: luma.ToGray(src)}
}

// Gray returns the full-resolution luminance image.
func (b *Batch) Gray() *image.Gray { return b.gray }

// Run executes the pipeline on the cached luminance image with the specified options.
func (b *Batch) Run(ctx context.Context, opts ...Option) (*Result, error) {
	p, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.run(ctx, b.source, b.gray)
}

// ValidSize reports whether n is a selectable side length.
func ValidSize(n int) bool {
	return n >= MinSize && n <= MaxSize && n%SizeStep == 0
}

func normalize(pixel uint8) float64 {
	return (float64(pixel)/255.0)*2 - 1
}

func denormalize(v float64) uint8 {
	p := math.Round(((v + 1) / 2.0) * 255.0)
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 255:
		return 255
	}
	return uint8(p)
}

func maxAbsDiff(g *Grayscale, values [][]float64) float64 {
	var worst float64
	for i, row := range values {
		for j, v := range row {
			worst = math.Max(worst, math.Abs(g.data.At(i, j)-v))
		}
	}
	return worst
}

func logMagnitude(z complex128) float64 {
	return 20 * math.Log(cmplx.Abs(z))
}
