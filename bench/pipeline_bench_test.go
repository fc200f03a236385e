package bench_test

import (
	"image"
	"image/color"
	"testing"

	fourier "github.com/yyyoichi/fourier_zero"
)

// BenchmarkRun_FHD runs the full pipeline on an FHD image across sizes and backends
func BenchmarkRun_FHD(b *testing.B) {
	test := []struct {
		name string
		opts []fourier.Option
	}{
		{name: "64_dsp", opts: []fourier.Option{
			fourier.WithSize(64),
			fourier.WithBackend("dsp"),
		}},
		{name: "64_gonum", opts: []fourier.Option{
			fourier.WithSize(64),
			fourier.WithBackend("gonum"),
		}},
		{name: "256_dsp", opts: []fourier.Option{
			fourier.WithSize(256),
			fourier.WithBackend("dsp"),
		}},
		{name: "256_gonum", opts: []fourier.Option{
			fourier.WithSize(256),
			fourier.WithBackend("gonum"),
		}},
		{name: "1024_dsp", opts: []fourier.Option{
			fourier.WithSize(1024),
			fourier.WithBackend("dsp"),
		}},
		{name: "1024_gonum", opts: []fourier.Option{
			fourier.WithSize(1024),
			fourier.WithBackend("gonum"),
		}},
	}

	img := createImage(1920, 1080)
	ctx := b.Context()

	for _, tt := range test {
		b.Run(tt.name, func(b *testing.B) {
			p, err := fourier.New(tt.opts...)
			if err != nil {
				b.Fatalf("Failed to create Pipeline instance (%s): %v", tt.name, err)
			}
			for b.Loop() {
				res, err := p.Run(ctx, img)
				if err != nil {
					b.Fatalf("Failed to run pipeline (%s): %v", tt.name, err)
				}
				_ = res
			}
		})
	}
}

// BenchmarkBatch_SizeSweep re-runs a cached image the way slider changes do
func BenchmarkBatch_SizeSweep(b *testing.B) {
	batch := fourier.NewBatch(createImage(1920, 1080))
	ctx := b.Context()
	for b.Loop() {
		for n := 32; n <= 256; n += 32 {
			if _, err := batch.Run(ctx, fourier.WithSize(n)); err != nil {
				b.Fatalf("Failed to run batch (n=%d): %v", n, err)
			}
		}
	}
}

// createImage creates a widthxheight test image with gradient pattern
func createImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			// Create gradient effect to simulate realistic image data
			r := uint8((x * 255) / width)
			g := uint8((y * 255) / height)
			b := uint8(((x + y) * 255) / (width + height))
			img.Set(x, y, color.RGBA{r, g, b, 255})
		}
	}
	return img
}
