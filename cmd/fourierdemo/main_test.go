package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	fourier "github.com/yyyoichi/fourier_zero"
	"github.com/yyyoichi/fourier_zero/internal/config"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), 90, 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Fetch.CacheDir = t.TempDir()
	return cfg
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.png")
	writePNG(t, path, 40, 30)

	t.Run("file", func(t *testing.T) {
		img, err := load(context.Background(), testConfig(t), path)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())
	})
	t.Run("url", func(t *testing.T) {
		srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
		defer srv.Close()
		img, err := load(context.Background(), testConfig(t), srv.URL+"/input.png")
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())
	})
	t.Run("missing_file", func(t *testing.T) {
		_, err := load(context.Background(), testConfig(t), filepath.Join(dir, "missing.png"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("pixel_cap", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Server.MaxPixels = 40*30 - 1
		_, err := load(context.Background(), cfg, path)
		assert.ErrorIs(t, err, fourier.ErrImageTooLarge)
	})
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.png")
	writePNG(t, path, 40, 30)

	cfg := testConfig(t)
	src, err := load(context.Background(), cfg, path)
	require.NoError(t, err)
	res, err := fourier.Run(context.Background(), src, cfg.Options(32)...)
	require.NoError(t, err)

	outDir := filepath.Join(dir, "out", "views")
	require.NoError(t, export(cfg, res, outDir))

	for _, name := range []string{"grayscale.png", "normalized.png", "magnitude.png", "reconstructed.png"} {
		f, err := os.Open(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		img, err := png.Decode(f)
		_ = f.Close()
		require.NoError(t, err, name)
		assert.Equal(t, image.Rect(0, 0, 32, 32), img.Bounds(), name)
	}

	html, err := os.ReadFile(filepath.Join(outDir, "magnitude.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "echarts")

	phase, err := os.ReadFile(filepath.Join(outDir, "phase.txt"))
	require.NoError(t, err)
	assert.NotEmpty(t, phase)
}
