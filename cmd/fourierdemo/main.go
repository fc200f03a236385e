package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	fourier "github.com/yyyoichi/fourier_zero"
	"github.com/yyyoichi/fourier_zero/internal/config"
	"github.com/yyyoichi/fourier_zero/internal/fetch"
	"github.com/yyyoichi/fourier_zero/internal/render"
	"github.com/yyyoichi/fourier_zero/internal/server"
)

func main() {
	configPath := flag.String("config", "fourierdemo.yaml", "YAML configuration file")
	initConfig := flag.Bool("init-config", false, "write the default configuration to -config and exit")
	serveAddr := flag.String("serve", "", "listen address for the demo server (default from config)")
	input := flag.String("in", "", "image file path or http(s) URL to transform once")
	size := flag.Int("n", 0, "image side length, 32..1024 step 32 (default from config)")
	outDir := flag.String("out", "", "directory to export the views of a one-shot run")
	flag.Parse()

	if *initConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		log.Printf("Wrote default configuration to %s", *configPath)
		return
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	n := cfg.Pipeline.Size
	if *size != 0 {
		n = *size
	}

	if *input == "" {
		addr := cfg.Server.Addr
		if *serveAddr != "" {
			addr = *serveAddr
		}
		serve(cfg, addr)
		return
	}

	ctx := context.Background()
	src, err := load(ctx, cfg, *input)
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}

	start := time.Now()
	res, err := fourier.Run(ctx, src, cfg.Options(n)...)
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}
	log.Printf("Transformed %s (%dx%d) at n=%d in %v", *input, src.Bounds().Dx(), src.Bounds().Dy(), n, time.Since(start))

	dcEnergy, total := res.Spectrum.Energy()
	fmt.Printf("Size: %dx%d\n", res.Size(), res.Size())
	fmt.Printf("DC component: %.6f (%.2f%% of spectral energy)\n", real(res.Spectrum.DC()), dcEnergy/total*100)
	fmt.Printf("Max round-trip error: %.3g\n", res.RoundTripError)
	fmt.Println("Phase spectrum:")
	fmt.Println(render.PhaseText(res.Spectrum.Phase(), cfg.Render.PhaseExcerpt))

	if *outDir != "" {
		if err := export(cfg, res, *outDir); err != nil {
			log.Fatalf("Failed to export views: %v", err)
		}
		log.Printf("Views saved to: %s", *outDir)
	}
}

func load(ctx context.Context, cfg *config.Config, input string) (image.Image, error) {
	if fetch.IsURL(input) {
		return fetch.New(cfg.Fetch.CacheDir).Image(ctx, input)
	}
	f, err := os.Open(input)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := fourier.DecodeLimit(f, cfg.Server.MaxPixels)
	return img, err
}

func export(cfg *config.Config, res *fourier.Result, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	mag := res.Spectrum.Magnitude()
	views := []struct {
		name string
		img  image.Image
	}{
		{"grayscale.png", res.Gray},
		{"normalized.png", render.NormalizedImage(res.Grayscale)},
		{"magnitude.png", render.MagnitudeImage(mag)},
		{"reconstructed.png", res.Reconstructed},
	}
	for _, v := range views {
		if err := writeFile(filepath.Join(outDir, v.name), func(f *os.File) error {
			return render.EncodePNG(f, v.img)
		}); err != nil {
			return err
		}
	}

	chart := render.MagnitudeChart(mag, render.ChartOptions{MaxSide: cfg.Render.ChartMaxSide})
	if err := writeFile(filepath.Join(outDir, "magnitude.html"), func(f *os.File) error {
		return render.WriteChart(f, chart)
	}); err != nil {
		return err
	}

	phase := render.PhaseText(res.Spectrum.Phase(), cfg.Render.PhaseExcerpt)
	return os.WriteFile(filepath.Join(outDir, "phase.txt"), []byte(phase+"\n"), 0644)
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

func serve(cfg *config.Config, addr string) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(cfg).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Image Fourier Transform demo on http://%s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shut down server: %v", err)
	}
	log.Println("Server stopped.")
}
