package server

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"image"
	"log"
	"net/http"
	"strconv"
	"time"

	fourier "github.com/yyyoichi/fourier_zero"
	"github.com/yyyoichi/fourier_zero/internal/config"
	"github.com/yyyoichi/fourier_zero/internal/render"
)

//go:embed templates/index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

type Server struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Handler returns the routes of the demo.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /transform", s.handleTransform)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

type page struct {
	Min, Max, Step int
	Size           int
	Error          string
	Result         *resultView
}

type resultView struct {
	Format         string
	Size           int
	Original       template.URL
	Grayscale      template.URL
	Normalized     template.URL
	Chart          string
	Phase          string
	Reconstructed  template.URL
	RoundTripError float64
}

func (s *Server) newPage(size int) page {
	return page{
		Min:  fourier.MinSize,
		Max:  fourier.MaxSize,
		Step: fourier.SizeStep,
		Size: size,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.write(w, http.StatusOK, s.newPage(s.cfg.Pipeline.Size))
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	p := s.newPage(s.cfg.Pipeline.Size)

	limit := s.cfg.Server.MaxUploadBytes
	if r.ContentLength > limit {
		s.fail(w, http.StatusRequestEntityTooLarge, p, fmt.Errorf("upload exceeds %d bytes", limit))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, http.StatusRequestEntityTooLarge, p, fmt.Errorf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.fail(w, http.StatusBadRequest, p, fmt.Errorf("invalid form: %w", err))
		return
	}

	n, err := strconv.Atoi(r.FormValue("n"))
	if err != nil || !fourier.ValidSize(n) {
		s.fail(w, http.StatusBadRequest, p, fmt.Errorf("%w: %q", fourier.ErrInvalidSize, r.FormValue("n")))
		return
	}
	p.Size = n

	file, _, err := r.FormFile("image")
	if err != nil {
		s.fail(w, http.StatusBadRequest, p, fmt.Errorf("missing image: %w", err))
		return
	}
	defer file.Close()

	src, format, err := fourier.DecodeLimit(file, s.cfg.Server.MaxPixels)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, fourier.ErrImageTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.fail(w, status, p, err)
		return
	}

	res, err := fourier.Run(r.Context(), src, s.cfg.Options(n)...)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fourier.ErrInvalidSize) || errors.Is(err, fourier.ErrInvalidOption) {
			status = http.StatusBadRequest
		}
		s.fail(w, status, p, err)
		return
	}

	view, err := s.view(src, format, res)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, p, err)
		return
	}
	p.Result = view

	log.Printf("transform: format=%s bounds=%dx%d n=%d err=%.3g took=%v",
		format, src.Bounds().Dx(), src.Bounds().Dy(), n, res.RoundTripError, time.Since(start))
	s.write(w, http.StatusOK, p)
}

func (s *Server) view(src image.Image, format string, res *fourier.Result) (*resultView, error) {
	v := &resultView{
		Format:         format,
		Size:           res.Size(),
		RoundTripError: res.RoundTripError,
		Phase:          render.PhaseText(res.Spectrum.Phase(), s.cfg.Render.PhaseExcerpt),
	}

	images := []struct {
		dst *template.URL
		img image.Image
	}{
		{&v.Original, src},
		{&v.Grayscale, res.Gray},
		{&v.Normalized, render.NormalizedImage(res.Grayscale)},
		{&v.Reconstructed, res.Reconstructed},
	}
	for _, it := range images {
		uri, err := render.DataURI(it.img)
		if err != nil {
			return nil, fmt.Errorf("failed to encode image: %w", err)
		}
		// data URIs are produced locally, never from user input
		*it.dst = template.URL(uri)
	}

	chart := render.MagnitudeChart(res.Spectrum.Magnitude(), render.ChartOptions{MaxSide: s.cfg.Render.ChartMaxSide})
	html, err := render.ChartHTML(chart)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	v.Chart = html
	return v, nil
}

func (s *Server) fail(w http.ResponseWriter, status int, p page, err error) {
	log.Printf("transform failed: status=%d err=%v", status, err)
	p.Error = err.Error()
	s.write(w, status, p)
}

func (s *Server) write(w http.ResponseWriter, status int, p page) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, p); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
