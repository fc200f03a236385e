package server_test

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/fourier_zero/internal/config"
	"github.com/yyyoichi/fourier_zero/internal/server"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 48, 40))
	for y := range 40 {
		for x := range 48 {
			img.Set(x, y, color.RGBA{uint8(x * 5), uint8(y * 6), 0, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartBody(t *testing.T, n string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if n != "" {
		require.NoError(t, mw.WriteField("n", n))
	}
	if file != nil {
		fw, err := mw.CreateFormFile("image", "upload.png")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func newServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	srv := httptest.NewServer(server.New(cfg).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, n string, file []byte) (*http.Response, string) {
	t.Helper()
	body, contentType := multipartBody(t, n, file)
	resp, err := http.Post(srv.URL+"/transform", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.String()
}

func TestServer_Index(t *testing.T) {
	srv := newServer(t, nil)
	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out bytes.Buffer
	_, _ = out.ReadFrom(resp.Body)
	html := out.String()
	assert.Contains(t, html, `type="range"`)
	assert.Contains(t, html, `min="32"`)
	assert.Contains(t, html, `max="1024"`)
	assert.Contains(t, html, `step="32"`)
	assert.NotContains(t, html, "Reconstructed Image")
}

func TestServer_Healthz(t *testing.T) {
	srv := newServer(t, nil)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Transform(t *testing.T) {
	srv := newServer(t, nil)
	resp, html := post(t, srv, "64", pngBytes(t))
	require.Equal(t, http.StatusOK, resp.StatusCode, html)
	assert.Contains(t, html, "Magnitude Spectrum")
	assert.Contains(t, html, "Phase Spectrum")
	assert.Contains(t, html, "Reconstructed Image")
	assert.Contains(t, html, "data:image/png;base64,")
	assert.Contains(t, html, "srcdoc=")
	assert.Contains(t, html, "64x64")
	assert.NotContains(t, html, "ZgotmplZ")
}

func TestServer_TransformErrors(t *testing.T) {
	srv := newServer(t, nil)
	test := []struct {
		name   string
		n      string
		file   []byte
		status int
	}{
		{name: "malformed_image", n: "64", file: []byte("not an image"), status: http.StatusBadRequest},
		{name: "missing_image", n: "64", status: http.StatusBadRequest},
		{name: "size_not_step", n: "50", file: pngBytes(t), status: http.StatusBadRequest},
		{name: "size_missing", file: pngBytes(t), status: http.StatusBadRequest},
		{name: "size_too_large", n: "2048", file: pngBytes(t), status: http.StatusBadRequest},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			resp, html := post(t, srv, tt.n, tt.file)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, html, `class="error"`)
			assert.NotContains(t, html, "Reconstructed Image")
		})
	}
}

func TestServer_UploadLimit(t *testing.T) {
	srv := newServer(t, func(cfg *config.Config) {
		cfg.Server.MaxUploadBytes = 64
	})
	resp, _ := post(t, srv, "64", pngBytes(t))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

// hugePNG declares a 60000x60000 gray image and carries no pixel data.
func hugePNG() []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := []byte("IHDR")
	chunk = binary.BigEndian.AppendUint32(chunk, 60000)
	chunk = binary.BigEndian.AppendUint32(chunk, 60000)
	chunk = append(chunk, 8, 0, 0, 0, 0)
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(chunk)-4))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestServer_PixelLimit(t *testing.T) {
	t.Run("header_declares_too_many", func(t *testing.T) {
		srv := newServer(t, nil)
		resp, html := post(t, srv, "64", hugePNG())
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
		assert.Contains(t, html, "too many pixels")
	})
	t.Run("configured_cap", func(t *testing.T) {
		srv := newServer(t, func(cfg *config.Config) {
			cfg.Server.MaxPixels = 48*40 - 1
		})
		resp, _ := post(t, srv, "64", pngBytes(t))
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})
}
