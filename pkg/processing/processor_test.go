package processing

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/chai2010/webp"

	"github.com/menta2k/aqi-analyzer/pkg/types"
)

// createTestImage creates a hazy gradient sky
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8(160 + (x*60)/width)
			g := uint8(150 + (y*60)/height)
			img.Set(x, y, color.RGBA{r, g, 140, 255})
		}
	}

	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeBytes(t *testing.T) {
	p := NewProcessor()
	src := createTestImage(64, 48)

	img, err := p.DecodeBytes(encodePNG(t, src))
	if err != nil {
		t.Fatalf("DecodeBytes(png) failed: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Errorf("Expected 64x48, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}

	var webpBuf bytes.Buffer
	if err := webp.Encode(&webpBuf, src, &webp.Options{Lossless: true}); err != nil {
		t.Fatalf("webp encode: %v", err)
	}
	if _, err := p.DecodeBytes(webpBuf.Bytes()); err != nil {
		t.Errorf("DecodeBytes(webp) failed: %v", err)
	}

	if _, err := p.DecodeBytes([]byte("not an image")); !errors.Is(err, ErrNotImage) {
		t.Errorf("Expected ErrNotImage, got %v", err)
	}
}

func TestLoadImage(t *testing.T) {
	p := NewProcessor()
	path := filepath.Join(t.TempDir(), "sky.png")
	if err := os.WriteFile(path, encodePNG(t, createTestImage(80, 40)), 0o644); err != nil {
		t.Fatal(err)
	}

	img, err := p.LoadImageSmart(path)
	if err != nil {
		t.Fatalf("LoadImageSmart failed: %v", err)
	}
	if img.Bounds().Dx() != 80 {
		t.Errorf("Expected width 80, got %d", img.Bounds().Dx())
	}

	if _, err := p.LoadImage(filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLoadImageFromURL(t *testing.T) {
	data := encodePNG(t, createTestImage(50, 50))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sky.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(data)
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewProcessor()
	if _, err := p.LoadImageSmart(srv.URL + "/sky.png"); err != nil {
		t.Errorf("LoadImageSmart(url) failed: %v", err)
	}
	if _, err := p.LoadImageFromURL(srv.URL + "/page"); err == nil {
		t.Error("Expected error for non-image content type")
	}
	if _, err := p.LoadImageFromURL(srv.URL + "/missing"); err == nil {
		t.Error("Expected error for 404")
	}
	if _, err := p.LoadImageFromURL("ftp://example.com/sky.png"); err == nil {
		t.Error("Expected error for ftp scheme")
	}
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"http://example.com/sky.jpg":  true,
		"https://example.com/sky.jpg": true,
		"ftp://example.com/sky.jpg":   false,
		"photos/http-sky.jpg":         false,
		"":                            false,
	}
	for source, want := range tests {
		if got := IsURL(source); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", source, got, want)
		}
	}
}

func TestValidateImage(t *testing.T) {
	p := NewProcessorWithConfig(Config{MinImageSize: 100})

	if err := p.ValidateImage(createTestImage(200, 100)); err != nil {
		t.Errorf("Valid image should pass validation: %v", err)
	}
	if err := p.ValidateImage(createTestImage(200, 50)); !errors.Is(err, ErrImageTooSmall) {
		t.Errorf("Expected ErrImageTooSmall, got %v", err)
	}
}

func TestPrepareImageForModel(t *testing.T) {
	p := NewProcessor()

	b64, err := p.PrepareImageForModel(createTestImage(400, 200), types.SendOptions{Format: "jpg", MaxSize: 100, Quality: 80})
	if err != nil {
		t.Fatalf("PrepareImageForModel failed: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("invalid base64: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("expected jpeg payload: %v", err)
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 50 {
		t.Errorf("Expected 100x50 after resize, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}

	b64, err = p.PrepareImageForModel(createTestImage(40, 80), types.SendOptions{Format: "png"})
	if err != nil {
		t.Fatalf("PrepareImageForModel(png) failed: %v", err)
	}
	raw, _ = base64.StdEncoding.DecodeString(b64)
	img, err = png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("expected png payload: %v", err)
	}
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 80 {
		t.Errorf("Image without MaxSize should keep its size, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func BenchmarkPrepareImageForModel(b *testing.B) {
	p := NewProcessor()
	img := createTestImage(1920, 1080)
	opts := types.SendOptions{Format: "jpg", MaxSize: 768, Quality: 85}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.PrepareImageForModel(img, opts)
	}
}
