package processing

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/aqi-analyzer/pkg/types"
)

var (
	// ErrNotImage is returned when data cannot be decoded as a supported image
	ErrNotImage = errors.New("image: unknown or unsupported format")
	// ErrImageTooSmall is returned by ValidateImage for images below the minimum side
	ErrImageTooSmall = errors.New("image too small")
)

// MaxDownloadBytes caps the body read by LoadImageFromURL
const MaxDownloadBytes = 32 << 20

// Config holds image acceptance settings
type Config struct {
	MinImageSize int
}

// Processor handles image loading and preparation for vision models
type Processor struct {
	config     Config
	httpClient *http.Client
}

// NewProcessor creates a new image processor with default configuration
func NewProcessor() *Processor {
	return NewProcessorWithConfig(Config{MinImageSize: 32})
}

// NewProcessorWithConfig creates a processor with custom configuration
func NewProcessorWithConfig(cfg Config) *Processor {
	return &Processor{
		config:     cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// LoadImageFromURL downloads and decodes an image
func (p *Processor) LoadImageFromURL(imageURL string) (image.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	req, err := http.NewRequest(http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "AQI-Analyzer/1.0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)
	}

	return p.DecodeImage(io.LimitReader(resp.Body, MaxDownloadBytes))
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	// imaging.Open covers every registered decoder, including x/image/webp.
	img, err := imaging.Open(path)
	if err == nil {
		return img, nil
	}

	if strings.HasSuffix(strings.ToLower(path), ".webp") {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, readErr
		}
		if img, webpErr := webp.Decode(bytes.NewReader(data)); webpErr == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("failed to load %s: %w", path, err)
}

// IsURL reports whether source is an http(s) URL rather than a file path
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// LoadImageSmart loads an image from either a file path or URL
func (p *Processor) LoadImageSmart(source string) (image.Image, error) {
	if IsURL(source) {
		return p.LoadImageFromURL(source)
	}
	return p.LoadImage(source)
}

// DecodeImage decodes an image from a reader, trying the registered decoders first and WebP last
func (p *Processor) DecodeImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return p.DecodeBytes(data)
}

// DecodeBytes decodes an in-memory image
func (p *Processor) DecodeBytes(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, ErrNotImage
}

// ValidateImage checks if an image meets minimum requirements
func (p *Processor) ValidateImage(img image.Image) error {
	b := img.Bounds()
	if b.Dx() < p.config.MinImageSize || b.Dy() < p.config.MinImageSize {
		return fmt.Errorf("%w: %dx%d (minimum: %d)", ErrImageTooSmall, b.Dx(), b.Dy(), p.config.MinImageSize)
	}
	return nil
}

// PrepareImageForModel downsizes the image so its long side fits opts.MaxSize and returns it base64 encoded
func (p *Processor) PrepareImageForModel(img image.Image, opts types.SendOptions) (string, error) {
	if opts.MaxSize > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > opts.MaxSize || h > opts.MaxSize {
			if w >= h {
				img = imaging.Resize(img, opts.MaxSize, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, opts.MaxSize, imaging.Lanczos)
			}
		}
	}

	quality := opts.Quality
	if quality < 1 || quality > 100 {
		quality = 85
	}

	var buf bytes.Buffer
	switch strings.ToLower(opts.Format) {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return "", err
		}
	default: // jpg
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return "", err
		}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
