package aqianalyzer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/menta2k/aqi-analyzer/pkg/catalog"
	"github.com/menta2k/aqi-analyzer/pkg/estimator"
	"github.com/menta2k/aqi-analyzer/pkg/processing"
	"github.com/menta2k/aqi-analyzer/pkg/types"
)

type fakeVision struct {
	preds []types.Prediction
	err   error
	seen  string
}

func (f *fakeVision) Classify(_ context.Context, _, _, imgB64 string) ([]types.Prediction, error) {
	f.seen = imgB64
	return f.preds, f.err
}

func (f *fakeVision) Ping(context.Context) error { return f.err }

// createTestImage creates a uniformly grey, smoggy looking image
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{150, 150, 140, 255})
		}
	}
	return img
}

func TestAnalyzeImage(t *testing.T) {
	fv := &fakeVision{preds: []types.Prediction{
		{Category: "Poor", Probability: 0.75},
		{Category: "Unhealthy", Probability: 0.25},
	}}
	a := New(catalog.Default(), fv, "aqi-vision")

	res, err := a.AnalyzeImage(context.Background(), createTestImage(200, 150))
	if err != nil {
		t.Fatalf("AnalyzeImage failed: %v", err)
	}

	if fv.seen == "" {
		t.Error("Expected the image to be sent to the vision client")
	}
	// 0.75*125.5 + 0.25*225.5 = 150.5
	if res.Estimate.EstimatedAQI != 151 {
		t.Errorf("Expected AQI 151, got %d", res.Estimate.EstimatedAQI)
	}
	if res.Estimate.TopCategory != "Poor" {
		t.Errorf("Expected top category Poor, got %s", res.Estimate.TopCategory)
	}

	latest, ok := a.Latest()
	if !ok || latest.ID != res.ID {
		t.Error("Expected the result to be the latest analysis")
	}
}

func TestAnalyzeImageTooSmall(t *testing.T) {
	a := New(catalog.Default(), &fakeVision{}, "m")

	_, err := a.AnalyzeImage(context.Background(), createTestImage(10, 10))
	if !errors.Is(err, processing.ErrImageTooSmall) {
		t.Errorf("Expected ErrImageTooSmall, got %v", err)
	}
}

func TestAnalyzeReader(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(64, 64)); err != nil {
		t.Fatal(err)
	}

	a := New(catalog.Default(), &fakeVision{preds: []types.Prediction{{Category: "Good", Probability: 1}}}, "m")
	res, err := a.AnalyzeReader(context.Background(), &buf)
	if err != nil {
		t.Fatalf("AnalyzeReader failed: %v", err)
	}
	if res.Estimate.EstimatedAQI != 25 || res.Estimate.ConfidencePercent != 100 {
		t.Errorf("Unexpected estimate %+v", res.Estimate)
	}

	if _, err := a.AnalyzeReader(context.Background(), bytes.NewReader([]byte("nope"))); !errors.Is(err, processing.ErrNotImage) {
		t.Errorf("Expected ErrNotImage, got %v", err)
	}
}

func TestAnalyzeFileMissing(t *testing.T) {
	a := New(catalog.Default(), &fakeVision{}, "m")
	if _, err := a.AnalyzeFile(context.Background(), "does-not-exist.jpg"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestEstimate(t *testing.T) {
	a := New(catalog.Default(), &fakeVision{}, "m")

	if _, err := a.Estimate(nil); !errors.Is(err, estimator.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	if a.Catalog().Len() != 5 {
		t.Errorf("Expected default catalog, got %d entries", a.Catalog().Len())
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("GetVersion() returned %s, expected %s", GetVersion(), Version)
	}
}
