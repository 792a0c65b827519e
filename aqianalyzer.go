// Package aqianalyzer estimates the Air Quality Index from photographs.
//
// A photograph is downscaled and sent to an external vision model, which scores
// it against a catalog of AQI categories. The returned probabilities are then
// aggregated into a single AQI value, the most likely category and that
// category's health recommendations.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		aqianalyzer "github.com/menta2k/aqi-analyzer"
//		"github.com/menta2k/aqi-analyzer/pkg/catalog"
//		"github.com/menta2k/aqi-analyzer/pkg/ollama"
//	)
//
//	func main() {
//		vc, err := ollama.NewClient("http://localhost:11434", nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		a := aqianalyzer.New(catalog.Default(), vc, "llava")
//		res, err := a.AnalyzeFile(context.Background(), "skyline.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Printf("AQI %d (%s, %d%%)\n", res.Estimate.EstimatedAQI,
//			res.Estimate.TopCategory, res.Estimate.ConfidencePercent)
//	}
//
// The package consists of these components:
//
// 1. Catalog (pkg/catalog): category midpoints and recommendations
// 2. Estimator (pkg/estimator): the probability weighted aggregation
// 3. Classification (pkg/classification): prompt building and reply normalization
// 4. Processing (pkg/processing): image loading, validation and encoding
// 5. Analysis (pkg/analysis): last-submission-wins coordination
// 6. Trend (pkg/trend): the fixed monthly AQI table and AQI bands
package aqianalyzer

import (
	"context"
	"fmt"
	"image"
	"io"

	"github.com/jonboulle/clockwork"

	"github.com/menta2k/aqi-analyzer/pkg/analysis"
	"github.com/menta2k/aqi-analyzer/pkg/catalog"
	"github.com/menta2k/aqi-analyzer/pkg/classification"
	"github.com/menta2k/aqi-analyzer/pkg/client"
	"github.com/menta2k/aqi-analyzer/pkg/estimator"
	"github.com/menta2k/aqi-analyzer/pkg/processing"
	"github.com/menta2k/aqi-analyzer/pkg/types"
)

// Version of the AQI analyzer library
const Version = "1.0.0"

// Options tunes how images are prepared and timestamped
type Options struct {
	Send         types.SendOptions
	MinImageSize int
	Clock        clockwork.Clock
}

// DefaultOptions returns the options used by New
func DefaultOptions() Options {
	return Options{
		Send:         types.SendOptions{Format: "jpg", MaxSize: 768, Quality: 85},
		MinImageSize: 32,
	}
}

// Analyzer provides a high-level interface for estimating AQI from images
type Analyzer struct {
	catalog    *catalog.Catalog
	processor  *processing.Processor
	classifier *classification.Classifier
	estimator  *estimator.Estimator
	session    *analysis.Session
	send       types.SendOptions
}

// New creates an Analyzer with default options
func New(cat *catalog.Catalog, vc client.VisionClient, model string) *Analyzer {
	return NewWithOptions(cat, vc, model, DefaultOptions())
}

// NewWithOptions creates an Analyzer with custom options
func NewWithOptions(cat *catalog.Catalog, vc client.VisionClient, model string, opts Options) *Analyzer {
	cls := classification.New(vc, cat, model)
	est := estimator.New(cat)

	return &Analyzer{
		catalog:    cat,
		processor:  processing.NewProcessorWithConfig(processing.Config{MinImageSize: opts.MinImageSize}),
		classifier: cls,
		estimator:  est,
		session:    analysis.NewSession(cls, est, opts.Clock),
		send:       opts.Send,
	}
}

// Catalog returns the catalog the analyzer estimates against
func (a *Analyzer) Catalog() *catalog.Catalog {
	return a.catalog
}

// Estimate aggregates an already computed prediction list
func (a *Analyzer) Estimate(predictions []types.Prediction) (types.Estimate, error) {
	return a.estimator.Estimate(predictions)
}

// AnalyzeImage validates, encodes and analyzes a decoded image
func (a *Analyzer) AnalyzeImage(ctx context.Context, img image.Image) (analysis.Result, error) {
	if err := a.processor.ValidateImage(img); err != nil {
		return analysis.Result{}, fmt.Errorf("image validation failed: %w", err)
	}

	imgB64, err := a.processor.PrepareImageForModel(img, a.send)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("failed to prepare image: %w", err)
	}

	return a.session.Submit(ctx, imgB64)
}

// AnalyzeReader decodes an image from r and analyzes it
func (a *Analyzer) AnalyzeReader(ctx context.Context, r io.Reader) (analysis.Result, error) {
	img, err := a.processor.DecodeImage(r)
	if err != nil {
		return analysis.Result{}, err
	}
	return a.AnalyzeImage(ctx, img)
}

// AnalyzeFile loads an image from a path or http(s) URL and analyzes it
func (a *Analyzer) AnalyzeFile(ctx context.Context, source string) (analysis.Result, error) {
	img, err := a.processor.LoadImageSmart(source)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("failed to load image: %w", err)
	}
	return a.AnalyzeImage(ctx, img)
}

// Latest returns the most recent accepted analysis
func (a *Analyzer) Latest() (analysis.Result, bool) {
	return a.session.Latest()
}

// Ping checks the vision backend
func (a *Analyzer) Ping(ctx context.Context) error {
	return a.classifier.Ping(ctx)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
