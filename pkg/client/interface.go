package client

import (
	"context"

	"github.com/menta2k/aqi-analyzer/pkg/types"
)

// VisionClient is a remote vision model that scores an image against a set of categories
type VisionClient interface {
	Classify(ctx context.Context, model, prompt, imgB64 string) ([]types.Prediction, error)
	Ping(ctx context.Context) error
}
