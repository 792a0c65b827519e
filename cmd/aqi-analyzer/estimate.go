package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menta2k/aqi-analyzer/pkg/estimator"
	"github.com/menta2k/aqi-analyzer/pkg/trend"
	"github.com/menta2k/aqi-analyzer/pkg/types"
)

func newEstimateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "estimate <Category=probability>...",
		Short: "Estimate the AQI from category probabilities",
		Example: `  aqi-analyzer estimate Good=0.1 Moderate=0.1 Poor=0.1 Unhealthy=0.6 Severe=0.1
  aqi-analyzer estimate "Very Poor=0.7" Good=0.3 --config custom-catalog.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			preds, err := parsePredictionArgs(args)
			if err != nil {
				return err
			}

			cat, err := c.cfg.BuildCatalog()
			if err != nil {
				return err
			}

			est, err := estimator.New(cat).Estimate(preds)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(trend.Rate(est))
		},
	}
}

// parsePredictionArgs parses "Category=probability" pairs, keeping their order.
// The last '=' separates the probability so names may contain one.
func parsePredictionArgs(args []string) ([]types.Prediction, error) {
	preds := make([]types.Prediction, 0, len(args))
	for _, arg := range args {
		i := strings.LastIndex(arg, "=")
		if i <= 0 {
			return nil, fmt.Errorf("%w: expected Category=probability, got %q", estimator.ErrInvalidInput, arg)
		}
		p, err := strconv.ParseFloat(strings.TrimSpace(arg[i+1:]), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad probability in %q", estimator.ErrInvalidInput, arg)
		}
		preds = append(preds, types.Prediction{Category: strings.TrimSpace(arg[:i]), Probability: p})
	}
	return preds, nil
}
