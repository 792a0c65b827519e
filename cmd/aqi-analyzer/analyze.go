package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/menta2k/aqi-analyzer/internal/utils"
	"github.com/menta2k/aqi-analyzer/pkg/analysis"
)

type analyzeOutput struct {
	Source string           `json:"source"`
	Result *analysis.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func newAnalyzeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <image|url|dir>...",
		Short: "Estimate the AQI of photographs",
		Long: `Analyze loads every given image file or http(s) URL, walks given directories
for images and prints one JSON object per image with its AQI estimate.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := utils.ExpandSources(args)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				return fmt.Errorf("no images found in %v", args)
			}

			a, _, err := c.newAnalyzer()
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			failed := 0
			for _, src := range sources {
				fields := logrus.Fields{"source": src}
				if info, err := os.Stat(src); err == nil {
					fields["size"] = utils.FormatFileSize(info.Size())
				}
				log := c.log.WithFields(fields)
				log.Info("analyzing")

				start := time.Now()
				out := analyzeOutput{Source: src}
				res, err := a.AnalyzeFile(cmd.Context(), src)
				if err != nil {
					failed++
					out.Error = err.Error()
					log.WithError(err).Warn("analysis failed")
				} else {
					out.Result = &res
					log.WithFields(logrus.Fields{
						"aqi":      res.Estimate.EstimatedAQI,
						"category": res.Estimate.TopCategory,
						"took":     time.Since(start).Round(time.Millisecond),
					}).Info("analysis complete")
				}

				if err := enc.Encode(out); err != nil {
					return err
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d images failed", failed, len(sources))
			}
			return nil
		},
	}
}
