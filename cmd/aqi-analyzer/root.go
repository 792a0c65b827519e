package main

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	aqianalyzer "github.com/menta2k/aqi-analyzer"
	"github.com/menta2k/aqi-analyzer/internal/config"
	"github.com/menta2k/aqi-analyzer/internal/observability"
	"github.com/menta2k/aqi-analyzer/pkg/client"
	"github.com/menta2k/aqi-analyzer/pkg/llamacpp"
	"github.com/menta2k/aqi-analyzer/pkg/ollama"
	"github.com/menta2k/aqi-analyzer/pkg/types"
)

// cli is the state shared by all subcommands
type cli struct {
	configPath string
	cfg        *config.Config
	log        *logrus.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "aqi-analyzer",
		Short:         "Estimate the Air Quality Index from photographs",
		Long:          `aqi-analyzer sends photographs to a vision model, turns the per-category probabilities into an AQI estimate and serves the results over HTTP.`,
		Version:       aqianalyzer.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			c.cfg = cfg
			c.log = observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.GetConfigPath()+")")

	root.AddCommand(
		newAnalyzeCmd(c),
		newEstimateCmd(c),
		newServeCmd(c),
		newTrendCmd(),
		newCatalogCmd(c),
	)
	return root
}

// newVisionClient creates the backend client selected by the configuration,
// wrapped in a circuit breaker
func newVisionClient(cfg *config.Config) (*client.Breaker, error) {
	var (
		vc  client.VisionClient
		err error
	)

	switch cfg.Backend.Kind {
	case config.BackendOllama:
		oc, err := ollama.NewClient(cfg.Backend.URL, &http.Client{Timeout: cfg.Backend.Timeout})
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		vc = oc.WithTimeout(cfg.Backend.Timeout)
	case config.BackendLlamaCpp:
		vc, err = llamacpp.NewClient(cfg.Backend.URL, cfg.Backend.Timeout)
		if err != nil {
			return nil, fmt.Errorf("failed to create llama.cpp client: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown backend: %s (use 'ollama' or 'llamacpp')", cfg.Backend.Kind)
	}

	return client.NewBreaker(vc, client.BreakerSettings{
		Name:        cfg.Backend.Kind,
		MaxFailures: cfg.Breaker.MaxFailures,
		OpenTimeout: cfg.Breaker.OpenTimeout,
	}), nil
}

// newAnalyzer builds the full analysis pipeline from the configuration
func (c *cli) newAnalyzer() (*aqianalyzer.Analyzer, *client.Breaker, error) {
	cat, err := c.cfg.BuildCatalog()
	if err != nil {
		return nil, nil, err
	}
	vc, err := newVisionClient(c.cfg)
	if err != nil {
		return nil, nil, err
	}

	a := aqianalyzer.NewWithOptions(cat, vc, c.cfg.Backend.Model, aqianalyzer.Options{
		Send: types.SendOptions{
			Format:  c.cfg.Send.Format,
			MaxSize: c.cfg.Send.MaxSize,
			Quality: c.cfg.Send.Quality,
		},
		MinImageSize: c.cfg.Analyzer.MinImageSize,
	})
	return a, vc, nil
}
