package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/menta2k/aqi-analyzer/internal/httpapi"
	"github.com/menta2k/aqi-analyzer/internal/observability"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the AQI analyzer as an HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			a, vc, err := c.newAnalyzer()
			if err != nil {
				return err
			}

			pingCtx, cancelPing := context.WithTimeout(cmd.Context(), 5*time.Second)
			if err := a.Ping(pingCtx); err != nil {
				c.log.WithError(err).WithField("backend", c.cfg.Backend.URL).Warn("vision backend not reachable, serving anyway")
			}
			cancelPing()

			accessLog := c.log.WriterLevel(logrus.InfoLevel)
			defer accessLog.Close()

			app := httpapi.NewApp(httpapi.Deps{
				Analyzer: a,
				Metrics:  observability.NewMetrics(),
				Log:      c.log,
			}, httpapi.Options{
				ReadTimeout:  c.cfg.Server.ReadTimeout,
				WriteTimeout: c.cfg.Server.WriteTimeout,
				BodyLimit:    c.cfg.Server.BodyLimit,
				AccessLog:    accessLog,
			})

			listenErr := make(chan error, 1)
			go func() {
				c.log.WithFields(logrus.Fields{
					"addr":    addr,
					"backend": c.cfg.Backend.Kind,
					"model":   c.cfg.Backend.Model,
				}).Info("server listening")
				listenErr <- app.Listen(addr)
			}()

			// Wait for termination signal or a failed listener
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-listenErr:
				return fmt.Errorf("server on %s stopped: %w", addr, err)
			case <-ctx.Done():
			}

			c.log.WithField("breaker", vc.State()).Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return app.ShutdownWithContext(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
