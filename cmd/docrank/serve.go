package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docrank/internal/api"
	"github.com/dgallion1/docrank/internal/pipeline"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve outline extraction and ranking over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != "" {
			cfg.Port = servePort
		}
		if err := cfg.ValidateServe(); err != nil {
			logger.Error("invalid configuration", "error", err)
			return err
		}
		ctx := cmd.Context()

		p, stats := newPipeline(cfg, logger)
		runs := pipeline.NewRunStore(cfg.RunTTL)
		srv := api.NewServer(p, runs, stats, logger, cfg)

		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 300 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Run store cleanup.
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if removed, remaining := runs.Cleanup(); removed > 0 {
						logger.Info("expired runs removed", "removed", removed, "remaining", remaining)
					}
				}
			}
		}()

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			logger.Info("shutting down...")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		logger.Info("starting docrank", "port", cfg.Port, "embedding_provider", cfg.Embedding.Provider)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default: config port)")
}
