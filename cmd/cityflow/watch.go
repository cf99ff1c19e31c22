package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/cityflow-dev/cityflow"
	"github.com/cityflow-dev/cityflow/internal/config"
	"github.com/cityflow-dev/cityflow/internal/ops"
	"github.com/cityflow-dev/cityflow/pkg/client"
)

func watchCmd() *cobra.Command {
	var (
		configDir string
		url       string
		opsAddr   string
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the city feed until interrupted",
		Long: `Connect to the city feed and mirror its state locally.

The client reconnects automatically with exponential backoff and
sends periodic heartbeats. With --ops-addr set, an HTTP server
exposes /healthz, /statusz, /city/events and /metrics.

Examples:
  cityflow watch
  cityflow watch --url=ws://localhost:8000/ws/city
  cityflow watch --ops-addr=:8090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(configDir, url, opsAddr, verbose)
		},
	}

	cmd.Flags().StringVarP(&configDir, "config-dir", "c", ".", "Directory containing cityflow.json")
	cmd.Flags().StringVarP(&url, "url", "u", "", "Feed URL (overrides config)")
	cmd.Flags().StringVar(&opsAddr, "ops-addr", "", "Ops HTTP listen address (overrides config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	return cmd
}

func runWatch(configDir, url, opsAddr string, verbose bool) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	if url != "" {
		cfg.URL = url
	}
	if opsAddr != "" {
		cfg.OpsAddr = opsAddr
	}
	if cfg.URL == "" {
		return fmt.Errorf("no feed URL: set url in %s or CITYFLOW_URL", config.FileName)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	clientCfg := cfg.ClientConfig()
	clientCfg.Logger = logger
	clientCfg.MetricsRegisterer = prometheus.DefaultRegisterer

	c := cityflow.New(clientCfg)
	c.OnStatus(func(status client.Status, lastErr string) {
		switch status {
		case client.StatusConnected:
			success("connected to %s", cfg.URL)
		case client.StatusConnecting:
			info("connecting to %s", cfg.URL)
		case client.StatusError:
			warn("gave up reconnecting: %s", lastErr)
		case client.StatusDisconnected:
			if lastErr != "" {
				warn("disconnected: %s", lastErr)
			}
		}
	})

	if err := c.Start(); err != nil {
		return err
	}
	defer c.Stop()

	var opsServer *ops.Server
	opsErr := make(chan error, 1)
	if cfg.OpsAddr != "" {
		opsServer = ops.New(ops.Options{
			Addr:   cfg.OpsAddr,
			Client: c,
			Logger: logger,
		})
		go func() {
			opsErr <- opsServer.ListenAndServe()
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		fmt.Println()
		info("received %s, shutting down", sig)
	case err := <-opsErr:
		if err != nil {
			return fmt.Errorf("ops server: %w", err)
		}
	}

	if opsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := opsServer.Shutdown(ctx); err != nil {
			warn("ops shutdown: %s", err)
		}
	}
	return nil
}
