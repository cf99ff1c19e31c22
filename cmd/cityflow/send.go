package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cityflow-dev/cityflow"
	"github.com/cityflow-dev/cityflow/internal/config"
	"github.com/cityflow-dev/cityflow/pkg/client"
)

// connectTimeout bounds how long one-shot commands wait for the feed.
const connectTimeout = 30 * time.Second

// withConnectedClient connects to the feed, runs fn once the connection is
// up, then disconnects. Commands are fire-and-forget, so a short grace
// period lets the write flush before teardown.
func withConnectedClient(configDir, url string, fn func(c *cityflow.Client) error) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return err
	}
	if url != "" {
		cfg.URL = url
	}
	if cfg.URL == "" {
		return fmt.Errorf("no feed URL: set url in %s or CITYFLOW_URL", config.FileName)
	}

	clientCfg := cfg.ClientConfig()
	clientCfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	c := cityflow.New(clientCfg)

	connected := make(chan struct{}, 1)
	failed := make(chan string, 1)
	c.OnStatus(func(status client.Status, lastErr string) {
		switch status {
		case client.StatusConnected:
			select {
			case connected <- struct{}{}:
			default:
			}
		case client.StatusError:
			select {
			case failed <- lastErr:
			default:
			}
		}
	})

	if err := c.Start(); err != nil {
		return err
	}
	defer c.Stop()

	select {
	case <-connected:
	case reason := <-failed:
		return fmt.Errorf("connect to %s: %s", cfg.URL, reason)
	case <-time.After(connectTimeout):
		return fmt.Errorf("connect to %s: timed out after %s", cfg.URL, connectTimeout)
	}

	if err := fn(c); err != nil {
		return err
	}
	time.Sleep(200 * time.Millisecond)
	return nil
}

func dispatchCmd() *cobra.Command {
	var (
		configDir string
		url       string
		eta       int
	)

	cmd := &cobra.Command{
		Use:   "dispatch <from-intersection> <to-intersection>",
		Short: "Request an ambulance priority corridor",
		Long: `Connect to the feed, request an ambulance priority corridor
between two intersections, and exit.

The server acknowledges by broadcasting an ambulance route update;
this command does not wait for it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnectedClient(configDir, url, func(c *cityflow.Client) error {
				if err := c.Commands().DispatchAmbulance(args[0], args[1], eta); err != nil {
					return err
				}
				success("dispatch requested: %s → %s", args[0], args[1])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&configDir, "config-dir", "c", ".", "Directory containing cityflow.json")
	cmd.Flags().StringVarP(&url, "url", "u", "", "Feed URL (overrides config)")
	cmd.Flags().IntVar(&eta, "eta", 0, "Estimated arrival in seconds")

	return cmd
}

func incidentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "incident",
		Short: "Report or clear incidents",
	}
	cmd.AddCommand(incidentCreateCmd(), incidentClearCmd())
	return cmd
}

func incidentCreateCmd() *cobra.Command {
	var (
		configDir    string
		url          string
		incidentType string
		severity     int
	)

	cmd := &cobra.Command{
		Use:   "create <intersection-id> <direction>",
		Short: "Report an incident at an intersection approach",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnectedClient(configDir, url, func(c *cityflow.Client) error {
				if err := c.Commands().CreateIncident(args[0], args[1], incidentType, severity); err != nil {
					return err
				}
				success("incident reported at %s (%s)", args[0], args[1])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&configDir, "config-dir", "c", ".", "Directory containing cityflow.json")
	cmd.Flags().StringVarP(&url, "url", "u", "", "Feed URL (overrides config)")
	cmd.Flags().StringVar(&incidentType, "type", "accident", "Incident type")
	cmd.Flags().IntVar(&severity, "severity", 1, "Severity (higher is worse)")

	return cmd
}

func incidentClearCmd() *cobra.Command {
	var (
		configDir string
		url       string
	)

	cmd := &cobra.Command{
		Use:   "clear <incident-id>",
		Short: "Clear a previously reported incident",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConnectedClient(configDir, url, func(c *cityflow.Client) error {
				if err := c.Commands().ClearIncident(args[0]); err != nil {
					return err
				}
				success("incident %s cleared", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&configDir, "config-dir", "c", ".", "Directory containing cityflow.json")
	cmd.Flags().StringVarP(&url, "url", "u", "", "Feed URL (overrides config)")

	return cmd
}
