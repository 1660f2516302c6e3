package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/donorpulse/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "donorpulse",
	Short: "Campaign forecasting and scenario engine",
	Long:  "Derives performance metrics from campaign snapshots, projects conservative/realistic/optimistic timelines, scores success odds, and serves the dashboard API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return cfg.Validate()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// clientID resolves the tenant filter for a command: the --client flag wins
// over the configured default.
func clientID(cmd *cobra.Command) string {
	client, _ := cmd.Flags().GetString("client")
	if client != "" {
		return client
	}
	return cfg.ClientID
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
