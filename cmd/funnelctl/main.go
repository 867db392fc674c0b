// Command funnelctl is the operator tool for the funnel's Redis state.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"ad-funnel-gate/config"
	appLogger "ad-funnel-gate/logger"
	redisClient "ad-funnel-gate/redis"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	redisAddr string
	verbose   bool
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "funnelctl",
	Short: "Operate the ad funnel configuration and sessions",
	Long: `funnelctl reads and writes the same Redis state as the server.

Configuration comes from config.yaml in the working directory and
ADFUNNEL_* environment variables, like the server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		appLogger.Initialize()
		if verbose {
			appLogger.SetLevel("debug")
		} else {
			appLogger.SetLevel("warn")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", "", "Redis address (overrides redis.address)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Operation timeout")

	configCmd.AddCommand(configExportCmd)
	configCmd.AddCommand(configImportCmd)
	configCmd.AddCommand(configResetCmd)
	analyticsCmd.AddCommand(analyticsResetCmd)
	sessionsCmd.AddCommand(sessionsSweepCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// connect loads the configuration and opens Redis.
func connect(ctx context.Context) (config.Config, *redis.Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	if redisAddr != "" {
		cfg.Redis.Address = redisAddr
	}
	rdb, err := redisClient.Connect(ctx, cfg.Redis)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, rdb, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
