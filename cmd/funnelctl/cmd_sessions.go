package main

import (
	"fmt"
	"time"

	"ad-funnel-gate/auth"
	"ad-funnel-gate/storage"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Console session housekeeping",
}

var sessionsSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Clear expired and idle console sessions once",
	Long: `Runs the same sweep the server runs periodically: every console
session past its lifetime or idle limit is removed with the client's
local and session buckets.`,
	Args: cobra.NoArgs,
	RunE: runSessionsSweep,
}

func runSessionsSweep(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	cfg, rdb, err := connect(ctx)
	if err != nil {
		return err
	}
	defer rdb.Close()

	buckets := storage.NewBuckets(rdb, time.Duration(cfg.Funnel.GateTTLHours)*time.Hour)
	console, err := auth.NewHardcodedProvider(buckets,
		time.Duration(cfg.Auth.SessionTimeoutHours)*time.Hour,
		time.Duration(cfg.Auth.IdleTimeoutHours)*time.Hour,
	)
	if err != nil {
		return err
	}

	cleared, err := console.Sweep(ctx)
	if err != nil {
		return fmt.Errorf("sweep sessions: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d expired session(s)\n", cleared)
	return nil
}
