package main

import (
	"fmt"
	"os"

	"talent_pipeline_backend/internal/scheduler"
	"talent_pipeline_backend/platform/config"

	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Queue an SLA sweep on the scheduler",
	RunE:  runSweep,
}

var sweepRequestedBy string

func init() {
	sweepCmd.Flags().StringVar(&sweepRequestedBy, "by", os.Getenv("USER"), "Name recorded with the request")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.EnqueueSLASweep(cmd.Context(), scheduler.SLASweepPayload{Trigger: "manual", RequestedBy: sweepRequestedBy}); err != nil {
		return fmt.Errorf("enqueue sla sweep: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "sla sweep queued")
	return nil
}
