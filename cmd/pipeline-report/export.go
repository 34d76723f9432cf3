package main

import (
	"context"
	"fmt"
	"os"

	"talent_pipeline_backend/internal/pipeline/board"
	"talent_pipeline_backend/internal/pipeline/domain"
	"talent_pipeline_backend/internal/pipeline/export"
	"talent_pipeline_backend/internal/pipeline/repository"
	"talent_pipeline_backend/platform/clock"
	"talent_pipeline_backend/platform/config"
	"talent_pipeline_backend/platform/db"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered board as CSV",
	Long:  "Export loads every candidate, derives the board as seen by a privileged viewer and writes the report CSV.",
	RunE:  runExport,
}

var (
	exportConsultant string
	exportJob        string
	exportQuery      string
	exportOut        string
)

func init() {
	exportCmd.Flags().StringVar(&exportConsultant, "consultant", "", "Only include candidates of this consultant")
	exportCmd.Flags().StringVar(&exportJob, "job", "", "Only include candidates targeting this job")
	exportCmd.Flags().StringVarP(&exportQuery, "q", "q", "", "Free-text search")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default: the dated report name, \"-\" for stdout)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	clk, err := clock.LoadSystem(cfg.GetPipelineTimezone())
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}
	policy, err := domain.LoadSLAPolicy(cfg.GetSLAPolicyFile())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	candidates, err := repository.New(pool).ListCandidates(ctx)
	if err != nil {
		return err
	}

	filter := board.Filter{Consultant: exportConsultant, Job: exportJob, Query: exportQuery}.Normalize()
	report := renderReport(candidates, policy, clk, cfg.GetPrivilegedRoles(), filter)

	out := exportOut
	if out == "" {
		out = export.Filename(clock.Today(clk))
	}
	if out == "-" {
		_, err = cmd.OutOrStdout().Write(report)
		return err
	}
	if err := writeFile(out, report); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
	return nil
}

// renderReport builds the board for a viewer holding every privileged role.
func renderReport(candidates []domain.Candidate, policy domain.SLAPolicy, clk clock.Clock, privileged []string, filter board.Filter) []byte {
	ws := board.NewWorkspace(clk, &clock.Epoch{}, policy, privileged)
	ws.Replace(candidates)
	viewer := board.Viewer{Roles: privileged}
	return export.Render(ws.View(viewer, filter))
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
