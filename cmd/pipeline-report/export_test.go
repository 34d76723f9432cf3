package main

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent_pipeline_backend/internal/pipeline/board"
	"talent_pipeline_backend/internal/pipeline/domain"
	"talent_pipeline_backend/platform/clock"
)

func TestRenderReportSeesEveryConsultant(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)
	clk := clock.NewFixed(time.Date(2024, 1, 10, 9, 0, 0, 0, loc), loc)

	mk := func(name, consultant string) domain.Candidate {
		return domain.Candidate{
			ID:               uuid.New(),
			Name:             name,
			Consultant:       consultant,
			ProgressTracking: []domain.ProgressEvent{{Date: "2024-01-08", Event: "已聯繫"}},
			CreatedAt:        time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	candidates := []domain.Candidate{mk("A", "Amy"), mk("B", "Ben"), mk("C", "")}

	all := renderReport(candidates, domain.DefaultSLAPolicy(), clk, []string{"ADMIN"}, board.Filter{})
	assert.Len(t, strings.Split(string(all), "\n"), 4)

	ben := renderReport(candidates, domain.DefaultSLAPolicy(), clk, []string{"ADMIN"}, board.Filter{Consultant: "Ben"})
	lines := strings.Split(string(ben), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `"B","Ben"`)
}
