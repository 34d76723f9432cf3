package board

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent_pipeline_backend/internal/pipeline/domain"
	"talent_pipeline_backend/platform/clock"
)

var admin = Viewer{Name: "Boss", Roles: []string{"ADMIN"}}

func testClock(t *testing.T) *clock.Fixed {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)
	return clock.NewFixed(time.Date(2024, 1, 20, 9, 0, 0, 0, loc), loc)
}

func candidate(name, consultant, notes string, log ...domain.ProgressEvent) domain.Candidate {
	return domain.Candidate{
		ID:               uuid.New(),
		Name:             name,
		Position:         "Backend Engineer",
		Consultant:       consultant,
		Notes:            notes,
		Status:           domain.StatusNotStarted,
		ProgressTracking: log,
		CreatedAt:        time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:        time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
	}
}

func ev(date, label string) domain.ProgressEvent {
	return domain.ProgressEvent{Date: date, Event: label, By: "tester"}
}

func TestExtractTargetJobs(t *testing.T) {
	notes := "【目標職缺】資深後端 (Acme)\n備註\n目標職缺：PM (Globex)\n應徵：資深後端 (Acme)\n應徵： QA  ( Initech )"
	assert.Equal(t, []string{"資深後端 (Acme)", "PM (Globex)", "QA (Initech)"}, ExtractTargetJobs(notes))
	assert.Equal(t, "資深後端 (Acme)", PrimaryTargetJob(notes))

	assert.Empty(t, ExtractTargetJobs(""))
	assert.Equal(t, NoTargetJob, PrimaryTargetJob("no annotation here"))
	assert.Equal(t, "Data Engineer (Umbrella)", PrimaryTargetJob("應徵：Data Engineer (Umbrella)"))
}

func TestVisibilityRestrictsNonPrivilegedViewers(t *testing.T) {
	clk := testClock(t)
	items := Assess([]domain.Candidate{
		candidate("A", "Amy", ""),
		candidate("B", "Ben", ""),
		candidate("C", "", ""),
	}, domain.DefaultSLAPolicy(), clk)

	privileged := []string{"ADMIN"}
	assert.Len(t, Visible(items, admin, privileged), 3)

	amy := Visible(items, Viewer{Name: "Amy", Roles: []string{"CONSULTANT"}}, privileged)
	require.Len(t, amy, 1)
	assert.Equal(t, "A", amy[0].Candidate.Name)

	unassigned := Visible(items, Viewer{Name: domain.UnassignedConsultant}, privileged)
	require.Len(t, unassigned, 1)
	assert.Equal(t, "C", unassigned[0].Candidate.Name)
}

func TestBuildGroupsAndSortsByLatestDate(t *testing.T) {
	clk := testClock(t)
	first := candidate("First", "Amy", "", ev("2024-01-10", "已聯繫"))
	second := candidate("Second", "Amy", "", ev("2024-01-15", "已聯繫"))
	sameDay := candidate("SameDay", "Amy", "", ev("2024-01-10", "已聯繫"))
	noLog := candidate("NoLog", "Amy", "")
	noLog.Status = domain.StatusContacted

	items := Assess([]domain.Candidate{first, second, sameDay, noLog}, domain.DefaultSLAPolicy(), clk)
	b := Build(items, Filter{}, clk.Now())

	require.Len(t, b.Columns, 9)
	assert.Equal(t, domain.AllStages()[0], b.Columns[0].Stage)

	col, ok := b.Column(domain.StageContacted)
	require.True(t, ok)
	names := make([]string, 0, len(col.Items))
	for _, item := range col.Items {
		names = append(names, item.Candidate.Name)
	}
	assert.Equal(t, []string{"Second", "First", "SameDay", "NoLog"}, names)
	assert.Equal(t, 4, col.Count)
	assert.Nil(t, col.Total)
	assert.Equal(t, 4, col.Overdue)

	todayCol, _ := b.Column(domain.StageTodayNew)
	assert.True(t, todayCol.Locked)
	assert.NotNil(t, todayCol.Items)
}

func TestBuildReportsTotalsWhileFiltered(t *testing.T) {
	clk := testClock(t)
	items := Assess([]domain.Candidate{
		candidate("Ann", "Amy", "應徵：PM (Globex)", ev("2024-01-19", "已面試")),
		candidate("Bob", "Ben", "", ev("2024-01-19", "已面試")),
		candidate("Cid", "Ben", "", ev("2024-01-02", "Offer")),
	}, domain.DefaultSLAPolicy(), clk)

	b := Build(items, Filter{Consultant: "Amy"}, clk.Now())
	col, _ := b.Column(domain.StageInterviewed)
	assert.Equal(t, 1, col.Count)
	require.NotNil(t, col.Total)
	assert.Equal(t, 2, *col.Total)

	offer, _ := b.Column(domain.StageOffer)
	assert.Equal(t, 0, offer.Count)
	require.NotNil(t, offer.Total)
	assert.Equal(t, 1, *offer.Total)

	b = Build(items, Filter{Job: NoTargetJob}, clk.Now())
	assert.Equal(t, 2, b.Summary.Visible)

	b = Build(items, Filter{Consultant: FilterAll, Job: FilterAll}, clk.Now())
	assert.False(t, b.Filter.Active())
	assert.Equal(t, 3, b.Summary.Visible)
}

func TestSearchIsCaseFoldedAcrossFields(t *testing.T) {
	clk := testClock(t)
	withNote := candidate("Dora", "Amy", "", domain.ProgressEvent{Date: "2024-01-18", Event: "已聯繫", Note: "Prefers REMOTE work"})
	items := Assess([]domain.Candidate{
		candidate("Élodie", "Amy", ""),
		candidate("Frank", "Ben", "【目標職缺】Staff SRE (Hooli)"),
		withNote,
	}, domain.DefaultSLAPolicy(), clk)

	cases := map[string]string{
		"élodie": "Élodie",
		"hooli":  "Frank",
		"remote": "Dora",
		"BEN":    "Frank",
	}
	for query, want := range cases {
		b := Build(items, Filter{Query: query}, clk.Now())
		got := b.Items()
		require.Len(t, got, 1, query)
		assert.Equal(t, want, got[0].Candidate.Name, query)
	}

	b := Build(items, Filter{Query: "backend"}, clk.Now())
	assert.Len(t, b.Items(), 3)
}

func TestSummaryCounters(t *testing.T) {
	clk := testClock(t)
	items := Assess([]domain.Candidate{
		candidate("Fresh", "Amy", "", ev("2024-01-19", "已聯繫")),
		candidate("Stale", "Amy", "", ev("2024-01-12", "已面試")),
		candidate("Ancient", "Amy", "", ev("2024-01-01", "已上職")),
		candidate("Empty", "Amy", ""),
	}, domain.DefaultSLAPolicy(), clk)

	s := Build(items, Filter{}, clk.Now()).Summary
	assert.Equal(t, 4, s.Visible)
	assert.Equal(t, 3, s.TotalWithTracking)
	// Stale (8 days), Ancient (19 days) and Empty (updatedAt 50 days ago).
	assert.Equal(t, 3, s.StaleCount)
	// Stale: 8 > 7 interviewed. Empty: not_started 50 > 2. Onboarded is unbounded.
	assert.Equal(t, 2, s.SLAOverdueCount)
}

func TestBuildOptions(t *testing.T) {
	clk := testClock(t)
	items := Assess([]domain.Candidate{
		candidate("A", "Ben", "應徵：PM (Globex)"),
		candidate("B", "Amy", ""),
		candidate("C", "", "應徵：PM (Globex)"),
	}, domain.DefaultSLAPolicy(), clk)

	opts := BuildOptions(items)
	assert.Equal(t, []string{"Amy", "Ben", domain.UnassignedConsultant}, opts.Consultants)
	assert.Equal(t, []string{"PM (Globex)", NoTargetJob}, opts.Jobs)
}
