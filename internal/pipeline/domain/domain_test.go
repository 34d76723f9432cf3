package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent_pipeline_backend/platform/clock"
)

func taipei(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)
	return loc
}

func fixedAt(t *testing.T, date string) *clock.Fixed {
	t.Helper()
	loc := taipei(t)
	now, err := time.ParseInLocation("2006-01-02 15:04", date+" 10:30", loc)
	require.NoError(t, err)
	return clock.NewFixed(now, loc)
}

var scenarioLog = []ProgressEvent{
	{Date: "2024-01-01", Event: "已聯繫", By: "Amy"},
	{Date: "2024-01-05", Event: "已面試", By: "Amy"},
}

func TestCreatedTodayWithoutProgressIsTodayNew(t *testing.T) {
	clk := fixedAt(t, "2024-03-08")
	c := Candidate{Status: StatusNotStarted, CreatedAt: clk.Now().Add(-2 * time.Hour)}

	assert.Equal(t, StageTodayNew, Classify(c, clk))
	assert.Equal(t, StageNotStarted, BaseStage(c, clk))
}

func TestTodayNewUsesCivilDateInZone(t *testing.T) {
	clk := fixedAt(t, "2024-03-08")
	// 2024-03-07 17:00 UTC is 2024-03-08 01:00 in Taipei.
	c := Candidate{Status: StatusNotStarted, CreatedAt: time.Date(2024, 3, 7, 17, 0, 0, 0, time.UTC)}
	assert.Equal(t, StageTodayNew, Classify(c, clk))

	c.CreatedAt = time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, StageNotStarted, Classify(c, clk))
}

func TestTodayNewOnlyOverridesNotStarted(t *testing.T) {
	clk := fixedAt(t, "2024-03-08")
	c := Candidate{Status: StatusContacted, CreatedAt: clk.Now()}
	assert.Equal(t, StageContacted, Classify(c, clk))
}

func TestLatestEventWithinSLA(t *testing.T) {
	clk := fixedAt(t, "2024-01-10")
	c := Candidate{Status: StatusContacted, ProgressTracking: scenarioLog}

	a := DefaultSLAPolicy().Assess(c, clk)
	require.True(t, a.HasLatest)
	assert.Equal(t, "已面試", a.Latest.Event)
	assert.Equal(t, "2024-01-05", a.Latest.Date)
	assert.Equal(t, StageInterviewed, a.Stage)
	assert.Equal(t, 5, a.IdleDays)
	assert.Equal(t, 7, a.SLADays)
	assert.False(t, a.Overdue)
	assert.Equal(t, SeverityLow, a.Severity)
}

func TestLatestEventPastSLA(t *testing.T) {
	clk := fixedAt(t, "2024-01-20")
	c := Candidate{ProgressTracking: scenarioLog}

	a := DefaultSLAPolicy().Assess(c, clk)
	assert.Equal(t, 15, a.IdleDays)
	assert.True(t, a.Overdue)
	assert.Equal(t, SeverityHigh, a.Severity)
}

func TestLatestEventTieGoesToLastAppended(t *testing.T) {
	log := []ProgressEvent{
		{Date: "2024-02-01", Event: "已聯繫"},
		{Date: "2024-02-03", Event: "已面試"},
		{Date: "2024-02-03", Event: "婉拒"},
		{Date: "2024-01-20", Event: "AI推薦"},
	}
	latest, ok := LatestEvent(log, time.UTC)
	require.True(t, ok)
	assert.Equal(t, "婉拒", latest.Event)
}

func TestLatestEventIgnoresTimeOfDay(t *testing.T) {
	loc := time.UTC
	log := []ProgressEvent{
		{Date: "2024-02-03T23:00:00Z", Event: "已聯繫"},
		{Date: "2024-02-03", Event: "已面試"},
	}
	latest, ok := LatestEvent(log, loc)
	require.True(t, ok)
	assert.Equal(t, "已面試", latest.Event)
}

func TestLatestEventUnparseableDates(t *testing.T) {
	_, ok := LatestEvent(nil, time.UTC)
	assert.False(t, ok)

	log := []ProgressEvent{
		{Date: "2024-02-01", Event: "已聯繫"},
		{Date: "someday", Event: "已上職"},
	}
	latest, ok := LatestEvent(log, time.UTC)
	require.True(t, ok)
	assert.Equal(t, "已聯繫", latest.Event)

	allBad := []ProgressEvent{{Date: "x", Event: "已聯繫"}, {Date: "y", Event: "Offer"}}
	latest, ok = LatestEvent(allBad, time.UTC)
	require.True(t, ok)
	assert.Equal(t, "Offer", latest.Event)

	clk := fixedAt(t, "2024-03-01")
	c := Candidate{ProgressTracking: allBad, UpdatedAt: clk.Now()}
	assert.Equal(t, StageOffer, Classify(c, clk))
	assert.Equal(t, IdleSentinel, IdleDays(c, clk))
}

func TestClassifyLabel(t *testing.T) {
	tests := []struct {
		label string
		want  Stage
	}{
		{"AI推薦", StageAIRecommended},
		{"AI推薦 - 未開始", StageAIRecommended},
		{"未開始", StageNotStarted},
		{"已聯繫候選人", StageContacted},
		{"已面試", StageInterviewed},
		{"安排二面試", StageInterviewed},
		{"Offer", StageOffer},
		{"發出 OFFER", StageOffer},
		{"offer letter", StageOffer},
		{"已上職", StageOnboarded},
		{"確認到職", StageOnboarded},
		{"婉拒", StageRejected},
		{"候選人拒絕", StageRejected},
		{"其他", StageOther},
		{"電話聯絡", StageOther},
		{"", StageOther},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyLabel(tt.label))
		})
	}
}

func TestStageFromStatusDefaultsToNotStarted(t *testing.T) {
	assert.Equal(t, StageOffer, StageFromStatus(StatusOffer))
	assert.Equal(t, StageOther, StageFromStatus(StatusOther))
	assert.Equal(t, StageNotStarted, StageFromStatus(""))
	assert.Equal(t, StageNotStarted, StageFromStatus("archived"))
}

func TestCanonicalLabelsClassifyBack(t *testing.T) {
	for _, stage := range AllStages() {
		w, err := CanonicalWrite(stage)
		if stage == StageTodayNew {
			assert.ErrorIs(t, err, ErrNotWritable)
			continue
		}
		require.NoError(t, err, stage.String())
		assert.Equal(t, stage, ClassifyLabel(w.Label), stage.String())
		assert.Equal(t, stage, StageFromStatus(w.Status), stage.String())
	}
}

func TestIdleDaysFallsBackToUpdatedAt(t *testing.T) {
	clk := fixedAt(t, "2024-05-10")
	c := Candidate{UpdatedAt: clk.Now().Add(-73 * time.Hour)}
	assert.Equal(t, 3, IdleDays(c, clk))

	c.ProgressTracking = []ProgressEvent{{Event: "已聯繫"}}
	assert.Equal(t, 3, IdleDays(c, clk))

	assert.Equal(t, IdleSentinel, IdleDays(Candidate{}, clk))
}

func TestIdleDaysClampsFutureDates(t *testing.T) {
	clk := fixedAt(t, "2024-05-10")
	c := Candidate{ProgressTracking: []ProgressEvent{{Date: "2024-06-01", Event: "已聯繫"}}}
	assert.Equal(t, 0, IdleDays(c, clk))
}

func TestSLATable(t *testing.T) {
	assert.Equal(t, 3, SLADays(StageContacted))
	assert.Equal(t, 7, SLADays(StageInterviewed))
	assert.Equal(t, 5, SLADays(StageOffer))
	assert.Equal(t, 2, SLADays(StageNotStarted))
	for _, s := range []Stage{StageTodayNew, StageAIRecommended, StageOnboarded, StageRejected, StageOther} {
		assert.Equal(t, IdleSentinel, SLADays(s), s.String())
	}

	assert.False(t, IsOverdue(StageContacted, 3))
	assert.True(t, IsOverdue(StageContacted, 4))
	assert.False(t, IsOverdue(StageOnboarded, IdleSentinel))
}

func TestIdleSeverityBands(t *testing.T) {
	assert.Equal(t, SeverityLow, IdleSeverity(0))
	assert.Equal(t, SeverityLow, IdleSeverity(6))
	assert.Equal(t, SeverityMedium, IdleSeverity(7))
	assert.Equal(t, SeverityMedium, IdleSeverity(13))
	assert.Equal(t, SeverityHigh, IdleSeverity(14))
}

func TestParseSLAPolicy(t *testing.T) {
	policy, err := ParseSLAPolicy([]byte("sla_days:\n  contacted: 1\n  onboarded: 30\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, policy.Days(StageContacted))
	assert.Equal(t, 30, policy.Days(StageOnboarded))
	assert.Equal(t, 7, policy.Days(StageInterviewed))

	_, err = ParseSLAPolicy([]byte("sla_days:\n  limbo: 1\n"))
	assert.Error(t, err)

	_, err = ParseSLAPolicy([]byte("sla_days:\n  offer: -1\n"))
	assert.Error(t, err)

	// The override must not leak into the defaults.
	assert.Equal(t, 3, SLADays(StageContacted))
}

func TestStageTextRoundTrip(t *testing.T) {
	var s Stage
	require.NoError(t, s.UnmarshalText([]byte("interviewed")))
	assert.Equal(t, StageInterviewed, s)
	assert.Error(t, s.UnmarshalText([]byte("today")))

	_, err := Stage(0).MarshalText()
	assert.Error(t, err)
	assert.True(t, StageTodayNew.Locked())
	assert.Equal(t, "今日新增", StageTodayNew.Title())
}
