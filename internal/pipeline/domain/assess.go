package domain

import "talent_pipeline_backend/platform/clock"

// Assessment is everything derived for one candidate at one instant.
type Assessment struct {
	Stage     Stage
	Latest    ProgressEvent
	HasLatest bool
	IdleDays  int
	SLADays   int
	Overdue   bool
	Severity  Severity
}

// Assess derives stage, idle time and SLA state for c at clk.Now().
func (p SLAPolicy) Assess(c Candidate, clk clock.Clock) Assessment {
	latest, ok := LatestEvent(c.ProgressTracking, clk.Location())
	stage := Classify(c, clk)
	idle := IdleDays(c, clk)
	return Assessment{
		Stage:     stage,
		Latest:    latest,
		HasLatest: ok,
		IdleDays:  idle,
		SLADays:   p.Days(stage),
		Overdue:   p.IsOverdue(stage, idle),
		Severity:  IdleSeverity(idle),
	}
}
