package domain

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"talent_pipeline_backend/platform/clock"
)

// IdleSentinel is reported when no usable reference date exists.
const IdleSentinel = 999

// Badge thresholds in idle days.
const (
	staleThreshold    = 7
	criticalThreshold = 14
)

// Severity is the colour band of the idle-days badge.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// IdleSeverity bands idle days into a badge colour.
func IdleSeverity(idle int) Severity {
	switch {
	case idle >= criticalThreshold:
		return SeverityHigh
	case idle >= staleThreshold:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// IsStale reports whether the idle badge is at least medium.
func IsStale(idle int) bool {
	return idle >= staleThreshold
}

// IdleSince returns whole days elapsed from ref to now, clamped at zero.
func IdleSince(ref, now time.Time) int {
	if ref.IsZero() {
		return IdleSentinel
	}
	days := math.Floor(now.Sub(ref).Hours() / 24)
	if days < 0 {
		return 0
	}
	return int(days)
}

// IdleDays measures how long c has sat since its latest event, or since its
// last update when the log is empty or the latest entry has no date. A
// malformed event date yields IdleSentinel.
func IdleDays(c Candidate, clk clock.Clock) int {
	loc := clk.Location()
	latest, ok := LatestEvent(c.ProgressTracking, loc)
	if ok && latest.Date != "" {
		d, parsed := clock.ParseDate(latest.Date, loc)
		if !parsed {
			return IdleSentinel
		}
		return IdleSince(d.Midnight(loc), clk.Now())
	}
	return IdleSince(c.UpdatedAt, clk.Now())
}

// SLAPolicy holds the maximum idle days allowed per stage.
type SLAPolicy struct {
	days map[Stage]int
}

// DefaultSLAPolicy returns the stock table: contacted 3, interviewed 7,
// offer 5, not started 2. Every other stage is unbounded.
func DefaultSLAPolicy() SLAPolicy {
	return SLAPolicy{days: map[Stage]int{
		StageContacted:   3,
		StageInterviewed: 7,
		StageOffer:       5,
		StageNotStarted:  2,
	}}
}

// Days returns the SLA for stage, or IdleSentinel when none applies.
func (p SLAPolicy) Days(stage Stage) int {
	if d, ok := p.days[stage]; ok {
		return d
	}
	return IdleSentinel
}

// IsOverdue reports whether idle strictly exceeds the SLA of stage.
func (p SLAPolicy) IsOverdue(stage Stage, idle int) bool {
	return idle > p.Days(stage)
}

// SLADays returns the default SLA for stage.
func SLADays(stage Stage) int {
	return DefaultSLAPolicy().Days(stage)
}

// IsOverdue evaluates idle against the default SLA table.
func IsOverdue(stage Stage, idle int) bool {
	return DefaultSLAPolicy().IsOverdue(stage, idle)
}

type policyFile struct {
	SLADays map[string]int `yaml:"sla_days"`
}

// ParseSLAPolicy reads a YAML document of the form
//
//	sla_days:
//	  contacted: 3
//	  offer: 5
//
// and overlays it on the default table.
func ParseSLAPolicy(data []byte) (SLAPolicy, error) {
	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return SLAPolicy{}, fmt.Errorf("parse sla policy: %w", err)
	}

	policy := DefaultSLAPolicy()
	for key, days := range file.SLADays {
		stage, err := ParseStage(key)
		if err != nil {
			return SLAPolicy{}, fmt.Errorf("parse sla policy: %w", err)
		}
		if days < 0 {
			return SLAPolicy{}, fmt.Errorf("parse sla policy: %s has negative days %d", key, days)
		}
		policy.days[stage] = days
	}
	return policy, nil
}

// LoadSLAPolicy reads a policy file from path. An empty path yields the defaults.
func LoadSLAPolicy(path string) (SLAPolicy, error) {
	if path == "" {
		return DefaultSLAPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return SLAPolicy{}, fmt.Errorf("read sla policy: %w", err)
	}
	return ParseSLAPolicy(data)
}
