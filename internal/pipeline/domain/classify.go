package domain

import (
	"strings"

	"talent_pipeline_backend/platform/clock"
)

// labelRule maps a substring match on a free-text event label to a stage.
// Rules are evaluated in order and the first hit wins.
type labelRule struct {
	stage Stage
	match func(label string) bool
}

func containsAny(subs ...string) func(string) bool {
	return func(label string) bool {
		for _, s := range subs {
			if strings.Contains(label, s) {
				return true
			}
		}
		return false
	}
}

// readRules tolerates historical label drift. It is deliberately separate from
// writeTable: labels written years ago still have to land somewhere sensible.
var readRules = []labelRule{
	{StageAIRecommended, containsAny("AI推薦")},
	{StageNotStarted, containsAny("未開始")},
	{StageContacted, containsAny("已聯繫")},
	{StageInterviewed, containsAny("已面試", "面試")},
	{StageOffer, func(label string) bool { return strings.Contains(strings.ToLower(label), "offer") }},
	{StageOnboarded, containsAny("已上職", "到職")},
	{StageRejected, containsAny("婉拒", "拒絕")},
}

// ClassifyLabel maps an event label to a stage. Labels matching no rule land
// in StageOther.
func ClassifyLabel(label string) Stage {
	for _, rule := range readRules {
		if rule.match(label) {
			return rule.stage
		}
	}
	return StageOther
}

// StageFromStatus maps a persisted status to a stage. Unknown values are
// treated as not started.
func StageFromStatus(status Status) Stage {
	switch status {
	case StatusAIRecommended:
		return StageAIRecommended
	case StatusContacted:
		return StageContacted
	case StatusInterviewed:
		return StageInterviewed
	case StatusOffer:
		return StageOffer
	case StatusOnboarded:
		return StageOnboarded
	case StatusRejected:
		return StageRejected
	case StatusOther:
		return StageOther
	default:
		return StageNotStarted
	}
}

// BaseStage classifies c from its latest event, falling back to its status
// when the log is empty. The today-new override is not applied.
func BaseStage(c Candidate, clk clock.Clock) Stage {
	if latest, ok := LatestEvent(c.ProgressTracking, clk.Location()); ok {
		return ClassifyLabel(latest.Event)
	}
	return StageFromStatus(c.Status)
}

// Classify returns the stage c is displayed in at clk.Now().
func Classify(c Candidate, clk clock.Clock) Stage {
	base := BaseStage(c, clk)
	if base == StageNotStarted && IsCreatedToday(c, clk) {
		return StageTodayNew
	}
	return base
}

// IsCreatedToday reports whether c was created on the clock's current civil date.
func IsCreatedToday(c Candidate, clk clock.Clock) bool {
	if c.CreatedAt.IsZero() {
		return false
	}
	return clock.DateOf(c.CreatedAt, clk.Location()) == clock.Today(clk)
}
