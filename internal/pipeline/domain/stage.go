// Package domain holds the pure derivation rules of the candidate pipeline:
// stage classification, the canonical write table and SLA evaluation.
// Nothing in this package performs I/O or reads the wall clock directly.
package domain

import (
	"fmt"
)

// Stage is one of the nine board columns a candidate can be displayed in.
type Stage uint8

const (
	// StageTodayNew is virtual: it is derived for candidates created today
	// that have not started, and is never persisted or used as a drop target.
	StageTodayNew Stage = iota + 1
	StageAIRecommended
	StageContacted
	StageInterviewed
	StageOffer
	StageOnboarded
	StageRejected
	StageOther
	StageNotStarted
)

var stageKeys = map[Stage]string{
	StageTodayNew:      "today_new",
	StageAIRecommended: "ai_recommended",
	StageContacted:     "contacted",
	StageInterviewed:   "interviewed",
	StageOffer:         "offer",
	StageOnboarded:     "onboarded",
	StageRejected:      "rejected",
	StageOther:         "other",
	StageNotStarted:    "not_started",
}

var stageTitles = map[Stage]string{
	StageTodayNew:      "今日新增",
	StageAIRecommended: "AI推薦",
	StageContacted:     "已聯繫",
	StageInterviewed:   "已面試",
	StageOffer:         "Offer",
	StageOnboarded:     "已上職",
	StageRejected:      "婉拒",
	StageOther:         "其他",
	StageNotStarted:    "未開始",
}

// boardOrder is the left-to-right column order of the board.
var boardOrder = []Stage{
	StageTodayNew,
	StageAIRecommended,
	StageContacted,
	StageInterviewed,
	StageOffer,
	StageOnboarded,
	StageRejected,
	StageOther,
	StageNotStarted,
}

// AllStages returns the nine stages in board column order.
func AllStages() []Stage {
	return append([]Stage(nil), boardOrder...)
}

// Valid reports whether s is one of the nine stages.
func (s Stage) Valid() bool {
	_, ok := stageKeys[s]
	return ok
}

// String returns the wire key of the stage, e.g. "not_started".
func (s Stage) String() string {
	if key, ok := stageKeys[s]; ok {
		return key
	}
	return fmt.Sprintf("Stage(%d)", uint8(s))
}

// Title returns the column heading shown to consultants.
func (s Stage) Title() string {
	return stageTitles[s]
}

// Locked reports whether the column refuses drops.
func (s Stage) Locked() bool {
	return s == StageTodayNew
}

// ParseStage resolves a wire key into a Stage.
func ParseStage(key string) (Stage, error) {
	for stage, k := range stageKeys {
		if k == key {
			return stage, nil
		}
	}
	return 0, fmt.Errorf("unknown pipeline stage %q", key)
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid pipeline stage %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(text []byte) error {
	parsed, err := ParseStage(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
