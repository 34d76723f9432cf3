package domain

import "errors"

// ErrNotWritable is returned for stages that cannot be persisted.
var ErrNotWritable = errors.New("stage cannot be written")

// Write is the status and event label persisted for a move into a stage.
type Write struct {
	Status Status
	Label  string
}

// writeTable is the strict vocabulary the service emits. Every label here
// classifies back to its own stage through ClassifyLabel.
var writeTable = map[Stage]Write{
	StageNotStarted:    {StatusNotStarted, "未開始"},
	StageAIRecommended: {StatusAIRecommended, "AI推薦"},
	StageContacted:     {StatusContacted, "已聯繫"},
	StageInterviewed:   {StatusInterviewed, "已面試"},
	StageOffer:         {StatusOffer, "Offer"},
	StageOnboarded:     {StatusOnboarded, "已上職"},
	StageRejected:      {StatusRejected, "婉拒"},
	StageOther:         {StatusOther, "其他"},
}

// CanonicalWrite returns the status and label to persist for a move into stage.
// StageTodayNew is virtual and has no entry.
func CanonicalWrite(stage Stage) (Write, error) {
	w, ok := writeTable[stage]
	if !ok {
		return Write{}, ErrNotWritable
	}
	return w, nil
}
