package domain

import (
	"time"

	"talent_pipeline_backend/platform/clock"
)

// LatestEvent returns the most recent entry of log by calendar date.
//
// Time of day is ignored. Among entries sharing the latest date, the one
// appended last wins. Entries with unparseable dates lose to any dated entry;
// if no entry carries a usable date the last entry is returned so its label
// can still classify the candidate.
func LatestEvent(log []ProgressEvent, loc *time.Location) (ProgressEvent, bool) {
	if len(log) == 0 {
		return ProgressEvent{}, false
	}

	best := -1
	var bestDate clock.Date
	for i, entry := range log {
		d, ok := clock.ParseDate(entry.Date, loc)
		if !ok {
			continue
		}
		if best == -1 || !d.Before(bestDate) {
			best = i
			bestDate = d
		}
	}

	if best == -1 {
		return log[len(log)-1], true
	}
	return log[best], true
}
