// Package board aggregates derived candidate state into the nine-column
// pipeline board: visibility, filtering, grouping, counting and summaries.
package board

import (
	"slices"
	"time"

	"talent_pipeline_backend/internal/pipeline/domain"
	"talent_pipeline_backend/platform/clock"
)

// Item is one candidate card with everything derived for it.
type Item struct {
	Candidate   domain.Candidate      `json:"candidate"`
	Stage       domain.Stage          `json:"stage"`
	LatestEvent *domain.ProgressEvent `json:"latestEvent,omitempty"`
	IdleDays    int                   `json:"idleDays"`
	SLADays     int                   `json:"slaDays"`
	Overdue     bool                  `json:"overdue"`
	Severity    domain.Severity       `json:"severity"`
	Consultant  string                `json:"consultant"`
	TargetJob   string                `json:"targetJob"`
	TargetJobs  []string              `json:"targetJobs"`

	latestDate clock.Date
}

// HasTargetJob reports whether job is among the card's target jobs. Cards
// without any annotation match NoTargetJob.
func (i Item) HasTargetJob(job string) bool {
	if len(i.TargetJobs) == 0 {
		return job == NoTargetJob
	}
	return slices.Contains(i.TargetJobs, job)
}

// Column is one stage bucket of the board.
type Column struct {
	Stage  domain.Stage `json:"stage"`
	Title  string       `json:"title"`
	Locked bool         `json:"locked"`
	Count  int          `json:"count"`
	// Total is the visible, unfiltered count. It is only set while a filter is active.
	Total   *int   `json:"total,omitempty"`
	Overdue int    `json:"overdue"`
	Items   []Item `json:"items"`
}

// Summary holds the headline counters over the filtered cards.
type Summary struct {
	Visible           int `json:"visible"`
	TotalWithTracking int `json:"totalWithTracking"`
	StaleCount        int `json:"staleCount"`
	SLAOverdueCount   int `json:"slaOverdueCount"`
}

// Board is the grouped view returned to a viewer.
type Board struct {
	Columns     []Column  `json:"columns"`
	Summary     Summary   `json:"summary"`
	Filter      Filter    `json:"filter"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Items returns the filtered cards in column order.
func (b Board) Items() []Item {
	var out []Item
	for _, col := range b.Columns {
		out = append(out, col.Items...)
	}
	return out
}

// Column returns the bucket for stage.
func (b Board) Column(stage domain.Stage) (Column, bool) {
	for _, col := range b.Columns {
		if col.Stage == stage {
			return col, true
		}
	}
	return Column{}, false
}

// Options lists the filter choices available to a viewer.
type Options struct {
	Consultants []string `json:"consultants"`
	Jobs        []string `json:"jobs"`
}

// Assess derives an Item for every candidate at clk.Now(), preserving input order.
func Assess(candidates []domain.Candidate, policy domain.SLAPolicy, clk clock.Clock) []Item {
	loc := clk.Location()
	items := make([]Item, 0, len(candidates))
	for _, c := range candidates {
		a := policy.Assess(c, clk)
		item := Item{
			Candidate:  c,
			Stage:      a.Stage,
			IdleDays:   a.IdleDays,
			SLADays:    a.SLADays,
			Overdue:    a.Overdue,
			Severity:   a.Severity,
			Consultant: c.ConsultantOrDefault(),
			TargetJob:  PrimaryTargetJob(c.Notes),
			TargetJobs: ExtractTargetJobs(c.Notes),
		}
		if a.HasLatest {
			latest := a.Latest
			item.LatestEvent = &latest
			item.latestDate, _ = clock.ParseDate(latest.Date, loc)
		}
		items = append(items, item)
	}
	return items
}

// Visible keeps the items viewer is allowed to see.
func Visible(items []Item, viewer Viewer, privileged []string) []Item {
	if viewer.Privileged(privileged) {
		return items
	}
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.Consultant == viewer.Name {
			out = append(out, item)
		}
	}
	return out
}

// Build groups the visible items into the nine columns after applying filter.
// Within a column cards are ordered by latest event date, newest first; cards
// on the same date keep their input order.
func Build(visible []Item, filter Filter, now time.Time) Board {
	filter = filter.Normalize()
	active := filter.Active()

	buckets := make(map[domain.Stage][]Item, len(domain.AllStages()))
	totals := make(map[domain.Stage]int, len(domain.AllStages()))
	var summary Summary

	for _, item := range visible {
		totals[item.Stage]++
		if !filter.Matches(item) {
			continue
		}
		buckets[item.Stage] = append(buckets[item.Stage], item)

		summary.Visible++
		if len(item.Candidate.ProgressTracking) > 0 {
			summary.TotalWithTracking++
		}
		if domain.IsStale(item.IdleDays) {
			summary.StaleCount++
		}
		if item.Overdue {
			summary.SLAOverdueCount++
		}
	}

	columns := make([]Column, 0, len(domain.AllStages()))
	for _, stage := range domain.AllStages() {
		items := buckets[stage]
		slices.SortStableFunc(items, byLatestDateDesc)

		col := Column{
			Stage:  stage,
			Title:  stage.Title(),
			Locked: stage.Locked(),
			Count:  len(items),
			Items:  items,
		}
		if col.Items == nil {
			col.Items = []Item{}
		}
		if active {
			total := totals[stage]
			col.Total = &total
		}
		for _, item := range items {
			if item.Overdue {
				col.Overdue++
			}
		}
		columns = append(columns, col)
	}

	return Board{Columns: columns, Summary: summary, Filter: filter, GeneratedAt: now}
}

func byLatestDateDesc(a, b Item) int {
	switch {
	case b.latestDate.Before(a.latestDate):
		return -1
	case a.latestDate.Before(b.latestDate):
		return 1
	default:
		return 0
	}
}

// BuildOptions lists the distinct consultants and primary target jobs among
// the visible items, sorted.
func BuildOptions(visible []Item) Options {
	consultants := make([]string, 0, len(visible))
	jobs := make([]string, 0, len(visible))
	for _, item := range visible {
		consultants = append(consultants, item.Consultant)
		jobs = append(jobs, item.TargetJob)
	}
	slices.Sort(consultants)
	slices.Sort(jobs)
	return Options{
		Consultants: slices.Compact(consultants),
		Jobs:        slices.Compact(jobs),
	}
}
