package board

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"talent_pipeline_backend/internal/pipeline/domain"
)

// FilterAll is the option value the board UI sends for "no filter".
const FilterAll = "all"

// Viewer is the consultant looking at the board.
type Viewer struct {
	Name  string
	Roles []string
}

// Privileged reports whether the viewer holds any of the given roles.
func (v Viewer) Privileged(privileged []string) bool {
	for _, role := range v.Roles {
		if slices.Contains(privileged, role) {
			return true
		}
	}
	return false
}

// CanSee applies the ownership rule: privileged viewers see everything,
// everyone else only candidates assigned to their own display name.
func (v Viewer) CanSee(c domain.Candidate, privileged []string) bool {
	if v.Privileged(privileged) {
		return true
	}
	return c.ConsultantOrDefault() == v.Name
}

// Filter holds the board's filter selections. Empty fields do not filter.
type Filter struct {
	Consultant string `json:"consultant,omitempty"`
	Job        string `json:"job,omitempty"`
	Query      string `json:"q,omitempty"`
}

// Normalize trims whitespace and maps FilterAll to the empty selection.
func (f Filter) Normalize() Filter {
	clean := func(s string) string {
		s = strings.TrimSpace(s)
		if s == FilterAll {
			return ""
		}
		return s
	}
	return Filter{
		Consultant: clean(f.Consultant),
		Job:        clean(f.Job),
		Query:      strings.TrimSpace(f.Query),
	}
}

// Active reports whether any selection narrows the board.
func (f Filter) Active() bool {
	return f.Consultant != "" || f.Job != "" || f.Query != ""
}

// Matches reports whether item passes every selection in f.
func (f Filter) Matches(item Item) bool {
	if f.Consultant != "" && item.Consultant != f.Consultant {
		return false
	}
	if f.Job != "" && !item.HasTargetJob(f.Job) {
		return false
	}
	if f.Query != "" && !matchesQuery(item, f.Query) {
		return false
	}
	return true
}

// matchesQuery is a Unicode case-folded substring match over the searchable fields.
func matchesQuery(item Item, query string) bool {
	fold := cases.Fold()
	needle := fold.String(query)

	fields := []string{item.Candidate.Name, item.Candidate.Position, item.Consultant}
	fields = append(fields, item.TargetJobs...)
	if item.LatestEvent != nil {
		fields = append(fields, item.LatestEvent.Note)
	}

	for _, field := range fields {
		if field == "" {
			continue
		}
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}
