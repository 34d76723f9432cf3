package domain

import (
	"time"

	"github.com/google/uuid"
)

// UnassignedConsultant is displayed and matched when a candidate has no consultant.
const UnassignedConsultant = "未指派"

// Status is the coarse, persisted approximation of a candidate's stage.
type Status string

const (
	StatusNotStarted    Status = "未開始"
	StatusAIRecommended Status = "AI推薦"
	StatusContacted     Status = "已聯繫"
	StatusInterviewed   Status = "已面試"
	StatusOffer         Status = "Offer"
	StatusOnboarded     Status = "已上職"
	StatusRejected      Status = "婉拒"
	StatusOther         Status = "其他"
)

// ProgressEvent is one free-text entry of a candidate's progress log.
// Date is kept as received so malformed legacy values survive a round trip.
type ProgressEvent struct {
	Date  string `json:"date"`
	Event string `json:"event"`
	By    string `json:"by"`
	Note  string `json:"note,omitempty"`
}

// Candidate is the slice of a candidate record the pipeline derives from.
type Candidate struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Position         string          `json:"position"`
	Consultant       string          `json:"consultant,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	Status           Status          `json:"status"`
	ProgressTracking []ProgressEvent `json:"progressTracking"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// ConsultantOrDefault returns the consultant name, or UnassignedConsultant.
func (c Candidate) ConsultantOrDefault() string {
	if c.Consultant == "" {
		return UnassignedConsultant
	}
	return c.Consultant
}

// Clone returns a deep copy so callers can mutate the progress log safely.
func (c Candidate) Clone() Candidate {
	out := c
	if c.ProgressTracking != nil {
		out.ProgressTracking = append([]ProgressEvent(nil), c.ProgressTracking...)
	}
	return out
}
