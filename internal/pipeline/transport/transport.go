// Package transport holds the request and response shapes of the pipeline API.
package transport

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"talent_pipeline_backend/internal/pipeline/board"
	"talent_pipeline_backend/internal/pipeline/domain"
	"talent_pipeline_backend/platform/sanitize"
	platformvalidator "talent_pipeline_backend/platform/validator"
)

// StageTag validates a pipeline stage wire key.
const StageTag = "pipeline_stage"

// RegisterValidations installs the pipeline's custom tags on val.
func RegisterValidations(val *platformvalidator.Validator) error {
	return val.RegisterValidation(StageTag, func(fl validator.FieldLevel) bool {
		_, err := domain.ParseStage(fl.Field().String())
		return err == nil
	})
}

type BoardQuery struct {
	Consultant string `form:"consultant" validate:"max=200"`
	Job        string `form:"job" validate:"max=500"`
	Query      string `form:"q" validate:"max=200"`
}

func (q BoardQuery) Filter() board.Filter {
	return board.Filter{
		Consultant: q.Consultant,
		Job:        q.Job,
		Query:      sanitize.Text(q.Query),
	}.Normalize()
}

type MoveRequest struct {
	CandidateID uuid.UUID `json:"candidateId" validate:"required"`
	TargetStage string    `json:"targetStage" validate:"required,pipeline_stage"`
}

type MoveResponse struct {
	Changed bool       `json:"changed"`
	From    string     `json:"from"`
	To      string     `json:"to"`
	Message string     `json:"message,omitempty"`
	Item    board.Item `json:"item"`
}

type RefreshResponse struct {
	Candidates int `json:"candidates"`
}

type ArchiveResponse struct {
	Filename  string    `json:"filename"`
	FileKey   string    `json:"fileKey"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
	Rows      int       `json:"rows"`
}

type AuditQuery struct {
	Limit int `form:"limit" validate:"omitempty,min=1,max=500"`
}

type AuditEntryResponse struct {
	CandidateID uuid.UUID       `json:"candidateId"`
	Actor       string          `json:"actor"`
	Action      string          `json:"action"`
	Before      json.RawMessage `json:"before,omitempty"`
	After       json.RawMessage `json:"after,omitempty"`
	At          time.Time       `json:"at"`
}
