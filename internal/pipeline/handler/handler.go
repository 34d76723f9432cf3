// Package handler exposes the pipeline board over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"talent_pipeline_backend/internal/pipeline/board"
	"talent_pipeline_backend/internal/pipeline/coordinator"
	"talent_pipeline_backend/internal/pipeline/domain"
	"talent_pipeline_backend/internal/pipeline/export"
	"talent_pipeline_backend/internal/pipeline/ports"
	"talent_pipeline_backend/internal/pipeline/transport"
	"talent_pipeline_backend/platform/apperr"
	"talent_pipeline_backend/platform/clock"
	"talent_pipeline_backend/platform/httpkit"
	"talent_pipeline_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgStorageDisabled  = "report storage is not configured"
)

// AuditLister reads back the audit trail.
type AuditLister interface {
	ListRecent(ctx context.Context, limit int) ([]ports.AuditEntry, error)
}

// Handler serves the pipeline endpoints.
type Handler struct {
	ws       *board.Workspace
	coord    *coordinator.Coordinator
	loader   *coordinator.Loader
	archiver *export.Archiver
	audit    AuditLister
	val      *validator.Validator
}

// New creates a Handler. archiver and audit may be nil.
func New(ws *board.Workspace, coord *coordinator.Coordinator, loader *coordinator.Loader, archiver *export.Archiver, audit AuditLister, val *validator.Validator) *Handler {
	return &Handler{ws: ws, coord: coord, loader: loader, archiver: archiver, audit: audit, val: val}
}

// RegisterRoutes mounts the board routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/board", h.GetBoard)
	rg.GET("/options", h.GetOptions)
	rg.POST("/moves", h.MoveCandidate)
	rg.DELETE("/candidates/:id", h.DeleteCandidate)
	rg.POST("/refresh", h.Refresh)
	rg.GET("/export.csv", h.ExportCSV)
	rg.POST("/exports", h.ArchiveExport)
}

// RegisterAdminRoutes mounts the audit trail on rg.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/audit", h.ListAudit)
}

func (h *Handler) GetBoard(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	httpkit.OK(c, h.ws.View(actor.Viewer(), filter))
}

func (h *Handler) GetOptions(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	httpkit.OK(c, h.ws.Options(actor.Viewer()))
}

func (h *Handler) MoveCandidate(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req transport.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return
	}
	target, err := domain.ParseStage(req.TargetStage)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, map[string]string{"targetStage": transport.StageTag})
		return
	}

	res, err := h.coord.Move(c.Request.Context(), actor, coordinator.Move{CandidateID: req.CandidateID, Target: target})
	if httpkit.HandleError(c, mapError(err)) {
		return
	}

	item, _ := h.ws.Item(req.CandidateID)
	httpkit.OK(c, transport.MoveResponse{
		Changed: res.Changed,
		From:    res.From.String(),
		To:      res.To.String(),
		Message: res.Message,
		Item:    item,
	})
}

func (h *Handler) DeleteCandidate(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if httpkit.HandleError(c, mapError(h.coord.Delete(c.Request.Context(), actor, id))) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Refresh(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	n, err := h.loader.Refresh(c.Request.Context(), actor)
	if httpkit.HandleError(c, mapError(err)) {
		return
	}
	httpkit.OK(c, transport.RefreshResponse{Candidates: n})
}

func (h *Handler) ExportCSV(c *gin.Context) {
	b, ok := h.filteredBoard(c)
	if !ok {
		return
	}
	filename := export.Filename(clock.Today(h.ws.Clock()))
	httpkit.Attachment(c, filename, export.ContentType, export.Render(b))
}

func (h *Handler) ArchiveExport(c *gin.Context) {
	if h.archiver == nil {
		httpkit.HandleError(c, apperr.Unavailable(msgStorageDisabled))
		return
	}
	b, ok := h.filteredBoard(c)
	if !ok {
		return
	}

	today := clock.Today(h.ws.Clock())
	filename := export.Filename(today)
	link, err := h.archiver.Archive(c.Request.Context(), today.String(), filename, export.Render(b))
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindUpstream, "failed to archive report", err))
		return
	}

	c.JSON(http.StatusCreated, transport.ArchiveResponse{
		Filename:  filename,
		FileKey:   link.FileKey,
		URL:       link.URL,
		ExpiresAt: link.ExpiresAt,
		Rows:      b.Summary.Visible,
	})
}

func (h *Handler) ListAudit(c *gin.Context) {
	if h.audit == nil {
		httpkit.HandleError(c, apperr.Unavailable("audit trail is not configured"))
		return
	}
	var q transport.AuditQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return
	}

	entries, err := h.audit.ListRecent(c.Request.Context(), q.Limit)
	if err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindInternal, "failed to load audit trail", err))
		return
	}
	out := make([]transport.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, transport.AuditEntryResponse{
			CandidateID: e.CandidateID,
			Actor:       e.Actor,
			Action:      e.Action,
			Before:      e.Before,
			After:       e.After,
			At:          e.At,
		})
	}
	httpkit.OK(c, gin.H{"items": out})
}

func (h *Handler) filteredBoard(c *gin.Context) (board.Board, bool) {
	actor, ok := actorFrom(c)
	if !ok {
		return board.Board{}, false
	}
	filter, ok := h.bindFilter(c)
	if !ok {
		return board.Board{}, false
	}
	return h.ws.View(actor.Viewer(), filter), true
}

func (h *Handler) bindFilter(c *gin.Context) (board.Filter, bool) {
	var q transport.BoardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return board.Filter{}, false
	}
	if err := h.val.Struct(q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Details(err))
		return board.Filter{}, false
	}
	return q.Filter(), true
}

func actorFrom(c *gin.Context) (coordinator.Actor, bool) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return coordinator.Actor{}, false
	}
	return coordinator.Actor{Name: id.DisplayName(), Roles: id.Roles()}, true
}

// mapError turns coordinator errors into typed HTTP errors.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, coordinator.ErrLockedColumn):
		return apperr.Unprocessable("column is locked").WithOp("pipeline.move")
	case errors.Is(err, coordinator.ErrInvalidStage):
		return apperr.Validation("invalid target stage")
	case errors.Is(err, coordinator.ErrCandidateNotFound):
		return apperr.NotFound("candidate not found")
	case errors.Is(err, coordinator.ErrMoveInFlight):
		return apperr.Conflict("move in flight")
	case errors.Is(err, coordinator.ErrUpstreamRejected):
		return apperr.Wrap(apperr.KindUpstream, coordinator.FailureMessage, err)
	default:
		return apperr.Wrap(apperr.KindInternal, coordinator.FailureMessage, err)
	}
}
