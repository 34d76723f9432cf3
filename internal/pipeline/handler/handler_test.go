package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent_pipeline_backend/internal/pipeline/board"
	"talent_pipeline_backend/internal/pipeline/coordinator"
	"talent_pipeline_backend/internal/pipeline/domain"
	"talent_pipeline_backend/internal/pipeline/ports"
	"talent_pipeline_backend/internal/pipeline/transport"
	"talent_pipeline_backend/platform/clock"
	"talent_pipeline_backend/platform/httpkit"
	"talent_pipeline_backend/platform/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubStore struct {
	list      []domain.Candidate
	updateErr error
	updates   int
}

func (s *stubStore) ListCandidates(context.Context) ([]domain.Candidate, error) { return s.list, nil }

func (s *stubStore) UpdateStatus(context.Context, uuid.UUID, ports.StatusUpdate) error {
	s.updates++
	return s.updateErr
}

func (s *stubStore) DeleteCandidate(context.Context, uuid.UUID) error { return nil }

type testServer struct {
	engine *gin.Engine
	store  *stubStore
	ws     *board.Workspace
}

func newServer(t *testing.T, candidates ...domain.Candidate) *testServer {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)
	clk := clock.NewFixed(time.Date(2024, 1, 10, 9, 0, 0, 0, loc), loc)

	ws := board.NewWorkspace(clk, &clock.Epoch{}, domain.DefaultSLAPolicy(), []string{"ADMIN"})
	store := &stubStore{list: candidates}
	ws.Replace(candidates)

	coord := coordinator.New(coordinator.Deps{Workspace: ws, Writer: store, Deleter: store})
	loader := coordinator.NewLoader(ws, store, store, nil, nil, nil)

	val := validator.New()
	require.NoError(t, transport.RegisterValidations(val))
	h := New(ws, coord, loader, nil, nil, val)

	engine := gin.New()
	rg := engine.Group("/api/v1/pipeline", func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, uuid.New())
		c.Set(httpkit.ContextDisplayNameKey, c.GetHeader("X-Test-Name"))
		c.Set(httpkit.ContextRolesKey, strings.Split(c.GetHeader("X-Test-Roles"), ","))
		c.Next()
	})
	h.RegisterRoutes(rg)

	return &testServer{engine: engine, store: store, ws: ws}
}

func (s *testServer) do(method, path, name, roles string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, "/api/v1/pipeline"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-Name", name)
	req.Header.Set("X-Test-Roles", roles)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func person(name, consultant, label string) domain.Candidate {
	return domain.Candidate{
		ID:         uuid.New(),
		Name:       name,
		Consultant: consultant,
		Status:     domain.StatusContacted,
		ProgressTracking: []domain.ProgressEvent{
			{Date: "2024-01-08", Event: label, By: consultant},
		},
		CreatedAt: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
	}
}

type boardJSON struct {
	Columns []struct {
		Stage string `json:"stage"`
		Count int    `json:"count"`
		Total *int   `json:"total"`
	} `json:"columns"`
	Summary board.Summary `json:"summary"`
}

func TestGetBoardAppliesVisibilityAndFilters(t *testing.T) {
	s := newServer(t, person("A", "Amy", "已聯繫"), person("B", "Ben", "已聯繫"), person("C", "Amy", "Offer"))

	rec := s.do(http.MethodGet, "/board", "Amy", "CONSULTANT", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got boardJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Columns, 9)
	assert.Equal(t, 2, got.Summary.Visible)

	rec = s.do(http.MethodGet, "/board?q=c", "Boss", "ADMIN", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Summary.Visible)
	for _, col := range got.Columns {
		if col.Stage == "contacted" {
			require.NotNil(t, col.Total)
			assert.Equal(t, 2, *col.Total)
			assert.Equal(t, 0, col.Count)
		}
	}
}

func TestMoveCandidate(t *testing.T) {
	c := person("王小明", "Amy", "已聯繫")
	s := newServer(t, c)

	rec := s.do(http.MethodPost, "/moves", "Amy", "CONSULTANT", gin.H{"candidateId": c.ID, "targetStage": "offer"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res transport.MoveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Changed)
	assert.Equal(t, "contacted", res.From)
	assert.Equal(t, "offer", res.To)
	assert.Equal(t, "✅ 王小明 已移動到「Offer」", res.Message)
	assert.Equal(t, domain.StageOffer, res.Item.Stage)
	assert.Equal(t, 1, s.store.updates)
}

func TestMoveCandidateErrors(t *testing.T) {
	c := person("A", "Amy", "已聯繫")
	s := newServer(t, c)

	rec := s.do(http.MethodPost, "/moves", "Amy", "", gin.H{"candidateId": c.ID, "targetStage": "today_new"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodPost, "/moves", "Amy", "", gin.H{"candidateId": c.ID, "targetStage": "hired"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/moves", "Amy", "", gin.H{"targetStage": "offer"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/moves", "Ben", "", gin.H{"candidateId": c.ID, "targetStage": "offer"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	s.store.updateErr = errors.New("backend down")
	rec = s.do(http.MethodPost, "/moves", "Amy", "", gin.H{"candidateId": c.ID, "targetStage": "offer"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"更新失敗，請稍後再試"}`, rec.Body.String())

	stored, _ := s.ws.Candidate(c.ID)
	assert.Len(t, stored.ProgressTracking, 1)
}

func TestDeleteCandidate(t *testing.T) {
	c := person("A", "Amy", "已聯繫")
	s := newServer(t, c)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/candidates/nope", "Amy", "", nil).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/candidates/"+c.ID.String(), "Amy", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/candidates/"+c.ID.String(), "Amy", "", nil).Code)
}

func TestExportCSV(t *testing.T) {
	s := newServer(t, person("A", "Amy", "已聯繫"), person("B", "Ben", "已聯繫"))

	rec := s.do(http.MethodGet, "/export.csv?consultant=Amy", "Boss", "ADMIN", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=pipeline-report-2024-01-10.csv", rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))

	lines := strings.Split(rec.Body.String(), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `"A","Amy"`)
}

func TestArchiveWithoutStorage(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodPost, "/exports", "Boss", "ADMIN", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRefresh(t *testing.T) {
	s := newServer(t)
	s.store.list = []domain.Candidate{person("A", "Amy", "已聯繫")}

	rec := s.do(http.MethodPost, "/refresh", "Boss", "ADMIN", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"candidates":1}`, rec.Body.String())
	assert.Equal(t, 1, s.ws.Len())
}
