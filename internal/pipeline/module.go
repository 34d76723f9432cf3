// Package pipeline provides the candidate pipeline board module.
package pipeline

import (
	"context"

	"talent_pipeline_backend/internal/adapters/storage"
	"talent_pipeline_backend/internal/audit"
	"talent_pipeline_backend/internal/events"
	apphttp "talent_pipeline_backend/internal/http"
	"talent_pipeline_backend/internal/pipeline/board"
	"talent_pipeline_backend/internal/pipeline/cache"
	"talent_pipeline_backend/internal/pipeline/coordinator"
	"talent_pipeline_backend/internal/pipeline/domain"
	"talent_pipeline_backend/internal/pipeline/export"
	"talent_pipeline_backend/internal/pipeline/handler"
	"talent_pipeline_backend/internal/pipeline/ports"
	"talent_pipeline_backend/internal/pipeline/repository"
	"talent_pipeline_backend/internal/pipeline/transport"
	"talent_pipeline_backend/platform/clock"
	"talent_pipeline_backend/platform/config"
	"talent_pipeline_backend/platform/logger"
	"talent_pipeline_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Config is the configuration the module reads.
type Config interface {
	config.PipelineConfig
	GetMinioBucketPipelineReports() string
}

// Deps are the collaborators the module is built from. Redis and Storage are
// optional; without them the board reads the store directly and archiving
// is disabled.
type Deps struct {
	Pool      *pgxpool.Pool
	Redis     redis.Cmdable
	Storage   storage.ReportStore
	Bus       events.Bus
	Validator *validator.Validator
	Clock     clock.Clock
	Epoch     *clock.Epoch
	Policy    domain.SLAPolicy
	Config    Config
	Log       *logger.Logger
}

// Module represents the pipeline domain module.
type Module struct {
	ws       *board.Workspace
	loader   *coordinator.Loader
	archiver *export.Archiver
	handler  *handler.Handler
	log      *logger.Logger
}

// NewModule creates the pipeline module with all dependencies wired.
func NewModule(deps Deps) (*Module, error) {
	if err := transport.RegisterValidations(deps.Validator); err != nil {
		return nil, err
	}

	repo := repository.New(deps.Pool)
	auditRepo := audit.NewRepository(deps.Pool)

	var source ports.CandidateSource = repo
	var invalidator ports.CacheInvalidator
	if deps.Redis != nil {
		cached := cache.NewSource(deps.Redis, repo, deps.Config.GetPipelineCacheTTL(), deps.Log)
		source = cached
		invalidator = cached
	}

	ws := board.NewWorkspace(deps.Clock, deps.Epoch, deps.Policy, deps.Config.GetPrivilegedRoles())
	coord := coordinator.New(coordinator.Deps{
		Workspace: ws,
		Writer:    repo,
		Deleter:   repo,
		Audit:     auditRepo,
		Cache:     invalidator,
		Bus:       deps.Bus,
		Log:       deps.Log,
	})
	loader := coordinator.NewLoader(ws, source, repo, invalidator, deps.Bus, deps.Log)

	var archiver *export.Archiver
	if deps.Storage != nil {
		archiver = export.NewArchiver(deps.Storage, deps.Config.GetMinioBucketPipelineReports(), deps.Log)
	}

	return &Module{
		ws:       ws,
		loader:   loader,
		archiver: archiver,
		handler:  handler.New(ws, coord, loader, archiver, auditRepo, deps.Validator),
		log:      deps.Log,
	}, nil
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "pipeline"
}

// Workspace returns the in-memory board state.
func (m *Module) Workspace() *board.Workspace {
	return m.ws
}

// Start fills the workspace and prepares the report bucket. Neither failure
// is fatal: the board comes up empty and archiving reports its own errors.
func (m *Module) Start(ctx context.Context) {
	m.loader.Load(ctx)
	if m.archiver != nil {
		if err := m.archiver.Init(ctx); err != nil {
			m.log.Error("pipeline report bucket unavailable", "error", err)
		}
	}
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/pipeline"))
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/pipeline"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
