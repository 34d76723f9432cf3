package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "talent_pipeline_backend/internal/http"
	"talent_pipeline_backend/platform/logger"
)

const testSecret = "router-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testConfig struct{}

func (testConfig) GetHTTPAddr() string          { return ":0" }
func (testConfig) GetCORSAllowAll() bool        { return false }
func (testConfig) GetCORSOrigins() []string     { return []string{"http://localhost:5173"} }
func (testConfig) GetCORSAllowCreds() bool      { return true }
func (testConfig) GetJWTAccessSecret() string   { return testSecret }
func (testConfig) GetPrivilegedRoles() []string { return []string{"ADMIN"} }

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type echoModule struct{}

func (echoModule) Name() string { return "echo" }

func (echoModule) RegisterRoutes(rc *apphttp.RouterContext) {
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	rc.Protected.GET("/echo", ok)
	rc.Admin.GET("/echo", ok)
}

func token(t *testing.T, roles ...string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   uuid.NewString(),
		"name":  "Amy",
		"roles": roles,
		"type":  "access",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func get(engine *gin.Engine, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func newEngine(health apphttp.HealthChecker) *gin.Engine {
	return New(&apphttp.App{
		Config:  testConfig{},
		Logger:  logger.Discard(),
		Health:  health,
		Modules: []apphttp.Module{echoModule{}},
	})
}

func TestHealthAndReadiness(t *testing.T) {
	engine := newEngine(pingFunc(func(context.Context) error { return nil }))
	assert.Equal(t, http.StatusOK, get(engine, "/api/health", "").Code)
	assert.Equal(t, http.StatusOK, get(engine, "/api/ready", "").Code)

	down := newEngine(pingFunc(func(context.Context) error { return errors.New("db down") }))
	assert.Equal(t, http.StatusServiceUnavailable, get(down, "/api/ready", "").Code)
}

func TestRouteGroups(t *testing.T) {
	engine := newEngine(nil)

	assert.Equal(t, http.StatusUnauthorized, get(engine, "/api/v1/echo", "").Code)
	assert.Equal(t, http.StatusNoContent, get(engine, "/api/v1/echo", token(t, "CONSULTANT")).Code)
	assert.Equal(t, http.StatusForbidden, get(engine, "/api/v1/admin/echo", token(t, "CONSULTANT")).Code)
	assert.Equal(t, http.StatusNoContent, get(engine, "/api/v1/admin/echo", token(t, "ADMIN")).Code)
}

func TestResponsesCarryRequestID(t *testing.T) {
	rec := get(newEngine(nil), "/api/health", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
