// Package http holds the contract between the router and the domain modules.
package http

import (
	"talent_pipeline_backend/platform/config"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext is what the router hands each module: the prepared route
// groups and the auth pieces they were built with.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is /api/v1 with rate limiting but no auth.
	V1 *gin.RouterGroup
	// Protected is V1 behind AuthRequired.
	Protected *gin.RouterGroup
	// Admin is /api/v1/admin, restricted to the privileged roles.
	Admin          *gin.RouterGroup
	Config         config.JWTConfig
	AuthMiddleware gin.HandlerFunc
}
