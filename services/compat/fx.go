package compat

import (
	"resellops/pkg/config"
	"resellops/pkg/middleware"
	"resellops/pkg/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("compat.service",
	fx.Provide(
		NewService,
	),
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *gin.Engine, cfg *config.Config, s *Service) {
	g := r.Group("/v1/compatibility-assignments", middleware.Authenticate(cfg))

	g.POST("", middleware.Authorize(rbac.ResourceCompat, rbac.ActionCreate), s.create)
	g.GET("", middleware.Authorize(rbac.ResourceCompat, rbac.ActionRead), s.list)
}
