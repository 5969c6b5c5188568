package task

import (
	"resellops/pkg/config"
	"resellops/pkg/middleware"
	"resellops/pkg/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("task.service",
	fx.Provide(
		NewService,
	),
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *gin.Engine, cfg *config.Config, s *Service) {
	g := r.Group("/v1/tasks", middleware.Authenticate(cfg))

	g.POST("", middleware.Authorize(rbac.ResourceTask, rbac.ActionCreate), s.create)
	g.GET("", middleware.Authorize(rbac.ResourceTask, rbac.ActionRead), s.list)
	g.GET("/:id", middleware.Authorize(rbac.ResourceTask, rbac.ActionRead), s.get)
	g.PATCH("/:id", middleware.Authorize(rbac.ResourceTask, rbac.ActionUpdate), s.update)
	g.DELETE("/:id", middleware.Authorize(rbac.ResourceTask, rbac.ActionDelete), s.remove)
}
