package user

import (
	"resellops/pkg/config"
	"resellops/pkg/middleware"
	"resellops/pkg/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(
		NewService,
	),
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *gin.Engine, cfg *config.Config, s *Service) {
	g := r.Group("/v1/users", middleware.Authenticate(cfg))

	g.POST("", middleware.Authorize(rbac.ResourceUser, rbac.ActionCreate), s.create)
	g.GET("", middleware.Authorize(rbac.ResourceUser, rbac.ActionRead), s.list)
	g.GET("/:id", middleware.Authorize(rbac.ResourceUser, rbac.ActionRead), s.get)
	g.PATCH("/:id", middleware.Authorize(rbac.ResourceUser, rbac.ActionUpdate), s.update)
	g.DELETE("/:id", middleware.Authorize(rbac.ResourceUser, rbac.ActionDelete), s.deactivate)
}
