package completion

import (
	"resellops/pkg/config"
	"resellops/pkg/middleware"
	"resellops/pkg/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("completion.repository",
	fx.Provide(
		NewRepository,
	),
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *gin.Engine, cfg *config.Config, repo Repository) {
	h := &listHandler{repo: repo}
	g := r.Group("/v1/listing-completions", middleware.Authenticate(cfg))

	g.GET("", middleware.Authorize(rbac.ResourceAssignment, rbac.ActionRead), h.list)
}
