package analytics

import (
	"resellops/pkg/config"
	"resellops/pkg/middleware"
	"resellops/pkg/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("analytics.service",
	fx.Provide(
		NewService,
	),
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *gin.Engine, cfg *config.Config, s *Service) {
	// Lives beside /v1/assignments/:id rather than under it; the router
	// cannot mix a wildcard and a static segment at the same position.
	g := r.Group("/v1/analytics/assignments",
		middleware.Authenticate(cfg),
		middleware.Authorize(rbac.ResourceAnalytics, rbac.ActionRead),
	)

	g.GET("/daily", s.daily)
	g.GET("/lister-matrix", s.listerMatrix)
	g.GET("/stock-ledger", s.stockLedger)
}
