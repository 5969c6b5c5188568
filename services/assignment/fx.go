package assignment

import (
	"resellops/pkg/config"
	"resellops/pkg/middleware"
	"resellops/pkg/rbac"
	"resellops/services/catalog"
	"resellops/services/task"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("assignment.service",
	fx.Provide(
		NewService,
		provideTaskDeleter,
	),
	fx.Invoke(
		bindRangeUsage,
		registerRoutes,
	),
)

// provideTaskDeleter lets the task service cascade deletes through this
// service without an import cycle.
func provideTaskDeleter(s *Service) task.DependentDeleter {
	return s
}

// bindRangeUsage is setter injection: the catalog service is a constructor
// dependency of this one, so the reverse edge cannot be a provider.
func bindRangeUsage(s *Service, c *catalog.Service) {
	c.SetRangeUsage(s)
}

func registerRoutes(r *gin.Engine, cfg *config.Config, s *Service) {
	g := r.Group("/v1/assignments", middleware.Authenticate(cfg))

	g.POST("", middleware.Authorize(rbac.ResourceAssignment, rbac.ActionCreate), s.create)
	g.GET("", middleware.Authorize(rbac.ResourceAssignment, rbac.ActionRead), s.list)
	g.GET("/:id", middleware.Authorize(rbac.ResourceAssignment, rbac.ActionRead), s.get)
	g.DELETE("/:id", middleware.Authorize(rbac.ResourceAssignment, rbac.ActionDelete), s.remove)

	// Route-level gating admits any lister; the service narrows it to the
	// assignment's own lister.
	g.POST("/:id/complete-range", middleware.Authorize(rbac.ResourceAssignment, rbac.ActionComplete), s.completeRange)
	g.POST("/:id/submit", middleware.Authorize(rbac.ResourceAssignment, rbac.ActionComplete), s.submit)
}
