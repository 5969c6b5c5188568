package catalog

import (
	"resellops/pkg/config"
	"resellops/pkg/middleware"
	"resellops/pkg/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(
		NewService,
	),
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *gin.Engine, cfg *config.Config, s *Service) {
	g := r.Group("/v1", middleware.Authenticate(cfg))

	read := middleware.Authorize(rbac.ResourceCatalog, rbac.ActionRead)
	create := middleware.Authorize(rbac.ResourceCatalog, rbac.ActionCreate)
	del := middleware.Authorize(rbac.ResourceCatalog, rbac.ActionDelete)

	g.GET("/platforms", read, s.listPlatforms)
	g.POST("/platforms", create, s.createPlatform)
	g.DELETE("/platforms/:id", del, s.deletePlatform)

	g.GET("/stores", read, s.listStores)
	g.POST("/stores", create, s.createStore)
	g.DELETE("/stores/:id", del, s.deleteStore)

	g.GET("/categories", read, s.listCategories)
	g.POST("/categories", create, s.createCategory)
	g.DELETE("/categories/:id", del, s.deleteCategory)

	g.GET("/subcategories", read, s.listSubcategories)
	g.POST("/subcategories", create, s.createSubcategory)
	g.DELETE("/subcategories/:id", del, s.deleteSubcategory)

	g.GET("/ranges", read, s.listRanges)
	g.POST("/ranges", create, s.createRange)
	g.DELETE("/ranges/:id", del, s.deleteRange)
}
