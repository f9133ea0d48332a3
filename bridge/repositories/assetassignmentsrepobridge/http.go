// Package assetassignmentsrepobridge exposes asset assignments over HTTP.
package assetassignmentsrepobridge

import (
	"github.com/jrazmi/helix/core/repositories/assetassignmentsrepo"
	"github.com/jrazmi/helix/infrastructure/web"
)

// Config holds configuration for the AssetAssignment bridge
type Config struct {
	Repository *assetassignmentsrepo.Repository
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for AssetAssignment
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Repository)
	g := group.Group("", cfg.Middleware...)

	g.GET("/users/{user_profile_id}/assets", b.httpListByUser)

	g.GET("/assets", b.httpList)
	g.POST("/assets", b.httpCreate)
	g.GET("/assets/stats/count", b.httpCount)
	g.GET("/assets/stats/groups", b.httpGroupBy)
	g.GET("/assets/{asset_assignment_id}", b.httpGetByID)
	g.PUT("/assets/{asset_assignment_id}", b.httpUpdate)
	g.DELETE("/assets/{asset_assignment_id}", b.httpDelete)
	g.POST("/assets/{asset_assignment_id}/unassign", b.httpUnassign)
}
