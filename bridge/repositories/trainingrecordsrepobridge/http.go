// Package trainingrecordsrepobridge exposes training progress and
// compliance summaries over HTTP.
package trainingrecordsrepobridge

import (
	"github.com/jrazmi/helix/core/repositories/trainingrecordsrepo"
	"github.com/jrazmi/helix/infrastructure/web"
)

// Config holds configuration for the TrainingRecord bridge
type Config struct {
	Repository *trainingrecordsrepo.Repository
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for TrainingRecord
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Repository)
	g := group.Group("", cfg.Middleware...)

	g.GET("/users/{user_profile_id}/training", b.httpListByUser)
	g.GET("/users/{user_profile_id}/training/compliance", b.httpUserCompliance)
	g.GET("/users/{user_profile_id}/training/{course_id}", b.httpGetByCourse)
	g.GET("/tenants/{tenant_id}/training/compliance", b.httpTenantCompliance)

	g.GET("/training", b.httpList)
	g.POST("/training", b.httpCreate)
	g.PUT("/training", b.httpUpsert)
	g.GET("/training/overdue", b.httpListOverdue)
	g.GET("/training/stats/count", b.httpCount)
	g.GET("/training/stats/groups", b.httpGroupBy)
	g.GET("/training/stats/score", b.httpScore)
	g.GET("/training/{training_record_id}", b.httpGetByID)
	g.PUT("/training/{training_record_id}", b.httpUpdate)
	g.DELETE("/training/{training_record_id}", b.httpDelete)
}
