// Package activitylogsrepobridge exposes the audit trail over HTTP. Entries
// can be appended and read but never edited.
package activitylogsrepobridge

import (
	"github.com/jrazmi/helix/core/repositories/activitylogsrepo"
	"github.com/jrazmi/helix/infrastructure/web"
)

// Config holds configuration for the ActivityLog bridge
type Config struct {
	Repository *activitylogsrepo.Repository
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for ActivityLog
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Repository)
	g := group.Group("", cfg.Middleware...)

	g.GET("/users/{user_profile_id}/activity", b.httpListRecent)

	g.GET("/activity", b.httpList)
	g.POST("/activity", b.httpAppend)
	g.POST("/activity/batch", b.httpAppendMany)
	g.GET("/activity/stats/count", b.httpCount)
	g.GET("/activity/stats/groups", b.httpGroupBy)
	g.GET("/activity/stats/risk-score", b.httpRiskScore)
	g.GET("/activity/{activity_log_id}", b.httpGetByID)
}
