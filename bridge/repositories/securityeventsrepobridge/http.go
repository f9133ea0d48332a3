// Package securityeventsrepobridge exposes security findings and their
// triage workflow over HTTP.
package securityeventsrepobridge

import (
	"github.com/jrazmi/helix/core/repositories/securityeventsrepo"
	"github.com/jrazmi/helix/infrastructure/web"
)

// Config holds configuration for the SecurityEvent bridge
type Config struct {
	Repository *securityeventsrepo.Repository
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for SecurityEvent
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Repository)
	g := group.Group("", cfg.Middleware...)

	g.GET("/users/{user_profile_id}/security-events", b.httpListByUser)

	g.GET("/security-events", b.httpList)
	g.POST("/security-events", b.httpCreate)
	g.GET("/security-events/stats/count", b.httpCount)
	g.GET("/security-events/stats/groups", b.httpGroupBy)
	g.GET("/security-events/{security_event_id}", b.httpGetByID)
	g.PUT("/security-events/{security_event_id}", b.httpUpdate)
	g.DELETE("/security-events/{security_event_id}", b.httpDelete)
	g.POST("/security-events/{security_event_id}/assign", b.httpAssign)
	g.POST("/security-events/{security_event_id}/transition", b.httpTransition)
}
