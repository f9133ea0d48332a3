// Package userprofilesrepobridge exposes user profiles over HTTP.
package userprofilesrepobridge

import (
	"github.com/jrazmi/helix/core/repositories/userprofilesrepo"
	"github.com/jrazmi/helix/infrastructure/web"
)

// Config holds configuration for the UserProfile bridge
type Config struct {
	Repository *userprofilesrepo.Repository
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for UserProfile
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Repository)
	g := group.Group("/users", cfg.Middleware...)

	g.GET("", b.httpList)
	g.POST("", b.httpCreate)
	g.PUT("", b.httpUpsert)
	g.GET("/lookup", b.httpLookup)
	g.GET("/stats/count", b.httpCount)
	g.GET("/stats/groups", b.httpGroupBy)
	g.GET("/stats/security-score", b.httpSecurityScore)

	g.GET("/{user_profile_id}", b.httpGetByID)
	g.PUT("/{user_profile_id}", b.httpUpdate)
	g.DELETE("/{user_profile_id}", b.httpDelete)
	g.PUT("/{user_profile_id}/manager", b.httpSetManager)
	g.GET("/{user_profile_id}/reports", b.httpDirectReports)
	g.GET("/{user_profile_id}/chain", b.httpManagementChain)
	g.POST("/{user_profile_id}/logins", b.httpRecordLogin)
}
