// Package linkedaccountsrepobridge exposes linked platform accounts over HTTP.
package linkedaccountsrepobridge

import (
	"github.com/jrazmi/helix/core/repositories/linkedaccountsrepo"
	"github.com/jrazmi/helix/infrastructure/web"
)

// Config holds configuration for the LinkedAccount bridge
type Config struct {
	Repository *linkedaccountsrepo.Repository
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for LinkedAccount
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Repository)
	g := group.Group("", cfg.Middleware...)

	g.GET("/users/{user_profile_id}/linked-accounts", b.httpListByUser)

	g.GET("/linked-accounts", b.httpList)
	g.POST("/linked-accounts", b.httpCreate)
	g.PUT("/linked-accounts", b.httpUpsert)
	g.GET("/linked-accounts/lookup", b.httpLookup)
	g.GET("/linked-accounts/stats/groups", b.httpGroupBy)
	g.GET("/linked-accounts/{linked_account_id}", b.httpGetByID)
	g.PUT("/linked-accounts/{linked_account_id}", b.httpUpdate)
	g.DELETE("/linked-accounts/{linked_account_id}", b.httpDelete)
	g.POST("/linked-accounts/{linked_account_id}/sync", b.httpMarkSynced)
}
