// Package userticketsrepobridge exposes profile to ticket links over HTTP.
package userticketsrepobridge

import (
	"github.com/jrazmi/helix/core/repositories/userticketsrepo"
	"github.com/jrazmi/helix/infrastructure/web"
)

// Config holds configuration for the UserTicket bridge
type Config struct {
	Repository *userticketsrepo.Repository
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for UserTicket
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Repository)
	g := group.Group("", cfg.Middleware...)

	g.GET("/users/{user_profile_id}/tickets", b.httpListByUser)
	g.GET("/tickets/{ticket_id}/users", b.httpListByTicket)

	g.GET("/user-tickets", b.httpList)
	g.POST("/user-tickets", b.httpCreate)
	g.PUT("/user-tickets", b.httpUpsert)
	g.GET("/user-tickets/lookup", b.httpLookup)
	g.GET("/user-tickets/stats/groups", b.httpGroupBy)
	g.GET("/user-tickets/{user_ticket_id}", b.httpGetByID)
	g.PUT("/user-tickets/{user_ticket_id}", b.httpUpdate)
	g.DELETE("/user-tickets/{user_ticket_id}", b.httpDelete)
}
