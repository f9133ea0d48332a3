// Package profilegraphbridge serves a profile with its related records and
// the reporting tree below it.
package profilegraphbridge

import (
	"github.com/jrazmi/helix/core/usecases/profilegraph"
	"github.com/jrazmi/helix/infrastructure/web"
)

// Config holds configuration for the profile graph bridge
type Config struct {
	Loader     *profilegraph.Loader
	Middleware []web.Middleware
}

// AddHttpRoutes registers the graph and tree routes under /users.
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Loader)
	g := group.Group("/users", cfg.Middleware...)

	g.GET("/{user_profile_id}/graph", b.httpGraph)
	g.GET("/{user_profile_id}/tree", b.httpTree)
}
