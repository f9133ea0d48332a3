// Package api registers the versioned JSON API.
package api

import (
	"github.com/jrazmi/helix/app/helix/config"
	"github.com/jrazmi/helix/bridge/repositories/activitylogsrepobridge"
	"github.com/jrazmi/helix/bridge/repositories/assetassignmentsrepobridge"
	"github.com/jrazmi/helix/bridge/repositories/linkedaccountsrepobridge"
	"github.com/jrazmi/helix/bridge/repositories/securityeventsrepobridge"
	"github.com/jrazmi/helix/bridge/repositories/trainingrecordsrepobridge"
	"github.com/jrazmi/helix/bridge/repositories/userprofilesrepobridge"
	"github.com/jrazmi/helix/bridge/repositories/userticketsrepobridge"
	"github.com/jrazmi/helix/bridge/usecases/profilegraphbridge"
	"github.com/jrazmi/helix/infrastructure/web"
)

// AddHandlers mounts every bridge under route.
func AddHandlers(h *web.WebHandler, route string, cfg config.Helix, middleware ...web.Middleware) {
	g := h.Group(route, middleware...)
	repos := cfg.Repositories

	userprofilesrepobridge.AddHttpRoutes(g, userprofilesrepobridge.Config{Repository: repos.UserProfiles})
	linkedaccountsrepobridge.AddHttpRoutes(g, linkedaccountsrepobridge.Config{Repository: repos.LinkedAccounts})
	assetassignmentsrepobridge.AddHttpRoutes(g, assetassignmentsrepobridge.Config{Repository: repos.Assets})
	userticketsrepobridge.AddHttpRoutes(g, userticketsrepobridge.Config{Repository: repos.UserTickets})
	activitylogsrepobridge.AddHttpRoutes(g, activitylogsrepobridge.Config{Repository: repos.ActivityLogs})
	securityeventsrepobridge.AddHttpRoutes(g, securityeventsrepobridge.Config{Repository: repos.SecurityEvents})
	trainingrecordsrepobridge.AddHttpRoutes(g, trainingrecordsrepobridge.Config{Repository: repos.TrainingRecords})

	profilegraphbridge.AddHttpRoutes(g, profilegraphbridge.Config{Loader: cfg.UseCases.ProfileGraph})
}
