package profilegraphbridge

import (
	"fmt"

	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/usecases/profilegraph"
)

var includeFlags = map[string]func(*profilegraph.Include){
	"manager":        func(i *profilegraph.Include) { i.Manager = true },
	"directReports":  func(i *profilegraph.Include) { i.DirectReports = true },
	"linkedAccounts": func(i *profilegraph.Include) { i.LinkedAccounts = true },
	"assets":         func(i *profilegraph.Include) { i.Assets = true },
	"tickets":        func(i *profilegraph.Include) { i.Tickets = true },
	"activity":       func(i *profilegraph.Include) { i.Activity = true },
	"securityEvents": func(i *profilegraph.Include) { i.SecurityEvents = true },
	"training":       func(i *profilegraph.Include) { i.Training = true },
}

// parseInclude reads ?include=a,b,c. "all" selects every relation and an
// absent parameter selects none.
func parseInclude(q *fopbridge.Query) (profilegraph.Include, error) {
	var inc profilegraph.Include
	for _, name := range q.Strings("include") {
		if name == "all" {
			limit := inc.ActivityLimit
			inc = profilegraph.IncludeAll()
			inc.ActivityLimit = limit
			continue
		}
		set, ok := includeFlags[name]
		if !ok {
			return inc, fmt.Errorf("unknown include: %s", name)
		}
		set(&inc)
	}

	if limit := q.Int("activityLimit"); limit != nil {
		inc.ActivityLimit = *limit
	}

	return inc, q.Err()
}
