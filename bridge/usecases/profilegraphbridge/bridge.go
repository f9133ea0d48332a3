package profilegraphbridge

import (
	"context"
	"net/http"

	"github.com/jrazmi/helix/bridge/scaffolding/errs"
	"github.com/jrazmi/helix/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/helix/core/usecases/profilegraph"
	"github.com/jrazmi/helix/infrastructure/web"
)

type bridge struct {
	loader *profilegraph.Loader
}

func newBridge(loader *profilegraph.Loader) *bridge {
	return &bridge{loader: loader}
}

func (b *bridge) httpGraph(ctx context.Context, r *http.Request) web.Encoder {
	inc, err := parseInclude(fopbridge.NewQuery(r))
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	graph, err := b.loader.Load(ctx, web.Param(r, "user_profile_id"), inc)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(graph)
}

// httpTree returns the reporting tree. A missing or out of range depth
// falls back to the hierarchy limit.
func (b *bridge) httpTree(ctx context.Context, r *http.Request) web.Encoder {
	q := fopbridge.NewQuery(r)
	depth := q.Int("depth")
	if err := q.Err(); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	n := 0
	if depth != nil {
		n = *depth
	}

	tree, err := b.loader.ReportingTree(ctx, web.Param(r, "user_profile_id"), n)
	if err != nil {
		return errs.FromRepository(err)
	}
	return fopbridge.NewRecordResponse(TreeResponse{Size: tree.Size(), Root: tree})
}
