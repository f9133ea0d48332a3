package profilegraphbridge

import "github.com/jrazmi/helix/core/usecases/profilegraph"

// TreeResponse is a reporting tree with its node count.
type TreeResponse struct {
	Size int                `json:"size"`
	Root *profilegraph.Node `json:"root"`
}
