// Package profilegraph loads a profile together with its related records and
// walks the reporting hierarchy.
package profilegraph

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jrazmi/helix/core/repositories/activitylogsrepo"
	"github.com/jrazmi/helix/core/repositories/assetassignmentsrepo"
	"github.com/jrazmi/helix/core/repositories/linkedaccountsrepo"
	"github.com/jrazmi/helix/core/repositories/securityeventsrepo"
	"github.com/jrazmi/helix/core/repositories/trainingrecordsrepo"
	"github.com/jrazmi/helix/core/repositories/userprofilesrepo"
	"github.com/jrazmi/helix/core/repositories/userticketsrepo"
	"github.com/jrazmi/helix/sdk/logger"
)

// DefaultTreeDepth bounds ReportingTree when the caller passes no depth.
const DefaultTreeDepth = userprofilesrepo.MaxHierarchyDepth

type Profiles interface {
	Get(ctx context.Context, id string) (userprofilesrepo.UserProfile, error)
	ListDirectReports(ctx context.Context, managerID string) ([]userprofilesrepo.UserProfile, error)
	ManagementChain(ctx context.Context, id string) ([]userprofilesrepo.UserProfile, error)
}

type LinkedAccounts interface {
	ListByUserProfileID(ctx context.Context, userProfileID string) ([]linkedaccountsrepo.LinkedAccount, error)
}

type Assets interface {
	ListByUserProfileID(ctx context.Context, userProfileID string) ([]assetassignmentsrepo.AssetAssignment, error)
}

type Tickets interface {
	ListByUserProfileID(ctx context.Context, userProfileID string) ([]userticketsrepo.UserTicket, error)
}

type Activity interface {
	ListRecent(ctx context.Context, userProfileID string, limit int) ([]activitylogsrepo.ActivityLog, error)
}

type SecurityEvents interface {
	ListByUserProfileID(ctx context.Context, userProfileID string) ([]securityeventsrepo.SecurityEvent, error)
}

type Training interface {
	ListByUserProfileID(ctx context.Context, userProfileID string) ([]trainingrecordsrepo.TrainingRecord, error)
}

// Sources are the repositories the loader reads from. Only Profiles is
// required; a nil source makes the matching Include flag a no-op.
type Sources struct {
	Profiles       Profiles
	LinkedAccounts LinkedAccounts
	Assets         Assets
	Tickets        Tickets
	Activity       Activity
	SecurityEvents SecurityEvents
	Training       Training
}

// Include selects the relations Load fetches alongside the profile.
type Include struct {
	Manager        bool
	DirectReports  bool
	LinkedAccounts bool
	Assets         bool
	Tickets        bool
	Activity       bool
	SecurityEvents bool
	Training       bool

	// ActivityLimit caps recent activity. Zero uses the repository default.
	ActivityLimit int
}

// IncludeAll loads every relation.
func IncludeAll() Include {
	return Include{
		Manager:        true,
		DirectReports:  true,
		LinkedAccounts: true,
		Assets:         true,
		Tickets:        true,
		Activity:       true,
		SecurityEvents: true,
		Training:       true,
	}
}

// Graph is a profile with the relations requested in Include. Relations
// that were not requested stay nil.
type Graph struct {
	Profile        userprofilesrepo.UserProfile           `json:"profile"`
	Manager        *userprofilesrepo.UserProfile          `json:"manager,omitempty"`
	DirectReports  []userprofilesrepo.UserProfile         `json:"directReports,omitempty"`
	LinkedAccounts []linkedaccountsrepo.LinkedAccount     `json:"linkedAccounts,omitempty"`
	Assets         []assetassignmentsrepo.AssetAssignment `json:"assets,omitempty"`
	Tickets        []userticketsrepo.UserTicket           `json:"tickets,omitempty"`
	Activity       []activitylogsrepo.ActivityLog         `json:"activity,omitempty"`
	SecurityEvents []securityeventsrepo.SecurityEvent     `json:"securityEvents,omitempty"`
	Training       []trainingrecordsrepo.TrainingRecord   `json:"training,omitempty"`
}

// Node is one profile in a reporting tree.
type Node struct {
	Profile userprofilesrepo.UserProfile `json:"profile"`
	Depth   int                          `json:"depth"`
	Reports []*Node                      `json:"reports,omitempty"`
}

type Loader struct {
	log *logger.Logger
	src Sources
}

func NewLoader(log *logger.Logger, src Sources) *Loader {
	return &Loader{
		log: log,
		src: src,
	}
}

// Load reads the profile, then fetches the requested relations concurrently.
// The first failing relation cancels the others and its error is returned.
func (l *Loader) Load(ctx context.Context, id string, inc Include) (Graph, error) {
	profile, err := l.src.Profiles.Get(ctx, id)
	if err != nil {
		return Graph{}, fmt.Errorf("load profile graph: %w", err)
	}

	g := Graph{Profile: profile}
	eg, ctx := errgroup.WithContext(ctx)

	if inc.Manager && profile.ManagerID != nil {
		managerID := *profile.ManagerID
		eg.Go(func() error {
			m, err := l.src.Profiles.Get(ctx, managerID)
			if err != nil {
				return fmt.Errorf("manager: %w", err)
			}
			g.Manager = &m
			return nil
		})
	}
	if inc.DirectReports {
		eg.Go(func() error {
			reports, err := l.src.Profiles.ListDirectReports(ctx, id)
			if err != nil {
				return fmt.Errorf("direct reports: %w", err)
			}
			g.DirectReports = reports
			return nil
		})
	}
	if inc.LinkedAccounts && l.src.LinkedAccounts != nil {
		eg.Go(func() error {
			accounts, err := l.src.LinkedAccounts.ListByUserProfileID(ctx, id)
			if err != nil {
				return fmt.Errorf("linked accounts: %w", err)
			}
			g.LinkedAccounts = accounts
			return nil
		})
	}
	if inc.Assets && l.src.Assets != nil {
		eg.Go(func() error {
			assets, err := l.src.Assets.ListByUserProfileID(ctx, id)
			if err != nil {
				return fmt.Errorf("assets: %w", err)
			}
			g.Assets = assets
			return nil
		})
	}
	if inc.Tickets && l.src.Tickets != nil {
		eg.Go(func() error {
			tickets, err := l.src.Tickets.ListByUserProfileID(ctx, id)
			if err != nil {
				return fmt.Errorf("tickets: %w", err)
			}
			g.Tickets = tickets
			return nil
		})
	}
	if inc.Activity && l.src.Activity != nil {
		eg.Go(func() error {
			activity, err := l.src.Activity.ListRecent(ctx, id, inc.ActivityLimit)
			if err != nil {
				return fmt.Errorf("activity: %w", err)
			}
			g.Activity = activity
			return nil
		})
	}
	if inc.SecurityEvents && l.src.SecurityEvents != nil {
		eg.Go(func() error {
			events, err := l.src.SecurityEvents.ListByUserProfileID(ctx, id)
			if err != nil {
				return fmt.Errorf("security events: %w", err)
			}
			g.SecurityEvents = events
			return nil
		})
	}
	if inc.Training && l.src.Training != nil {
		eg.Go(func() error {
			training, err := l.src.Training.ListByUserProfileID(ctx, id)
			if err != nil {
				return fmt.Errorf("training: %w", err)
			}
			g.Training = training
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return Graph{}, fmt.Errorf("load profile graph: %w", err)
	}
	return g, nil
}

// ReportingTree returns the profile and everyone below it, breadth first, up
// to maxDepth levels. A profile reached twice is attached only once.
func (l *Loader) ReportingTree(ctx context.Context, id string, maxDepth int) (*Node, error) {
	if maxDepth <= 0 || maxDepth > DefaultTreeDepth {
		maxDepth = DefaultTreeDepth
	}

	root, err := l.src.Profiles.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reporting tree: %w", err)
	}

	top := &Node{Profile: root}
	visited := map[string]bool{root.UserProfileID: true}
	queue := []*Node{top}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node.Depth >= maxDepth {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("reporting tree: %w", err)
		}

		reports, err := l.src.Profiles.ListDirectReports(ctx, node.Profile.UserProfileID)
		if err != nil {
			return nil, fmt.Errorf("reporting tree: %w", err)
		}
		for _, r := range reports {
			if visited[r.UserProfileID] {
				l.log.WarnContext(ctx, "reporting tree revisits profile", "user_profile_id", r.UserProfileID, "manager_id", node.Profile.UserProfileID)
				continue
			}
			visited[r.UserProfileID] = true
			child := &Node{Profile: r, Depth: node.Depth + 1}
			node.Reports = append(node.Reports, child)
			queue = append(queue, child)
		}
	}

	return top, nil
}

// ManagementChain returns the profile's managers, nearest first.
func (l *Loader) ManagementChain(ctx context.Context, id string) ([]userprofilesrepo.UserProfile, error) {
	chain, err := l.src.Profiles.ManagementChain(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("management chain: %w", err)
	}
	return chain, nil
}

// Size counts the nodes in the tree rooted at n.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, r := range n.Reports {
		total += r.Size()
	}
	return total
}
