// Package config holds the wiring shared by the helix service entrypoint and
// its route registration.
package config

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jrazmi/helix/bridge/scaffolding/mid"
	"github.com/jrazmi/helix/core/repositories/activitylogsrepo"
	"github.com/jrazmi/helix/core/repositories/activitylogsrepo/stores/activitylogspgxstore"
	"github.com/jrazmi/helix/core/repositories/assetassignmentsrepo"
	"github.com/jrazmi/helix/core/repositories/assetassignmentsrepo/stores/assetassignmentspgxstore"
	"github.com/jrazmi/helix/core/repositories/linkedaccountsrepo"
	"github.com/jrazmi/helix/core/repositories/linkedaccountsrepo/stores/linkedaccountspgxstore"
	"github.com/jrazmi/helix/core/repositories/securityeventsrepo"
	"github.com/jrazmi/helix/core/repositories/securityeventsrepo/stores/securityeventspgxstore"
	"github.com/jrazmi/helix/core/repositories/trainingrecordsrepo"
	"github.com/jrazmi/helix/core/repositories/trainingrecordsrepo/stores/trainingrecordspgxstore"
	"github.com/jrazmi/helix/core/repositories/userprofilesrepo"
	"github.com/jrazmi/helix/core/repositories/userprofilesrepo/stores/userprofilespgxstore"
	"github.com/jrazmi/helix/core/repositories/userticketsrepo"
	"github.com/jrazmi/helix/core/repositories/userticketsrepo/stores/userticketspgxstore"
	"github.com/jrazmi/helix/core/usecases/profilegraph"
	"github.com/jrazmi/helix/core/usecases/retention"
	"github.com/jrazmi/helix/sdk/logger"
	"github.com/jrazmi/helix/sdk/telemetry"
)

// MetricsNamespace prefixes every exported Prometheus series.
const MetricsNamespace = "helix"

// Service is the env mapped service configuration.
type Service struct {
	MigrateOnStart   bool `env:"MIGRATE_ON_START" default:"false"`
	RetentionEnabled bool `env:"RETENTION_ENABLED" default:"true"`
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`
}

// Settings gathers the per component options parsed at startup.
type Settings struct {
	Service   Service
	Profiles  userprofilesrepo.Options
	Activity  activitylogsrepo.Options
	Retention retention.Options
	RateLimit mid.RateLimitConfig
}

type Repositories struct {
	UserProfiles    *userprofilesrepo.Repository
	LinkedAccounts  *linkedaccountsrepo.Repository
	Assets          *assetassignmentsrepo.Repository
	UserTickets     *userticketsrepo.Repository
	ActivityLogs    *activitylogsrepo.Repository
	SecurityEvents  *securityeventsrepo.Repository
	TrainingRecords *trainingrecordsrepo.Repository
}

type UseCases struct {
	ProfileGraph *profilegraph.Loader
}

// Helix is the overall configuration for the helix service.
type Helix struct {
	Build     string
	Logger    *logger.Logger
	Telemetry telemetry.Telemetry
	Settings  Settings

	DB           *pgxpool.Pool
	Registry     *prometheus.Registry
	Repositories Repositories
	UseCases     UseCases
}

// NewRepositories binds every repository to its pgx store.
func NewRepositories(log *logger.Logger, pool *pgxpool.Pool, s Settings) Repositories {
	return Repositories{
		UserProfiles:    userprofilesrepo.NewRepository(log, userprofilespgxstore.NewStore(log, pool), userprofilesrepo.WithMaxAttempts(s.Profiles.MaxAttempts)),
		LinkedAccounts:  linkedaccountsrepo.NewRepository(log, linkedaccountspgxstore.NewStore(log, pool)),
		Assets:          assetassignmentsrepo.NewRepository(log, assetassignmentspgxstore.NewStore(log, pool)),
		UserTickets:     userticketsrepo.NewRepository(log, userticketspgxstore.NewStore(log, pool)),
		ActivityLogs:    activitylogsrepo.NewRepository(log, activitylogspgxstore.NewStore(log, pool), activitylogsrepo.WithDefaultRetention(s.Activity.DefaultRetention)),
		SecurityEvents:  securityeventsrepo.NewRepository(log, securityeventspgxstore.NewStore(log, pool)),
		TrainingRecords: trainingrecordsrepo.NewRepository(log, trainingrecordspgxstore.NewStore(log, pool)),
	}
}

// NewUseCases builds the use cases on top of repos.
func NewUseCases(log *logger.Logger, repos Repositories) UseCases {
	return UseCases{
		ProfileGraph: profilegraph.NewLoader(log, profilegraph.Sources{
			Profiles:       repos.UserProfiles,
			LinkedAccounts: repos.LinkedAccounts,
			Assets:         repos.Assets,
			Tickets:        repos.UserTickets,
			Activity:       repos.ActivityLogs,
			SecurityEvents: repos.SecurityEvents,
			Training:       repos.TrainingRecords,
		}),
	}
}
