//go:build integration

package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jrazmi/helix/core/repositories"
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
	"github.com/jrazmi/helix/infrastructure/postgresdb"
	"github.com/jrazmi/helix/sdk/logger"
)

type stores struct {
	profiles *userprofilesrepo.Repository
	accounts *linkedaccountsrepo.Repository
	assets   *assetassignmentsrepo.Repository
	tickets  *userticketsrepo.Repository
	activity *activitylogsrepo.Repository
	training *trainingrecordsrepo.Repository
	events   *securityeventsrepo.Repository

	// Stores reached directly, past the repository checks.
	profileStore *userprofilespgxstore.Store
	eventStore   *securityeventspgxstore.Store
}

func setup(t *testing.T) (context.Context, stores) {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("helix_test"),
		postgres.WithUsername("helix"),
		postgres.WithPassword("helix"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	conn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	log := logger.NewDiscard()
	pool, err := postgresdb.NewTestDB(conn, postgresdb.WithLogger(log.Logger))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgresdb.Migrate(ctx, pool, log.Logger))

	profileStore := userprofilespgxstore.NewStore(log, pool)
	eventStore := securityeventspgxstore.NewStore(log, pool)

	return ctx, stores{
		profiles: userprofilesrepo.NewRepository(log, profileStore),
		accounts: linkedaccountsrepo.NewRepository(log, linkedaccountspgxstore.NewStore(log, pool)),
		assets:   assetassignmentsrepo.NewRepository(log, assetassignmentspgxstore.NewStore(log, pool)),
		tickets:  userticketsrepo.NewRepository(log, userticketspgxstore.NewStore(log, pool)),
		activity: activitylogsrepo.NewRepository(log, activitylogspgxstore.NewStore(log, pool)),
		training: trainingrecordsrepo.NewRepository(log, trainingrecordspgxstore.NewStore(log, pool)),
		events:   securityeventsrepo.NewRepository(log, eventStore),

		profileStore: profileStore,
		eventStore:   eventStore,
	}
}

func newProfile(t *testing.T, ctx context.Context, r *userprofilesrepo.Repository, uid, email string) userprofilesrepo.UserProfile {
	t.Helper()
	p, err := r.Create(ctx, userprofilesrepo.CreateUserProfile{HelixUID: uid, Email: email})
	require.NoError(t, err)
	return p
}

func TestPostgres(t *testing.T) {
	ctx, s := setup(t)

	t.Run("email is unique case insensitively", func(t *testing.T) {
		p := newProfile(t, ctx, s.profiles, "hx-email-1", "Jane.Doe@Example.com")
		assert.Equal(t, 1, p.DataVersion)

		_, err := s.profiles.Create(ctx, userprofilesrepo.CreateUserProfile{HelixUID: "hx-email-2", Email: "jane.doe@example.COM"})
		assert.ErrorIs(t, err, repositories.ErrUniqueViolation)

		got, err := s.profiles.GetByEmail(ctx, "JANE.DOE@example.com")
		require.NoError(t, err)
		assert.Equal(t, p.UserProfileID, got.UserProfileID)
	})

	t.Run("helix uid is unique", func(t *testing.T) {
		newProfile(t, ctx, s.profiles, "hx-uid", "uid-1@example.com")
		_, err := s.profiles.Create(ctx, userprofilesrepo.CreateUserProfile{HelixUID: "hx-uid", Email: "uid-2@example.com"})
		assert.ErrorIs(t, err, repositories.ErrUniqueViolation)
	})

	t.Run("platform identity is unique", func(t *testing.T) {
		a := newProfile(t, ctx, s.profiles, "hx-platform-a", "platform-a@example.com")
		b := newProfile(t, ctx, s.profiles, "hx-platform-b", "platform-b@example.com")

		_, err := s.accounts.Create(ctx, linkedaccountsrepo.CreateLinkedAccount{UserProfileID: a.UserProfileID, Platform: "slack", PlatformUserID: "U123"})
		require.NoError(t, err)
		_, err = s.accounts.Create(ctx, linkedaccountsrepo.CreateLinkedAccount{UserProfileID: b.UserProfileID, Platform: "slack", PlatformUserID: "U123"})
		assert.ErrorIs(t, err, repositories.ErrUniqueViolation)
	})

	t.Run("ticket pair repeats with distinct relationships", func(t *testing.T) {
		p := newProfile(t, ctx, s.profiles, "hx-tickets", "tickets@example.com")

		_, err := s.tickets.Create(ctx, userticketsrepo.CreateUserTicket{UserProfileID: p.UserProfileID, TicketID: "INC-1", Relationship: userticketsrepo.RelationshipRequester})
		require.NoError(t, err)
		_, err = s.tickets.Create(ctx, userticketsrepo.CreateUserTicket{UserProfileID: p.UserProfileID, TicketID: "INC-1", Relationship: userticketsrepo.RelationshipWatcher})
		require.NoError(t, err)
		_, err = s.tickets.Create(ctx, userticketsrepo.CreateUserTicket{UserProfileID: p.UserProfileID, TicketID: "INC-1", Relationship: userticketsrepo.RelationshipRequester})
		assert.ErrorIs(t, err, repositories.ErrUniqueViolation)
	})

	t.Run("training upsert updates in place", func(t *testing.T) {
		p := newProfile(t, ctx, s.profiles, "hx-training", "training@example.com")
		completed := trainingrecordsrepo.StatusCompleted
		score := 92

		first, err := s.training.Upsert(ctx, trainingrecordsrepo.CreateTrainingRecord{UserProfileID: p.UserProfileID, CourseID: "SEC-101", CourseName: "Security basics"})
		require.NoError(t, err)

		second, err := s.training.Upsert(ctx, trainingrecordsrepo.CreateTrainingRecord{
			UserProfileID: p.UserProfileID,
			CourseID:      "SEC-101",
			CourseName:    "Security basics",
			Status:        &completed,
			Score:         &score,
		})
		require.NoError(t, err)
		assert.Equal(t, first.TrainingRecordID, second.TrainingRecordID)
		assert.Equal(t, completed, second.Status)
		require.NotNil(t, second.Score)
		assert.Equal(t, 92, *second.Score)

		_, err = s.training.Create(ctx, trainingrecordsrepo.CreateTrainingRecord{UserProfileID: p.UserProfileID, CourseID: "SEC-101", CourseName: "Again"})
		assert.ErrorIs(t, err, repositories.ErrUniqueViolation)
	})

	t.Run("stale update is rejected", func(t *testing.T) {
		p := newProfile(t, ctx, s.profiles, "hx-version", "version@example.com")
		dept := "Security"

		updated, err := s.profiles.Update(ctx, p.UserProfileID, p.DataVersion, userprofilesrepo.UpdateUserProfile{Department: &dept})
		require.NoError(t, err)
		assert.Equal(t, p.DataVersion+1, updated.DataVersion)

		_, err = s.profiles.Update(ctx, p.UserProfileID, p.DataVersion, userprofilesrepo.UpdateUserProfile{Department: &dept})
		assert.ErrorIs(t, err, repositories.ErrVersionConflict)
	})

	t.Run("manager cycle is rejected", func(t *testing.T) {
		ceo := newProfile(t, ctx, s.profiles, "hx-ceo", "ceo@example.com")
		vp := newProfile(t, ctx, s.profiles, "hx-vp", "vp@example.com")

		vp, err := s.profiles.SetManager(ctx, vp.UserProfileID, userprofilesrepo.ManagerChange{
			ManagerID:       &ceo.UserProfileID,
			ExpectedVersion: vp.DataVersion,
		})
		require.NoError(t, err)
		assert.Equal(t, ceo.UserProfileID, *vp.ManagerID)

		_, err = s.profiles.SetManager(ctx, ceo.UserProfileID, userprofilesrepo.ManagerChange{
			ManagerID:       &vp.UserProfileID,
			ExpectedVersion: ceo.DataVersion,
		})
		assert.ErrorIs(t, err, repositories.ErrManagerCycle)

		_, err = s.profiles.SetManager(ctx, ceo.UserProfileID, userprofilesrepo.ManagerChange{
			ManagerID:       &ceo.UserProfileID,
			ExpectedVersion: ceo.DataVersion,
		})
		assert.ErrorIs(t, err, repositories.ErrManagerCycle)
	})

	t.Run("tenant move keeps manager edges within a tenant", func(t *testing.T) {
		create := func(uid string) userprofilesrepo.UserProfile {
			p, err := s.profiles.Create(ctx, userprofilesrepo.CreateUserProfile{
				HelixUID: uid, Email: uid + "@example.com", TenantID: ptr("acme"),
			})
			require.NoError(t, err)
			return p
		}
		boss := create("hx-tenant-boss")
		report := create("hx-tenant-report")
		loner := create("hx-tenant-loner")

		report, err := s.profiles.SetManager(ctx, report.UserProfileID, userprofilesrepo.ManagerChange{
			ManagerID:       &boss.UserProfileID,
			ExpectedVersion: report.DataVersion,
		})
		require.NoError(t, err)

		_, err = s.profiles.Update(ctx, report.UserProfileID, report.DataVersion, userprofilesrepo.UpdateUserProfile{TenantID: ptr("globex")})
		assert.ErrorIs(t, err, repositories.ErrTenantMismatch)

		_, err = s.profiles.Update(ctx, boss.UserProfileID, boss.DataVersion, userprofilesrepo.UpdateUserProfile{TenantID: ptr("globex")})
		assert.ErrorIs(t, err, repositories.ErrTenantMismatch)

		_, err = s.profiles.Upsert(ctx, userprofilesrepo.CreateUserProfile{
			HelixUID: boss.HelixUID, Email: boss.Email, TenantID: ptr("globex"),
		})
		assert.ErrorIs(t, err, repositories.ErrTenantMismatch)

		_, err = s.profileStore.Update(ctx, boss.UserProfileID, boss.DataVersion, userprofilesrepo.UpdateUserProfile{TenantID: ptr("globex")})
		assert.ErrorIs(t, err, repositories.ErrTenantMismatch)
		_, err = s.profileStore.Upsert(ctx, userprofilesrepo.CreateUserProfile{
			HelixUID: report.HelixUID, Email: report.Email, EmailCanonical: report.EmailCanonical, TenantID: ptr("globex"),
		})
		assert.ErrorIs(t, err, repositories.ErrTenantMismatch)

		got, err := s.profiles.Get(ctx, boss.UserProfileID)
		require.NoError(t, err)
		assert.Equal(t, "acme", *got.TenantID)
		assert.Equal(t, boss.DataVersion, got.DataVersion)

		moved, err := s.profiles.Update(ctx, loner.UserProfileID, loner.DataVersion, userprofilesrepo.UpdateUserProfile{TenantID: ptr("globex")})
		require.NoError(t, err)
		assert.Equal(t, "globex", *moved.TenantID)

		_, err = s.profiles.Update(ctx, moved.UserProfileID, loner.DataVersion, userprofilesrepo.UpdateUserProfile{TenantID: ptr("initech")})
		assert.ErrorIs(t, err, repositories.ErrVersionConflict)
	})

	t.Run("released assignment keeps its status", func(t *testing.T) {
		p := newProfile(t, ctx, s.profiles, "hx-release", "release@example.com")
		asset, err := s.assets.Create(ctx, assetassignmentsrepo.CreateAssetAssignment{
			UserProfileID: p.UserProfileID,
			AssetID:       "LT-0100",
			AssetName:     "Laptop",
			AssetType:     assetassignmentsrepo.AssetLaptop,
		})
		require.NoError(t, err)

		pending := assetassignmentsrepo.StatusPendingReturn
		_, err = s.assets.Update(ctx, asset.AssetAssignmentID, assetassignmentsrepo.UpdateAssetAssignment{Status: &pending})
		require.NoError(t, err)

		returned, err := s.assets.Unassign(ctx, asset.AssetAssignmentID, assetassignmentsrepo.Unassignment{Status: assetassignmentsrepo.StatusReturned})
		require.NoError(t, err)
		require.NotNil(t, returned.UnassignedAt)

		for _, status := range []assetassignmentsrepo.AssetStatus{assetassignmentsrepo.StatusAssigned, assetassignmentsrepo.StatusPendingReturn} {
			_, err = s.assets.Update(ctx, asset.AssetAssignmentID, assetassignmentsrepo.UpdateAssetAssignment{Status: &status})
			assert.ErrorIs(t, err, repositories.ErrInvalidTransition, status)
		}

		notes := "boxed in storage"
		updated, err := s.assets.Update(ctx, asset.AssetAssignmentID, assetassignmentsrepo.UpdateAssetAssignment{Notes: &notes})
		require.NoError(t, err)
		assert.Equal(t, assetassignmentsrepo.StatusReturned, updated.Status)
		assert.Equal(t, notes, *updated.Notes)

		_, err = s.assets.Update(ctx, "00000000-0000-0000-0000-000000000002", assetassignmentsrepo.UpdateAssetAssignment{Status: &pending})
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("security event workflow", func(t *testing.T) {
		p := newProfile(t, ctx, s.profiles, "hx-incident", "incident@example.com")
		event, err := s.events.Create(ctx, securityeventsrepo.CreateSecurityEvent{
			UserProfileID: p.UserProfileID,
			EventType:     "phishing",
			Title:         "Credential phishing reported",
			Severity:      securityeventsrepo.SeverityHigh,
		})
		require.NoError(t, err)
		assert.Equal(t, securityeventsrepo.StatusOpen, event.Status)
		assert.Nil(t, event.ResolvedAt)

		analyst := "analyst@example.com"
		event, err = s.events.Assign(ctx, event.SecurityEventID, &analyst)
		require.NoError(t, err)
		assert.Equal(t, analyst, *event.AssignedTo)

		event, err = s.events.Transition(ctx, event.SecurityEventID, securityeventsrepo.StatusChange{Status: securityeventsrepo.StatusInProgress})
		require.NoError(t, err)
		assert.Equal(t, securityeventsrepo.StatusInProgress, event.Status)
		assert.Nil(t, event.ResolvedAt)

		_, err = s.eventStore.Transition(ctx, event.SecurityEventID, securityeventsrepo.StatusOpen,
			securityeventsrepo.StatusChange{Status: securityeventsrepo.StatusResolved}, time.Now().UTC())
		assert.ErrorIs(t, err, repositories.ErrVersionConflict)

		resolution := "password reset, sender blocked"
		event, err = s.events.Transition(ctx, event.SecurityEventID, securityeventsrepo.StatusChange{
			Status:     securityeventsrepo.StatusResolved,
			Resolution: &resolution,
		})
		require.NoError(t, err)
		assert.Equal(t, securityeventsrepo.StatusResolved, event.Status)
		require.NotNil(t, event.ResolvedAt)
		assert.Equal(t, resolution, *event.Resolution)
		resolvedAt := *event.ResolvedAt

		event, err = s.events.Transition(ctx, event.SecurityEventID, securityeventsrepo.StatusChange{Status: securityeventsrepo.StatusClosed})
		require.NoError(t, err)
		assert.Equal(t, securityeventsrepo.StatusClosed, event.Status)
		require.NotNil(t, event.ResolvedAt)
		assert.True(t, resolvedAt.Equal(*event.ResolvedAt))

		_, err = s.events.Transition(ctx, event.SecurityEventID, securityeventsrepo.StatusChange{Status: securityeventsrepo.StatusInProgress})
		assert.ErrorIs(t, err, repositories.ErrInvalidTransition)

		_, err = s.eventStore.Assign(ctx, event.SecurityEventID, &analyst)
		assert.ErrorIs(t, err, repositories.ErrInvalidTransition)
		_, err = s.eventStore.Assign(ctx, "00000000-0000-0000-0000-000000000003", &analyst)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("deleting a profile removes its children", func(t *testing.T) {
		p := newProfile(t, ctx, s.profiles, "hx-cascade", "cascade@example.com")

		account, err := s.accounts.Create(ctx, linkedaccountsrepo.CreateLinkedAccount{
			UserProfileID:  p.UserProfileID,
			Platform:       "github",
			PlatformUserID: "cascade-gh",
		})
		require.NoError(t, err)

		asset, err := s.assets.Create(ctx, assetassignmentsrepo.CreateAssetAssignment{
			UserProfileID: p.UserProfileID,
			AssetID:       "LT-0042",
			AssetName:     "Laptop",
			AssetType:     assetassignmentsrepo.AssetLaptop,
		})
		require.NoError(t, err)

		require.NoError(t, s.profiles.Delete(ctx, p.UserProfileID))

		_, err = s.accounts.Get(ctx, account.LinkedAccountID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		_, err = s.assets.Get(ctx, asset.AssetAssignmentID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("child of unknown profile is rejected", func(t *testing.T) {
		_, err := s.accounts.Create(ctx, linkedaccountsrepo.CreateLinkedAccount{
			UserProfileID:  "00000000-0000-0000-0000-000000000001",
			Platform:       "okta",
			PlatformUserID: "ghost",
		})
		assert.ErrorIs(t, err, repositories.ErrForeignKeyViolation)
	})

	t.Run("expired activity is purged", func(t *testing.T) {
		p := newProfile(t, ctx, s.profiles, "hx-retention", "retention@example.com")
		now := time.Now().UTC()
		past := now.Add(-time.Hour)
		future := now.Add(time.Hour)

		expired, err := s.activity.Append(ctx, activitylogsrepo.NewActivityLog{
			UserProfileID: p.UserProfileID,
			Action:        "login",
			Outcome:       activitylogsrepo.OutcomeSuccess,
			RetentionDate: &past,
		})
		require.NoError(t, err)
		kept, err := s.activity.Append(ctx, activitylogsrepo.NewActivityLog{
			UserProfileID: p.UserProfileID,
			Action:        "logout",
			Outcome:       activitylogsrepo.OutcomeSuccess,
			RetentionDate: &future,
		})
		require.NoError(t, err)

		ids, err := s.activity.ListExpired(ctx, now, 10)
		require.NoError(t, err)
		assert.Contains(t, ids, expired.ActivityLogID)
		assert.NotContains(t, ids, kept.ActivityLogID)

		n, err := s.activity.PurgeExpired(ctx, append(ids, kept.ActivityLogID), now)
		require.NoError(t, err)
		assert.Equal(t, int64(len(ids)), n)

		_, err = s.activity.Get(ctx, expired.ActivityLogID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		_, err = s.activity.Get(ctx, kept.ActivityLogID)
		assert.NoError(t, err)
	})
}

func ptr[T any](v T) *T { return &v }
