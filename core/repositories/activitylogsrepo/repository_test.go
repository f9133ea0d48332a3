package activitylogsrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/activitylogsrepo"
	"github.com/jrazmi/helix/sdk/logger"
)

type fakeStore struct {
	activitylogsrepo.Storer

	appended    []activitylogsrepo.NewActivityLog
	recentLimit int
	purged      []string
}

func (f *fakeStore) Append(_ context.Context, entry activitylogsrepo.NewActivityLog) (activitylogsrepo.ActivityLog, error) {
	f.appended = append(f.appended, entry)
	return activitylogsrepo.ActivityLog{ActivityLogID: uuid.NewString(), Action: entry.Action, Outcome: entry.Outcome}, nil
}

func (f *fakeStore) AppendMany(_ context.Context, entries []activitylogsrepo.NewActivityLog) (int64, error) {
	f.appended = append(f.appended, entries...)
	return int64(len(entries)), nil
}

func (f *fakeStore) ListRecent(_ context.Context, _ string, limit int) ([]activitylogsrepo.ActivityLog, error) {
	f.recentLimit = limit
	return nil, nil
}

func (f *fakeStore) PurgeExpired(_ context.Context, ids []string, _ time.Time) (int64, error) {
	f.purged = append(f.purged, ids...)
	return int64(len(ids)), nil
}

func entry() activitylogsrepo.NewActivityLog {
	return activitylogsrepo.NewActivityLog{
		UserProfileID: uuid.NewString(),
		Action:        "login",
		Outcome:       activitylogsrepo.OutcomeSuccess,
	}
}

func TestAppendDefaults(t *testing.T) {
	store := &fakeStore{}
	repo := activitylogsrepo.NewRepository(logger.NewDiscard(), store, activitylogsrepo.WithDefaultRetention(24*time.Hour))

	_, err := repo.Append(context.Background(), entry())
	require.NoError(t, err)

	got := store.appended[0]
	require.NotNil(t, got.OccurredAt)
	require.NotNil(t, got.RetentionDate)
	assert.Equal(t, 24*time.Hour, got.RetentionDate.Sub(*got.OccurredAt))

	keep := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	e := entry()
	e.RetentionDate = &keep
	_, err = repo.Append(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, keep, *store.appended[1].RetentionDate)
}

func TestAppendWithoutRetention(t *testing.T) {
	store := &fakeStore{}
	repo := activitylogsrepo.NewRepository(logger.NewDiscard(), store)

	_, err := repo.Append(context.Background(), entry())
	require.NoError(t, err)
	assert.Nil(t, store.appended[0].RetentionDate)
}

func TestAppendValidation(t *testing.T) {
	repo := activitylogsrepo.NewRepository(logger.NewDiscard(), &fakeStore{})

	bad := "999.1.1.1"
	e := entry()
	e.IPAddress = &bad
	_, err := repo.Append(context.Background(), e)
	assert.ErrorIs(t, err, repositories.ErrValidation)

	e = entry()
	e.Outcome = "MAYBE"
	_, err = repo.Append(context.Background(), e)
	assert.ErrorIs(t, err, repositories.ErrValidation)
}

func TestAppendManyStopsOnInvalidEntry(t *testing.T) {
	store := &fakeStore{}
	repo := activitylogsrepo.NewRepository(logger.NewDiscard(), store)

	entries := []activitylogsrepo.NewActivityLog{entry(), entry()}
	entries[1].Action = ""
	_, err := repo.AppendMany(context.Background(), entries)
	assert.ErrorIs(t, err, repositories.ErrValidation)
	assert.Empty(t, store.appended)

	n, err := repo.AppendMany(context.Background(), []activitylogsrepo.NewActivityLog{entry(), entry(), entry()})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestListRecentLimit(t *testing.T) {
	store := &fakeStore{}
	repo := activitylogsrepo.NewRepository(logger.NewDiscard(), store)

	_, err := repo.ListRecent(context.Background(), uuid.NewString(), 0)
	require.NoError(t, err)
	assert.Equal(t, activitylogsrepo.DefaultRecentLimit, store.recentLimit)

	_, err = repo.ListRecent(context.Background(), uuid.NewString(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, store.recentLimit)
}

func TestExpiry(t *testing.T) {
	store := &fakeStore{}
	repo := activitylogsrepo.NewRepository(logger.NewDiscard(), store)

	_, err := repo.ListExpired(context.Background(), time.Now(), 0)
	assert.ErrorIs(t, err, repositories.ErrValidation)

	n, err := repo.PurgeExpired(context.Background(), nil, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.purged)
}

func TestDeleteRefused(t *testing.T) {
	repo := activitylogsrepo.NewRepository(logger.NewDiscard(), &fakeStore{})

	err := repo.Delete(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, repositories.ErrOperationNotSupported)
}
