package assetassignmentsrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/assetassignmentsrepo"
	"github.com/jrazmi/helix/sdk/logger"
)

type fakeStore struct {
	assetassignmentsrepo.Storer

	unassigned []assetassignmentsrepo.Unassignment
	updates    int
	released   map[string]bool
}

func (f *fakeStore) Create(_ context.Context, input assetassignmentsrepo.CreateAssetAssignment) (assetassignmentsrepo.AssetAssignment, error) {
	return assetassignmentsrepo.AssetAssignment{
		AssetAssignmentID: uuid.NewString(),
		UserProfileID:     input.UserProfileID,
		AssetID:           input.AssetID,
		AssetType:         input.AssetType,
		Status:            assetassignmentsrepo.StatusAssigned,
	}, nil
}

func (f *fakeStore) Update(_ context.Context, id string, input assetassignmentsrepo.UpdateAssetAssignment) (assetassignmentsrepo.AssetAssignment, error) {
	if input.Status != nil && f.released[id] {
		return assetassignmentsrepo.AssetAssignment{}, repositories.ErrInvalidTransition
	}
	f.updates++
	return assetassignmentsrepo.AssetAssignment{AssetAssignmentID: id}, nil
}

func (f *fakeStore) Unassign(_ context.Context, id string, input assetassignmentsrepo.Unassignment) (assetassignmentsrepo.AssetAssignment, error) {
	f.unassigned = append(f.unassigned, input)
	f.released[id] = true
	return assetassignmentsrepo.AssetAssignment{
		AssetAssignmentID: id,
		Status:            input.Status,
		UnassignedAt:      input.UnassignedAt,
	}, nil
}

func newRepo() (*assetassignmentsrepo.Repository, *fakeStore) {
	store := &fakeStore{released: map[string]bool{}}
	return assetassignmentsrepo.NewRepository(logger.NewDiscard(), store), store
}

func TestCreateValidation(t *testing.T) {
	repo, _ := newRepo()
	in := assetassignmentsrepo.CreateAssetAssignment{
		UserProfileID: uuid.NewString(),
		AssetID:       "LT-0042",
		AssetName:     "ThinkPad X1",
		AssetType:     assetassignmentsrepo.AssetLaptop,
	}

	got, err := repo.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, assetassignmentsrepo.StatusAssigned, got.Status)

	in.AssetType = "TOASTER"
	_, err = repo.Create(context.Background(), in)
	assert.ErrorIs(t, err, repositories.ErrValidation)

	in.AssetType = assetassignmentsrepo.AssetLaptop
	in.Metadata = []byte(`{broken`)
	_, err = repo.Create(context.Background(), in)
	assert.ErrorIs(t, err, repositories.ErrValidation)
}

func TestUpdateRejectsReleasingStatus(t *testing.T) {
	repo, store := newRepo()
	lost := assetassignmentsrepo.StatusLost

	_, err := repo.Update(context.Background(), uuid.NewString(), assetassignmentsrepo.UpdateAssetAssignment{Status: &lost})
	assert.ErrorIs(t, err, repositories.ErrInvalidTransition)

	pending := assetassignmentsrepo.StatusPendingReturn
	_, err = repo.Update(context.Background(), uuid.NewString(), assetassignmentsrepo.UpdateAssetAssignment{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, 1, store.updates)
}

func TestUpdateStatusAfterUnassign(t *testing.T) {
	repo, store := newRepo()
	id := uuid.NewString()

	_, err := repo.Unassign(context.Background(), id, assetassignmentsrepo.Unassignment{Status: assetassignmentsrepo.StatusReturned})
	require.NoError(t, err)

	for _, status := range []assetassignmentsrepo.AssetStatus{assetassignmentsrepo.StatusAssigned, assetassignmentsrepo.StatusPendingReturn} {
		_, err = repo.Update(context.Background(), id, assetassignmentsrepo.UpdateAssetAssignment{Status: &status})
		assert.ErrorIs(t, err, repositories.ErrInvalidTransition, status)
	}
	assert.Zero(t, store.updates)

	_, err = repo.Update(context.Background(), id, assetassignmentsrepo.UpdateAssetAssignment{Notes: ptr("returned to IT desk")})
	require.NoError(t, err)
	assert.Equal(t, 1, store.updates)
}

func TestUnassign(t *testing.T) {
	repo, store := newRepo()
	id := uuid.NewString()

	_, err := repo.Unassign(context.Background(), id, assetassignmentsrepo.Unassignment{Status: assetassignmentsrepo.StatusAssigned})
	assert.ErrorIs(t, err, repositories.ErrInvalidTransition)
	assert.Empty(t, store.unassigned)

	before := time.Now().UTC()
	got, err := repo.Unassign(context.Background(), id, assetassignmentsrepo.Unassignment{Status: assetassignmentsrepo.StatusReturned})
	require.NoError(t, err)
	require.NotNil(t, got.UnassignedAt)
	assert.False(t, got.UnassignedAt.Before(before))

	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.FixedZone("CET", 3600))
	got, err = repo.Unassign(context.Background(), id, assetassignmentsrepo.Unassignment{Status: assetassignmentsrepo.StatusStolen, UnassignedAt: &at})
	require.NoError(t, err)
	assert.True(t, got.UnassignedAt.Equal(at))
	assert.Equal(t, time.UTC, got.UnassignedAt.Location())
}

func TestReleased(t *testing.T) {
	for _, s := range []assetassignmentsrepo.AssetStatus{
		assetassignmentsrepo.StatusUnassigned,
		assetassignmentsrepo.StatusReturned,
		assetassignmentsrepo.StatusLost,
		assetassignmentsrepo.StatusStolen,
		assetassignmentsrepo.StatusDamaged,
	} {
		assert.True(t, s.Released(), s)
	}
	assert.False(t, assetassignmentsrepo.StatusAssigned.Released())
	assert.False(t, assetassignmentsrepo.StatusPendingReturn.Released())
}

func TestDeleteManyRequiresFilter(t *testing.T) {
	repo, _ := newRepo()
	_, err := repo.DeleteMany(context.Background(), assetassignmentsrepo.AssetAssignmentFilter{})
	assert.ErrorIs(t, err, repositories.ErrEmptyFilter)
}

func ptr[T any](v T) *T { return &v }
