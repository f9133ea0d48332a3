package userticketsrepo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrazmi/helix/core/repositories"
	"github.com/jrazmi/helix/core/repositories/userticketsrepo"
	"github.com/jrazmi/helix/sdk/logger"
)

type fakeStore struct {
	userticketsrepo.Storer

	keys    []userticketsrepo.TicketKey
	batches [][]userticketsrepo.CreateUserTicket
}

func (f *fakeStore) GetByKey(_ context.Context, key userticketsrepo.TicketKey) (userticketsrepo.UserTicket, error) {
	f.keys = append(f.keys, key)
	return userticketsrepo.UserTicket{}, repositories.ErrNotFound
}

func (f *fakeStore) CreateMany(_ context.Context, inputs []userticketsrepo.CreateUserTicket) ([]userticketsrepo.UserTicket, error) {
	f.batches = append(f.batches, inputs)
	out := make([]userticketsrepo.UserTicket, len(inputs))
	for i, in := range inputs {
		out[i] = userticketsrepo.UserTicket{UserTicketID: uuid.NewString(), TicketID: in.TicketID, Relationship: in.Relationship}
	}
	return out, nil
}

func newRepo() (*userticketsrepo.Repository, *fakeStore) {
	store := &fakeStore{}
	return userticketsrepo.NewRepository(logger.NewDiscard(), store), store
}

func TestGetByKey(t *testing.T) {
	repo, store := newRepo()

	_, err := repo.GetByKey(context.Background(), userticketsrepo.TicketKey{TicketID: "INC-1", Relationship: userticketsrepo.RelationshipWatcher})
	assert.ErrorIs(t, err, repositories.ErrValidation)
	assert.Empty(t, store.keys)

	_, err = repo.GetByKey(context.Background(), userticketsrepo.TicketKey{
		UserProfileID: uuid.NewString(),
		TicketID:      "INC-1",
		Relationship:  userticketsrepo.RelationshipWatcher,
	})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.Len(t, store.keys, 1)
}

func TestCreateMany(t *testing.T) {
	repo, store := newRepo()
	user := uuid.NewString()

	got, err := repo.CreateMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, store.batches)

	got, err = repo.CreateMany(context.Background(), []userticketsrepo.CreateUserTicket{
		{UserProfileID: user, TicketID: "INC-1", Relationship: userticketsrepo.RelationshipRequester},
		{UserProfileID: user, TicketID: "INC-1", Relationship: userticketsrepo.RelationshipApprover},
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = repo.CreateMany(context.Background(), []userticketsrepo.CreateUserTicket{
		{UserProfileID: user, TicketID: "INC-2", Relationship: "OWNER"},
	})
	assert.ErrorIs(t, err, repositories.ErrValidation)
	assert.Len(t, store.batches, 1)
}

func TestUpdateRequiresChanges(t *testing.T) {
	repo, _ := newRepo()
	_, err := repo.Update(context.Background(), uuid.NewString(), userticketsrepo.UpdateUserTicket{})
	assert.ErrorIs(t, err, repositories.ErrNoChanges)
}
