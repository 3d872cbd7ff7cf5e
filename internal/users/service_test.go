package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/shoperr"
)

type fakeStore struct {
	known    map[int64]*models.User
	inserted []models.User
	getErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{known: make(map[int64]*models.User)}
}

func (f *fakeStore) UserByTgID(_ context.Context, tgID int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.known[tgID]
	if !ok {
		return nil, shoperr.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) InsertUser(_ context.Context, u *models.User) error {
	f.inserted = append(f.inserted, *u)
	f.known[u.TgID] = u
	return nil
}

func (f *fakeStore) AllTgIDs(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(f.known))
	for id := range f.known {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestEnsureRegistersNewUser(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	err := svc.Ensure(context.Background(), models.User{TgID: 7, Username: "alice"})
	require.NoError(t, err)
	require.Len(t, store.inserted, 1)
	require.Equal(t, "alice", store.inserted[0].Username)
}

func TestEnsureSkipsKnownUser(t *testing.T) {
	store := newFakeStore()
	store.known[7] = &models.User{TgID: 7}
	svc := NewService(store)

	err := svc.Ensure(context.Background(), models.User{TgID: 7})
	require.NoError(t, err)
	require.Empty(t, store.inserted)
}

func TestEnsurePropagatesLookupError(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("db down")
	svc := NewService(store)

	err := svc.Ensure(context.Background(), models.User{TgID: 7})
	require.Error(t, err)
	require.Empty(t, store.inserted)
}
