package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/session"
	"github.com/m3rciful/shopbot/internal/storage"
)

type fakeStore struct {
	saved   [][]storage.QuantityChange
	saveErr error
	lines   []storage.CartLine
}

func (f *fakeStore) SaveQuantities(_ context.Context, _ int64, changes []storage.QuantityChange) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, changes)
	return nil
}

func (f *fakeStore) CartLines(_ context.Context, _ int64) ([]storage.CartLine, error) {
	return f.lines, nil
}

func TestFlushDeduplicatesLastWriteWins(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(store)

	entries := []session.Entry{
		{MessageID: 100, ProductID: 1, Quantity: 2},
		{MessageID: 101, ProductID: 2, Quantity: 1},
		{MessageID: 102, ProductID: 1, Quantity: 5},
	}
	require.NoError(t, m.Flush(context.Background(), 7, entries))

	require.Len(t, store.saved, 1)
	require.Equal(t, []storage.QuantityChange{
		{ProductID: 1, Quantity: 5},
		{ProductID: 2, Quantity: 1},
	}, store.saved[0])
}

func TestFlushZeroQuantityPassesThrough(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(store)

	entries := []session.Entry{{MessageID: 100, ProductID: 1, Quantity: 0}}
	require.NoError(t, m.Flush(context.Background(), 7, entries))

	require.Len(t, store.saved, 1)
	require.Equal(t, []storage.QuantityChange{{ProductID: 1, Quantity: 0}}, store.saved[0])
}

func TestFlushEmptyEntriesSkipsStore(t *testing.T) {
	store := &fakeStore{}
	m := NewManager(store)

	require.NoError(t, m.Flush(context.Background(), 7, nil))
	require.Empty(t, store.saved)
}

func TestFlushPropagatesStoreError(t *testing.T) {
	storeErr := errors.New("tx failed")
	store := &fakeStore{saveErr: storeErr}
	m := NewManager(store)

	entries := []session.Entry{{MessageID: 100, ProductID: 1, Quantity: 2}}
	err := m.Flush(context.Background(), 7, entries)
	require.ErrorIs(t, err, storeErr)
}
