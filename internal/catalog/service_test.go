package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/storage"
)

type fakeStore struct {
	products []storage.ProductQuantity
}

func (f *fakeStore) Categories(_ context.Context) ([]models.Category, error) {
	return nil, nil
}

func (f *fakeStore) SubCategories(_ context.Context, _ int64) ([]models.SubCategory, error) {
	return nil, nil
}

func (f *fakeStore) ProductsWithQuantities(_ context.Context, _, _ int64) ([]storage.ProductQuantity, error) {
	return f.products, nil
}

func products(n int) []storage.ProductQuantity {
	out := make([]storage.ProductQuantity, n)
	for i := range out {
		out[i].Product.ID = int64(i + 1)
	}
	return out
}

func TestPageBounds(t *testing.T) {
	svc := NewService(&fakeStore{products: products(11)})

	page, total, err := svc.Page(context.Background(), 1, 7, 1, 5)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, page, 5)
	require.Equal(t, int64(1), page[0].Product.ID)

	page, total, err = svc.Page(context.Background(), 1, 7, 3, 5)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, page, 1)
	require.Equal(t, int64(11), page[0].Product.ID)
}

func TestPageBeyondEndIsEmpty(t *testing.T) {
	svc := NewService(&fakeStore{products: products(4)})

	page, total, err := svc.Page(context.Background(), 1, 7, 9, 5)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Empty(t, page)
}

func TestPageEmptySubcategory(t *testing.T) {
	svc := NewService(&fakeStore{})

	page, total, err := svc.Page(context.Background(), 1, 7, 1, 5)
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, page)
}
