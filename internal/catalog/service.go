// Package catalog answers read-only browsing queries.
package catalog

import (
	"context"

	"github.com/m3rciful/shopbot/internal/models"
	"github.com/m3rciful/shopbot/internal/storage"
)

// Store is the persistence surface the service needs.
type Store interface {
	Categories(ctx context.Context) ([]models.Category, error)
	SubCategories(ctx context.Context, categoryID int64) ([]models.SubCategory, error)
	ProductsWithQuantities(ctx context.Context, subCategoryID, tgID int64) ([]storage.ProductQuantity, error)
}

// Service exposes the catalog tree to the bot surface.
type Service struct {
	store Store
}

// NewService wires the catalog service to its store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Categories lists the catalog roots.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return s.store.Categories(ctx)
}

// SubCategories lists one category's children.
func (s *Service) SubCategories(ctx context.Context, categoryID int64) ([]models.SubCategory, error) {
	return s.store.SubCategories(ctx, categoryID)
}

// Page returns one page of a subcategory's products with the viewer's cart
// quantities, plus the total page count.
func (s *Service) Page(ctx context.Context, subCategoryID, tgID int64, page, pageSize int) ([]storage.ProductQuantity, int, error) {
	all, err := s.store.ProductsWithQuantities(ctx, subCategoryID, tgID)
	if err != nil {
		return nil, 0, err
	}
	if pageSize <= 0 {
		pageSize = 5
	}
	totalPages := (len(all) + pageSize - 1) / pageSize
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return nil, totalPages, nil
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], totalPages, nil
}
