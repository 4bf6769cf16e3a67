package repository

import (
	"context"

	"campus-market/internal/domain"
)

// ProductRepository exposes persistence operations for Product listings.
// Listing queries exclude soft-deleted products unless stated otherwise;
// results come back newest first.
type ProductRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, product *domain.Product) error
	// Get returns the product regardless of status.
	Get(ctx context.Context, id string) (*domain.Product, error)
	ListActive(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error)
	// ListBySeller includes deleted products so sellers can still see them.
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Product, error)
	// Search matches query case-insensitively against title or description,
	// optionally narrowed to one category.
	Search(ctx context.Context, query string, category *domain.Category) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Latest(ctx context.Context, limit int) ([]domain.Product, error)
	CountAll(ctx context.Context) (int, error)
}
