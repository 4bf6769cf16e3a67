package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus-market/internal/domain"
	"campus-market/internal/repository"
	"campus-market/internal/validate"
)

// DefaultPriceCeiling caps listing prices when no ceiling is configured.
const DefaultPriceCeiling = 1_000_000

// ProductInput carries the user-supplied fields of a new listing.
type ProductInput struct {
	Title       string
	Description string
	Price       float64
	Category    domain.Category
	Image       string
}

// ProductService coordinates listing operations. Mutations take the caller's
// session explicitly; a nil session is rejected as unauthorized.
type ProductService interface {
	Add(ctx context.Context, sess *domain.Session, input ProductInput) (*domain.Product, error)
	GetAll(ctx context.Context) ([]domain.Product, error)
	GetByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySeller(ctx context.Context, sellerID string) ([]domain.Product, error)
	Search(ctx context.Context, query string, category *domain.Category) ([]domain.Product, error)
	Update(ctx context.Context, sess *domain.Session, id string, patch domain.ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, sess *domain.Session, id string) error
	Latest(ctx context.Context, limit int) ([]domain.Product, error)
}

type productService struct {
	products     repository.ProductRepository
	priceCeiling float64
	now          func() time.Time
	newID        func() string
}

// ProductOption overrides a productService collaborator, mainly for tests.
type ProductOption func(*productService)

func WithProductClock(now func() time.Time) ProductOption {
	return func(s *productService) { s.now = now }
}

func WithProductIDGenerator(gen func() string) ProductOption {
	return func(s *productService) { s.newID = gen }
}

func NewProductService(products repository.ProductRepository, priceCeiling float64, opts ...ProductOption) ProductService {
	if priceCeiling <= 0 {
		priceCeiling = DefaultPriceCeiling
	}
	s := &productService{
		products:     products,
		priceCeiling: priceCeiling,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *productService) Add(ctx context.Context, sess *domain.Session, input ProductInput) (*domain.Product, error) {
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := s.validateListing(input.Title, input.Description, input.Price, input.Category); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          s.newID(),
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Category:    input.Category,
		Image:       input.Image,
		SellerID:    sess.UserID,
		SellerName:  sess.Name,
		Status:      domain.ProductStatusActive,
		CreatedAt:   s.now(),
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) GetAll(ctx context.Context) ([]domain.Product, error) {
	return s.products.ListActive(ctx)
}

func (s *productService) GetByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	return s.products.ListByCategory(ctx, category)
}

func (s *productService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.Get(ctx, id)
}

func (s *productService) GetBySeller(ctx context.Context, sellerID string) ([]domain.Product, error) {
	return s.products.ListBySeller(ctx, sellerID)
}

func (s *productService) Search(ctx context.Context, query string, category *domain.Category) ([]domain.Product, error) {
	return s.products.Search(ctx, query, category)
}

func (s *productService) Update(ctx context.Context, sess *domain.Session, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if sess == nil {
		return nil, domain.ErrUnauthorized
	}
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.SellerID != sess.UserID {
		return nil, domain.ErrForbidden
	}

	if patch.Title != nil {
		product.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		product.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.Category != nil {
		product.Category = *patch.Category
	}
	if patch.Image != nil {
		product.Image = *patch.Image
	}

	// merged fields go through the same rules as a fresh listing
	if err := s.validateListing(product.Title, product.Description, product.Price, product.Category); err != nil {
		return nil, err
	}

	now := s.now()
	product.UpdatedAt = &now
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, sess *domain.Session, id string) error {
	if sess == nil {
		return domain.ErrUnauthorized
	}
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return err
	}
	if product.SellerID != sess.UserID {
		return domain.ErrForbidden
	}
	if product.Status == domain.ProductStatusDeleted {
		return nil
	}

	now := s.now()
	product.Status = domain.ProductStatusDeleted
	product.DeletedAt = &now
	return s.products.Update(ctx, product)
}

func (s *productService) Latest(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 6
	}
	return s.products.Latest(ctx, limit)
}

func (s *productService) validateListing(title, description string, price float64, category domain.Category) error {
	if err := validate.First(
		validate.Required("title", title, "Product title is required"),
		validate.MinLength("title", strings.TrimSpace(title), 3, "Product title must be at least 3 characters long"),
		validate.MaxLength("title", strings.TrimSpace(title), 100, "Product title must be less than 100 characters"),
		validate.Required("description", description, "Product description is required"),
		validate.MinLength("description", strings.TrimSpace(description), 10, "Product description must be at least 10 characters long"),
		validate.PositiveNumber("price", price, "Please enter a valid price"),
		validate.MaxNumber("price", price, s.priceCeiling, "Price cannot exceed 1,000,000"),
	); err != nil {
		return err
	}
	if !domain.ValidCategory(category) {
		return domain.NewValidationError("category", "Please select a valid category")
	}
	return nil
}
