package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-market/internal/domain"
	"campus-market/internal/kvstore"
	"campus-market/internal/repository"
	"campus-market/internal/repository/sqlite"
	"campus-market/internal/session"
)

func setupProductService(t *testing.T) (ProductService, repository.ProductRepository) {
	t.Helper()
	db := setupDB(t)
	ctx := context.Background()

	products := sqlite.NewProductRepository(db)
	require.NoError(t, products.Init(ctx))

	svc := NewProductService(products, DefaultPriceCeiling,
		WithProductClock(testClock()),
		WithProductIDGenerator(testIDs("p")),
	)
	return svc, products
}

func amitSession() *domain.Session {
	return &domain.Session{
		ID:     "sess-amit",
		UserID: "user-amit",
		Name:   "Amit Kumar",
		Email:  "amit@x.com",
	}
}

func priyaSession() *domain.Session {
	return &domain.Session{
		ID:     "sess-priya",
		UserID: "user-priya",
		Name:   "Priya Singh",
		Email:  "priya@x.com",
	}
}

func lampInput() ProductInput {
	return ProductInput{
		Title:       "Desk Lamp",
		Description: "Barely used desk lamp",
		Price:       300,
		Category:    domain.CategoryHostel,
	}
}

func TestAddRequiresSession(t *testing.T) {
	svc, _ := setupProductService(t)

	_, err := svc.Add(context.Background(), nil, lampInput())
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAddSnapshotsSeller(t *testing.T) {
	svc, _ := setupProductService(t)
	ctx := context.Background()

	product, err := svc.Add(ctx, amitSession(), lampInput())
	require.NoError(t, err)
	assert.Equal(t, "user-amit", product.SellerID)
	assert.Equal(t, "Amit Kumar", product.SellerName)
	assert.Equal(t, domain.ProductStatusActive, product.Status)
	assert.False(t, product.CreatedAt.IsZero())
}

func TestAddValidation(t *testing.T) {
	svc, _ := setupProductService(t)
	ctx := context.Background()
	sess := amitSession()

	tests := []struct {
		name        string
		mutate      func(*ProductInput)
		wantMessage string
	}{
		{"empty title", func(in *ProductInput) { in.Title = "  " }, "Product title is required"},
		{"short title", func(in *ProductInput) { in.Title = "ab" }, "Product title must be at least 3 characters long"},
		{"long title", func(in *ProductInput) { in.Title = strings.Repeat("a", 101) }, "Product title must be less than 100 characters"},
		{"empty description", func(in *ProductInput) { in.Description = "" }, "Product description is required"},
		{"short description", func(in *ProductInput) { in.Description = "too short" }, "Product description must be at least 10 characters long"},
		{"zero price", func(in *ProductInput) { in.Price = 0 }, "Please enter a valid price"},
		{"negative price", func(in *ProductInput) { in.Price = -5 }, "Please enter a valid price"},
		{"price above ceiling", func(in *ProductInput) { in.Price = 1000001 }, "Price cannot exceed 1,000,000"},
		{"bad category", func(in *ProductInput) { in.Category = "vehicles" }, "Please select a valid category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := lampInput()
			tt.mutate(&in)
			_, err := svc.Add(ctx, sess, in)
			require.Error(t, err)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantMessage, verr.Message)
		})
	}
}

func TestAddPriceBoundaries(t *testing.T) {
	svc, _ := setupProductService(t)
	ctx := context.Background()

	in := lampInput()
	in.Price = 999999
	_, err := svc.Add(ctx, amitSession(), in)
	require.NoError(t, err)

	in.Price = 1000000
	_, err = svc.Add(ctx, amitSession(), in)
	require.NoError(t, err)
}

func TestUpdateOwnershipAndValidation(t *testing.T) {
	svc, _ := setupProductService(t)
	ctx := context.Background()

	product, err := svc.Add(ctx, amitSession(), lampInput())
	require.NoError(t, err)

	newTitle := "Desk Lamp (white)"
	_, err = svc.Update(ctx, priyaSession(), product.ID, domain.ProductPatch{Title: &newTitle})
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Update(ctx, nil, product.ID, domain.ProductPatch{Title: &newTitle})
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = svc.Update(ctx, amitSession(), "ghost", domain.ProductPatch{Title: &newTitle})
	require.ErrorIs(t, err, domain.ErrNotFound)

	// merged fields are re-validated
	badTitle := "ab"
	_, err = svc.Update(ctx, amitSession(), product.ID, domain.ProductPatch{Title: &badTitle})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	updated, err := svc.Update(ctx, amitSession(), product.ID, domain.ProductPatch{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	require.NotNil(t, updated.UpdatedAt)
}

func TestDeleteByNonOwnerLeavesProduct(t *testing.T) {
	svc, _ := setupProductService(t)
	ctx := context.Background()

	product, err := svc.Add(ctx, amitSession(), lampInput())
	require.NoError(t, err)

	err = svc.Delete(ctx, priyaSession(), product.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	got, err := svc.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProductStatusActive, got.Status)
}

func TestDeleteByOwnerSoftDeletes(t *testing.T) {
	svc, _ := setupProductService(t)
	ctx := context.Background()
	sess := amitSession()

	product, err := svc.Add(ctx, sess, lampInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, sess, product.ID))

	// gone from public listings and search
	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	found, err := svc.Search(ctx, "lamp", nil)
	require.NoError(t, err)
	assert.Empty(t, found)

	// still retrievable by id and visible to the seller
	got, err := svc.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProductStatusDeleted, got.Status)
	require.NotNil(t, got.DeletedAt)

	mine, err := svc.GetBySeller(ctx, sess.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	// deleting again is a no-op
	require.NoError(t, svc.Delete(ctx, sess, product.ID))
}

func TestSearchCaseInsensitive(t *testing.T) {
	svc, _ := setupProductService(t)
	ctx := context.Background()
	sess := amitSession()

	phone := lampInput()
	phone.Title = "iPhone 12 Pro"
	phone.Description = "Excellent condition, 128GB."
	phone.Category = domain.CategoryElectronics
	created, err := svc.Add(ctx, sess, phone)
	require.NoError(t, err)

	_, err = svc.Add(ctx, sess, lampInput())
	require.NoError(t, err)

	found, err := svc.Search(ctx, "iphone", nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, created.ID, found[0].ID)
}

func TestLatestOrderingAndDefault(t *testing.T) {
	svc, _ := setupProductService(t)
	ctx := context.Background()
	sess := amitSession()

	var last *domain.Product
	for i := 0; i < 8; i++ {
		product, err := svc.Add(ctx, sess, lampInput())
		require.NoError(t, err)
		last = product
	}

	latest, err := svc.Latest(ctx, 0) // default limit
	require.NoError(t, err)
	require.Len(t, latest, 6)
	assert.Equal(t, last.ID, latest[0].ID)

	latest, err = svc.Latest(ctx, 3)
	require.NoError(t, err)
	require.Len(t, latest, 3)
}

func TestMarketplaceScenario(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	users := sqlite.NewUserRepository(db)
	require.NoError(t, users.Init(ctx))
	products := sqlite.NewProductRepository(db)
	require.NoError(t, products.Init(ctx))

	store := kvstore.NewSQLiteStore(db)
	require.NoError(t, store.Init(ctx))
	sessions := session.NewManager(store)

	userSvc := NewUserService(users, sessions,
		WithUserClock(testClock()),
		WithUserIDGenerator(testIDs("u")),
	)
	productSvc := NewProductService(products, DefaultPriceCeiling,
		WithProductClock(testClock()),
		WithProductIDGenerator(testIDs("p")),
	)

	_, err := userSvc.Register(ctx, "Amit Kumar", "Amit@X.com", "secret1", "secret1")
	require.NoError(t, err)

	sess, err := userSvc.Login(ctx, "amit@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Amit Kumar", sess.Name)

	product, err := productSvc.Add(ctx, sess, ProductInput{
		Title:       "Desk Lamp",
		Description: "Barely used desk lamp",
		Price:       300,
		Category:    domain.CategoryHostel,
	})
	require.NoError(t, err)
	assert.Equal(t, "Amit Kumar", product.SellerName)
	assert.Equal(t, domain.ProductStatusActive, product.Status)

	other, err := userSvc.Register(ctx, "Priya Singh", "priya@x.com", "secret1", "secret1")
	require.NoError(t, err)

	err = productSvc.Delete(ctx, other, product.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)
}
