package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"campus-market/internal/domain"
	"campus-market/internal/repository"
)

const createProductsTable = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	price REAL NOT NULL,
	category TEXT NOT NULL,
	image TEXT NOT NULL DEFAULT '',
	seller_id TEXT NOT NULL,
	seller_name TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NULL,
	deleted_at DATETIME NULL
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
CREATE INDEX IF NOT EXISTS idx_products_seller ON products(seller_id);
`

const productColumns = `id, title, description, price, category, image, seller_id, seller_name, status, created_at, updated_at, deleted_at`

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createProductsTable); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}
	return nil
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO products (`+productColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Title,
		product.Description,
		product.Price,
		string(product.Category),
		product.Image,
		product.SellerID,
		product.SellerName,
		string(product.Status),
		product.CreatedAt,
		product.UpdatedAt,
		product.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+productColumns+`
FROM products
WHERE id = ?`,
		id,
	)
	return scanProduct(row)
}

func (r *ProductRepository) ListActive(ctx context.Context) ([]domain.Product, error) {
	return r.query(ctx, `
SELECT `+productColumns+`
FROM products
WHERE status = ?
ORDER BY created_at DESC`,
		string(domain.ProductStatusActive),
	)
}

func (r *ProductRepository) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	return r.query(ctx, `
SELECT `+productColumns+`
FROM products
WHERE status = ? AND category = ?
ORDER BY created_at DESC`,
		string(domain.ProductStatusActive),
		string(category),
	)
}

func (r *ProductRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Product, error) {
	return r.query(ctx, `
SELECT `+productColumns+`
FROM products
WHERE seller_id = ?
ORDER BY created_at DESC`,
		sellerID,
	)
}

func (r *ProductRepository) Search(ctx context.Context, query string, category *domain.Category) ([]domain.Product, error) {
	term := "%" + escapeLike(strings.ToLower(strings.TrimSpace(query))) + "%"
	sqlQuery := `
SELECT ` + productColumns + `
FROM products
WHERE status = ?
AND (LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`
	args := []any{string(domain.ProductStatusActive), term, term}
	if category != nil {
		sqlQuery += ` AND category = ?`
		args = append(args, string(*category))
	}
	sqlQuery += ` ORDER BY created_at DESC`
	return r.query(ctx, sqlQuery, args...)
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE products
SET title = ?, description = ?, price = ?, category = ?, image = ?,
    seller_name = ?, status = ?, updated_at = ?, deleted_at = ?
WHERE id = ?`,
		product.Title,
		product.Description,
		product.Price,
		string(product.Category),
		product.Image,
		product.SellerName,
		string(product.Status),
		product.UpdatedAt,
		product.DeletedAt,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Latest(ctx context.Context, limit int) ([]domain.Product, error) {
	return r.query(ctx, `
SELECT `+productColumns+`
FROM products
WHERE status = ?
ORDER BY created_at DESC
LIMIT ?`,
		string(domain.ProductStatusActive),
		limit,
	)
}

func (r *ProductRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func (r *ProductRepository) query(ctx context.Context, sqlQuery string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

func scanProduct(row interface {
	Scan(dest ...any) error
}) (*domain.Product, error) {
	var (
		product  domain.Product
		category string
		status   string
	)
	if err := row.Scan(
		&product.ID,
		&product.Title,
		&product.Description,
		&product.Price,
		&category,
		&product.Image,
		&product.SellerID,
		&product.SellerName,
		&status,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.DeletedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	product.Category = domain.Category(category)
	product.Status = domain.ProductStatus(status)
	return &product, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
