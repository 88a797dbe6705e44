package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bidbazaar/auction-engine/pkg/models"
	"github.com/bidbazaar/auction-engine/pkg/storage"
	"github.com/shopspring/decimal"
)

// CreateProduct persists a new open listing and assigns its numeric ID.
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	now := time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO products (owner_id, title, description, reserve_price, sold, version, created_at)
		VALUES (?, ?, ?, ?, 0, 1, ?)
	`,
		product.OwnerID,
		product.Title,
		product.Description,
		product.ReservePrice.String(),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", mapLockErr(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted product id: %w", err)
	}

	created := *product
	created.ID = id
	created.Sold = false
	created.Version = 1
	created.CreatedAt = now
	return &created, nil
}

// GetProduct retrieves a product by its ID.
func (s *Store) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, description, reserve_price, sold, version, created_at
		FROM products WHERE id = ?
	`, productID)

	product, err := scanProduct(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// ListProducts retrieves all products, newest first.
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, description, reserve_price, sold, version, created_at
		FROM products ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// scanProduct reads a product row from any Scan-shaped source.
func scanProduct(scan func(dest ...any) error) (*models.Product, error) {
	var (
		product   models.Product
		reserve   string
		sold      int
		createdAt string
	)
	if err := scan(&product.ID, &product.OwnerID, &product.Title, &product.Description, &reserve, &sold, &product.Version, &createdAt); err != nil {
		return nil, err
	}

	reservePrice, err := decimal.NewFromString(reserve)
	if err != nil {
		return nil, fmt.Errorf("corrupt reserve price %q: %w", reserve, err)
	}
	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt created_at %q: %w", createdAt, err)
	}

	product.ReservePrice = reservePrice
	product.Sold = sold != 0
	product.CreatedAt = created
	return &product, nil
}
