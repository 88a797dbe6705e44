package storage

import (
	"context"

	"github.com/bidbazaar/auction-engine/pkg/models"
)

// ProductReader defines the interface for reading product state.
type ProductReader interface {
	// GetProduct retrieves a product by its ID.
	GetProduct(ctx context.Context, productID int64) (*models.Product, error)

	// ListProducts retrieves all products, newest first.
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// ProductLedger defines the interface for managing listing state.
// The sold flag is one-way: only the settlement operation may flip it,
// and nothing ever flips it back.
type ProductLedger interface {
	ProductReader

	// CreateProduct persists a new open listing and assigns its ID.
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
}
