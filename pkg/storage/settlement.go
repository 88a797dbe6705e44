package storage

import (
	"context"

	"github.com/bidbazaar/auction-engine/pkg/models"
)

// SettlementStore defines the privileged interface for settling a product.
// Settlement bundles three writes across three tables (mark the product
// sold, record the sale, clear the bid book) into a single atomic unit.
// It should only be exposed to the component responsible for settlement.
type SettlementStore interface {
	// AcceptBid atomically settles a product against one bidder's
	// standing bid. Validation runs fail-fast inside the transaction:
	// product exists, actingUserID owns it, product not sold, bid exists.
	// Concurrent attempts serialize: exactly one succeeds, the rest
	// observe ErrAlreadySold with zero side effects.
	AcceptBid(ctx context.Context, productID, actingUserID, bidderID int64) (*models.Sale, error)
}

// SaleReader defines the interface for reading settlement records.
type SaleReader interface {
	// GetSale retrieves the sale record for a product.
	// Returns ErrSaleNotFound when the product has not been sold.
	GetSale(ctx context.Context, productID int64) (*models.Sale, error)
}
