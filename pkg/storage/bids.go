package storage

import (
	"context"

	"github.com/bidbazaar/auction-engine/pkg/models"
	"github.com/shopspring/decimal"
)

// BidReader defines the interface for reading standing bids.
type BidReader interface {
	// GetBid retrieves a bidder's standing bid on a product.
	// Returns ErrBidNotFound when the bidder has no standing bid.
	GetBid(ctx context.Context, productID, bidderID int64) (*models.Bid, error)

	// ListBids retrieves every standing bid on a product, ordered by
	// amount descending with ties broken by earliest submission time.
	ListBids(ctx context.Context, productID int64) ([]models.Bid, error)
}

// BidBook defines the interface for submitting bids. At most one bid
// stands per (product, bidder); a repeat submission replaces it.
type BidBook interface {
	BidReader

	// SubmitBid validates and upserts a bid. Validation runs inside the
	// same transaction as the write, in this order: product exists,
	// product not sold, amount positive, amount >= reserve, bidder is
	// not the owner. The first failing check decides the error.
	SubmitBid(ctx context.Context, productID, bidderID int64, amount decimal.Decimal) (*models.Bid, error)
}
