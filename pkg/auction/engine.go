// Package auction is the engine facade the request layer talks to.
// It validates what can be validated without store state, delegates the
// transactional work to the storage backend, retries serialization
// conflicts, and publishes domain events after successful commits.
package auction

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/bidbazaar/auction-engine/pkg/events"
	"github.com/bidbazaar/auction-engine/pkg/models"
	"github.com/bidbazaar/auction-engine/pkg/storage"
	"github.com/shopspring/decimal"
)

// maxConflictRetries bounds how often a conflicted operation is re-run.
// Each retry re-executes the full validate-and-write transaction.
const maxConflictRetries = 3

// Engine wires the storage contract and the event publisher together.
type Engine struct {
	store     storage.Storage
	publisher events.Publisher
	logger    *slog.Logger
}

// New creates an Engine. A nil logger falls back to slog.Default.
func New(store storage.Storage, publisher events.Publisher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, publisher: publisher, logger: logger}
}

// CreateProduct validates the reserve price and persists a new listing.
func (e *Engine) CreateProduct(ctx context.Context, ownerID int64, title, description string, reservePrice decimal.Decimal) (*models.Product, error) {
	if !reservePrice.IsPositive() {
		return nil, storage.ErrInvalidAmount
	}
	if strings.TrimSpace(title) == "" {
		return nil, errors.New("product title must not be empty")
	}

	return e.store.CreateProduct(ctx, &models.Product{
		OwnerID:      ownerID,
		Title:        title,
		Description:  description,
		ReservePrice: reservePrice,
	})
}

// GetProduct retrieves a product by ID.
func (e *Engine) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	return e.store.GetProduct(ctx, productID)
}

// ListProducts retrieves all products, newest first.
func (e *Engine) ListProducts(ctx context.Context) ([]models.Product, error) {
	return e.store.ListProducts(ctx)
}

// SubmitBid places or replaces a bidder's standing bid on a product.
// Validation happens inside the store transaction so the checks run in
// a fixed order against current state: product exists, not sold, amount
// positive, amount at or above reserve, bidder is not the owner.
func (e *Engine) SubmitBid(ctx context.Context, productID, bidderID int64, amount decimal.Decimal) (*models.Bid, error) {
	var bid *models.Bid
	err := e.withConflictRetry(ctx, "submit_bid", func() error {
		var err error
		bid, err = e.store.SubmitBid(ctx, productID, bidderID, amount)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, events.NewBidPlaced(bid))
	return bid, nil
}

// AcceptBid settles the product against the chosen bidder's standing bid.
func (e *Engine) AcceptBid(ctx context.Context, productID, actingUserID, bidderID int64) (*models.Sale, error) {
	var sale *models.Sale
	err := e.withConflictRetry(ctx, "accept_bid", func() error {
		var err error
		sale, err = e.store.AcceptBid(ctx, productID, actingUserID, bidderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, events.NewSaleSettled(sale))
	return sale, nil
}

// ListBids returns the bid book for the seller's review view.
func (e *Engine) ListBids(ctx context.Context, productID int64) ([]models.Bid, error) {
	return e.store.ListBids(ctx, productID)
}

// BidderStatus returns the caller's own standing bid, if any.
func (e *Engine) BidderStatus(ctx context.Context, productID, bidderID int64) (*models.Bid, error) {
	return e.store.GetBid(ctx, productID, bidderID)
}

// SaleSummary returns the sale record for a settled product.
func (e *Engine) SaleSummary(ctx context.Context, productID int64) (*models.Sale, error) {
	return e.store.GetSale(ctx, productID)
}

// withConflictRetry re-runs op while it reports a serialization
// conflict. Every attempt is a full fresh transaction; no state
// carries over between attempts. All other errors are terminal.
func (e *Engine) withConflictRetry(ctx context.Context, opName string, op func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = op()
		if !errors.Is(err, storage.ErrTransactionConflict) {
			return err
		}
		if attempt >= maxConflictRetries {
			return err
		}

		e.logger.Debug("retrying after transaction conflict", "op", opName, "attempt", attempt+1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 10 * time.Millisecond):
		}
	}
}

// publish sends a domain event best-effort. A publish failure is logged
// and never surfaced: the commit already happened and must stand.
func (e *Engine) publish(ctx context.Context, ev events.Event) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.logger.Error("failed to publish event", "type", ev.Type, "product_id", ev.ProductID, "error", err)
	}
}
