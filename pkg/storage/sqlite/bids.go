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

// SubmitBid validates and upserts a bid inside a single transaction.
// The ON CONFLICT clause on the (product_id, bidder_id) primary key
// replaces an existing bid in place, so two concurrent submissions from
// the same bidder can never produce a duplicate row.
func (s *Store) SubmitBid(ctx context.Context, productID, bidderID int64, amount decimal.Decimal) (*models.Bid, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // No-op if committed

	// Re-validate against current product state inside the transaction,
	// not from any earlier snapshot.
	var (
		ownerID int64
		reserve string
		sold    int
	)
	err = tx.QueryRowContext(ctx, `
		SELECT owner_id, reserve_price, sold FROM products WHERE id = ?
	`, productID).Scan(&ownerID, &reserve, &sold)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to read product for bid: %w", err)
	}

	if sold != 0 {
		return nil, storage.ErrAlreadySold
	}
	if !amount.IsPositive() {
		return nil, storage.ErrInvalidAmount
	}
	reservePrice, err := decimal.NewFromString(reserve)
	if err != nil {
		return nil, fmt.Errorf("corrupt reserve price %q: %w", reserve, err)
	}
	if amount.Cmp(reservePrice) < 0 {
		return nil, storage.ErrBelowReserve
	}
	if bidderID == ownerID {
		return nil, storage.ErrSelfBidForbidden
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO bids (product_id, bidder_id, amount, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (product_id, bidder_id)
		DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at
	`,
		productID,
		bidderID,
		amount.String(),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert bid: %w", mapLockErr(err))
	}

	// Bump the product version so an in-flight settlement that read the
	// bid set before this write fails its compare-and-set and retries.
	if _, err := tx.ExecContext(ctx, `UPDATE products SET version = version + 1 WHERE id = ?`, productID); err != nil {
		return nil, fmt.Errorf("failed to bump product version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bid: %w", mapLockErr(err))
	}

	return &models.Bid{ProductID: productID, BidderID: bidderID, Amount: amount, UpdatedAt: now}, nil
}

// GetBid retrieves a bidder's standing bid on a product.
func (s *Store) GetBid(ctx context.Context, productID, bidderID int64) (*models.Bid, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT product_id, bidder_id, amount, updated_at
		FROM bids WHERE product_id = ? AND bidder_id = ?
	`, productID, bidderID)

	bid, err := scanBid(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrBidNotFound
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return bid, nil
}

// ListBids retrieves every standing bid on a product, amount descending,
// ties broken by earliest submission time.
func (s *Store) ListBids(ctx context.Context, productID int64) ([]models.Bid, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, bidder_id, amount, updated_at
		FROM bids WHERE product_id = ?
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		bid, err := scanBid(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, *bid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bids: %w", err)
	}

	// Amounts are exact decimal strings; ordering happens here rather
	// than in SQL so no float cast ever touches a price.
	models.SortBids(bids)
	return bids, nil
}

func scanBid(scan func(dest ...any) error) (*models.Bid, error) {
	var (
		bid       models.Bid
		amount    string
		updatedAt string
	)
	if err := scan(&bid.ProductID, &bid.BidderID, &amount, &updatedAt); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt bid amount %q: %w", amount, err)
	}
	updated, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt updated_at %q: %w", updatedAt, err)
	}

	bid.Amount = parsed
	bid.UpdatedAt = updated
	return &bid, nil
}
