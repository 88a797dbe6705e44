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

// AcceptBid settles a product against one bidder's standing bid.
// Validation, the sold-flag flip, the sale insert, and the bid-book
// delete all happen in one transaction: a concurrent reader sees either
// the full pre-settlement state or the full post-settlement state.
func (s *Store) AcceptBid(ctx context.Context, productID, actingUserID, bidderID int64) (*models.Sale, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // No-op if committed

	var (
		ownerID int64
		sold    int
	)
	err = tx.QueryRowContext(ctx, `
		SELECT owner_id, sold FROM products WHERE id = ?
	`, productID).Scan(&ownerID, &sold)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to read product for settlement: %w", err)
	}

	if actingUserID != ownerID {
		return nil, storage.ErrForbidden
	}
	if sold != 0 {
		return nil, storage.ErrAlreadySold
	}

	var amount string
	err = tx.QueryRowContext(ctx, `
		SELECT amount FROM bids WHERE product_id = ? AND bidder_id = ?
	`, productID, bidderID).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrBidNotFound
		}
		return nil, fmt.Errorf("failed to read accepted bid: %w", err)
	}
	finalPrice, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt bid amount %q: %w", amount, err)
	}

	// Compare-and-set on the sold flag. The earlier read ran in this
	// same transaction, so zero rows here means a serialization anomaly
	// rather than a routine double-accept; surface it as retryable.
	result, err := tx.ExecContext(ctx, `
		UPDATE products SET sold = 1, version = version + 1 WHERE id = ? AND sold = 0
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark product sold: %w", mapLockErr(err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return nil, storage.ErrTransactionConflict
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sales (product_id, buyer_id, final_price, settled_at)
		VALUES (?, ?, ?, ?)
	`, productID, bidderID, finalPrice.String(), now.Format(time.RFC3339Nano)); err != nil {
		return nil, fmt.Errorf("failed to insert sale: %w", mapLockErr(err))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bids WHERE product_id = ?`, productID); err != nil {
		return nil, fmt.Errorf("failed to clear bid book: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", mapLockErr(err))
	}

	return &models.Sale{ProductID: productID, BuyerID: bidderID, FinalPrice: finalPrice, SettledAt: now}, nil
}

// GetSale retrieves the sale record for a product.
func (s *Store) GetSale(ctx context.Context, productID int64) (*models.Sale, error) {
	var (
		sale      models.Sale
		price     string
		settledAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT product_id, buyer_id, final_price, settled_at
		FROM sales WHERE product_id = ?
	`, productID).Scan(&sale.ProductID, &sale.BuyerID, &price, &settledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to get sale: %w", err)
	}

	finalPrice, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("corrupt final price %q: %w", price, err)
	}
	settled, err := time.Parse(time.RFC3339Nano, settledAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt settled_at %q: %w", settledAt, err)
	}

	sale.FinalPrice = finalPrice
	sale.SettledAt = settled
	return &sale, nil
}
