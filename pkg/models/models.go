package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents the internal domain model for a marketplace listing.
// Owner and reserve price are fixed at creation; the only mutation the
// engine ever performs is flipping Sold to true during settlement.
type Product struct {
	ID           int64
	OwnerID      int64
	Title        string
	Description  string
	ReservePrice decimal.Decimal
	Sold         bool
	Version      int64
	CreatedAt    time.Time
}

// Bid is a bidder's single standing bid on a product. A new submission
// from the same bidder replaces Amount and UpdatedAt in place.
type Bid struct {
	ProductID int64
	BidderID  int64
	Amount    decimal.Decimal
	UpdatedAt time.Time
}

// Sale records the settlement of a product: who bought it and at what
// price. FinalPrice is copied from the accepted bid, never recomputed.
type Sale struct {
	ProductID  int64
	BuyerID    int64
	FinalPrice decimal.Decimal
	SettledAt  time.Time
}

// SortBids orders bids highest amount first, ties broken by earliest
// update time, then by bidder id so the order is total. Both storage
// backends use this so repeated reads return the same sequence.
func SortBids(bids []Bid) {
	sort.Slice(bids, func(i, j int) bool {
		switch bids[i].Amount.Cmp(bids[j].Amount) {
		case 1:
			return true
		case -1:
			return false
		}
		if !bids[i].UpdatedAt.Equal(bids[j].UpdatedAt) {
			return bids[i].UpdatedAt.Before(bids[j].UpdatedAt)
		}
		return bids[i].BidderID < bids[j].BidderID
	})
}
