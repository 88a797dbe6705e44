// Package api holds the request and response types for the HTTP surface.
// Amounts are JSON strings so prices survive the wire exactly.
package api

import "time"

// NewProduct is the request body for creating a listing. The owner is
// the acting user from the request context, not part of the body.
type NewProduct struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ReservePrice string `json:"reserve_price"`
}

// Product is the listing view returned to clients.
type Product struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ReservePrice string    `json:"reserve_price"`
	Sold         bool      `json:"sold"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewBid is the request body for submitting a bid.
type NewBid struct {
	Amount string `json:"amount"`
}

// Bid is a standing bid view.
type Bid struct {
	ProductID int64     `json:"product_id"`
	BidderID  int64     `json:"bidder_id"`
	Amount    string    `json:"amount"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AcceptBid is the request body for settling a product.
type AcceptBid struct {
	BidderID int64 `json:"bidder_id"`
}

// Sale is the settlement record view.
type Sale struct {
	ProductID  int64     `json:"product_id"`
	BuyerID    int64     `json:"buyer_id"`
	FinalPrice string    `json:"final_price"`
	SettledAt  time.Time `json:"settled_at"`
}

// Error is the JSON error envelope.
type Error struct {
	Message string `json:"message"`
}
