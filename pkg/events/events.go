package events

import (
	"context"
	"time"

	"github.com/bidbazaar/auction-engine/pkg/models"
	"github.com/google/uuid"
)

// EventType defines the kinds of domain events the engine emits.
type EventType string

const (
	// TypeBidPlaced fires after a bid is inserted or replaced.
	TypeBidPlaced EventType = "bid.placed"
	// TypeSaleSettled fires after a product settles.
	TypeSaleSettled EventType = "sale.settled"
)

// Event is the wire form of a domain event. Amounts travel as exact
// decimal strings. Events are published after commit and are
// best-effort; downstream consumers must treat them as notifications,
// not as the source of truth.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	ProductID  int64     `json:"product_id"`
	ActorID    int64     `json:"actor_id"`
	Amount     string    `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewBidPlaced builds the event for a committed bid upsert.
func NewBidPlaced(bid *models.Bid) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       TypeBidPlaced,
		ProductID:  bid.ProductID,
		ActorID:    bid.BidderID,
		Amount:     bid.Amount.String(),
		OccurredAt: bid.UpdatedAt,
	}
}

// NewSaleSettled builds the event for a committed settlement.
func NewSaleSettled(sale *models.Sale) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       TypeSaleSettled,
		ProductID:  sale.ProductID,
		ActorID:    sale.BuyerID,
		Amount:     sale.FinalPrice.String(),
		OccurredAt: sale.SettledAt,
	}
}

// Publisher defines the interface for publishing domain events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoOpPublisher is a publisher that does nothing. Useful for tests and
// for deployments without a queue configured.
type NoOpPublisher struct{}

// Publish does nothing.
func (p *NoOpPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}
