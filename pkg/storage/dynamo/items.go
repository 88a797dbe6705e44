package dynamo

import (
	"fmt"
	"time"

	"github.com/bidbazaar/auction-engine/pkg/models"
	"github.com/shopspring/decimal"
)

// Amounts live in the items as exact decimal strings; they never pass
// through a float on the way in or out.

type productItem struct {
	ID           int64     `dynamodbav:"id"`
	OwnerID      int64     `dynamodbav:"owner_id"`
	Title        string    `dynamodbav:"title"`
	Description  string    `dynamodbav:"description"`
	ReservePrice string    `dynamodbav:"reserve_price"`
	Sold         bool      `dynamodbav:"sold"`
	Version      int64     `dynamodbav:"version"`
	CreatedAt    time.Time `dynamodbav:"created_at"`
}

type bidItem struct {
	ProductID int64     `dynamodbav:"product_id"`
	BidderID  int64     `dynamodbav:"bidder_id"`
	Amount    string    `dynamodbav:"amount"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

type saleItem struct {
	ProductID  int64     `dynamodbav:"product_id"`
	BuyerID    int64     `dynamodbav:"buyer_id"`
	FinalPrice string    `dynamodbav:"final_price"`
	SettledAt  time.Time `dynamodbav:"settled_at"`
}

func toProductItem(p *models.Product) productItem {
	return productItem{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		Title:        p.Title,
		Description:  p.Description,
		ReservePrice: p.ReservePrice.String(),
		Sold:         p.Sold,
		Version:      p.Version,
		CreatedAt:    p.CreatedAt,
	}
}

func (item productItem) toDomain() (*models.Product, error) {
	reserve, err := decimal.NewFromString(item.ReservePrice)
	if err != nil {
		return nil, fmt.Errorf("corrupt reserve price %q: %w", item.ReservePrice, err)
	}
	return &models.Product{
		ID:           item.ID,
		OwnerID:      item.OwnerID,
		Title:        item.Title,
		Description:  item.Description,
		ReservePrice: reserve,
		Sold:         item.Sold,
		Version:      item.Version,
		CreatedAt:    item.CreatedAt,
	}, nil
}

func (item bidItem) toDomain() (*models.Bid, error) {
	amount, err := decimal.NewFromString(item.Amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt bid amount %q: %w", item.Amount, err)
	}
	return &models.Bid{
		ProductID: item.ProductID,
		BidderID:  item.BidderID,
		Amount:    amount,
		UpdatedAt: item.UpdatedAt,
	}, nil
}

func (item saleItem) toDomain() (*models.Sale, error) {
	price, err := decimal.NewFromString(item.FinalPrice)
	if err != nil {
		return nil, fmt.Errorf("corrupt final price %q: %w", item.FinalPrice, err)
	}
	return &models.Sale{
		ProductID:  item.ProductID,
		BuyerID:    item.BuyerID,
		FinalPrice: price,
		SettledAt:  item.SettledAt,
	}, nil
}
