package mapping

import (
	"github.com/bidbazaar/auction-engine/pkg/api"
	"github.com/bidbazaar/auction-engine/pkg/models"
)

// ToApiProduct converts a domain Product model to an API Product model.
func ToApiProduct(product *models.Product) *api.Product {
	return &api.Product{
		ID:           product.ID,
		OwnerID:      product.OwnerID,
		Title:        product.Title,
		Description:  product.Description,
		ReservePrice: product.ReservePrice.String(),
		Sold:         product.Sold,
		CreatedAt:    product.CreatedAt,
	}
}

// ToApiProducts converts a slice of domain products.
func ToApiProducts(products []models.Product) []api.Product {
	out := make([]api.Product, 0, len(products))
	for i := range products {
		out = append(out, *ToApiProduct(&products[i]))
	}
	return out
}

// ToApiBid converts a domain Bid model to an API Bid model.
func ToApiBid(bid *models.Bid) *api.Bid {
	return &api.Bid{
		ProductID: bid.ProductID,
		BidderID:  bid.BidderID,
		Amount:    bid.Amount.String(),
		UpdatedAt: bid.UpdatedAt,
	}
}

// ToApiBids converts a slice of domain bids, preserving order.
func ToApiBids(bids []models.Bid) []api.Bid {
	out := make([]api.Bid, 0, len(bids))
	for i := range bids {
		out = append(out, *ToApiBid(&bids[i]))
	}
	return out
}

// ToApiSale converts a domain Sale model to an API Sale model.
func ToApiSale(sale *models.Sale) *api.Sale {
	return &api.Sale{
		ProductID:  sale.ProductID,
		BuyerID:    sale.BuyerID,
		FinalPrice: sale.FinalPrice.String(),
		SettledAt:  sale.SettledAt,
	}
}
