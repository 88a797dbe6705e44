package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bidbazaar/auction-engine/pkg/api"
	"github.com/bidbazaar/auction-engine/pkg/auction"
	"github.com/bidbazaar/auction-engine/pkg/mapping"
	"github.com/bidbazaar/auction-engine/pkg/storage"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// userIDHeader carries the acting user's id. Authentication itself is
// an upstream concern; the engine only needs the established identity.
const userIDHeader = "X-User-ID"

// ApiHandler translates HTTP requests into engine calls.
type ApiHandler struct {
	Engine *auction.Engine
}

// NewApiHandler creates a new ApiHandler around the engine.
func NewApiHandler(engine *auction.Engine) *ApiHandler {
	return &ApiHandler{Engine: engine}
}

// Routes mounts all marketplace endpoints on a fresh router.
func (h *ApiHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/products", h.CreateProduct)
	r.Get("/products", h.ListProducts)
	r.Get("/products/{productID}", h.GetProduct)
	r.Post("/products/{productID}/bids", h.SubmitBid)
	r.Get("/products/{productID}/bids", h.ListBids)
	r.Get("/products/{productID}/bids/{bidderID}", h.BidderStatus)
	r.Post("/products/{productID}/accept", h.AcceptBid)
	r.Get("/products/{productID}/sale", h.SaleSummary)
	return r
}

// CreateProduct handles the logic for creating a new listing.
func (h *ApiHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.actingUser(w, r)
	if !ok {
		return
	}

	var newProduct api.NewProduct
	if err := json.NewDecoder(r.Body).Decode(&newProduct); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	reserve, err := decimal.NewFromString(newProduct.ReservePrice)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid reserve price")
		return
	}

	product, err := h.Engine.CreateProduct(r.Context(), userID, newProduct.Title, newProduct.Description, reserve)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapping.ToApiProduct(product))
}

// GetProduct handles the logic for retrieving a single listing.
func (h *ApiHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	product, err := h.Engine.GetProduct(r.Context(), productID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapping.ToApiProduct(product))
}

// ListProducts handles the storefront listing view. An optional
// ?owner= query narrows the view to one seller's listings.
func (h *ApiHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Engine.ListProducts(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	if raw := r.URL.Query().Get("owner"); raw != "" {
		ownerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid owner")
			return
		}
		filtered := products[:0]
		for _, p := range products {
			if p.OwnerID == ownerID {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	writeJSON(w, http.StatusOK, mapping.ToApiProducts(products))
}

// SubmitBid handles the logic for placing or replacing a bid.
func (h *ApiHandler) SubmitBid(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var newBid api.NewBid
	if err := json.NewDecoder(r.Body).Decode(&newBid); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	amount, err := decimal.NewFromString(newBid.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid bid amount")
		return
	}

	bid, err := h.Engine.SubmitBid(r.Context(), productID, userID, amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapping.ToApiBid(bid))
}

// ListBids handles the seller's bid review view.
func (h *ApiHandler) ListBids(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	bids, err := h.Engine.ListBids(r.Context(), productID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapping.ToApiBids(bids))
}

// BidderStatus handles a bidder's own standing-bid lookup.
func (h *ApiHandler) BidderStatus(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}
	bidderID, ok := pathID(w, r, "bidderID")
	if !ok {
		return
	}

	bid, err := h.Engine.BidderStatus(r.Context(), productID, bidderID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapping.ToApiBid(bid))
}

// AcceptBid handles the seller accepting one bid, settling the product.
func (h *ApiHandler) AcceptBid(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.actingUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	var accept api.AcceptBid
	if err := json.NewDecoder(r.Body).Decode(&accept); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	sale, err := h.Engine.AcceptBid(r.Context(), productID, userID, accept.BidderID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapping.ToApiSale(sale))
}

// SaleSummary handles the sale record lookup for a settled product.
func (h *ApiHandler) SaleSummary(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	sale, err := h.Engine.SaleSummary(r.Context(), productID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapping.ToApiSale(sale))
}

// actingUser extracts the established identity from the request.
func (h *ApiHandler) actingUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "Missing "+userIDHeader+" header")
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid "+userIDHeader+" header")
		return 0, false
	}
	return userID, true
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid "+param)
		return 0, false
	}
	return id, true
}

// writeEngineError maps the storage error taxonomy onto HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrProductNotFound),
		errors.Is(err, storage.ErrBidNotFound),
		errors.Is(err, storage.ErrSaleNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrForbidden),
		errors.Is(err, storage.ErrSelfBidForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrAlreadySold):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrInvalidAmount),
		errors.Is(err, storage.ErrBelowReserve):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, storage.ErrTransactionConflict):
		// Retries are exhausted at this point; the client may resubmit.
		writeError(w, http.StatusConflict, "operation conflicted with concurrent activity, please retry")
	default:
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Internal error: %v", err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.Error{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}
