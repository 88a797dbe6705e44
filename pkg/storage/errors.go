package storage

import "errors"

// ErrProductNotFound is returned when the referenced product does not exist.
var ErrProductNotFound = errors.New("product not found")

// ErrAlreadySold is returned when an operation targets a product that has already been sold.
var ErrAlreadySold = errors.New("product already sold")

// ErrInvalidAmount is returned when a bid or reserve amount is not a positive number.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrBelowReserve is returned when a bid amount is below the product's reserve price.
var ErrBelowReserve = errors.New("bid below reserve price")

// ErrSelfBidForbidden is returned when a seller attempts to bid on their own product.
var ErrSelfBidForbidden = errors.New("cannot bid on own product")

// ErrForbidden is returned when a caller who is not the owner attempts to settle a product.
var ErrForbidden = errors.New("caller is not the product owner")

// ErrBidNotFound is returned when the referenced standing bid does not exist or was already cleared.
var ErrBidNotFound = errors.New("bid not found")

// ErrSaleNotFound is returned when no sale record exists for a product.
var ErrSaleNotFound = errors.New("sale not found")

// ErrTransactionConflict is returned when the store detects a serialization
// conflict with a concurrent operation. The whole operation is safe to retry
// from scratch; it never committed partially.
var ErrTransactionConflict = errors.New("transaction conflict")
