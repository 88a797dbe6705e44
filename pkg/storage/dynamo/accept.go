package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bidbazaar/auction-engine/pkg/models"
	"github.com/bidbazaar/auction-engine/pkg/storage"
)

// maxTransactItems is the DynamoDB limit on items per TransactWriteItems.
const maxTransactItems = 100

// maxBatchWriteItems is the DynamoDB limit on requests per BatchWriteItem.
const maxBatchWriteItems = 25

// AcceptBid performs the atomic settlement of a product.
//
// The validation reads happen first; the TransactWriteItems then
// conditions the product update on the exact version those reads saw,
// so any bid submitted or replaced in between cancels the whole
// transaction and the operation is retried from scratch. The commit
// bundles three effects: mark the product sold, insert the sale
// record, and delete every standing bid. All or nothing.
//
// A transaction holds at most maxTransactItems items. When the bid
// book is too large to delete inside it, the sold flip and the sale
// insert still commit transactionally and the bids are deleted in
// batches afterwards; the sold flag already rejects any new bid, so
// the book can only shrink once the flip lands.
func (s *Store) AcceptBid(ctx context.Context, productID, actingUserID, bidderID int64) (*models.Sale, error) {
	// 1. Validate against a consistent read of the product.
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if actingUserID != product.OwnerID {
		return nil, storage.ErrForbidden
	}
	if product.Sold {
		return nil, storage.ErrAlreadySold
	}

	// 2. Read the full bid book under that product version.
	bidItems, err := s.queryBidItems(ctx, productID)
	if err != nil {
		return nil, err
	}

	var accepted *bidItem
	for i := range bidItems {
		if bidItems[i].BidderID == bidderID {
			accepted = &bidItems[i]
			break
		}
	}
	if accepted == nil {
		return nil, storage.ErrBidNotFound
	}

	acceptedBid, err := accepted.toDomain()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sale := &models.Sale{
		ProductID:  productID,
		BuyerID:    bidderID,
		FinalPrice: acceptedBid.Amount,
		SettledAt:  now,
	}

	saleAV, err := attributevalue.MarshalMap(saleItem{
		ProductID:  productID,
		BuyerID:    bidderID,
		FinalPrice: acceptedBid.Amount.String(),
		SettledAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sale: %w", err)
	}

	// 3. Construct the settlement transaction. The version equality
	// condition is what makes the bid-book snapshot above safe to
	// delete: if any bid landed after the read, the version moved and
	// the whole transaction cancels.
	transactItems := []types.TransactWriteItem{
		{
			Update: &types.Update{
				TableName: aws.String(s.ProductsTableName),
				Key: map[string]types.AttributeValue{
					"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(productID, 10)},
				},
				UpdateExpression:    aws.String("SET sold = :true, version = version + :inc"),
				ConditionExpression: aws.String("sold = :false AND version = :version"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":true":    &types.AttributeValueMemberBOOL{Value: true},
					":false":   &types.AttributeValueMemberBOOL{Value: false},
					":inc":     &types.AttributeValueMemberN{Value: "1"},
					":version": &types.AttributeValueMemberN{Value: strconv.FormatInt(product.Version, 10)},
				},
			},
		},
		{
			Put: &types.Put{
				TableName:           aws.String(s.SalesTableName),
				Item:                saleAV,
				ConditionExpression: aws.String("attribute_not_exists(product_id)"), // One sale per product, ever.
			},
		},
	}
	deletesInline := len(bidItems) <= maxTransactItems-len(transactItems)
	if deletesInline {
		for _, item := range bidItems {
			transactItems = append(transactItems, types.TransactWriteItem{
				Delete: &types.Delete{
					TableName: aws.String(s.BidsTableName),
					Key:       bidKey(item.ProductID, item.BidderID),
				},
			})
		}
	}

	// 4. Execute the transaction.
	input := &dynamodb.TransactWriteItemsInput{TransactItems: transactItems}
	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		return nil, s.mapSettlementError(ctx, err, productID)
	}

	if !deletesInline {
		if err := s.clearBidBook(ctx, bidItems); err != nil {
			return nil, fmt.Errorf("settlement committed but bid cleanup failed: %w", err)
		}
	}

	return sale, nil
}

// clearBidBook deletes settled bids in BatchWriteItem chunks. Only
// reached after the sold flip committed, so no new bid can land while
// the deletes drain.
func (s *Store) clearBidBook(ctx context.Context, bidItems []bidItem) error {
	for start := 0; start < len(bidItems); start += maxBatchWriteItems {
		end := min(start+maxBatchWriteItems, len(bidItems))

		requests := make([]types.WriteRequest, 0, end-start)
		for _, item := range bidItems[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: bidKey(item.ProductID, item.BidderID)},
			})
		}

		pending := map[string][]types.WriteRequest{s.BidsTableName: requests}
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt > 4 {
				return fmt.Errorf("bid deletes still unprocessed after %d attempts", attempt)
			}
			result, err := s.Client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return fmt.Errorf("failed to delete settled bids: %w", err)
			}
			pending = result.UnprocessedItems
		}
	}
	return nil
}

// mapSettlementError translates a failed settlement transaction into
// the error taxonomy. A failed product condition is either a lost race
// to another accept (AlreadySold) or an interleaved bid (conflict,
// retryable); a failed sale put means the product settled already.
func (s *Store) mapSettlementError(ctx context.Context, err error, productID int64) error {
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		switch {
		case reasonCode(tce, 0) == "ConditionalCheckFailed":
			product, readErr := s.GetProduct(ctx, productID)
			if readErr != nil {
				return fmt.Errorf("failed to re-read product after settlement conflict: %w", readErr)
			}
			if product.Sold {
				return storage.ErrAlreadySold
			}
			return storage.ErrTransactionConflict
		case reasonCode(tce, 1) == "ConditionalCheckFailed":
			return storage.ErrAlreadySold
		default:
			return storage.ErrTransactionConflict
		}
	}
	var conflict *types.TransactionConflictException
	if errors.As(err, &conflict) {
		return storage.ErrTransactionConflict
	}
	return fmt.Errorf("failed to execute settlement transaction: %w", err)
}

// GetSale retrieves the sale record for a product.
func (s *Store) GetSale(ctx context.Context, productID int64) (*models.Sale, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.SalesTableName),
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberN{Value: strconv.FormatInt(productID, 10)},
		},
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, storage.ErrSaleNotFound
	}

	var item saleItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sale: %w", err)
	}
	return item.toDomain()
}
