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
	"github.com/shopspring/decimal"
)

// SubmitBid validates the bid against a consistent read of the product
// and commits it with a TransactWriteItems that re-checks the product
// state at commit time. The Put is an upsert: the (product_id,
// bidder_id) table key replaces any previous bid from this bidder.
func (s *Store) SubmitBid(ctx context.Context, productID, bidderID int64, amount decimal.Decimal) (*models.Bid, error) {
	// 1. Read the product for validation. The transaction below
	// re-checks the parts that can change, so a stale read here can
	// only cause a clean conflict, never a wrong commit.
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if product.Sold {
		return nil, storage.ErrAlreadySold
	}
	if !amount.IsPositive() {
		return nil, storage.ErrInvalidAmount
	}
	if amount.Cmp(product.ReservePrice) < 0 {
		return nil, storage.ErrBelowReserve
	}
	if bidderID == product.OwnerID {
		return nil, storage.ErrSelfBidForbidden
	}

	now := time.Now().UTC()
	bid := &models.Bid{ProductID: productID, BidderID: bidderID, Amount: amount, UpdatedAt: now}

	bidAV, err := attributevalue.MarshalMap(bidItem{
		ProductID: productID,
		BidderID:  bidderID,
		Amount:    amount.String(),
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bid: %w", err)
	}

	// 2. Construct the TransactWriteItems input. Bumping the product
	// version under a sold=false condition both re-validates the open
	// state at commit time and invalidates any settlement snapshot
	// taken before this bid landed.
	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Update: &types.Update{
					TableName: aws.String(s.ProductsTableName),
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(productID, 10)},
					},
					UpdateExpression:    aws.String("SET version = version + :inc"),
					ConditionExpression: aws.String("attribute_exists(id) AND sold = :false"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":inc":   &types.AttributeValueMemberN{Value: "1"},
						":false": &types.AttributeValueMemberBOOL{Value: false},
					},
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(s.BidsTableName),
					Item:      bidAV,
				},
			},
		},
	}

	// 3. Execute the transaction.
	if _, err := s.Client.TransactWriteItems(ctx, input); err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			if reasonCode(tce, 0) == "ConditionalCheckFailed" {
				// The product changed under us: sold, or deleted out of band.
				return nil, s.classifyProductConflict(ctx, productID)
			}
			return nil, storage.ErrTransactionConflict
		}
		var conflict *types.TransactionConflictException
		if errors.As(err, &conflict) {
			return nil, storage.ErrTransactionConflict
		}
		return nil, fmt.Errorf("failed to execute bid transaction: %w", err)
	}

	return bid, nil
}

// classifyProductConflict re-reads the product after a failed condition
// check to report the precise state the caller raced against.
func (s *Store) classifyProductConflict(ctx context.Context, productID int64) error {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return storage.ErrProductNotFound
		}
		return fmt.Errorf("failed to re-read product after conflict: %w", err)
	}
	if product.Sold {
		return storage.ErrAlreadySold
	}
	return storage.ErrTransactionConflict
}

// reasonCode extracts the cancellation reason code for one transact item.
func reasonCode(tce *types.TransactionCanceledException, index int) string {
	if index >= len(tce.CancellationReasons) {
		return ""
	}
	code := tce.CancellationReasons[index].Code
	if code == nil {
		return ""
	}
	return *code
}

// GetBid retrieves a bidder's standing bid on a product.
func (s *Store) GetBid(ctx context.Context, productID, bidderID int64) (*models.Bid, error) {
	input := &dynamodb.GetItemInput{
		TableName:      aws.String(s.BidsTableName),
		Key:            bidKey(productID, bidderID),
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get bid from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, storage.ErrBidNotFound
	}

	var item bidItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bid: %w", err)
	}
	return item.toDomain()
}

// ListBids queries every standing bid on a product and returns them
// amount descending, ties broken by earliest submission time.
func (s *Store) ListBids(ctx context.Context, productID int64) ([]models.Bid, error) {
	items, err := s.queryBidItems(ctx, productID)
	if err != nil {
		return nil, err
	}

	bids := make([]models.Bid, 0, len(items))
	for _, item := range items {
		bid, err := item.toDomain()
		if err != nil {
			return nil, err
		}
		bids = append(bids, *bid)
	}
	models.SortBids(bids)
	return bids, nil
}

// queryBidItems reads the raw bid items for a product with a consistent query.
func (s *Store) queryBidItems(ctx context.Context, productID int64) ([]bidItem, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.BidsTableName),
		KeyConditionExpression: aws.String("product_id = :pid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberN{Value: strconv.FormatInt(productID, 10)},
		},
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query bids: %w", err)
	}

	var items []bidItem
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bids: %w", err)
	}
	return items, nil
}

func bidKey(productID, bidderID int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"product_id": &types.AttributeValueMemberN{Value: strconv.FormatInt(productID, 10)},
		"bidder_id":  &types.AttributeValueMemberN{Value: strconv.FormatInt(bidderID, 10)},
	}
}
