package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bidbazaar/auction-engine/pkg/models"
	"github.com/bidbazaar/auction-engine/pkg/storage"
	"github.com/bidbazaar/auction-engine/pkg/storage/dynamo/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testStore(client DynamoDBAPI) *Store {
	return New(client, "products", "bids", "sales", "counters")
}

func marshalProduct(t *testing.T, item productItem) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(item)
	require.NoError(t, err)
	return av
}

func openProduct(id, ownerID, version int64, reserve string) productItem {
	return productItem{
		ID:           id,
		OwnerID:      ownerID,
		ReservePrice: reserve,
		Sold:         false,
		Version:      version,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestCreateProduct(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		// Counter increment hands out the next numeric id.
		mockClient.On("UpdateItem", mock.Anything, mock.AnythingOfType("*dynamodb.UpdateItemInput")).
			Return(&dynamodb.UpdateItemOutput{
				Attributes: map[string]types.AttributeValue{
					"seq": &types.AttributeValueMemberN{Value: "7"},
				},
			}, nil).Once()
		mockClient.On("PutItem", mock.Anything, mock.AnythingOfType("*dynamodb.PutItemInput")).
			Return(&dynamodb.PutItemOutput{}, nil).Once()

		product, err := store.CreateProduct(context.Background(), &models.Product{
			OwnerID:      1,
			Title:        "Vintage synthesizer",
			ReservePrice: decimal.RequireFromString("100.00"),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(7), product.ID)
		assert.False(t, product.Sold)
		assert.Equal(t, int64(1), product.Version)
		mockClient.AssertExpectations(t)
	})

	t.Run("Counter Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).
			Return(nil, errors.New("throttled")).Once()

		_, err := store.CreateProduct(context.Background(), &models.Product{
			OwnerID:      1,
			Title:        "Vintage synthesizer",
			ReservePrice: decimal.RequireFromString("100.00"),
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to increment product counter")
		mockClient.AssertExpectations(t)
	})
}

func TestGetProduct(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		item := marshalProduct(t, openProduct(1, 1, 3, "100.00"))
		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: item}, nil).Once()

		product, err := store.GetProduct(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, int64(1), product.ID)
		assert.Equal(t, int64(3), product.Version)
		assert.True(t, product.ReservePrice.Equal(decimal.RequireFromString("100.00")))
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{}, nil).Once()

		_, err := store.GetProduct(context.Background(), 42)

		assert.ErrorIs(t, err, storage.ErrProductNotFound)
		mockClient.AssertExpectations(t)
	})
}

func TestSubmitBid(t *testing.T) {
	product := openProduct(1, 1, 5, "100.00")

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, product)}, nil).Once()
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(input *dynamodb.TransactWriteItemsInput) bool {
			// Version bump on the product plus the bid upsert.
			return len(input.TransactItems) == 2 &&
				input.TransactItems[0].Update != nil &&
				input.TransactItems[1].Put != nil &&
				*input.TransactItems[1].Put.TableName == "bids"
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

		bid, err := store.SubmitBid(context.Background(), 1, 2, decimal.RequireFromString("120.00"))

		require.NoError(t, err)
		assert.Equal(t, int64(2), bid.BidderID)
		assert.True(t, bid.Amount.Equal(decimal.RequireFromString("120.00")))
		mockClient.AssertExpectations(t)
	})

	t.Run("Negative Amount", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, product)}, nil).Once()

		_, err := store.SubmitBid(context.Background(), 1, 2, decimal.RequireFromString("-5"))

		assert.ErrorIs(t, err, storage.ErrInvalidAmount)
		mockClient.AssertNotCalled(t, "TransactWriteItems")
		mockClient.AssertExpectations(t)
	})

	t.Run("Negative Amount On Missing Product", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{}, nil).Once()

		_, err := store.SubmitBid(context.Background(), 1, 2, decimal.RequireFromString("-5"))

		assert.ErrorIs(t, err, storage.ErrProductNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("Below Reserve", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, product)}, nil).Once()

		_, err := store.SubmitBid(context.Background(), 1, 2, decimal.RequireFromString("99.99"))

		assert.ErrorIs(t, err, storage.ErrBelowReserve)
		mockClient.AssertExpectations(t)
	})

	t.Run("Self Bid", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, product)}, nil).Once()

		_, err := store.SubmitBid(context.Background(), 1, 1, decimal.RequireFromString("150.00"))

		assert.ErrorIs(t, err, storage.ErrSelfBidForbidden)
		mockClient.AssertExpectations(t)
	})

	t.Run("Sold Between Read And Commit", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		soldItem := product
		soldItem.Sold = true

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, product)}, nil).Once()
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(nil, &types.TransactionCanceledException{
				CancellationReasons: []types.CancellationReason{
					{Code: aws.String("ConditionalCheckFailed")},
					{Code: aws.String("None")},
				},
			}).Once()
		// The store re-reads to classify the conflict.
		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, soldItem)}, nil).Once()

		_, err := store.SubmitBid(context.Background(), 1, 2, decimal.RequireFromString("120.00"))

		assert.ErrorIs(t, err, storage.ErrAlreadySold)
		mockClient.AssertExpectations(t)
	})

	t.Run("Transaction Conflict", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, product)}, nil).Once()
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(nil, &types.TransactionConflictException{}).Once()

		_, err := store.SubmitBid(context.Background(), 1, 2, decimal.RequireFromString("120.00"))

		assert.ErrorIs(t, err, storage.ErrTransactionConflict)
		mockClient.AssertExpectations(t)
	})
}

func TestAcceptBid(t *testing.T) {
	product := openProduct(1, 1, 5, "100.00")

	bidOutput := func(t *testing.T) *dynamodb.QueryOutput {
		t.Helper()
		lowAV, err := attributevalue.MarshalMap(bidItem{ProductID: 1, BidderID: 2, Amount: "120.00", UpdatedAt: time.Now().UTC()})
		require.NoError(t, err)
		highAV, err := attributevalue.MarshalMap(bidItem{ProductID: 1, BidderID: 3, Amount: "150.00", UpdatedAt: time.Now().UTC()})
		require.NoError(t, err)
		return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{lowAV, highAV}}
	}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, product)}, nil).Once()
		mockClient.On("Query", mock.Anything, mock.Anything).
			Return(bidOutput(t), nil).Once()
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(input *dynamodb.TransactWriteItemsInput) bool {
			// Sold CAS + sale insert + one delete per standing bid.
			return len(input.TransactItems) == 4 &&
				input.TransactItems[0].Update != nil &&
				input.TransactItems[1].Put != nil &&
				input.TransactItems[2].Delete != nil &&
				input.TransactItems[3].Delete != nil
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()

		sale, err := store.AcceptBid(context.Background(), 1, 1, 3)

		require.NoError(t, err)
		assert.Equal(t, int64(3), sale.BuyerID)
		assert.True(t, sale.FinalPrice.Equal(decimal.RequireFromString("150.00")))
		mockClient.AssertExpectations(t)
	})

	t.Run("Large Bid Book Settles With Batched Deletes", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		// 120 standing bids cannot fit in one transaction alongside the
		// sold flip and the sale insert; the deletes run in batches of
		// 25 after the settlement commits.
		items := make([]map[string]types.AttributeValue, 0, 120)
		for i := 0; i < 120; i++ {
			av, err := attributevalue.MarshalMap(bidItem{
				ProductID: 1,
				BidderID:  int64(i + 2),
				Amount:    "120.00",
				UpdatedAt: time.Now().UTC(),
			})
			require.NoError(t, err)
			items = append(items, av)
		}

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, product)}, nil).Once()
		mockClient.On("Query", mock.Anything, mock.Anything).
			Return(&dynamodb.QueryOutput{Items: items}, nil).Once()
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(input *dynamodb.TransactWriteItemsInput) bool {
			return len(input.TransactItems) == 2 &&
				input.TransactItems[0].Update != nil &&
				input.TransactItems[1].Put != nil
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()
		mockClient.On("BatchWriteItem", mock.Anything, mock.MatchedBy(func(input *dynamodb.BatchWriteItemInput) bool {
			requests, ok := input.RequestItems["bids"]
			return ok && len(requests) <= 25 && requests[0].DeleteRequest != nil
		})).Return(&dynamodb.BatchWriteItemOutput{}, nil).Times(5)

		sale, err := store.AcceptBid(context.Background(), 1, 1, 2)

		require.NoError(t, err)
		assert.Equal(t, int64(2), sale.BuyerID)
		mockClient.AssertExpectations(t)
	})

	t.Run("Unprocessed Deletes Are Retried", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		items := make([]map[string]types.AttributeValue, 0, 99)
		for i := 0; i < 99; i++ {
			av, err := attributevalue.MarshalMap(bidItem{
				ProductID: 1,
				BidderID:  int64(i + 2),
				Amount:    "120.00",
				UpdatedAt: time.Now().UTC(),
			})
			require.NoError(t, err)
			items = append(items, av)
		}

		leftover := map[string][]types.WriteRequest{
			"bids": {{DeleteRequest: &types.DeleteRequest{Key: bidKey(1, 2)}}},
		}

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, product)}, nil).Once()
		mockClient.On("Query", mock.Anything, mock.Anything).
			Return(&dynamodb.QueryOutput{Items: items}, nil).Once()
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(&dynamodb.TransactWriteItemsOutput{}, nil).Once()
		// First chunk comes back partially unprocessed once, then drains.
		mockClient.On("BatchWriteItem", mock.Anything, mock.Anything).
			Return(&dynamodb.BatchWriteItemOutput{UnprocessedItems: leftover}, nil).Once()
		mockClient.On("BatchWriteItem", mock.Anything, mock.Anything).
			Return(&dynamodb.BatchWriteItemOutput{}, nil).Times(4)

		_, err := store.AcceptBid(context.Background(), 1, 1, 2)

		require.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not The Owner", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, product)}, nil).Once()

		_, err := store.AcceptBid(context.Background(), 1, 99, 3)

		assert.ErrorIs(t, err, storage.ErrForbidden)
		mockClient.AssertExpectations(t)
	})

	t.Run("Already Sold", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		soldItem := product
		soldItem.Sold = true
		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, soldItem)}, nil).Once()

		_, err := store.AcceptBid(context.Background(), 1, 1, 3)

		assert.ErrorIs(t, err, storage.ErrAlreadySold)
		mockClient.AssertExpectations(t)
	})

	t.Run("Bid Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, product)}, nil).Once()
		mockClient.On("Query", mock.Anything, mock.Anything).
			Return(&dynamodb.QueryOutput{}, nil).Once()

		_, err := store.AcceptBid(context.Background(), 1, 1, 8)

		assert.ErrorIs(t, err, storage.ErrBidNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("Lost Race To Another Accept", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		soldItem := product
		soldItem.Sold = true

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, product)}, nil).Once()
		mockClient.On("Query", mock.Anything, mock.Anything).
			Return(bidOutput(t), nil).Once()
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(nil, &types.TransactionCanceledException{
				CancellationReasons: []types.CancellationReason{
					{Code: aws.String("ConditionalCheckFailed")},
					{Code: aws.String("None")},
					{Code: aws.String("None")},
					{Code: aws.String("None")},
				},
			}).Once()
		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, soldItem)}, nil).Once()

		_, err := store.AcceptBid(context.Background(), 1, 1, 3)

		assert.ErrorIs(t, err, storage.ErrAlreadySold)
		mockClient.AssertExpectations(t)
	})

	t.Run("Interleaved Bid Cancels Settlement", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		bumped := product
		bumped.Version = 6

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, product)}, nil).Once()
		mockClient.On("Query", mock.Anything, mock.Anything).
			Return(bidOutput(t), nil).Once()
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).
			Return(nil, &types.TransactionCanceledException{
				CancellationReasons: []types.CancellationReason{
					{Code: aws.String("ConditionalCheckFailed")},
					{Code: aws.String("None")},
					{Code: aws.String("None")},
					{Code: aws.String("None")},
				},
			}).Once()
		// Still open, version moved: retryable conflict.
		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: marshalProduct(t, bumped)}, nil).Once()

		_, err := store.AcceptBid(context.Background(), 1, 1, 3)

		assert.ErrorIs(t, err, storage.ErrTransactionConflict)
		mockClient.AssertExpectations(t)
	})
}

func TestListBids(t *testing.T) {
	mockClient := new(mocks.DynamoDBAPI)
	store := testStore(mockClient)

	now := time.Now().UTC()
	lowAV, err := attributevalue.MarshalMap(bidItem{ProductID: 1, BidderID: 2, Amount: "120.00", UpdatedAt: now})
	require.NoError(t, err)
	highAV, err := attributevalue.MarshalMap(bidItem{ProductID: 1, BidderID: 3, Amount: "150.00", UpdatedAt: now})
	require.NoError(t, err)

	mockClient.On("Query", mock.Anything, mock.Anything).
		Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{lowAV, highAV}}, nil).Once()

	bids, err := store.ListBids(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, bids, 2)
	assert.Equal(t, int64(3), bids[0].BidderID)
	assert.Equal(t, int64(2), bids[1].BidderID)
	mockClient.AssertExpectations(t)
}

func TestGetSale(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		saleAV, err := attributevalue.MarshalMap(saleItem{ProductID: 1, BuyerID: 3, FinalPrice: "150.00", SettledAt: time.Now().UTC()})
		require.NoError(t, err)
		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{Item: saleAV}, nil).Once()

		sale, err := store.GetSale(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, int64(3), sale.BuyerID)
		assert.True(t, sale.FinalPrice.Equal(decimal.RequireFromString("150.00")))
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := testStore(mockClient)

		mockClient.On("GetItem", mock.Anything, mock.Anything).
			Return(&dynamodb.GetItemOutput{}, nil).Once()

		_, err := store.GetSale(context.Background(), 42)

		assert.ErrorIs(t, err, storage.ErrSaleNotFound)
		mockClient.AssertExpectations(t)
	})
}
