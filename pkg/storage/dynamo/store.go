// Package dynamo implements the storage contract on AWS DynamoDB.
//
// The bids table is keyed (product_id HASH, bidder_id RANGE), so the
// one-bid-per-bidder uniqueness constraint is the table key itself.
// Products carry an optimistic version counter that every bid write
// bumps; settlement conditions its TransactWriteItems on that version,
// which makes the read snapshot part of the commit.
package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/bidbazaar/auction-engine/pkg/storage"
)

// DynamoDBAPI defines the subset of the DynamoDB client used by the store.
// Its mock is generated by mockery for the unit tests.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client            DynamoDBAPI
	ProductsTableName string
	BidsTableName     string
	SalesTableName    string
	CountersTableName string
}

// New creates a new Store.
func New(client DynamoDBAPI, productsTable, bidsTable, salesTable, countersTable string) *Store {
	return &Store{
		Client:            client,
		ProductsTableName: productsTable,
		BidsTableName:     bidsTable,
		SalesTableName:    salesTable,
		CountersTableName: countersTable,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)
