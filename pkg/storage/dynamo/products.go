package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bidbazaar/auction-engine/pkg/models"
	"github.com/bidbazaar/auction-engine/pkg/storage"
)

const productCounterName = "products"

// CreateProduct assigns the next numeric product ID from the counter
// item and persists the new open listing.
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	id, err := s.nextProductID(ctx)
	if err != nil {
		return nil, err
	}

	created := *product
	created.ID = id
	created.Sold = false
	created.Version = 1
	created.CreatedAt = time.Now().UTC()

	item, err := attributevalue.MarshalMap(toProductItem(&created))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.ProductsTableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"), // Prevent overwriting existing products.
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to create product in DynamoDB: %w", err)
	}

	return &created, nil
}

// nextProductID atomically increments and returns the product sequence.
func (s *Store) nextProductID(ctx context.Context) (int64, error) {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.CountersTableName),
		Key: map[string]types.AttributeValue{
			"name": &types.AttributeValueMemberS{Value: productCounterName},
		},
		UpdateExpression: aws.String("ADD seq :inc"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inc": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("failed to increment product counter: %w", err)
	}

	seqAttr, ok := result.Attributes["seq"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("product counter returned no numeric seq attribute")
	}
	id, err := strconv.ParseInt(seqAttr.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse product counter value %q: %w", seqAttr.Value, err)
	}
	return id, nil
}

// GetProduct retrieves a product from DynamoDB by its ID.
func (s *Store) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.ProductsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(productID, 10)},
		},
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get product from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, storage.ErrProductNotFound
	}

	var item productItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return item.toDomain()
}

// ListProducts scans all products, newest first. Listing pages are
// glue, so a Scan is acceptable here; the engine's invariants never
// read through this path.
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(s.ProductsTableName),
	}

	result, err := s.Client.Scan(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	var items []productItem
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal products: %w", err)
	}

	products := make([]models.Product, 0, len(items))
	for _, item := range items {
		product, err := item.toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID > products[j].ID })
	return products, nil
}
