package dynamo

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TableSpecs returns the CreateTable inputs for every table the store
// needs. The bids table's composite key (product_id, bidder_id) is the
// uniqueness constraint that makes bid submission an upsert.
func TableSpecs(productsTable, bidsTable, salesTable, countersTable string) []*dynamodb.CreateTableInput {
	return []*dynamodb.CreateTableInput{
		{
			TableName: aws.String(productsTable),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeN},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
		{
			TableName: aws.String(bidsTable),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("product_id"), AttributeType: types.ScalarAttributeTypeN},
				{AttributeName: aws.String("bidder_id"), AttributeType: types.ScalarAttributeTypeN},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("product_id"), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String("bidder_id"), KeyType: types.KeyTypeRange},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
		{
			TableName: aws.String(salesTable),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("product_id"), AttributeType: types.ScalarAttributeTypeN},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("product_id"), KeyType: types.KeyTypeHash},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
		{
			TableName: aws.String(countersTable),
			AttributeDefinitions: []types.AttributeDefinition{
				{AttributeName: aws.String("name"), AttributeType: types.ScalarAttributeTypeS},
			},
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("name"), KeyType: types.KeyTypeHash},
			},
			BillingMode: types.BillingModePayPerRequest,
		},
	}
}
