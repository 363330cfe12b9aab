package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-auth-onboarding/internal/domain"
)

// DocumentRepo provides typed DynamoDB operations for the documents table.
type DocumentRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewDocumentRepo(client *dynamodb.Client, tableName string) *DocumentRepo {
	return &DocumentRepo{client: client, tableName: tableName}
}

func (r *DocumentRepo) Create(ctx context.Context, d *domain.Document) error {
	item, err := attributevalue.MarshalMap(d)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *DocumentRepo) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("document_id", documentID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("document: %w", domain.ErrNotFound)
	}
	var d domain.Document
	if err := attributevalue.UnmarshalMap(out.Item, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByCustomer returns the customer's documents, newest first.
func (r *DocumentRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Document, error) {
	var docs []domain.Document
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(customerIndex),
		KeyConditionExpression:    aws.String("customer_id = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":c": &types.AttributeValueMemberS{Value: customerID}},
		ScanIndexForward:          aws.Bool(false),
	})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Document
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		docs = append(docs, page...)
	}
	return docs, nil
}
