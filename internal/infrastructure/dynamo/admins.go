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

// AdminRepo provides typed DynamoDB operations for the admins table.
type AdminRepo struct {
	client      *dynamodb.Client
	tableName   string
	emailsTable string
}

func NewAdminRepo(client *dynamodb.Client, tableName, emailsTable string) *AdminRepo {
	return &AdminRepo{client: client, tableName: tableName, emailsTable: emailsTable}
}

func (r *AdminRepo) Create(ctx context.Context, a *domain.Admin) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal admin: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, identityCreateTx(
		r.emailsTable, guardAdmin, a.Email, a.AdminID,
		r.tableName, "admin_id", item,
	))
	if err != nil {
		return translateTxError(err, "admin")
	}
	return nil
}

func (r *AdminRepo) Get(ctx context.Context, adminID string) (*domain.Admin, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("admin_id", adminID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("admin: %w", domain.ErrNotFound)
	}
	var a domain.Admin
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(emailIndex),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": "email"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("admin: %w", domain.ErrNotFound)
	}
	var a domain.Admin
	if err := attributevalue.UnmarshalMap(out.Items[0], &a); err != nil {
		return nil, err
	}
	return &a, nil
}
