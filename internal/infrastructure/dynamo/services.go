package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-auth-onboarding/internal/domain"
)

// ServiceRepo provides typed DynamoDB operations for the services table.
type ServiceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewServiceRepo(client *dynamodb.Client, tableName string) *ServiceRepo {
	return &ServiceRepo{client: client, tableName: tableName}
}

func (r *ServiceRepo) Create(ctx context.Context, s *domain.Service) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal service: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(service_id)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("service: %w", domain.ErrConflict)
	}
	return err
}

func (r *ServiceRepo) Get(ctx context.Context, serviceID string) (*domain.Service, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("service_id", serviceID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("service: %w", domain.ErrNotFound)
	}
	var s domain.Service
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Activate flips the service to active. The activation time is only written
// the first time so repeated calls keep the original timestamp.
func (r *ServiceRepo) Activate(ctx context.Context, serviceID string, at time.Time) error {
	ts, err := attributevalue.Marshal(at.UTC())
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("service_id", serviceID),
		UpdateExpression:    aws.String("SET #s = :active, #u = :at, #a = if_not_exists(#a, :at)"),
		ConditionExpression: aws.String("attribute_exists(service_id)"),
		ExpressionAttributeNames: map[string]string{
			"#s": fieldStatus,
			"#u": fieldUpdatedAt,
			"#a": fieldActivatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":active": &types.AttributeValueMemberS{Value: domain.ServiceStatusActive},
			":at":     ts,
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("service: %w", domain.ErrNotFound)
	}
	return err
}

func (r *ServiceRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Service, error) {
	var services []domain.Service
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(customerIndex),
		KeyConditionExpression:    aws.String("customer_id = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":c": &types.AttributeValueMemberS{Value: customerID}},
	})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Service
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		services = append(services, page...)
	}
	return services, nil
}

func (r *ServiceRepo) List(ctx context.Context) ([]domain.Service, error) {
	var services []domain.Service
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Service
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		services = append(services, page...)
	}
	return services, nil
}
