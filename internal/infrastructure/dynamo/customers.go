package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-auth-onboarding/internal/domain"
)

const (
	guardCustomer = "customer"
	guardAdmin    = "admin"
)

// CustomerRepo provides typed DynamoDB operations for the customers table.
type CustomerRepo struct {
	client      *dynamodb.Client
	tableName   string
	emailsTable string
}

func NewCustomerRepo(client *dynamodb.Client, tableName, emailsTable string) *CustomerRepo {
	return &CustomerRepo{client: client, tableName: tableName, emailsTable: emailsTable}
}

// Create writes the customer together with its email guard item in one
// transaction. A taken email yields domain.ErrConflict.
func (r *CustomerRepo) Create(ctx context.Context, c *domain.Customer) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	if c.OTPIssuedAt != nil {
		item[fieldOTPIssuedAt] = &types.AttributeValueMemberS{Value: otpTimestamp(*c.OTPIssuedAt)}
	}
	_, err = r.client.TransactWriteItems(ctx, identityCreateTx(
		r.emailsTable, guardCustomer, c.Email, c.CustomerID,
		r.tableName, "customer_id", item,
	))
	if err != nil {
		return translateTxError(err, "customer")
	}
	return nil
}

func (r *CustomerRepo) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("customer_id", customerID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("customer: %w", domain.ErrNotFound)
	}
	var c domain.Customer
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
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
		return nil, fmt.Errorf("customer: %w", domain.ErrNotFound)
	}
	var c domain.Customer
	if err := attributevalue.UnmarshalMap(out.Items[0], &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// SetOTP stores a fresh code for the customer and resets the attempt counter.
func (r *CustomerRepo) SetOTP(ctx context.Context, customerID string, code int, issuedAt time.Time) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldOTP:         code,
		fieldOTPIssuedAt: otpTimestamp(issuedAt),
		fieldOTPAttempts: 0,
		fieldUpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("customer_id", customerID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(customer_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("customer: %w", domain.ErrNotFound)
	}
	return err
}

// RecordFailedOTP increments the failed attempt counter while it is below
// maxAttempts. A full counter yields domain.ErrTooManyAttempts.
func (r *CustomerRepo) RecordFailedOTP(ctx context.Context, customerID string, maxAttempts int) error {
	_, err := r.client.UpdateItem(ctx, recordFailedOTPInput(r.tableName, customerID, maxAttempts))
	if item, failed := conditionFailedItem(err); failed {
		if len(item) == 0 {
			return fmt.Errorf("customer: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("customer %s: %w", customerID, domain.ErrTooManyAttempts)
	}
	return err
}

// ConsumeOTP marks the customer verified and clears the OTP, but only while
// the stored code equals code and check still holds. The item returned with a
// failed condition explains the rejection.
func (r *CustomerRepo) ConsumeOTP(ctx context.Context, customerID string, code int, check domain.OTPCheck) error {
	in, err := consumeOTPInput(r.tableName, customerID, code, check, time.Now())
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, in)
	item, failed := conditionFailedItem(err)
	if !failed {
		return err
	}
	if len(item) == 0 {
		return fmt.Errorf("customer: %w", domain.ErrNotFound)
	}
	var c domain.Customer
	if err := attributevalue.UnmarshalMap(item, &c); err != nil {
		return fmt.Errorf("unmarshal customer: %w", err)
	}
	if err := c.RejectOTP(code, check); err != nil {
		return err
	}
	return fmt.Errorf("otp changed during consume: %w", domain.ErrInvalidOTP)
}

func recordFailedOTPInput(table, customerID string, maxAttempts int) *dynamodb.UpdateItemInput {
	return &dynamodb.UpdateItemInput{
		TableName:           aws.String(table),
		Key:                 strKey("customer_id", customerID),
		UpdateExpression:    aws.String("ADD #n :one"),
		ConditionExpression: aws.String("attribute_exists(customer_id) AND #n < :max"),
		ExpressionAttributeNames: map[string]string{
			"#n": fieldOTPAttempts,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":max": &types.AttributeValueMemberN{Value: strconv.Itoa(maxAttempts)},
		},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	}
}

func consumeOTPInput(table, customerID string, code int, check domain.OTPCheck, now time.Time) (*dynamodb.UpdateItemInput, error) {
	updatedAt, err := attributevalue.Marshal(now.UTC())
	if err != nil {
		return nil, err
	}
	return &dynamodb.UpdateItemInput{
		TableName:           aws.String(table),
		Key:                 strKey("customer_id", customerID),
		UpdateExpression:    aws.String("SET #v = :t, #u = :now REMOVE #o, #oi"),
		ConditionExpression: aws.String("#o = :code AND #v = :f AND #n < :max AND #oi >= :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#v":  fieldIsVerified,
			"#u":  fieldUpdatedAt,
			"#o":  fieldOTP,
			"#oi": fieldOTPIssuedAt,
			"#n":  fieldOTPAttempts,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":      &types.AttributeValueMemberBOOL{Value: true},
			":f":      &types.AttributeValueMemberBOOL{Value: false},
			":code":   &types.AttributeValueMemberN{Value: strconv.Itoa(code)},
			":max":    &types.AttributeValueMemberN{Value: strconv.Itoa(check.MaxAttempts)},
			":cutoff": &types.AttributeValueMemberS{Value: otpTimestamp(check.IssuedSince)},
			":now":    updatedAt,
		},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	}, nil
}

// identityCreateTx puts the email guard and the identity record together.
// Either condition failing cancels both writes.
func identityCreateTx(emailsTable, kind, email, ownerID, table, keyAttr string, item map[string]types.AttributeValue) *dynamodb.TransactWriteItemsInput {
	return &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(emailsTable),
				Item:                     guardItem(kind, email, ownerID),
				ConditionExpression:      aws.String("attribute_not_exists(#e)"),
				ExpressionAttributeNames: map[string]string{"#e": fieldEmailGuard},
			}},
			{Put: &types.Put{
				TableName:                aws.String(table),
				Item:                     item,
				ConditionExpression:      aws.String("attribute_not_exists(#k)"),
				ExpressionAttributeNames: map[string]string{"#k": keyAttr},
			}},
		},
	}
}

func guardItem(kind, email, ownerID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		fieldEmailGuard:   &types.AttributeValueMemberS{Value: emailGuardKey(kind, email)},
		fieldGuardOwnerID: &types.AttributeValueMemberS{Value: ownerID},
	}
}
