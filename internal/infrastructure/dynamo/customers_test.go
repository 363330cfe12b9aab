package dynamo

import (
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-auth-onboarding/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFailedOTPInput_ConditionedOnLimit(t *testing.T) {
	in := recordFailedOTPInput("customers", "cust-1", 5)

	assert.Equal(t, "ADD #n :one", aws.ToString(in.UpdateExpression))
	assert.Equal(t, "attribute_exists(customer_id) AND #n < :max", aws.ToString(in.ConditionExpression))
	assert.Equal(t, fieldOTPAttempts, in.ExpressionAttributeNames["#n"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "5"}, in.ExpressionAttributeValues[":max"])
	assert.Equal(t, types.ReturnValuesOnConditionCheckFailureAllOld, in.ReturnValuesOnConditionCheckFailure)
}

func TestConsumeOTPInput_GuardsEveryInvariant(t *testing.T) {
	since := time.Date(2026, 3, 1, 11, 50, 0, 123456789, time.UTC)
	in, err := consumeOTPInput("customers", "cust-1", 42, domain.OTPCheck{MaxAttempts: 5, IssuedSince: since}, since)
	require.NoError(t, err)

	assert.Equal(t, "#o = :code AND #v = :f AND #n < :max AND #oi >= :cutoff", aws.ToString(in.ConditionExpression))
	assert.Equal(t, "SET #v = :t, #u = :now REMOVE #o, #oi", aws.ToString(in.UpdateExpression))
	assert.Equal(t, map[string]string{
		"#v":  fieldIsVerified,
		"#u":  fieldUpdatedAt,
		"#o":  fieldOTP,
		"#oi": fieldOTPIssuedAt,
		"#n":  fieldOTPAttempts,
	}, in.ExpressionAttributeNames)
	assert.Equal(t, &types.AttributeValueMemberN{Value: "42"}, in.ExpressionAttributeValues[":code"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "5"}, in.ExpressionAttributeValues[":max"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "2026-03-01T11:50:00Z"}, in.ExpressionAttributeValues[":cutoff"])
	assert.Equal(t, types.ReturnValuesOnConditionCheckFailureAllOld, in.ReturnValuesOnConditionCheckFailure)
}

func TestOTPTimestamp_OrdersLexically(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 59, 59, 900000000, time.FixedZone("IST", 5*3600+1800))
	earlier := otpTimestamp(base)
	later := otpTimestamp(base.Add(2 * time.Second))

	assert.Equal(t, "2026-03-01T04:29:59Z", earlier)
	assert.Len(t, later, len(earlier))
	assert.Less(t, earlier, later)
}

func TestConditionFailedItem(t *testing.T) {
	item, failed := conditionFailedItem(&types.ConditionalCheckFailedException{
		Item: map[string]types.AttributeValue{"customer_id": &types.AttributeValueMemberS{Value: "cust-1"}},
	})
	assert.True(t, failed)
	assert.Len(t, item, 1)

	item, failed = conditionFailedItem(&types.ConditionalCheckFailedException{})
	assert.True(t, failed)
	assert.Empty(t, item)

	_, failed = conditionFailedItem(errors.New("throttled"))
	assert.False(t, failed)

	_, failed = conditionFailedItem(nil)
	assert.False(t, failed)
}

func TestIdentityCreateTx_GuardsEmailAndKey(t *testing.T) {
	item := map[string]types.AttributeValue{"admin_id": &types.AttributeValueMemberS{Value: "adm-1"}}
	in := identityCreateTx("emails", guardAdmin, "Ops@Example.com", "adm-1", "admins", "admin_id", item)

	require.Len(t, in.TransactItems, 2)
	guard := in.TransactItems[0].Put
	assert.Equal(t, "emails", aws.ToString(guard.TableName))
	assert.Equal(t, "attribute_not_exists(#e)", aws.ToString(guard.ConditionExpression))
	assert.Equal(t, &types.AttributeValueMemberS{Value: emailGuardKey(guardAdmin, "Ops@Example.com")}, guard.Item[fieldEmailGuard])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "adm-1"}, guard.Item[fieldGuardOwnerID])

	record := in.TransactItems[1].Put
	assert.Equal(t, "admins", aws.ToString(record.TableName))
	assert.Equal(t, "attribute_not_exists(#k)", aws.ToString(record.ConditionExpression))
	assert.Equal(t, "admin_id", record.ExpressionAttributeNames["#k"])
	assert.Equal(t, item, record.Item)
}
