package dynamo

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrKriegler/go-warranty/internal/core"
	"github.com/MrKriegler/go-warranty/internal/warranty"
)

func TestPolicyItemRoundTrip(t *testing.T) {
	issued := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	p := core.Policy{
		ID:             "p1",
		Number:         "WP-2025-000001",
		OrderRef:       "ord_1",
		Customer:       core.Customer{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		Vehicle:        core.Vehicle{Registration: "AB12CDE", Mileage: 1000},
		PlanTier:       "Gold",
		PaymentType:    "two_yearly",
		DurationMonths: 24,
		Coverage:       warranty.Coverage("gold"),
		Status:         core.PolicyStatusActive,
		StartDate:      issued,
		EndDate:        issued.AddDate(2, 0, 0),
		IssuedAt:       issued,
	}

	av, err := attributevalue.MarshalMap(policyItemFromCore(p))
	require.NoError(t, err)

	email, ok := av["customer_email"].(*types.AttributeValueMemberS)
	require.True(t, ok, "customer GSI needs a top-level string key")
	assert.Equal(t, "ada@example.com", email.Value)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "2025-06-01T09:30:00.000000000Z"}, av["issued_at"])

	var item PolicyItem
	require.NoError(t, attributevalue.UnmarshalMap(av, &item))
	assert.Equal(t, p, item.ToCore())
}

func TestUpsertExpressionRemovesUsageLimit(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	expr, err := upsertExpression(core.DiscountCode{
		ID:        "d1",
		Code:      "EMAIL25SAVE",
		Type:      core.DiscountTypeFixed,
		Value:     25,
		ValidFrom: now,
		ValidTo:   now.AddDate(0, 0, 30),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)

	update := aws.ToString(expr.Update())
	assert.Contains(t, update, "REMOVE")
	assert.Contains(t, update, "if_not_exists")

	var names []string
	for _, n := range expr.Names() {
		names = append(names, n)
	}
	assert.Contains(t, names, "usage_limit")
	assert.Contains(t, names, "used_count")
	assert.NotContains(t, names, "code", "the key attribute cannot be updated")
}

func TestUpsertExpressionSetsUsageLimit(t *testing.T) {
	limit := 10
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	expr, err := upsertExpression(core.DiscountCode{
		Code: "LIMITED", Type: core.DiscountTypePercentage, Value: 10,
		ValidFrom: now, ValidTo: now.Add(time.Hour), UsageLimit: &limit,
	})
	require.NoError(t, err)
	assert.NotContains(t, aws.ToString(expr.Update()), "REMOVE")
}

func TestDiscountCodeItemTimes(t *testing.T) {
	item := DiscountCodeItem{
		Code:      "EMAIL25SAVE",
		ValidFrom: formatTime(time.Date(2025, 3, 1, 11, 0, 0, 0, time.FixedZone("BST", 3600))),
		ValidTo:   "2025-03-31T10:00:00Z",
	}
	d := item.ToCore()
	assert.Equal(t, "2025-03-01T10:00:00.000000000Z", item.ValidFrom)
	assert.Equal(t, time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC), d.ValidTo)
	assert.Nil(t, d.UsageLimit)
}

func TestFormatTimeOrdersSubSecondValues(t *testing.T) {
	base := time.Date(2025, 3, 31, 10, 0, 0, 0, time.UTC)
	times := []time.Time{
		base,
		base.Add(5 * time.Millisecond),
		base.Add(500 * time.Millisecond),
		base.Add(520 * time.Millisecond),
		base.Add(time.Second),
	}
	for i := 1; i < len(times); i++ {
		prev, cur := formatTime(times[i-1]), formatTime(times[i])
		assert.Less(t, prev, cur)
		assert.Len(t, cur, len(prev))
	}
	assert.Equal(t, base.Add(520*time.Millisecond), parseTime(formatTime(base.Add(520*time.Millisecond))))
}

func TestLocalCredentials(t *testing.T) {
	assert.Nil(t, Config{Region: "eu-west-2"}.localCredentials())

	creds, err := Config{Endpoint: "http://localhost:8000"}.localCredentials().Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "local", creds.AccessKeyID)
	assert.Equal(t, "local", creds.SecretAccessKey)

	creds, err = Config{Endpoint: "http://localhost:8000", AccessKeyID: "AKID", SecretAccessKey: "s3cr3t"}.
		localCredentials().Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKID", creds.AccessKeyID)
}

func TestTableActive(t *testing.T) {
	assert.NoError(t, tableActive(TableDiscountCodes, &types.TableDescription{TableStatus: types.TableStatusActive}))

	err := tableActive(TableDiscountCodes, &types.TableDescription{TableStatus: types.TableStatusCreating})
	require.Error(t, err)
	assert.Contains(t, err.Error(), TableDiscountCodes)
	assert.Contains(t, err.Error(), "CREATING")

	assert.Error(t, tableActive(TablePolicies, nil))
}

func TestPoliciesTableDefinition(t *testing.T) {
	var spec tableSpec
	for _, s := range tableSpecs {
		if s.name == TablePolicies {
			spec = s
		}
	}
	in := spec.createInput()

	var attrs []string
	for _, a := range in.AttributeDefinitions {
		attrs = append(attrs, aws.ToString(a.AttributeName))
	}
	assert.ElementsMatch(t, []string{"id", "number", "order_ref", "customer_email", "issued_at"}, attrs)
	require.Len(t, in.GlobalSecondaryIndexes, 3)

	email := in.GlobalSecondaryIndexes[2]
	assert.Equal(t, GSIPoliciesCustomerEmail, aws.ToString(email.IndexName))
	require.Len(t, email.KeySchema, 2)
	assert.Equal(t, types.KeyTypeRange, email.KeySchema[1].KeyType)
}
