package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/MrKriegler/go-warranty/internal/core"
	"github.com/MrKriegler/go-warranty/internal/warranty"
)

type CustomerItem struct {
	FirstName string `dynamodbav:"first_name"`
	LastName  string `dynamodbav:"last_name"`
	Phone     string `dynamodbav:"phone,omitempty"`
}

type VehicleItem struct {
	Registration string `dynamodbav:"registration"`
	Make         string `dynamodbav:"make,omitempty"`
	Model        string `dynamodbav:"model,omitempty"`
	Mileage      int    `dynamodbav:"mileage"`
}

type CoverageItem struct {
	MOTFee        bool `dynamodbav:"mot_fee"`
	TyreCover     bool `dynamodbav:"tyre_cover"`
	WearTear      bool `dynamodbav:"wear_tear"`
	EuropeCover   bool `dynamodbav:"europe_cover"`
	TransferCover bool `dynamodbav:"transfer_cover"`
}

// customer_email is top level because the customer GSI keys on it.
type PolicyItem struct {
	ID             string       `dynamodbav:"id"`
	Number         string       `dynamodbav:"number"`
	OrderRef       string       `dynamodbav:"order_ref"`
	CustomerEmail  string       `dynamodbav:"customer_email"`
	Customer       CustomerItem `dynamodbav:"customer"`
	Vehicle        VehicleItem  `dynamodbav:"vehicle"`
	PlanTier       string       `dynamodbav:"plan_tier"`
	PaymentType    string       `dynamodbav:"payment_type"`
	DurationMonths int          `dynamodbav:"duration_months"`
	Coverage       CoverageItem `dynamodbav:"coverage"`
	DiscountCode   string       `dynamodbav:"discount_code,omitempty"`
	Status         string       `dynamodbav:"status"`
	StartDate      string       `dynamodbav:"start_date"`
	EndDate        string       `dynamodbav:"end_date"`
	IssuedAt       string       `dynamodbav:"issued_at"`
}

func (i PolicyItem) ToCore() core.Policy {
	return core.Policy{
		ID:       i.ID,
		Number:   i.Number,
		OrderRef: i.OrderRef,
		Customer: core.Customer{
			FirstName: i.Customer.FirstName,
			LastName:  i.Customer.LastName,
			Email:     i.CustomerEmail,
			Phone:     i.Customer.Phone,
		},
		Vehicle: core.Vehicle{
			Registration: i.Vehicle.Registration,
			Make:         i.Vehicle.Make,
			Model:        i.Vehicle.Model,
			Mileage:      i.Vehicle.Mileage,
		},
		PlanTier:       i.PlanTier,
		PaymentType:    i.PaymentType,
		DurationMonths: i.DurationMonths,
		Coverage: warranty.EligibilityMatrix{
			MOTFee:        i.Coverage.MOTFee,
			TyreCover:     i.Coverage.TyreCover,
			WearTear:      i.Coverage.WearTear,
			EuropeCover:   i.Coverage.EuropeCover,
			TransferCover: i.Coverage.TransferCover,
		},
		DiscountCode: i.DiscountCode,
		Status:       core.PolicyStatus(i.Status),
		StartDate:    parseTime(i.StartDate),
		EndDate:      parseTime(i.EndDate),
		IssuedAt:     parseTime(i.IssuedAt),
	}
}

func policyItemFromCore(p core.Policy) PolicyItem {
	return PolicyItem{
		ID:            p.ID,
		Number:        p.Number,
		OrderRef:      p.OrderRef,
		CustomerEmail: p.Customer.Email,
		Customer: CustomerItem{
			FirstName: p.Customer.FirstName,
			LastName:  p.Customer.LastName,
			Phone:     p.Customer.Phone,
		},
		Vehicle: VehicleItem{
			Registration: p.Vehicle.Registration,
			Make:         p.Vehicle.Make,
			Model:        p.Vehicle.Model,
			Mileage:      p.Vehicle.Mileage,
		},
		PlanTier:       p.PlanTier,
		PaymentType:    p.PaymentType,
		DurationMonths: p.DurationMonths,
		Coverage: CoverageItem{
			MOTFee:        p.Coverage.MOTFee,
			TyreCover:     p.Coverage.TyreCover,
			WearTear:      p.Coverage.WearTear,
			EuropeCover:   p.Coverage.EuropeCover,
			TransferCover: p.Coverage.TransferCover,
		},
		DiscountCode: p.DiscountCode,
		Status:       string(p.Status),
		StartDate:    formatTime(p.StartDate),
		EndDate:      formatTime(p.EndDate),
		IssuedAt:     formatTime(p.IssuedAt),
	}
}

// orderRefGuardKey names the counters-table item that reserves an order reference.
func orderRefGuardKey(orderRef string) string {
	return "order_ref#" + orderRef
}

type PolicyRepo struct {
	client *dynamodb.Client
	clock  func() time.Time
}

func NewPolicyRepo(client *dynamodb.Client) *PolicyRepo {
	return &PolicyRepo{client: client, clock: time.Now}
}

// Create writes the policy and an order reference guard in one transaction.
// GSIs do not enforce uniqueness, the guard item does.
func (r *PolicyRepo) Create(ctx context.Context, policy core.Policy) error {
	av, err := attributevalue.MarshalMap(policyItemFromCore(policy))
	if err != nil {
		return fmt.Errorf("policies.marshal: %w", err)
	}

	policyCond, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("id"))).Build()
	if err != nil {
		return fmt.Errorf("policies.buildExpr: %w", err)
	}
	guardCond, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name("counter_name"))).Build()
	if err != nil {
		return fmt.Errorf("policies.buildExpr: %w", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(TablePolicies),
				Item:                     av,
				ConditionExpression:      policyCond.Condition(),
				ExpressionAttributeNames: policyCond.Names(),
			}},
			{Put: &types.Put{
				TableName: aws.String(TableCounters),
				Item: map[string]types.AttributeValue{
					"counter_name": &types.AttributeValueMemberS{Value: orderRefGuardKey(policy.OrderRef)},
					"policy_id":    &types.AttributeValueMemberS{Value: policy.ID},
				},
				ConditionExpression:      guardCond.Condition(),
				ExpressionAttributeNames: guardCond.Names(),
			}},
		},
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			for _, reason := range tce.CancellationReasons {
				if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
					return core.ErrPolicyExists
				}
			}
		}
		return fmt.Errorf("policies.transactWrite: %w", err)
	}

	return nil
}

func (r *PolicyRepo) Get(ctx context.Context, id string) (core.Policy, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(TablePolicies),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return core.Policy{}, fmt.Errorf("policies.getItem: %w", err)
	}

	if out.Item == nil {
		return core.Policy{}, core.ErrPolicyNotFound
	}

	var item PolicyItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return core.Policy{}, fmt.Errorf("policies.unmarshal: %w", err)
	}

	return item.ToCore(), nil
}

func (r *PolicyRepo) queryOne(ctx context.Context, index, attr, value string) (core.Policy, error) {
	keyCond := expression.Key(attr).Equal(expression.Value(value))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return core.Policy{}, fmt.Errorf("policies.buildExpr: %w", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(TablePolicies),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return core.Policy{}, fmt.Errorf("policies.query %s: %w", index, err)
	}

	if len(out.Items) == 0 {
		return core.Policy{}, core.ErrPolicyNotFound
	}

	var item PolicyItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return core.Policy{}, fmt.Errorf("policies.unmarshal: %w", err)
	}

	return item.ToCore(), nil
}

func (r *PolicyRepo) GetByNumber(ctx context.Context, number string) (core.Policy, error) {
	return r.queryOne(ctx, GSIPoliciesNumber, "number", number)
}

func (r *PolicyRepo) GetByOrderRef(ctx context.Context, orderRef string) (core.Policy, error) {
	return r.queryOne(ctx, GSIPoliciesOrderRef, "order_ref", orderRef)
}

func (r *PolicyRepo) ListByCustomer(ctx context.Context, email string, limit, offset int) ([]core.Policy, int64, error) {
	keyCond := expression.Key("customer_email").Equal(expression.Value(email))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, 0, fmt.Errorf("policies.buildExpr: %w", err)
	}

	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(TablePolicies),
		IndexName:                 aws.String(GSIPoliciesCustomerEmail),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false), // newest first
	})

	var items []PolicyItem
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("policies.query: %w", err)
		}
		var batch []PolicyItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, 0, fmt.Errorf("policies.unmarshal: %w", err)
		}
		items = append(items, batch...)
	}

	total := int64(len(items))

	// Apply offset and limit manually (a customer has a handful of policies)
	if offset >= len(items) {
		return []core.Policy{}, total, nil
	}
	end := min(offset+limit, len(items))
	items = items[offset:end]

	policies := make([]core.Policy, len(items))
	for i, item := range items {
		policies[i] = item.ToCore()
	}

	return policies, total, nil
}

func (r *PolicyRepo) NextPolicyNumber(ctx context.Context) (string, error) {
	// Use atomic counter for policy numbers
	year := r.clock().UTC().Year()
	counterName := fmt.Sprintf("policy_number_%d", year)

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(TableCounters),
		Key: map[string]types.AttributeValue{
			"counter_name": &types.AttributeValueMemberS{Value: counterName},
		},
		UpdateExpression: aws.String("SET counter_value = if_not_exists(counter_value, :zero) + :inc"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":inc":  &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return "", fmt.Errorf("counters.updateItem: %w", err)
	}

	n, ok := out.Attributes["counter_value"].(*types.AttributeValueMemberN)
	if !ok {
		return "", fmt.Errorf("counters.updateItem: counter_value missing")
	}
	seq, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return "", fmt.Errorf("counters.parse: %w", err)
	}
	return fmt.Sprintf("WP-%d-%06d", year, seq), nil
}
