package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/MrKriegler/go-warranty/internal/core"
)

// Times are fixed-width UTC strings (see timeLayout) so range conditions
// compare lexicographically.
type DiscountCodeItem struct {
	Code               string   `dynamodbav:"code"`
	ID                 string   `dynamodbav:"id"`
	Type               string   `dynamodbav:"type"`
	Value              float64  `dynamodbav:"value"`
	ValidFrom          string   `dynamodbav:"valid_from"`
	ValidTo            string   `dynamodbav:"valid_to"`
	UsageLimit         *int     `dynamodbav:"usage_limit,omitempty"`
	UsedCount          int      `dynamodbav:"used_count"`
	Active             bool     `dynamodbav:"active"`
	Archived           bool     `dynamodbav:"archived"`
	ApplicableProducts []string `dynamodbav:"applicable_products"`
	CreatedAt          string   `dynamodbav:"created_at"`
	UpdatedAt          string   `dynamodbav:"updated_at"`
}

func (i DiscountCodeItem) ToCore() core.DiscountCode {
	return core.DiscountCode{
		ID:                 i.ID,
		Code:               i.Code,
		Type:               core.DiscountType(i.Type),
		Value:              i.Value,
		ValidFrom:          parseTime(i.ValidFrom),
		ValidTo:            parseTime(i.ValidTo),
		UsageLimit:         i.UsageLimit,
		UsedCount:          i.UsedCount,
		Active:             i.Active,
		Archived:           i.Archived,
		ApplicableProducts: i.ApplicableProducts,
		CreatedAt:          parseTime(i.CreatedAt),
		UpdatedAt:          parseTime(i.UpdatedAt),
	}
}

// timeLayout keeps all nine fractional digits; RFC3339Nano trims trailing
// zeros and would break string ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t.UTC()
}

type DiscountRepo struct {
	client *dynamodb.Client
}

func NewDiscountRepo(client *dynamodb.Client) *DiscountRepo {
	return &DiscountRepo{client: client}
}

// upsertExpression overwrites the campaign fields and fills the identity
// fields only when the item is new.
func upsertExpression(d core.DiscountCode) (expression.Expression, error) {
	products := d.ApplicableProducts
	if products == nil {
		products = []string{}
	}

	update := expression.
		Set(expression.Name("type"), expression.Value(string(d.Type))).
		Set(expression.Name("value"), expression.Value(d.Value)).
		Set(expression.Name("valid_from"), expression.Value(formatTime(d.ValidFrom))).
		Set(expression.Name("valid_to"), expression.Value(formatTime(d.ValidTo))).
		Set(expression.Name("active"), expression.Value(d.Active)).
		Set(expression.Name("archived"), expression.Value(d.Archived)).
		Set(expression.Name("updated_at"), expression.Value(formatTime(d.UpdatedAt))).
		Set(expression.Name("id"), expression.IfNotExists(expression.Name("id"), expression.Value(d.ID))).
		Set(expression.Name("used_count"), expression.IfNotExists(expression.Name("used_count"), expression.Value(d.UsedCount))).
		Set(expression.Name("applicable_products"), expression.IfNotExists(expression.Name("applicable_products"), expression.Value(products))).
		Set(expression.Name("created_at"), expression.IfNotExists(expression.Name("created_at"), expression.Value(formatTime(d.CreatedAt))))

	if d.UsageLimit != nil {
		update = update.Set(expression.Name("usage_limit"), expression.Value(*d.UsageLimit))
	} else {
		update = update.Remove(expression.Name("usage_limit"))
	}

	return expression.NewBuilder().WithUpdate(update).Build()
}

// UpsertByCode is a single UpdateItem on the code key, so concurrent
// refreshes serialize inside DynamoDB and never collide.
func (r *DiscountRepo) UpsertByCode(ctx context.Context, d core.DiscountCode) (core.DiscountCode, error) {
	expr, err := upsertExpression(d)
	if err != nil {
		return core.DiscountCode{}, fmt.Errorf("discount_codes.buildExpr: %w", err)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(TableDiscountCodes),
		Key: map[string]types.AttributeValue{
			"code": &types.AttributeValueMemberS{Value: d.Code},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return core.DiscountCode{}, fmt.Errorf("discount_codes.updateItem: %w", err)
	}

	var item DiscountCodeItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return core.DiscountCode{}, fmt.Errorf("discount_codes.unmarshal: %w", err)
	}
	return item.ToCore(), nil
}

func (r *DiscountRepo) GetByCode(ctx context.Context, code string) (core.DiscountCode, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(TableDiscountCodes),
		Key: map[string]types.AttributeValue{
			"code": &types.AttributeValueMemberS{Value: code},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return core.DiscountCode{}, fmt.Errorf("discount_codes.getItem: %w", err)
	}
	if out.Item == nil {
		return core.DiscountCode{}, core.ErrDiscountNotFound
	}

	var item DiscountCodeItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return core.DiscountCode{}, fmt.Errorf("discount_codes.unmarshal: %w", err)
	}
	return item.ToCore(), nil
}

func (r *DiscountRepo) scan(ctx context.Context, filter *expression.ConditionBuilder) ([]DiscountCodeItem, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(TableDiscountCodes)}
	if filter != nil {
		expr, err := expression.NewBuilder().WithFilter(*filter).Build()
		if err != nil {
			return nil, fmt.Errorf("discount_codes.buildExpr: %w", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	var items []DiscountCodeItem
	p := dynamodb.NewScanPaginator(r.client, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("discount_codes.scan: %w", err)
		}
		var batch []DiscountCodeItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("discount_codes.unmarshal: %w", err)
		}
		items = append(items, batch...)
	}
	return items, nil
}

func (r *DiscountRepo) List(ctx context.Context, includeArchived bool) ([]core.DiscountCode, error) {
	var filter *expression.ConditionBuilder
	if !includeArchived {
		cond := expression.Name("archived").Equal(expression.Value(false))
		filter = &cond
	}

	items, err := r.scan(ctx, filter)
	if err != nil {
		return nil, err
	}
	sort.Slice(items, func(a, b int) bool { return items[a].Code < items[b].Code })

	out := make([]core.DiscountCode, len(items))
	for i, item := range items {
		out[i] = item.ToCore()
	}
	return out, nil
}

// expiredCondition matches unarchived codes whose window closed before cutoff.
func expiredCondition(before time.Time) expression.ConditionBuilder {
	return expression.Name("archived").Equal(expression.Value(false)).
		And(expression.Name("valid_to").LessThan(expression.Value(formatTime(before))))
}

// ExpireCodes has no server-side procedure to call on DynamoDB, so it scans for
// candidates and archives each with a conditional update. A code refreshed
// between the scan and the update fails the condition and is left alone.
func (r *DiscountRepo) ExpireCodes(ctx context.Context, before time.Time) (int64, error) {
	cond := expiredCondition(before)
	candidates, err := r.scan(ctx, &cond)
	if err != nil {
		return 0, err
	}

	update := expression.
		Set(expression.Name("archived"), expression.Value(true)).
		Set(expression.Name("updated_at"), expression.Value(formatTime(time.Now())))
	expr, err := expression.NewBuilder().WithCondition(cond).WithUpdate(update).Build()
	if err != nil {
		return 0, fmt.Errorf("discount_codes.buildExpr: %w", err)
	}

	var archived int64
	for _, c := range candidates {
		_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName: aws.String(TableDiscountCodes),
			Key: map[string]types.AttributeValue{
				"code": &types.AttributeValueMemberS{Value: c.Code},
			},
			ConditionExpression:       expr.Condition(),
			UpdateExpression:          expr.Update(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		})
		if err != nil {
			var ccf *types.ConditionalCheckFailedException
			if errors.As(err, &ccf) {
				continue
			}
			return archived, fmt.Errorf("discount_codes.archive %s: %w", c.Code, err)
		}
		archived++
	}
	return archived, nil
}
