package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Table names
const (
	TableDiscountCodes = "warranty_discount_codes"
	TablePolicies      = "warranty_policies"
	TableCounters      = "warranty_counters" // policy numbers and order reference guards
)

// GSI names
const (
	GSIPoliciesNumber        = "number-index"
	GSIPoliciesOrderRef      = "order_ref-index"
	GSIPoliciesCustomerEmail = "customer_email-index"
)

// tableSpec declares a table: hash key, optional GSIs, all string-typed keys.
type tableSpec struct {
	name string
	hash string
	gsis []gsiSpec
}

type gsiSpec struct {
	name     string
	hash     string
	rangeKey string
}

var tableSpecs = []tableSpec{
	// The code is the partition key so the campaign upsert is a single-item update.
	{name: TableDiscountCodes, hash: "code"},
	{name: TablePolicies, hash: "id", gsis: []gsiSpec{
		{name: GSIPoliciesNumber, hash: "number"},
		{name: GSIPoliciesOrderRef, hash: "order_ref"},
		{name: GSIPoliciesCustomerEmail, hash: "customer_email", rangeKey: "issued_at"},
	}},
	{name: TableCounters, hash: "counter_name"},
}

// EnsureTables creates missing tables and waits until each one is active.
func EnsureTables(ctx context.Context, client *dynamodb.Client, log *slog.Logger) error {
	for _, spec := range tableSpecs {
		exists, err := tableExists(ctx, client, spec.name)
		if err != nil {
			return fmt.Errorf("check table %s: %w", spec.name, err)
		}
		if exists {
			log.Debug("table exists", "table", spec.name)
			continue
		}

		log.Info("creating table", "table", spec.name)
		if _, err := client.CreateTable(ctx, spec.createInput()); err != nil {
			return fmt.Errorf("create table %s: %w", spec.name, err)
		}

		waiter := dynamodb.NewTableExistsWaiter(client)
		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(spec.name)}, 2*time.Minute); err != nil {
			return fmt.Errorf("wait for table %s: %w", spec.name, err)
		}
		log.Info("table created", "table", spec.name)
	}

	return nil
}

func tableExists(ctx context.Context, client *dynamodb.Client, name string) (bool, error) {
	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(name),
	})
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return false, nil
	}
	return err == nil, err
}

func (t tableSpec) createInput() *dynamodb.CreateTableInput {
	seen := map[string]bool{}
	var attrs []types.AttributeDefinition
	define := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		attrs = append(attrs, types.AttributeDefinition{
			AttributeName: aws.String(name),
			AttributeType: types.ScalarAttributeTypeS,
		})
	}

	define(t.hash)
	in := &dynamodb.CreateTableInput{
		TableName:   aws.String(t.name),
		KeySchema:   keySchema(t.hash, ""),
		BillingMode: types.BillingModePayPerRequest,
	}
	for _, g := range t.gsis {
		define(g.hash)
		define(g.rangeKey)
		in.GlobalSecondaryIndexes = append(in.GlobalSecondaryIndexes, types.GlobalSecondaryIndex{
			IndexName:  aws.String(g.name),
			KeySchema:  keySchema(g.hash, g.rangeKey),
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}
	in.AttributeDefinitions = attrs
	return in
}

func keySchema(hash, rangeKey string) []types.KeySchemaElement {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hash), KeyType: types.KeyTypeHash},
	}
	if rangeKey != "" {
		ks = append(ks, types.KeySchemaElement{AttributeName: aws.String(rangeKey), KeyType: types.KeyTypeRange})
	}
	return ks
}
