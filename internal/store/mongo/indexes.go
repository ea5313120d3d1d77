package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := ensureDiscountCodesIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure discount_codes indexes: %w", err)
	}
	if err := ensurePoliciesIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure policies indexes: %w", err)
	}
	return nil
}

func ensureDiscountCodesIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(ColDiscountCodes)
	models := []mongo.IndexModel{
		newIndex("code", 1, "discount_codes_code_unique", true),
		// the expiry sweep filters on both
		{Keys: bson.D{{Key: "archived", Value: 1}, {Key: "valid_to", Value: 1}},
			Options: options.Index().SetName("discount_codes_archived_valid_to"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}

func ensurePoliciesIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(ColPolicies)
	models := []mongo.IndexModel{
		newIndex("number", 1, "policies_number_unique", true),
		newIndex("order_ref", 1, "policies_order_ref_unique", true),
		{Keys: bson.D{{Key: "customer.email", Value: 1}, {Key: "issued_at", Value: -1}},
			Options: options.Index().SetName("policies_customer_email_issued_at"),
		},
	}
	_, err := coll.Indexes().CreateMany(ctx, models)
	return err
}

func newIndex(field string, asc int32, name string, unique bool) mongo.IndexModel {
	opts := options.Index().SetName(name)
	if unique {
		opts = opts.SetUnique(true)
	}
	return mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: asc}},
		Options: opts,
	}
}
