package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrKriegler/go-warranty/internal/core"
	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DiscountRepoMongo struct {
	coll      *mongodrv.Collection
	opTimeout time.Duration
}

func NewDiscountRepo(db *mongodrv.Database, opTimeout time.Duration) *DiscountRepoMongo {
	return &DiscountRepoMongo{
		coll:      db.Collection(ColDiscountCodes),
		opTimeout: opTimeout,
	}
}

func (repo *DiscountRepoMongo) UpsertByCode(ctx context.Context, d core.DiscountCode) (core.DiscountCode, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	filter := bson.M{"code": d.Code}
	update := bson.M{
		"$set": bson.M{
			"type":        string(d.Type),
			"value":       d.Value,
			"valid_from":  d.ValidFrom,
			"valid_to":    d.ValidTo,
			"usage_limit": d.UsageLimit,
			"active":      d.Active,
			"archived":    d.Archived,
			"updated_at":  d.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":                 d.ID,
			"used_count":          d.UsedCount,
			"applicable_products": d.ApplicableProducts,
			"created_at":          d.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc DiscountCodeDoc
	err := repo.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		// Two upserts racing on a missing code: one insert loses on the unique index
		if mongodrv.IsDuplicateKeyError(err) {
			return core.DiscountCode{}, core.ErrDiscountConflict
		}
		return core.DiscountCode{}, fmt.Errorf("discount_codes.upsert: %w", err)
	}
	return fromDiscountCodeDoc(doc), nil
}

func (repo *DiscountRepoMongo) GetByCode(ctx context.Context, code string) (core.DiscountCode, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	var doc DiscountCodeDoc
	err := repo.coll.FindOne(ctx, bson.M{"code": code}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return core.DiscountCode{}, core.ErrDiscountNotFound
		}
		return core.DiscountCode{}, fmt.Errorf("discount_codes.findOne: %w", err)
	}
	return fromDiscountCodeDoc(doc), nil
}

func (repo *DiscountRepoMongo) List(ctx context.Context, includeArchived bool) ([]core.DiscountCode, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	filter := bson.M{}
	if !includeArchived {
		filter["archived"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})

	cursor, err := repo.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("discount_codes.find: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []DiscountCodeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("discount_codes.decode: %w", err)
	}

	out := make([]core.DiscountCode, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDiscountCodeDoc(d))
	}
	return out, nil
}

func (repo *DiscountRepoMongo) ExpireCodes(ctx context.Context, before time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.opTimeout)
	defer cancel()

	filter := bson.M{
		"archived": false,
		"valid_to": bson.M{"$lt": before},
	}
	update := bson.M{"$set": bson.M{
		"archived":   true,
		"updated_at": time.Now().UTC(),
	}}

	res, err := repo.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("discount_codes.expire: %w", err)
	}
	return res.ModifiedCount, nil
}
