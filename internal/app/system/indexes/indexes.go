// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.

The unique indexes on access_grants and group_memberships are load-bearing:
they are the database-level backstop for "one grant per (user, product)" and
"one group per (user, product)" even if application-level locking misbehaves.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureProducts(ctx, db); err != nil {
		problems = append(problems, "products: "+err.Error())
	}
	if err := ensureLessons(ctx, db); err != nil {
		problems = append(problems, "lessons: "+err.Error())
	}
	if err := ensureGroups(ctx, db); err != nil {
		problems = append(problems, "groups: "+err.Error())
	}
	if err := ensureAccessGrants(ctx, db); err != nil {
		problems = append(problems, "access_grants: "+err.Error())
	}
	if err := ensureGroupMemberships(ctx, db); err != nil {
		problems = append(problems, "group_memberships: "+err.Error())
	}
	if err := ensureAllocationFailures(ctx, db); err != nil {
		problems = append(problems, "allocation_failures: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetName("uniq_email_ci").SetUnique(true),
		},
	})
}

func ensureProducts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("products"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "author_id", Value: 1}},
			Options: options.Index().SetName("by_author"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("by_name_ci"),
		},
	})
}

func ensureLessons(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("lessons"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("by_product"),
		},
	})
}

func ensureGroups(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("groups"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("uniq_product_name").SetUnique(true),
		},
	})
}

func ensureAccessGrants(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("access_grants"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "product_id", Value: 1}},
			Options: options.Index().SetName("uniq_user_product").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "product_id", Value: 1}},
			Options: options.Index().SetName("by_product"),
		},
	})
}

func ensureGroupMemberships(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("group_memberships"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_group_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("uniq_product_user").SetUnique(true),
		},
	})
}

func ensureAllocationFailures(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("allocation_failures"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "resolved", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_resolved"),
		},
		{
			Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "resolved", Value: 1}},
			Options: options.Index().SetName("by_product_user"),
		},
	})
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameUnique(a, b *bool) bool {
	av, bv := false, false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// ensureIndexSet makes the collection's indexes match the desired models.
// An existing index with the same key pattern and uniqueness is reused;
// one with different options is dropped and recreated.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, desired []mongo.IndexModel) error {
	existing := map[string]existingIndex{} // sig -> index
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return err
	}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	cur.Close(ctx)

	var errs []string
	for _, m := range desired {
		var wantName string
		var wantUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				wantName = *m.Options.Name
			}
			wantUnique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))

		if ex, ok := existing[sig]; ok && sameUnique(wantUnique, ex.Unique) {
			continue // same keys, same uniqueness: reuse
		} else if ok {
			// Options mismatch (e.g., upgrading to unique): drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), wantName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), wantName, err))
			continue
		}
		zap.L().Info("index created",
			zap.String("collection", coll.Name()),
			zap.String("name", wantName),
			zap.String("keys", sig),
			zap.Bool("unique", wantUnique != nil && *wantUnique))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
