// internal/app/store/allocfailures/failurestore.go
package allocfailurestore

import (
	"context"
	"time"

	"github.com/coursedeck/coursedeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("allocation_failures")}
}

// Record notes that a grant could not be placed. Upserts on
// (product_id, user_id, resolved=false) so repeated attempts against a full
// product do not pile up duplicate records.
func (s *Store) Record(ctx context.Context, productID, userID primitive.ObjectID, reason string) error {
	filter := bson.M{
		"product_id": productID,
		"user_id":    userID,
		"resolved":   false,
	}
	update := bson.M{
		"$set": bson.M{"reason": reason},
		"$setOnInsert": bson.M{
			"product_id": productID,
			"user_id":    userID,
			"resolved":   false,
			"created_at": time.Now().UTC(),
		},
	}
	_, err := s.c.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.AllocationFailure, error) {
	var f models.AllocationFailure
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return models.AllocationFailure{}, err
	}
	return f, nil
}

// ListUnresolved returns open failures, newest first, for the operator
// dashboard.
func (s *Store) ListUnresolved(ctx context.Context) ([]models.AllocationFailure, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"resolved": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var failures []models.AllocationFailure
	if err := cur.All(ctx, &failures); err != nil {
		return nil, err
	}
	return failures, nil
}

// ResolveFor closes any open failure for (productID, userID). Called when a
// later allocation attempt succeeds. Returns the number of records closed.
func (s *Store) ResolveFor(ctx context.Context, productID, userID primitive.ObjectID) (int64, error) {
	now := time.Now().UTC()
	res, err := s.c.UpdateMany(ctx,
		bson.M{"product_id": productID, "user_id": userID, "resolved": false},
		bson.M{"$set": bson.M{"resolved": true, "resolved_at": now}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
