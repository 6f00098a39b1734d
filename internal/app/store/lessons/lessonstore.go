// internal/app/store/lessons/lessonstore.go
package lessonstore

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
	return &Store{c: db.Collection("lessons")}
}

func (s *Store) Create(ctx context.Context, l models.Lesson) (models.Lesson, error) {
	now := time.Now().UTC()
	l.ID = primitive.NewObjectID()
	l.CreatedAt = now
	l.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.Lesson{}, err
	}
	return l, nil
}

// ListByProduct returns the product's lessons in insertion (_id) order.
func (s *Store) ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Lesson, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"product_id": productID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var lessons []models.Lesson
	if err := cur.All(ctx, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

func (s *Store) CountByProduct(ctx context.Context, productID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"product_id": productID})
}

// Delete removes a lesson by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
