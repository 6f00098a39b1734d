// internal/app/store/products/productstore.go
package productstore

import (
	"context"
	"time"

	"github.com/coursedeck/coursedeck/internal/app/system/htmlsanitize"
	"github.com/coursedeck/coursedeck/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("products")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var p models.Product
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (s *Store) Create(ctx context.Context, p models.Product) (models.Product, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.NameCI = text.Fold(p.Name)
	p.Description = htmlsanitize.Sanitize(p.Description)
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// UpdateInfo updates the editable product fields. Capacity changes
// (max_users) take effect on the next allocation; existing placements are
// never re-balanced.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, name, desc string, priceCents int64, minUsers, maxUsers int) error {
	set := bson.M{
		"updated_at":  time.Now().UTC(),
		"description": htmlsanitize.Sanitize(desc),
		"price_cents": priceCents,
		"min_users":   minUsers,
		"max_users":   maxUsers,
	}
	if name != "" {
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

// Delete removes a product and cascades to its lessons, groups, grants,
// memberships, and allocation failures.
func (s *Store) Delete(ctx context.Context, db *mongo.Database, id primitive.ObjectID) error {
	filter := bson.M{"product_id": id}
	for _, coll := range []string{"lessons", "groups", "access_grants", "group_memberships", "allocation_failures"} {
		if _, err := db.Collection(coll).DeleteMany(ctx, filter); err != nil {
			return err
		}
	}
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
