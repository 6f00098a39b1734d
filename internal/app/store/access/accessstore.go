// internal/app/store/access/accessstore.go
package accessstore

import (
	"context"
	"errors"
	"time"

	"github.com/coursedeck/coursedeck/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

// ErrDuplicateGrant means the user already holds access to the product.
// The unique (user_id, product_id) index enforces this; callers must not
// re-fire allocation when they see it.
var ErrDuplicateGrant = errors.New("user already has access to this product")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("access_grants")}
}

// Grant records that a user now has access to a product. A blank
// purchaseRef gets a generated one so every grant is traceable to a
// purchase event.
func (s *Store) Grant(ctx context.Context, userID, productID primitive.ObjectID, purchaseRef string) (models.AccessGrant, error) {
	if purchaseRef == "" {
		purchaseRef = uuid.NewString()
	}
	g := models.AccessGrant{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		ProductID:   productID,
		PurchaseRef: purchaseRef,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return models.AccessGrant{}, ErrDuplicateGrant
		}
		return models.AccessGrant{}, err
	}
	return g, nil
}

// Has reports whether the user holds an access grant for the product.
func (s *Store) Has(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"user_id": userID, "product_id": productID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByUser returns all grants held by a user.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.AccessGrant, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var grants []models.AccessGrant
	if err := cur.All(ctx, &grants); err != nil {
		return nil, err
	}
	return grants, nil
}

// Revoke deletes the grant for (userID, productID). Revoking access does
// not remove an existing group membership; that cleanup is an operator
// decision.
func (s *Store) Revoke(ctx context.Context, userID, productID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "product_id": productID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
