// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	"github.com/coursedeck/coursedeck/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

// ErrDuplicateMembership fires on either unique index: the user is already
// in this group, or already placed in another group of the same product.
var ErrDuplicateMembership = errors.New("user is already placed in a group for this product")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_memberships")}
}

// Add commits a placement. The coordinator is the only writer; the unique
// (product_id, user_id) index is the backstop that keeps a user in at most
// one group per product even if locking ever fails.
func (s *Store) Add(ctx context.Context, groupID, userID, productID primitive.ObjectID) error {
	doc := models.GroupMembership{
		GroupID:   groupID,
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// FindForProduct returns the user's membership within the product, if any.
func (s *Store) FindForProduct(ctx context.Context, productID, userID primitive.ObjectID) (models.GroupMembership, bool, error) {
	var m models.GroupMembership
	err := s.c.FindOne(ctx, bson.M{"product_id": productID, "user_id": userID}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.GroupMembership{}, false, nil
		}
		return models.GroupMembership{}, false, err
	}
	return m, true, nil
}

// CountByGroup returns the group's current occupancy.
func (s *Store) CountByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"group_id": groupID})
}

// Remove deletes the membership document for (groupID, userID).
func (s *Store) Remove(ctx context.Context, groupID, userID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"group_id": groupID, "user_id": userID})
	return err
}
