// internal/domain/models/access.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccessGrant records that a user has paid for (or been given) a product.
// Exactly one document per (user_id, product_id); the unique index enforces it.
//
// The grant is the source of truth for entitlement. Group placement is a
// secondary concern handled by the assignment coordinator and must never
// cause a grant to be revoked.
type AccessGrant struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	ProductID   primitive.ObjectID `bson:"product_id" json:"product_id"`
	PurchaseRef string             `bson:"purchase_ref" json:"purchase_ref"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
