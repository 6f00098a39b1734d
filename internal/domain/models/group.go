// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a capacity-bounded cohort inside one product.
//
// NOTE:
//   - Student lists are not embedded on Group. All placement is stored in
//     the group_memberships collection; occupancy is derived by counting it.
//   - The capacity ceiling is the owning product's MaxUsers, not a field
//     on the group document.
type Group struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
