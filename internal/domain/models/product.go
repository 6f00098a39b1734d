// internal/domain/models/product.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a sellable course. MinUsers/MaxUsers bound the size of each
// cohort group; MaxUsers is the capacity ceiling the allocator enforces.
type Product struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	AuthorID    primitive.ObjectID `bson:"author_id" json:"author_id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	StartDate   time.Time          `bson:"start_date" json:"start_date"`
	PriceCents  int64              `bson:"price_cents" json:"price_cents"`
	MinUsers    int                `bson:"min_users" json:"min_users"`
	MaxUsers    int                `bson:"max_users" json:"max_users"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
