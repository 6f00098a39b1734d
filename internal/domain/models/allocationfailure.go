// internal/domain/models/allocationfailure.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Allocation failure reasons.
const (
	FailureExhausted = "exhausted" // every group for the product is at capacity
	FailureNoGroups  = "no_groups" // the product has no groups at all
)

// AllocationFailure records a grant that could not be placed into a group.
// The user keeps product access; the record exists so an operator can raise
// capacity or open a new group and retry the placement.
type AllocationFailure struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID  primitive.ObjectID `bson:"product_id" json:"product_id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Reason     string             `bson:"reason" json:"reason"` // exhausted | no_groups
	Resolved   bool               `bson:"resolved" json:"resolved"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	ResolvedAt *time.Time         `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
}
