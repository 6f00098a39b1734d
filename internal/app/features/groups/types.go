// internal/app/features/groups/types.go
package groups

import "go.mongodb.org/mongo-driver/bson/primitive"

type createGroupRequest struct {
	Name string `json:"name"`
}

// groupListItem is one row of the admin occupancy view.
type groupListItem struct {
	ID        primitive.ObjectID `json:"id"`
	Name      string             `json:"name"`
	Occupancy int                `json:"occupancy"`
	Capacity  int                `json:"capacity"`
	Full      bool               `json:"full"`
}
