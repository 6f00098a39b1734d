// Package groupoccupancy provides the read-only occupancy query that feeds
// the allocation snapshot.
package groupoccupancy

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GroupCount holds one group's derived occupancy.
type GroupCount struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Occupancy int                `bson:"occupancy"`
}

// ForProduct returns all of a product's groups with their current
// membership counts, in ascending _id order. The ordering matters: the
// allocator's tie-breaks are defined against it, and the coordinator
// captures this result as the point-in-time snapshot for one decision.
func ForProduct(ctx context.Context, db *mongo.Database, productID primitive.ObjectID) ([]GroupCount, error) {
	pipe := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"product_id": productID}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": "group_memberships",
			"let":  bson.M{"gid": "$_id"},
			"pipeline": []bson.M{
				{"$match": bson.M{"$expr": bson.M{"$eq": []string{"$group_id", "$$gid"}}}},
				{"$count": "count"},
			},
			"as": "members",
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":  1,
			"name": 1,
			"occupancy": bson.M{"$ifNull": []interface{}{
				bson.M{"$arrayElemAt": []interface{}{"$members.count", 0}},
				0,
			}},
		}}},
	}

	cur, err := db.Collection("groups").Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var counts []GroupCount
	if err := cur.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}
