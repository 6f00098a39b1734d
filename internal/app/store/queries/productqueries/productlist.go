// Package productqueries provides complex read-only queries for products.
package productqueries

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProductListItem holds the result of the catalog list query with the
// computed lesson count.
type ProductListItem struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	AuthorID   primitive.ObjectID `bson:"author_id" json:"author_id"`
	Name       string             `bson:"name" json:"name"`
	StartDate  time.Time          `bson:"start_date" json:"start_date"`
	PriceCents int64              `bson:"price_cents" json:"price_cents"`
	NumLessons int                `bson:"num_lessons" json:"num_lessons"`
}

// ListWithLessonCounts fetches the product catalog ordered by _id with a
// per-product lesson count computed in a single aggregation.
func ListWithLessonCounts(ctx context.Context, db *mongo.Database) ([]ProductListItem, error) {
	pipe := mongo.Pipeline{
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": "lessons",
			"let":  bson.M{"pid": "$_id"},
			"pipeline": []bson.M{
				{"$match": bson.M{"$expr": bson.M{"$eq": []string{"$product_id", "$$pid"}}}},
				{"$count": "count"},
			},
			"as": "lessons",
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":         1,
			"author_id":   1,
			"name":        1,
			"start_date":  1,
			"price_cents": 1,
			"num_lessons": bson.M{"$ifNull": []interface{}{
				bson.M{"$arrayElemAt": []interface{}{"$lessons.count", 0}},
				0,
			}},
		}}},
	}

	cur, err := db.Collection("products").Aggregate(ctx, pipe)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []ProductListItem
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
