package repository

import (
	"context"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type AnalyticsRepository interface {
	Insert(ctx context.Context, e *domain.AnalyticsEvent) error
	// CountByAction groups events since the given time. An empty artistID
	// counts across the platform.
	CountByAction(ctx context.Context, artistID string, since time.Time) (map[domain.AnalyticsAction]int64, error)
}

type analyticsRepository struct {
	collection *mongo.Collection
}

func NewAnalyticsRepository(db *mongo.Database) AnalyticsRepository {
	collection := db.Collection("analytics")

	ensureIndexes(collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "artist_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})

	return &analyticsRepository{collection: collection}
}

func (r *analyticsRepository) Insert(ctx context.Context, e *domain.AnalyticsEvent) error {
	return insertOne(ctx, r.collection, e)
}

func (r *analyticsRepository) CountByAction(ctx context.Context, artistID string, since time.Time) (map[domain.AnalyticsAction]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	match := bson.M{"created_at": bson.M{"$gte": since}}
	if artistID != "" {
		match["artist_id"] = artistID
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$action", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Action domain.AnalyticsAction `bson:"_id"`
		Count  int64                  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[domain.AnalyticsAction]int64, len(rows))
	for _, row := range rows {
		out[row.Action] = row.Count
	}
	return out, nil
}
