package repository

import (
	"context"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, s *domain.Subscription) error
	FindByID(ctx context.Context, id string) (*domain.Subscription, error)
	FindActive(ctx context.Context, fanID, artistID string) (*domain.Subscription, error)
	ListByFan(ctx context.Context, fanID string) ([]*domain.Subscription, error)
	ListByArtist(ctx context.Context, artistID string, page Page) ([]*domain.Subscription, error)
	CountActiveByArtist(ctx context.Context, artistID string) (int64, error)
	Deactivate(ctx context.Context, id string) error
}

type subscriptionRepository struct {
	collection *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) SubscriptionRepository {
	collection := db.Collection("subscriptions")

	ensureIndexes(collection, subscriptionIndexes())

	return &subscriptionRepository{collection: collection}
}

// subscriptionIndexes allows one active subscription per fan and artist.
// Cancelled rows fall outside the partial filter, so a fan can resubscribe.
func subscriptionIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{
			Keys:    bson.D{{Key: "fan_id", Value: 1}, {Key: "artist_id", Value: 1}},
			Options: options.Index().
				SetName("active_fan_artist").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{Keys: bson.D{{Key: "fan_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "artist_id", Value: 1}, {Key: "active", Value: 1}}},
	}
}

func (r *subscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	return insertOne(ctx, r.collection, s)
}

func (r *subscriptionRepository) FindByID(ctx context.Context, id string) (*domain.Subscription, error) {
	return findOne[domain.Subscription](ctx, r.collection, bson.M{"id": id})
}

func (r *subscriptionRepository) FindActive(ctx context.Context, fanID, artistID string) (*domain.Subscription, error) {
	return findOne[domain.Subscription](ctx, r.collection, bson.M{
		"fan_id":    fanID,
		"artist_id": artistID,
		"active":    true,
	})
}

func (r *subscriptionRepository) ListByFan(ctx context.Context, fanID string) ([]*domain.Subscription, error) {
	opts := options.Find().SetSort(newestFirst())
	return findMany[domain.Subscription](ctx, r.collection, bson.M{"fan_id": fanID}, opts)
}

func (r *subscriptionRepository) ListByArtist(ctx context.Context, artistID string, page Page) ([]*domain.Subscription, error) {
	filter := bson.M{"artist_id": artistID, "active": true}
	return findMany[domain.Subscription](ctx, r.collection, filter, page.findOptions(newestFirst()))
}

func (r *subscriptionRepository) CountActiveByArtist(ctx context.Context, artistID string) (int64, error) {
	return count(ctx, r.collection, bson.M{"artist_id": artistID, "active": true})
}

func (r *subscriptionRepository) Deactivate(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{"active": false, "updated_at": time.Now()}}
	return guardedUpdate(ctx, r.collection, bson.M{"id": id, "active": true}, update)
}
