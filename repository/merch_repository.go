package repository

import (
	"context"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MerchFilter struct {
	ArtistID string
	Category string
	Query    string
	InStock  bool
}

type MerchRepository interface {
	Create(ctx context.Context, m *domain.Merch) error
	FindByID(ctx context.Context, id string) (*domain.Merch, error)
	List(ctx context.Context, filter MerchFilter, page Page) ([]*domain.Merch, error)
	Count(ctx context.Context, filter MerchFilter) (int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	// RecordSale moves qty units from stock to sold. It fails with
	// ErrNoChange when fewer than qty are in stock.
	RecordSale(ctx context.Context, id string, qty int) error
}

type merchRepository struct {
	collection *mongo.Collection
}

func NewMerchRepository(db *mongo.Database) MerchRepository {
	collection := db.Collection("merch")

	ensureIndexes(collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "artist_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})

	return &merchRepository{collection: collection}
}

func (f MerchFilter) bson() bson.M {
	filter := bson.M{}
	if f.ArtistID != "" {
		filter["artist_id"] = f.ArtistID
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.InStock {
		filter["stock"] = bson.M{"$gt": 0}
	}
	if f.Query != "" {
		for k, v := range textFilter(f.Query, "name", "description", "artist_name") {
			filter[k] = v
		}
	}
	return filter
}

func (r *merchRepository) Create(ctx context.Context, m *domain.Merch) error {
	if m.Images == nil {
		m.Images = []domain.Asset{}
	}
	return insertOne(ctx, r.collection, m)
}

func (r *merchRepository) FindByID(ctx context.Context, id string) (*domain.Merch, error) {
	return findOne[domain.Merch](ctx, r.collection, bson.M{"id": id})
}

func (r *merchRepository) List(ctx context.Context, filter MerchFilter, page Page) ([]*domain.Merch, error) {
	return findMany[domain.Merch](ctx, r.collection, filter.bson(), page.findOptions(newestFirst()))
}

func (r *merchRepository) Count(ctx context.Context, filter MerchFilter) (int64, error) {
	return count(ctx, r.collection, filter.bson())
}

func (r *merchRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	return updateOne(ctx, r.collection, bson.M{"id": id}, bson.M{"$set": updates})
}

func (r *merchRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.collection, bson.M{"id": id})
}

func (r *merchRepository) RecordSale(ctx context.Context, id string, qty int) error {
	filter := bson.M{"id": id, "stock": bson.M{"$gte": qty}}
	update := bson.M{
		"$inc": bson.M{"stock": -qty, "sold": qty},
		"$set": bson.M{"updated_at": time.Now()},
	}
	return guardedUpdate(ctx, r.collection, filter, update)
}
