package repository

import (
	"context"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BlogFilter struct {
	AuthorID string
	Tag      string
	Query    string
	// PublishedOnly hides drafts. Authors listing their own posts leave it
	// false.
	PublishedOnly bool
}

type BlogRepository interface {
	Create(ctx context.Context, b *domain.Blog) error
	FindByID(ctx context.Context, id string) (*domain.Blog, error)
	List(ctx context.Context, filter BlogFilter, page Page) ([]*domain.Blog, error)
	Count(ctx context.Context, filter BlogFilter) (int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type blogRepository struct {
	collection *mongo.Collection
}

func NewBlogRepository(db *mongo.Database) BlogRepository {
	collection := db.Collection("blogs")

	ensureIndexes(collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "author_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	})

	return &blogRepository{collection: collection}
}

func (f BlogFilter) bson() bson.M {
	filter := bson.M{}
	if f.AuthorID != "" {
		filter["author_id"] = f.AuthorID
	}
	if f.Tag != "" {
		filter["tags"] = f.Tag
	}
	if f.PublishedOnly {
		filter["published"] = true
	}
	if f.Query != "" {
		for k, v := range textFilter(f.Query, "title", "excerpt", "author_name") {
			filter[k] = v
		}
	}
	return filter
}

func (r *blogRepository) Create(ctx context.Context, b *domain.Blog) error {
	if b.Tags == nil {
		b.Tags = []string{}
	}
	return insertOne(ctx, r.collection, b)
}

func (r *blogRepository) FindByID(ctx context.Context, id string) (*domain.Blog, error) {
	return findOne[domain.Blog](ctx, r.collection, bson.M{"id": id})
}

func (r *blogRepository) List(ctx context.Context, filter BlogFilter, page Page) ([]*domain.Blog, error) {
	return findMany[domain.Blog](ctx, r.collection, filter.bson(), page.findOptions(newestFirst()))
}

func (r *blogRepository) Count(ctx context.Context, filter BlogFilter) (int64, error) {
	return count(ctx, r.collection, filter.bson())
}

func (r *blogRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	return updateOne(ctx, r.collection, bson.M{"id": id}, bson.M{"$set": updates})
}

func (r *blogRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.collection, bson.M{"id": id})
}
