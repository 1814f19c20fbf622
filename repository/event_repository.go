package repository

import (
	"context"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type EventFilter struct {
	ArtistID string
	City     string
	Query    string
	Upcoming bool
}

type EventRepository interface {
	Create(ctx context.Context, e *domain.Event) error
	FindByID(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, filter EventFilter, page Page) ([]*domain.Event, error)
	Count(ctx context.Context, filter EventFilter) (int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	// ReserveTickets adds qty to tickets_sold only if capacity allows and
	// records the attendee in the same update.
	ReserveTickets(ctx context.Context, id, userID string, qty int) error
}

type eventRepository struct {
	collection *mongo.Collection
}

func NewEventRepository(db *mongo.Database) EventRepository {
	collection := db.Collection("events")

	ensureIndexes(collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "artist_id", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "city", Value: 1}}},
	})

	return &eventRepository{collection: collection}
}

func (f EventFilter) bson() bson.M {
	filter := bson.M{}
	if f.ArtistID != "" {
		filter["artist_id"] = f.ArtistID
	}
	if f.City != "" {
		filter["city"] = bson.M{"$regex": "^" + escapeRegex(f.City) + "$", "$options": "i"}
	}
	if f.Upcoming {
		filter["date"] = bson.M{"$gte": time.Now()}
	}
	if f.Query != "" {
		for k, v := range textFilter(f.Query, "title", "venue", "artist_name") {
			filter[k] = v
		}
	}
	return filter
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	return insertOne(ctx, r.collection, e)
}

func (r *eventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	return findOne[domain.Event](ctx, r.collection, bson.M{"id": id})
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter, page Page) ([]*domain.Event, error) {
	sort := bson.D{{Key: "date", Value: 1}}
	return findMany[domain.Event](ctx, r.collection, filter.bson(), page.findOptions(sort))
}

func (r *eventRepository) Count(ctx context.Context, filter EventFilter) (int64, error) {
	return count(ctx, r.collection, filter.bson())
}

func (r *eventRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	return updateOne(ctx, r.collection, bson.M{"id": id}, bson.M{"$set": updates})
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.collection, bson.M{"id": id})
}

func (r *eventRepository) ReserveTickets(ctx context.Context, id, userID string, qty int) error {
	filter := bson.M{
		"id": id,
		"$expr": bson.M{"$lte": bson.A{
			bson.M{"$add": bson.A{"$tickets_sold", qty}},
			"$capacity",
		}},
	}
	update := bson.M{
		"$inc":      bson.M{"tickets_sold": qty},
		"$addToSet": bson.M{"attendees": userID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	return guardedUpdate(ctx, r.collection, filter, update)
}
