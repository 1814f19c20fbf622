package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sajag-gupta/riseup/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	opTimeout    = 5 * time.Second
	listTimeout  = 10 * time.Second
	indexTimeout = 10 * time.Second

	DefaultPageSize = 20
	MaxPageSize     = 100
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate document")
	// ErrNoChange is returned when a guarded update matched nothing, e.g. a
	// status transition from the wrong state or a like that already exists.
	ErrNoChange = errors.New("no document matched the update guard")
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

func (p Page) normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) findOptions(sort bson.D) *options.FindOptions {
	p = p.normalize()
	return options.Find().
		SetSort(sort).
		SetSkip(int64((p.Number - 1) * p.Size)).
		SetLimit(int64(p.Size))
}

func newestFirst() bson.D {
	return bson.D{{Key: "created_at", Value: -1}}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}

func ensureIndexes(collection *mongo.Collection, indexes []mongo.IndexModel) {
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Warn(logger.EventDBError, "Failed to create indexes", logger.Fields(
			"collection", collection.Name(),
			"error", err.Error(),
		))
	}
}

func findMany[T any](ctx context.Context, collection *mongo.Collection, filter interface{}, opts *options.FindOptions) ([]*T, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOne[T any](ctx context.Context, collection *mongo.Collection, filter interface{}) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc T
	if err := collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func insertOne(ctx context.Context, collection *mongo.Collection, doc interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := collection.InsertOne(ctx, doc)
	return translate(err)
}

// updateOne applies update and reports ErrNotFound when filter matched
// nothing.
func updateOne(ctx context.Context, collection *mongo.Collection, filter, update interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// guardedUpdate is updateOne for filters that carry a precondition; a miss
// is ErrNoChange rather than ErrNotFound.
func guardedUpdate(ctx context.Context, collection *mongo.Collection, filter, update interface{}) error {
	err := updateOne(ctx, collection, filter, update)
	if errors.Is(err, ErrNotFound) {
		return ErrNoChange
	}
	return err
}

func updateAndReturn[T any](ctx context.Context, collection *mongo.Collection, filter, update interface{}) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc T
	if err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func deleteOne(ctx context.Context, collection *mongo.Collection, filter interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	result, err := collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func count(ctx context.Context, collection *mongo.Collection, filter interface{}) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return collection.CountDocuments(ctx, filter)
}

// textFilter matches any of fields case-insensitively.
func textFilter(query string, fields ...string) bson.M {
	pattern := bson.M{"$regex": escapeRegex(query), "$options": "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: pattern})
	}
	return bson.M{"$or": or}
}

func escapeRegex(s string) string {
	const special = `\.+*?()|[]{}^$`
	out := make([]rune, 0, len(s))
	for _, r := range s {
		for _, sp := range special {
			if r == sp {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, r)
	}
	return string(out)
}
