package repository

import (
	"context"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SongSort string

const (
	SongSortNewest  SongSort = "newest"
	SongSortPopular SongSort = "popular"
	SongSortLiked   SongSort = "liked"
)

type SongFilter struct {
	ArtistID   string
	Genre      string
	Query      string
	Visibility domain.Visibility
	IDs        []string
	Sort       SongSort
}

type SongRepository interface {
	Create(ctx context.Context, s *domain.Song) error
	FindByID(ctx context.Context, id string) (*domain.Song, error)
	List(ctx context.Context, filter SongFilter, page Page) ([]*domain.Song, error)
	Count(ctx context.Context, filter SongFilter) (int64, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error

	IncrementPlays(ctx context.Context, id string) (*domain.Song, error)
	Like(ctx context.Context, songID, userID string) error
	Unlike(ctx context.Context, songID, userID string) error

	CountByArtist(ctx context.Context, artistID string) (int64, error)
	SumPlaysByArtist(ctx context.Context, artistID string) (int64, error)
}

type songRepository struct {
	collection *mongo.Collection
}

func NewSongRepository(db *mongo.Database) SongRepository {
	collection := db.Collection("songs")

	ensureIndexes(collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "artist_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "genre", Value: 1}}},
		{Keys: bson.D{{Key: "plays", Value: -1}}},
	})

	return &songRepository{collection: collection}
}

func (f SongFilter) bson() bson.M {
	filter := bson.M{}
	if f.ArtistID != "" {
		filter["artist_id"] = f.ArtistID
	}
	if f.Genre != "" {
		filter["genre"] = f.Genre
	}
	if f.Visibility != "" {
		filter["visibility"] = f.Visibility
	}
	if len(f.IDs) > 0 {
		filter["id"] = bson.M{"$in": f.IDs}
	}
	if f.Query != "" {
		for k, v := range textFilter(f.Query, "title", "artist_name", "genre") {
			filter[k] = v
		}
	}
	return filter
}

func (f SongFilter) sort() bson.D {
	switch f.Sort {
	case SongSortPopular:
		return bson.D{{Key: "plays", Value: -1}, {Key: "created_at", Value: -1}}
	case SongSortLiked:
		return bson.D{{Key: "likes", Value: -1}, {Key: "created_at", Value: -1}}
	}
	return newestFirst()
}

func (r *songRepository) Create(ctx context.Context, s *domain.Song) error {
	if s.LikedBy == nil {
		s.LikedBy = []string{}
	}
	return insertOne(ctx, r.collection, s)
}

func (r *songRepository) FindByID(ctx context.Context, id string) (*domain.Song, error) {
	return findOne[domain.Song](ctx, r.collection, bson.M{"id": id})
}

func (r *songRepository) List(ctx context.Context, filter SongFilter, page Page) ([]*domain.Song, error) {
	return findMany[domain.Song](ctx, r.collection, filter.bson(), page.findOptions(filter.sort()))
}

func (r *songRepository) Count(ctx context.Context, filter SongFilter) (int64, error) {
	return count(ctx, r.collection, filter.bson())
}

func (r *songRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	return updateOne(ctx, r.collection, bson.M{"id": id}, bson.M{"$set": updates})
}

func (r *songRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.collection, bson.M{"id": id})
}

func (r *songRepository) IncrementPlays(ctx context.Context, id string) (*domain.Song, error) {
	return updateAndReturn[domain.Song](ctx, r.collection, bson.M{"id": id}, bson.M{"$inc": bson.M{"plays": 1}})
}

// Like is idempotent: a user already in liked_by makes it ErrNoChange.
func (r *songRepository) Like(ctx context.Context, songID, userID string) error {
	filter := bson.M{"id": songID, "liked_by": bson.M{"$ne": userID}}
	update := bson.M{
		"$addToSet": bson.M{"liked_by": userID},
		"$inc":      bson.M{"likes": 1},
	}
	return guardedUpdate(ctx, r.collection, filter, update)
}

func (r *songRepository) Unlike(ctx context.Context, songID, userID string) error {
	filter := bson.M{"id": songID, "liked_by": userID}
	update := bson.M{
		"$pull": bson.M{"liked_by": userID},
		"$inc":  bson.M{"likes": -1},
	}
	return guardedUpdate(ctx, r.collection, filter, update)
}

func (r *songRepository) CountByArtist(ctx context.Context, artistID string) (int64, error) {
	return count(ctx, r.collection, bson.M{"artist_id": artistID})
}

func (r *songRepository) SumPlaysByArtist(ctx context.Context, artistID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"artist_id": artistID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$plays"}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
