package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sajag-gupta/riseup/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserFilter struct {
	Role       domain.Role
	Query      string
	Verified   *bool
	Genre      string
	HideBanned bool
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	List(ctx context.Context, filter UserFilter, page Page) ([]*domain.User, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)

	AddFollower(ctx context.Context, artistID, followerID string) error
	RemoveFollower(ctx context.Context, artistID, followerID string) error
	AddFollowing(ctx context.Context, userID, artistID string) error
	RemoveFollowing(ctx context.Context, userID, artistID string) error

	AddFavorite(ctx context.Context, userID, songID string) error
	RemoveFavorite(ctx context.Context, userID, songID string) error

	AddPlaylist(ctx context.Context, userID string, p domain.Playlist) error
	AddSongToPlaylist(ctx context.Context, userID, playlistID, songID string) error
	RemoveSongFromPlaylist(ctx context.Context, userID, playlistID, songID string) error

	AddSubscription(ctx context.Context, userID, subscriptionID string) error
	RemoveSubscription(ctx context.Context, userID, subscriptionID string) error

	IncrementArtistStats(ctx context.Context, artistID string, plays int64, revenue float64) error
	SetVerified(ctx context.Context, artistID string, verified bool) error
	SetBanned(ctx context.Context, userID string, banned bool) error
	SetRole(ctx context.Context, userID string, role domain.Role) error
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	collection := db.Collection("users")

	ensureIndexes(collection, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "artist.follower_count", Value: -1}}},
	})

	return &userRepository{collection: collection}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	return insertOne(ctx, r.collection, u)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.collection, bson.M{"id": id})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.collection, bson.M{"email": email})
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}
	return findMany[domain.User](ctx, r.collection, bson.M{"id": bson.M{"$in": ids}}, nil)
}

func (r *userRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	return updateOne(ctx, r.collection, bson.M{"id": id}, bson.M{"$set": updates})
}

func (f UserFilter) bson() bson.M {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.Verified != nil {
		filter["artist.verified"] = *f.Verified
	}
	if f.Genre != "" {
		filter["artist.genres"] = f.Genre
	}
	if f.HideBanned {
		filter["banned"] = bson.M{"$ne": true}
	}
	if f.Query != "" {
		for k, v := range textFilter(f.Query, "name", "email") {
			filter[k] = v
		}
	}
	return filter
}

func (r *userRepository) List(ctx context.Context, filter UserFilter, page Page) ([]*domain.User, error) {
	sort := newestFirst()
	if filter.Role == domain.RoleArtist {
		sort = bson.D{{Key: "artist.follower_count", Value: -1}, {Key: "created_at", Value: -1}}
	}
	return findMany[domain.User](ctx, r.collection, filter.bson(), page.findOptions(sort))
}

func (r *userRepository) Count(ctx context.Context, filter UserFilter) (int64, error) {
	return count(ctx, r.collection, filter.bson())
}

// AddFollower records followerID on the artist and bumps the count in one
// update. Following twice is ErrNoChange.
func (r *userRepository) AddFollower(ctx context.Context, artistID, followerID string) error {
	filter := bson.M{
		"id":               artistID,
		"role":             domain.RoleArtist,
		"artist.followers": bson.M{"$ne": followerID},
	}
	update := bson.M{
		"$addToSet": bson.M{"artist.followers": followerID},
		"$inc":      bson.M{"artist.follower_count": 1},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	return guardedUpdate(ctx, r.collection, filter, update)
}

func (r *userRepository) RemoveFollower(ctx context.Context, artistID, followerID string) error {
	filter := bson.M{
		"id":               artistID,
		"artist.followers": followerID,
	}
	update := bson.M{
		"$pull": bson.M{"artist.followers": followerID},
		"$inc":  bson.M{"artist.follower_count": -1},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	return guardedUpdate(ctx, r.collection, filter, update)
}

func (r *userRepository) AddFollowing(ctx context.Context, userID, artistID string) error {
	return r.addToSet(ctx, userID, "following", artistID)
}

func (r *userRepository) RemoveFollowing(ctx context.Context, userID, artistID string) error {
	return r.pull(ctx, userID, "following", artistID)
}

func (r *userRepository) AddFavorite(ctx context.Context, userID, songID string) error {
	return r.addToSet(ctx, userID, "favorites", songID)
}

func (r *userRepository) RemoveFavorite(ctx context.Context, userID, songID string) error {
	return r.pull(ctx, userID, "favorites", songID)
}

func (r *userRepository) AddSubscription(ctx context.Context, userID, subscriptionID string) error {
	return r.addToSet(ctx, userID, "subscriptions", subscriptionID)
}

func (r *userRepository) RemoveSubscription(ctx context.Context, userID, subscriptionID string) error {
	return r.pull(ctx, userID, "subscriptions", subscriptionID)
}

func (r *userRepository) addToSet(ctx context.Context, userID, field, value string) error {
	update := bson.M{
		"$addToSet": bson.M{field: value},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	return updateOne(ctx, r.collection, bson.M{"id": userID}, update)
}

func (r *userRepository) pull(ctx context.Context, userID, field, value string) error {
	update := bson.M{
		"$pull": bson.M{field: value},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	return updateOne(ctx, r.collection, bson.M{"id": userID}, update)
}

func (r *userRepository) AddPlaylist(ctx context.Context, userID string, p domain.Playlist) error {
	if p.SongIDs == nil {
		p.SongIDs = []string{}
	}
	update := bson.M{
		"$push": bson.M{"playlists": p},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	return updateOne(ctx, r.collection, bson.M{"id": userID}, update)
}

func (r *userRepository) AddSongToPlaylist(ctx context.Context, userID, playlistID, songID string) error {
	filter := bson.M{"id": userID, "playlists.id": playlistID}
	update := bson.M{
		"$addToSet": bson.M{"playlists.$.song_ids": songID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	return updateOne(ctx, r.collection, filter, update)
}

func (r *userRepository) RemoveSongFromPlaylist(ctx context.Context, userID, playlistID, songID string) error {
	filter := bson.M{"id": userID, "playlists.id": playlistID}
	update := bson.M{
		"$pull": bson.M{"playlists.$.song_ids": songID},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	return updateOne(ctx, r.collection, filter, update)
}

func (r *userRepository) IncrementArtistStats(ctx context.Context, artistID string, plays int64, revenue float64) error {
	inc := bson.M{}
	if plays != 0 {
		inc["artist.total_plays"] = plays
	}
	if revenue != 0 {
		inc["artist.total_revenue"] = revenue
	}
	if len(inc) == 0 {
		return nil
	}
	filter := bson.M{"id": artistID, "role": domain.RoleArtist}
	return updateOne(ctx, r.collection, filter, bson.M{"$inc": inc})
}

func (r *userRepository) SetVerified(ctx context.Context, artistID string, verified bool) error {
	filter := bson.M{"id": artistID, "role": domain.RoleArtist}
	update := bson.M{"$set": bson.M{"artist.verified": verified, "updated_at": time.Now()}}
	return updateOne(ctx, r.collection, filter, update)
}

func (r *userRepository) SetBanned(ctx context.Context, userID string, banned bool) error {
	update := bson.M{"$set": bson.M{"banned": banned, "updated_at": time.Now()}}
	return updateOne(ctx, r.collection, bson.M{"id": userID}, update)
}

// SetRole changes the role and gives promoted artists an empty profile if
// they never had one.
func (r *userRepository) SetRole(ctx context.Context, userID string, role domain.Role) error {
	if err := updateOne(ctx, r.collection, bson.M{"id": userID},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now()}}); err != nil {
		return err
	}
	if role != domain.RoleArtist {
		return nil
	}
	filter := bson.M{"id": userID, "artist": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"artist": domain.NewArtistProfile()}}
	if err := updateOne(ctx, r.collection, filter, update); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
