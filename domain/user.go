package domain

import "time"

type Role string

const (
	RoleFan    Role = "fan"
	RoleArtist Role = "artist"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleFan, RoleArtist, RoleAdmin:
		return true
	}
	return false
}

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// User is one document for all three roles. Artist is set only for
// role=artist.
type User struct {
	ID            string         `bson:"id" json:"id"`
	Name          string         `bson:"name" json:"name"`
	Email         string         `bson:"email" json:"email"`
	Password      string         `bson:"password" json:"-"`
	Role          Role           `bson:"role" json:"role"`
	Avatar        string         `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Artist        *ArtistProfile `bson:"artist,omitempty" json:"artist,omitempty"`
	Favorites     []string       `bson:"favorites" json:"favorites"`
	Following     []string       `bson:"following" json:"following"`
	Playlists     []Playlist     `bson:"playlists" json:"playlists"`
	Subscriptions []string       `bson:"subscriptions" json:"subscriptions"`
	Plan          Plan           `bson:"plan" json:"plan"`
	Banned        bool           `bson:"banned" json:"banned"`
	CreatedAt     time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `bson:"updated_at" json:"updated_at"`
}

func (u *User) IsArtist() bool {
	return u.Role == RoleArtist && u.Artist != nil
}

type ArtistProfile struct {
	Bio           string      `bson:"bio" json:"bio"`
	Genres        []string    `bson:"genres" json:"genres"`
	SocialLinks   SocialLinks `bson:"social_links" json:"social_links"`
	Followers     []string    `bson:"followers" json:"-"`
	FollowerCount int64       `bson:"follower_count" json:"follower_count"`
	TotalPlays    int64       `bson:"total_plays" json:"total_plays"`
	TotalRevenue  float64     `bson:"total_revenue" json:"total_revenue"`
	Verified      bool        `bson:"verified" json:"verified"`
	// TrendingScore is stored for the frontend but not computed server side.
	TrendingScore float64 `bson:"trending_score" json:"trending_score"`
}

type SocialLinks struct {
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	YouTube   string `bson:"youtube,omitempty" json:"youtube,omitempty"`
	Spotify   string `bson:"spotify,omitempty" json:"spotify,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Website   string `bson:"website,omitempty" json:"website,omitempty"`
}

type Playlist struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	SongIDs   []string  `bson:"song_ids" json:"song_ids"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// NewArtistProfile returns a profile with empty arrays so array update
// operators can run against it.
func NewArtistProfile() *ArtistProfile {
	return &ArtistProfile{
		Genres:    []string{},
		Followers: []string{},
	}
}
