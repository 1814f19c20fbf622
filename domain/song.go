package domain

import "time"

type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilitySubscribers Visibility = "subscribers"
)

type Song struct {
	ID              string     `bson:"id" json:"id"`
	ArtistID        string     `bson:"artist_id" json:"artist_id"`
	ArtistName      string     `bson:"artist_name" json:"artist_name"`
	Title           string     `bson:"title" json:"title"`
	Genre           string     `bson:"genre" json:"genre"`
	Duration        int        `bson:"duration" json:"duration"` // seconds
	FileURL         string     `bson:"file_url" json:"file_url"`
	FilePublicID    string     `bson:"file_public_id" json:"-"`
	ArtworkURL      string     `bson:"artwork_url,omitempty" json:"artwork_url,omitempty"`
	ArtworkPublicID string     `bson:"artwork_public_id,omitempty" json:"-"`
	Visibility      Visibility `bson:"visibility" json:"visibility"`
	Plays           int64      `bson:"plays" json:"plays"`
	Likes           int64      `bson:"likes" json:"likes"`
	LikedBy         []string   `bson:"liked_by" json:"-"`
	CreatedAt       time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at" json:"updated_at"`
}
