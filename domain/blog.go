package domain

import "time"

type Blog struct {
	ID            string    `bson:"id" json:"id"`
	AuthorID      string    `bson:"author_id" json:"author_id"`
	AuthorName    string    `bson:"author_name" json:"author_name"`
	Title         string    `bson:"title" json:"title"`
	Content       string    `bson:"content" json:"content"`
	Excerpt       string    `bson:"excerpt" json:"excerpt"`
	Tags          []string  `bson:"tags" json:"tags"`
	CoverURL      string    `bson:"cover_url,omitempty" json:"cover_url,omitempty"`
	CoverPublicID string    `bson:"cover_public_id,omitempty" json:"-"`
	Published     bool      `bson:"published" json:"published"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}
