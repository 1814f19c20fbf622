package domain

import "time"

type Merch struct {
	ID          string    `bson:"id" json:"id"`
	ArtistID    string    `bson:"artist_id" json:"artist_id"`
	ArtistName  string    `bson:"artist_name" json:"artist_name"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Category    string    `bson:"category" json:"category"`
	Price       float64   `bson:"price" json:"price"`
	Stock       int       `bson:"stock" json:"stock"`
	Images      []Asset   `bson:"images" json:"images"`
	Sold        int64     `bson:"sold" json:"sold"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// Asset is a hosted media file. PublicID is what the media host needs to
// delete it.
type Asset struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"public_id" json:"-"`
}

func (m *Merch) PrimaryImage() string {
	if len(m.Images) == 0 {
		return ""
	}
	return m.Images[0].URL
}
