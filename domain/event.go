package domain

import "time"

type Event struct {
	ID            string    `bson:"id" json:"id"`
	ArtistID      string    `bson:"artist_id" json:"artist_id"`
	ArtistName    string    `bson:"artist_name" json:"artist_name"`
	Title         string    `bson:"title" json:"title"`
	Description   string    `bson:"description" json:"description"`
	Venue         string    `bson:"venue" json:"venue"`
	City          string    `bson:"city" json:"city"`
	Date          time.Time `bson:"date" json:"date"`
	TicketPrice   float64   `bson:"ticket_price" json:"ticket_price"`
	Capacity      int       `bson:"capacity" json:"capacity"`
	TicketsSold   int       `bson:"tickets_sold" json:"tickets_sold"`
	Attendees     []string  `bson:"attendees" json:"-"`
	ImageURL      string    `bson:"image_url,omitempty" json:"image_url,omitempty"`
	ImagePublicID string    `bson:"image_public_id,omitempty" json:"-"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

func (e *Event) Remaining() int {
	if e.Capacity <= 0 {
		return 0
	}
	if left := e.Capacity - e.TicketsSold; left > 0 {
		return left
	}
	return 0
}
