package dto

import "github.com/sajag-gupta/riseup/domain"

// Create requests arrive as multipart forms with the file parts read
// separately; updates may be JSON or multipart.

type CreateSongRequest struct {
	Title      string            `form:"title" json:"title" binding:"required,min=1,max=200"`
	Genre      string            `form:"genre" json:"genre" binding:"required,max=40"`
	Duration   int               `form:"duration" json:"duration" binding:"omitempty,gte=0,lte=7200"`
	Visibility domain.Visibility `form:"visibility" json:"visibility" binding:"omitempty,visibility"`
}

type UpdateSongRequest struct {
	Title      *string            `form:"title" json:"title" binding:"omitempty,min=1,max=200"`
	Genre      *string            `form:"genre" json:"genre" binding:"omitempty,max=40"`
	Duration   *int               `form:"duration" json:"duration" binding:"omitempty,gte=0,lte=7200"`
	Visibility *domain.Visibility `form:"visibility" json:"visibility" binding:"omitempty,visibility"`
}

type CreateEventRequest struct {
	Title       string  `form:"title" json:"title" binding:"required,min=1,max=200"`
	Description string  `form:"description" json:"description" binding:"max=5000"`
	Venue       string  `form:"venue" json:"venue" binding:"required,max=200"`
	City        string  `form:"city" json:"city" binding:"required,max=100"`
	Date        string  `form:"date" json:"date" binding:"required,future_date"`
	TicketPrice float64 `form:"ticket_price" json:"ticket_price" binding:"gte=0"`
	Capacity    int     `form:"capacity" json:"capacity" binding:"required,gt=0"`
}

type UpdateEventRequest struct {
	Title       *string  `form:"title" json:"title" binding:"omitempty,min=1,max=200"`
	Description *string  `form:"description" json:"description" binding:"omitempty,max=5000"`
	Venue       *string  `form:"venue" json:"venue" binding:"omitempty,max=200"`
	City        *string  `form:"city" json:"city" binding:"omitempty,max=100"`
	Date        *string  `form:"date" json:"date" binding:"omitempty,future_date"`
	TicketPrice *float64 `form:"ticket_price" json:"ticket_price" binding:"omitempty,gte=0"`
	Capacity    *int     `form:"capacity" json:"capacity" binding:"omitempty,gt=0"`
}

type CreateMerchRequest struct {
	Name        string  `form:"name" json:"name" binding:"required,min=1,max=200"`
	Description string  `form:"description" json:"description" binding:"max=5000"`
	Category    string  `form:"category" json:"category" binding:"omitempty,max=40"`
	Price       float64 `form:"price" json:"price" binding:"required,gt=0"`
	Stock       int     `form:"stock" json:"stock" binding:"gte=0"`
}

type UpdateMerchRequest struct {
	Name        *string  `form:"name" json:"name" binding:"omitempty,min=1,max=200"`
	Description *string  `form:"description" json:"description" binding:"omitempty,max=5000"`
	Category    *string  `form:"category" json:"category" binding:"omitempty,max=40"`
	Price       *float64 `form:"price" json:"price" binding:"omitempty,gt=0"`
	Stock       *int     `form:"stock" json:"stock" binding:"omitempty,gte=0"`
}

type CreateBlogRequest struct {
	Title     string   `form:"title" json:"title" binding:"required,min=1,max=200"`
	Content   string   `form:"content" json:"content" binding:"required"`
	Excerpt   string   `form:"excerpt" json:"excerpt" binding:"max=500"`
	Tags      []string `form:"tags" json:"tags" binding:"omitempty,max=10,dive,min=1,max=40"`
	Published *bool    `form:"published" json:"published"`
}

type UpdateBlogRequest struct {
	Title     *string  `form:"title" json:"title" binding:"omitempty,min=1,max=200"`
	Content   *string  `form:"content" json:"content" binding:"omitempty,min=1"`
	Excerpt   *string  `form:"excerpt" json:"excerpt" binding:"omitempty,max=500"`
	Tags      []string `form:"tags" json:"tags" binding:"omitempty,max=10,dive,min=1,max=40"`
	Published *bool    `form:"published" json:"published"`
}

type TrackEventRequest struct {
	Action   domain.AnalyticsAction  `json:"action" binding:"required,analytics_action"`
	Context  domain.AnalyticsContext `json:"context" binding:"required,analytics_context"`
	ArtistID string                  `json:"artist_id"`
	SongID   string                  `json:"song_id"`
	Metadata map[string]interface{}  `json:"metadata"`
}

// ListQuery carries every list filter; each endpoint reads the ones it
// supports.
type ListQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Q        string `form:"q" binding:"max=100"`
	Genre    string `form:"genre"`
	ArtistID string `form:"artist"`
	Sort     string `form:"sort" binding:"omitempty,oneof=newest popular liked"`
	City     string `form:"city"`
	Category string `form:"category"`
	Tag      string `form:"tag"`
	Status   string `form:"status" binding:"omitempty,oneof=PENDING PAID FAILED REFUNDED"`
	Role     string `form:"role" binding:"omitempty,role"`
	Upcoming bool   `form:"upcoming"`
	InStock  bool   `form:"in_stock"`
}

type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}
