package dto

import "github.com/sajag-gupta/riseup/domain"

type SignupRequest struct {
	Name     string      `json:"name" binding:"required,min=2,max=60"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6,max=128"`
	Role     domain.Role `json:"role" binding:"omitempty,role_signup"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type UpdateProfileRequest struct {
	Name   *string `json:"name" form:"name" binding:"omitempty,min=2,max=60"`
	Avatar *string `json:"avatar" form:"avatar" binding:"omitempty,url"`
}

type UpdateArtistProfileRequest struct {
	Bio         *string             `json:"bio" binding:"omitempty,max=1000"`
	Genres      []string            `json:"genres" binding:"omitempty,max=10,dive,min=1,max=40"`
	SocialLinks *domain.SocialLinks `json:"social_links"`
}

type CreatePlaylistRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type PlaylistSongRequest struct {
	SongID string `json:"song_id" binding:"required"`
}

// PublicArtist is an artist as shown to other users.
type PublicArtist struct {
	ID      string                `json:"id"`
	Name    string                `json:"name"`
	Avatar  string                `json:"avatar,omitempty"`
	Profile *domain.ArtistProfile `json:"artist"`
	// Following is only set when the caller is signed in.
	Following *bool `json:"following,omitempty"`
}

func NewPublicArtist(u *domain.User) PublicArtist {
	return PublicArtist{ID: u.ID, Name: u.Name, Avatar: u.Avatar, Profile: u.Artist}
}

type ArtistDashboard struct {
	Artist      PublicArtist                     `json:"artist"`
	SongCount   int64                            `json:"song_count"`
	TotalPlays  int64                            `json:"total_plays"`
	Followers   int64                            `json:"followers"`
	Subscribers int64                            `json:"subscribers"`
	Revenue     float64                          `json:"revenue"`
	Actions     map[domain.AnalyticsAction]int64 `json:"actions_last_30_days"`
	TopSongs    []*domain.Song                   `json:"top_songs"`
}

type AdminUpdateUserRequest struct {
	Role   *domain.Role `json:"role" binding:"omitempty,role"`
	Banned *bool        `json:"banned"`
}

type VerifyArtistRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}

type PlatformStats struct {
	Users      int64                            `json:"users"`
	Artists    int64                            `json:"artists"`
	Fans       int64                            `json:"fans"`
	Songs      int64                            `json:"songs"`
	Events     int64                            `json:"events"`
	Merch      int64                            `json:"merch"`
	Orders     int64                            `json:"orders"`
	PaidOrders int64                            `json:"paid_orders"`
	Revenue    float64                          `json:"revenue"`
	Actions    map[domain.AnalyticsAction]int64 `json:"actions_last_30_days"`
}
