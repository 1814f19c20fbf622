package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sajag-gupta/riseup/dto"
	"github.com/sajag-gupta/riseup/middleware"
	"github.com/sajag-gupta/riseup/service"
)

type UserHandler struct {
	users     service.UserService
	analytics service.AnalyticsService
}

func NewUserHandler(users service.UserService, analytics service.AnalyticsService) *UserHandler {
	return &UserHandler{users: users, analytics: analytics}
}

func (h *UserHandler) RegisterRoutes(api *gin.RouterGroup, g Guards) {
	me := api.Group("/users/me", g.Auth)
	me.GET("", h.GetProfile)
	me.PATCH("", h.UpdateProfile)
	me.GET("/favorites", h.ListFavorites)
	me.POST("/favorites/:songId", h.AddFavorite)
	me.DELETE("/favorites/:songId", h.RemoveFavorite)
	me.POST("/playlists", h.CreatePlaylist)
	me.POST("/playlists/:playlistId/songs", h.AddSongToPlaylist)
	me.DELETE("/playlists/:playlistId/songs/:songId", h.RemoveSongFromPlaylist)

	api.POST("/users/:id/follow", g.Auth, h.Follow)
	api.DELETE("/users/:id/follow", g.Auth, h.Unfollow)

	artists := api.Group("/artists")
	artists.GET("", h.ListArtists)
	artists.PATCH("/me", g.Auth, g.Artist, h.UpdateArtistProfile)
	artists.GET("/me/dashboard", g.Auth, g.Artist, h.Dashboard)
	artists.GET("/:id", g.Optional, h.GetArtist)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.users.GetProfile(c.Request.Context(), middleware.CallerFrom(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), middleware.CallerFrom(c).UserID, &req, formFile(c, "avatar"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ListFavorites(c *gin.Context) {
	songs, err := h.users.ListFavorites(c.Request.Context(), middleware.CallerFrom(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, songs)
}

func (h *UserHandler) AddFavorite(c *gin.Context) {
	if err := h.users.AddFavorite(c.Request.Context(), middleware.CallerFrom(c).UserID, c.Param("songId")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Added to favorites"})
}

func (h *UserHandler) RemoveFavorite(c *gin.Context) {
	if err := h.users.RemoveFavorite(c.Request.Context(), middleware.CallerFrom(c).UserID, c.Param("songId")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from favorites"})
}

func (h *UserHandler) CreatePlaylist(c *gin.Context) {
	var req dto.CreatePlaylistRequest
	if !bind(c, &req) {
		return
	}
	playlist, err := h.users.CreatePlaylist(c.Request.Context(), middleware.CallerFrom(c).UserID, req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, playlist)
}

func (h *UserHandler) AddSongToPlaylist(c *gin.Context) {
	var req dto.PlaylistSongRequest
	if !bind(c, &req) {
		return
	}
	err := h.users.AddSongToPlaylist(c.Request.Context(), middleware.CallerFrom(c).UserID, c.Param("playlistId"), req.SongID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Song added to playlist"})
}

func (h *UserHandler) RemoveSongFromPlaylist(c *gin.Context) {
	err := h.users.RemoveSongFromPlaylist(c.Request.Context(), middleware.CallerFrom(c).UserID, c.Param("playlistId"), c.Param("songId"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Song removed from playlist"})
}

func (h *UserHandler) Follow(c *gin.Context) {
	if err := h.users.Follow(c.Request.Context(), middleware.CallerFrom(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Following", "following": true})
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	if err := h.users.Unfollow(c.Request.Context(), middleware.CallerFrom(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed", "following": false})
}

func (h *UserHandler) ListArtists(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	list, err := h.users.ListArtists(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *UserHandler) GetArtist(c *gin.Context) {
	artist, err := h.users.GetArtist(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, artist)
}

func (h *UserHandler) UpdateArtistProfile(c *gin.Context) {
	var req dto.UpdateArtistProfileRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.users.UpdateArtistProfile(c.Request.Context(), middleware.CallerFrom(c), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Dashboard(c *gin.Context) {
	dash, err := h.analytics.ArtistSummary(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}
