package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sajag-gupta/riseup/dto"
	"github.com/sajag-gupta/riseup/middleware"
	"github.com/sajag-gupta/riseup/service"
)

// AdminHandler serves analytics ingestion and the moderation panel.
type AdminHandler struct {
	analytics service.AnalyticsService
	users     service.UserService
	songs     service.SongService
	blogs     service.BlogService
	orders    service.OrderService
}

func NewAdminHandler(
	analytics service.AnalyticsService,
	users service.UserService,
	songs service.SongService,
	blogs service.BlogService,
	orders service.OrderService,
) *AdminHandler {
	return &AdminHandler{analytics: analytics, users: users, songs: songs, blogs: blogs, orders: orders}
}

func (h *AdminHandler) RegisterRoutes(api *gin.RouterGroup, g Guards) {
	api.POST("/analytics/events", g.Optional, h.Track)
	api.GET("/analytics/artist/me", g.Auth, g.Artist, h.ArtistAnalytics)

	admin := api.Group("/admin", g.Auth, g.Admin)
	admin.GET("/stats", h.Stats)
	admin.GET("/users", h.ListUsers)
	admin.PATCH("/users/:id", h.UpdateUser)
	admin.PATCH("/artists/:id/verify", h.VerifyArtist)
	admin.DELETE("/songs/:id", h.DeleteSong)
	admin.DELETE("/blogs/:id", h.DeleteBlog)
	admin.GET("/orders", h.ListOrders)
	admin.POST("/orders/:id/refund", h.RefundOrder)
}

func (h *AdminHandler) Track(c *gin.Context) {
	var req dto.TrackEventRequest
	if !bind(c, &req) {
		return
	}
	if err := h.analytics.Track(c.Request.Context(), middleware.CallerFrom(c), &req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Event recorded"})
}

func (h *AdminHandler) ArtistAnalytics(c *gin.Context) {
	dash, err := h.analytics.ArtistSummary(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.analytics.PlatformStats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	list, err := h.users.ListUsers(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req dto.AdminUpdateUserRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.users.AdminUpdateUser(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) VerifyArtist(c *gin.Context) {
	var req dto.VerifyArtistRequest
	if !bind(c, &req) {
		return
	}
	user, err := h.users.VerifyArtist(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), *req.Verified)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AdminHandler) DeleteSong(c *gin.Context) {
	if err := h.songs.Delete(c.Request.Context(), middleware.CallerFrom(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Song removed"})
}

func (h *AdminHandler) DeleteBlog(c *gin.Context) {
	if err := h.blogs.Delete(c.Request.Context(), middleware.CallerFrom(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Blog removed"})
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	list, err := h.orders.ListAll(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AdminHandler) RefundOrder(c *gin.Context) {
	order, err := h.orders.Refund(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
