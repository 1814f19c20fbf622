package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sajag-gupta/riseup/dto"
	"github.com/sajag-gupta/riseup/middleware"
	"github.com/sajag-gupta/riseup/service"
)

// ContentHandler serves songs, events, merch and blogs.
type ContentHandler struct {
	songs  service.SongService
	events service.EventService
	merch  service.MerchService
	blogs  service.BlogService
}

func NewContentHandler(songs service.SongService, events service.EventService, merch service.MerchService, blogs service.BlogService) *ContentHandler {
	return &ContentHandler{songs: songs, events: events, merch: merch, blogs: blogs}
}

func (h *ContentHandler) RegisterRoutes(api *gin.RouterGroup, g Guards) {
	songs := api.Group("/songs")
	songs.GET("", g.Optional, h.ListSongs)
	songs.GET("/:id", g.Optional, h.GetSong)
	songs.POST("", g.Auth, g.Artist, h.CreateSong)
	songs.PATCH("/:id", g.Auth, g.Artist, h.UpdateSong)
	songs.DELETE("/:id", g.Auth, g.Artist, h.DeleteSong)
	songs.POST("/:id/play", g.Optional, h.PlaySong)
	songs.POST("/:id/like", g.Auth, h.LikeSong)
	songs.DELETE("/:id/like", g.Auth, h.UnlikeSong)

	events := api.Group("/events")
	events.GET("", h.ListEvents)
	events.GET("/:id", h.GetEvent)
	events.POST("", g.Auth, g.Artist, h.CreateEvent)
	events.PATCH("/:id", g.Auth, g.Artist, h.UpdateEvent)
	events.DELETE("/:id", g.Auth, g.Artist, h.DeleteEvent)

	merch := api.Group("/merch")
	merch.GET("", h.ListMerch)
	merch.GET("/:id", h.GetMerch)
	merch.POST("", g.Auth, g.Artist, h.CreateMerch)
	merch.PATCH("/:id", g.Auth, g.Artist, h.UpdateMerch)
	merch.DELETE("/:id", g.Auth, g.Artist, h.DeleteMerch)

	blogs := api.Group("/blogs")
	blogs.GET("", g.Optional, h.ListBlogs)
	blogs.GET("/:id", g.Optional, h.GetBlog)
	blogs.POST("", g.Auth, g.ArtistOrAdmin, h.CreateBlog)
	blogs.PATCH("/:id", g.Auth, g.ArtistOrAdmin, h.UpdateBlog)
	blogs.DELETE("/:id", g.Auth, g.ArtistOrAdmin, h.DeleteBlog)
}

// Songs

func (h *ContentHandler) ListSongs(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	list, err := h.songs.List(c.Request.Context(), middleware.CallerFrom(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ContentHandler) GetSong(c *gin.Context) {
	song, err := h.songs.Get(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, song)
}

func (h *ContentHandler) CreateSong(c *gin.Context) {
	var req dto.CreateSongRequest
	if !bind(c, &req) {
		return
	}
	song, err := h.songs.Create(c.Request.Context(), middleware.CallerFrom(c), &req, formFile(c, "audio"), formFile(c, "artwork"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, song)
}

func (h *ContentHandler) UpdateSong(c *gin.Context) {
	var req dto.UpdateSongRequest
	if !bind(c, &req) {
		return
	}
	song, err := h.songs.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), &req, formFile(c, "artwork"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, song)
}

func (h *ContentHandler) DeleteSong(c *gin.Context) {
	if err := h.songs.Delete(c.Request.Context(), middleware.CallerFrom(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Song deleted"})
}

func (h *ContentHandler) PlaySong(c *gin.Context) {
	song, err := h.songs.Play(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, song)
}

func (h *ContentHandler) LikeSong(c *gin.Context) {
	song, err := h.songs.Like(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, song)
}

func (h *ContentHandler) UnlikeSong(c *gin.Context) {
	song, err := h.songs.Unlike(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, song)
}

// Events

func (h *ContentHandler) ListEvents(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	list, err := h.events.List(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ContentHandler) GetEvent(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *ContentHandler) CreateEvent(c *gin.Context) {
	var req dto.CreateEventRequest
	if !bind(c, &req) {
		return
	}
	event, err := h.events.Create(c.Request.Context(), middleware.CallerFrom(c), &req, formFile(c, "image"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *ContentHandler) UpdateEvent(c *gin.Context) {
	var req dto.UpdateEventRequest
	if !bind(c, &req) {
		return
	}
	event, err := h.events.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), &req, formFile(c, "image"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *ContentHandler) DeleteEvent(c *gin.Context) {
	if err := h.events.Delete(c.Request.Context(), middleware.CallerFrom(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

// Merch

func (h *ContentHandler) ListMerch(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	list, err := h.merch.List(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ContentHandler) GetMerch(c *gin.Context) {
	item, err := h.merch.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ContentHandler) CreateMerch(c *gin.Context) {
	var req dto.CreateMerchRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.merch.Create(c.Request.Context(), middleware.CallerFrom(c), &req, formFiles(c, "images"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *ContentHandler) UpdateMerch(c *gin.Context) {
	var req dto.UpdateMerchRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.merch.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), &req, formFiles(c, "images"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ContentHandler) DeleteMerch(c *gin.Context) {
	if err := h.merch.Delete(c.Request.Context(), middleware.CallerFrom(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Merch deleted"})
}

// Blogs

func (h *ContentHandler) ListBlogs(c *gin.Context) {
	q, ok := bindQuery(c)
	if !ok {
		return
	}
	list, err := h.blogs.List(c.Request.Context(), middleware.CallerFrom(c), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ContentHandler) GetBlog(c *gin.Context) {
	blog, err := h.blogs.Get(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, blog)
}

func (h *ContentHandler) CreateBlog(c *gin.Context) {
	var req dto.CreateBlogRequest
	if !bind(c, &req) {
		return
	}
	blog, err := h.blogs.Create(c.Request.Context(), middleware.CallerFrom(c), &req, formFile(c, "cover"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, blog)
}

func (h *ContentHandler) UpdateBlog(c *gin.Context) {
	var req dto.UpdateBlogRequest
	if !bind(c, &req) {
		return
	}
	blog, err := h.blogs.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"), &req, formFile(c, "cover"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, blog)
}

func (h *ContentHandler) DeleteBlog(c *gin.Context) {
	if err := h.blogs.Delete(c.Request.Context(), middleware.CallerFrom(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Blog deleted"})
}
