package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sajag-gupta/riseup/dto"
	"github.com/sajag-gupta/riseup/middleware"
	"github.com/sajag-gupta/riseup/service"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes mounts the auth endpoints. limiter throttles signup and
// login only.
func (h *AuthHandler) RegisterRoutes(api *gin.RouterGroup, g Guards, limiter gin.HandlerFunc) {
	auth := api.Group("/auth")
	auth.POST("/signup", limiter, h.Signup)
	auth.POST("/login", limiter, h.Login)
	auth.GET("/me", g.Auth, h.Me)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !bind(c, &req) {
		return
	}
	resp, err := h.auth.Signup(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bind(c, &req) {
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), middleware.CallerFrom(c).UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
