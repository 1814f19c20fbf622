package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sajag-gupta/riseup/domain"
	"github.com/sajag-gupta/riseup/metrics"
	"github.com/sajag-gupta/riseup/middleware"
	"github.com/sajag-gupta/riseup/service"
)

// Guards are the auth middlewares shared by every route group.
type Guards struct {
	Auth          gin.HandlerFunc
	Optional      gin.HandlerFunc
	Artist        gin.HandlerFunc
	Admin         gin.HandlerFunc
	ArtistOrAdmin gin.HandlerFunc
}

func NewGuards(tokens service.TokenService) Guards {
	return Guards{
		Auth:          middleware.Auth(tokens),
		Optional:      middleware.OptionalAuth(tokens),
		Artist:        middleware.RequireRoles(domain.RoleArtist),
		Admin:         middleware.AdminOnly(),
		ArtistOrAdmin: middleware.RequireRoles(domain.RoleArtist, domain.RoleAdmin),
	}
}

type Services struct {
	Tokens        service.TokenService
	Auth          service.AuthService
	Users         service.UserService
	Songs         service.SongService
	Events        service.EventService
	Merch         service.MerchService
	Blogs         service.BlogService
	Carts         service.CartService
	Orders        service.OrderService
	Subscriptions service.SubscriptionService
	Analytics     service.AnalyticsService
}

type RouterConfig struct {
	ClientURL       string
	RateLimitGlobal int
	RateLimitAuth   int
	RateLimitWindow time.Duration
	Metrics         *metrics.Metrics
	// Health reports dependency status for /health. Nil means always ok.
	Health func() map[string]string
}

// Router owns the engine and the rate limiters it started.
type Router struct {
	*gin.Engine
	limiters []*middleware.RateLimiter
}

func NewRouter(svc Services, cfg RouterConfig) *Router {
	global := middleware.NewRateLimiter("global", cfg.RateLimitGlobal, cfg.RateLimitWindow)
	auth := middleware.NewRateLimiter("auth", cfg.RateLimitAuth, cfg.RateLimitWindow)

	r := gin.New()
	r.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(cfg.Metrics),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.ClientURL),
	)

	r.GET("/health", healthHandler(cfg.Health))
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api", global.Middleware(), middleware.ValidateRequest(middleware.MaxRequestBytes))
	g := NewGuards(svc.Tokens)

	NewAuthHandler(svc.Auth).RegisterRoutes(api, g, auth.Middleware())
	NewUserHandler(svc.Users, svc.Analytics).RegisterRoutes(api, g)
	NewContentHandler(svc.Songs, svc.Events, svc.Merch, svc.Blogs).RegisterRoutes(api, g)
	NewCommerceHandler(svc.Carts, svc.Orders, svc.Subscriptions).RegisterRoutes(api, g)
	NewAdminHandler(svc.Analytics, svc.Users, svc.Songs, svc.Blogs, svc.Orders).RegisterRoutes(api, g)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})

	return &Router{Engine: r, limiters: []*middleware.RateLimiter{global, auth}}
}

// Close stops background work owned by the router.
func (r *Router) Close() {
	for _, l := range r.limiters {
		l.Close()
	}
}

func healthHandler(check func() map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		deps := map[string]string{}
		if check != nil {
			deps = check()
		}
		status := http.StatusOK
		for _, v := range deps {
			if v != "ok" {
				status = http.StatusServiceUnavailable
				break
			}
		}
		c.JSON(status, gin.H{
			"status":       http.StatusText(status),
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
			"dependencies": deps,
		})
	}
}
