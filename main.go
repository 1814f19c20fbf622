package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sajag-gupta/riseup/config"
	"github.com/sajag-gupta/riseup/handler"
	"github.com/sajag-gupta/riseup/logger"
	"github.com/sajag-gupta/riseup/mailer"
	"github.com/sajag-gupta/riseup/media"
	"github.com/sajag-gupta/riseup/metrics"
	"github.com/sajag-gupta/riseup/payment"
	"github.com/sajag-gupta/riseup/repository"
	"github.com/sajag-gupta/riseup/service"
	"github.com/sajag-gupta/riseup/ticket"
	"github.com/sajag-gupta/riseup/validation"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	cfg := config.LoadConfig()

	logger.Init(logger.Config{
		ServiceName: "riseup-api",
		Environment: cfg.Environment,
		LogFilePath: cfg.LogFilePath,
		HMACKey:     cfg.LogHMACKey,
		MaxSizeMB:   cfg.LogMaxSizeMB,
		MaxBackups:  cfg.LogMaxBackups,
		MaxAgeDays:  cfg.LogMaxAgeDays,
	})
	defer logger.Close()

	if err := cfg.Validate(); err != nil {
		logger.Fatal(logger.EventServiceStartup, "Invalid configuration", logger.Fields("error", err.Error()))
	}
	if err := validation.Setup(); err != nil {
		logger.Fatal(logger.EventServiceStartup, "Failed to register validators", logger.Fields("error", err.Error()))
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info(logger.EventServiceStartup, "Rise Up API starting", logger.Fields(
		"port", cfg.ServerPort,
		"environment", cfg.Environment,
	))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal(logger.EventDBError, "Failed to connect to MongoDB", logger.Fields("error", err.Error()))
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Fatal(logger.EventDBError, "Failed to ping MongoDB", logger.Fields("error", err.Error()))
	}
	logger.Info(logger.EventDBConnection, "Connected to MongoDB successfully", logger.Fields("database", cfg.MongoDatabase))

	db := client.Database(cfg.MongoDatabase)
	carts, rdb := cartStore(ctx, cfg)
	if rdb != nil {
		defer rdb.Close()
	}

	m, err := metrics.New()
	if err != nil {
		logger.Fatal(logger.EventServiceStartup, "Failed to register metrics", logger.Fields("error", err.Error()))
	}

	uploader := mediaUploader(cfg)
	gateway := paymentGateway(cfg)
	mail := mailer.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.ClientURL)
	runner := service.NewAsyncRunner()

	users := repository.NewUserRepository(db)
	songs := repository.NewSongRepository(db)
	merch := repository.NewMerchRepository(db)
	events := repository.NewEventRepository(db)
	blogs := repository.NewBlogRepository(db)
	orders := repository.NewOrderRepository(db)
	subs := repository.NewSubscriptionRepository(db)
	analytics := repository.NewAnalyticsRepository(db)

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	songService := service.NewSongService(songs, users, subs, analytics, uploader, m)
	services := handler.Services{
		Tokens: tokens,
		Auth:   service.NewAuthService(users, tokens, mail, runner),
		Users:  service.NewUserService(users, songs, analytics, uploader),
		Songs:  songService,
		Events: service.NewEventService(events, users, uploader, m),
		Merch:  service.NewMerchService(merch, users, uploader, m),
		Blogs:  service.NewBlogService(blogs, users, uploader, m),
		Carts:  service.NewCartService(carts, merch, events),
		Orders: service.NewOrderService(service.OrderDeps{
			Orders:    orders,
			Carts:     carts,
			Merch:     merch,
			Events:    events,
			Users:     users,
			Analytics: analytics,
			Gateway:   gateway,
			Mail:      mail,
			Tickets:   ticket.NewGenerator(uploader),
			Runner:    runner,
			Metrics:   m,
			Currency:  cfg.Currency,
		}),
		Subscriptions: service.NewSubscriptionService(subs, users, analytics, mail, runner),
		Analytics: service.NewAnalyticsService(service.AnalyticsDeps{
			Plays:         songService,
			Analytics:     analytics,
			Users:         users,
			Songs:         songs,
			Events:        events,
			Merch:         merch,
			Orders:        orders,
			Subscriptions: subs,
		}),
	}

	router := handler.NewRouter(services, handler.RouterConfig{
		ClientURL:       cfg.ClientURL,
		RateLimitGlobal: cfg.RateLimitGlobal,
		RateLimitAuth:   cfg.RateLimitAuth,
		RateLimitWindow: cfg.RateLimitWindow,
		Metrics:         m,
		Health:          healthCheck(client, rdb),
	})
	defer router.Close()

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(logger.EventServiceStartup, "Server listening", logger.Fields("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(logger.EventGeneral, "Failed to start server", logger.Fields("error", err.Error()))
		}
	}()

	stop, release := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer release()
	<-stop.Done()

	logger.Info(logger.EventServiceShutdown, "Shutting down", nil)
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(logger.EventServiceShutdown, "Graceful shutdown failed", logger.Fields("error", err.Error()))
	}
}

// cartStore prefers Redis and falls back to process memory when REDIS_URL
// is unset or unreachable.
func cartStore(ctx context.Context, cfg *config.Config) (repository.CartStore, *redis.Client) {
	if cfg.RedisURL == "" {
		logger.Warn(logger.EventCacheError, "REDIS_URL not set, carts are kept in memory", nil)
		return repository.NewMemoryCartStore(cfg.CartTTL), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal(logger.EventCacheError, "Invalid REDIS_URL", logger.Fields("error", err.Error()))
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn(logger.EventCacheError, "Redis unreachable, carts are kept in memory", logger.Fields("error", err.Error()))
		_ = rdb.Close()
		return repository.NewMemoryCartStore(cfg.CartTTL), nil
	}
	logger.Info(logger.EventDBConnection, "Connected to Redis", nil)
	return repository.NewRedisCartStore(rdb, cfg.CartTTL), rdb
}

func mediaUploader(cfg *config.Config) media.Uploader {
	if cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "" {
		logger.Warn(logger.EventMediaFailure, "Cloudinary not configured, uploads are disabled", nil)
		return media.NewDisabled()
	}
	u, err := media.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.UploadTimeout)
	if err != nil {
		logger.Error(logger.EventMediaFailure, "Cloudinary setup failed, uploads are disabled", logger.Fields("error", err.Error()))
		return media.NewDisabled()
	}
	return u
}

func paymentGateway(cfg *config.Config) payment.Gateway {
	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		logger.Warn(logger.EventPaymentFailed, "Razorpay not configured, checkout is disabled", nil)
		return payment.NewDisabled()
	}
	return payment.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
}

func healthCheck(client *mongo.Client, rdb *redis.Client) func() map[string]string {
	return func() map[string]string {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		deps := map[string]string{"mongodb": "ok"}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			deps["mongodb"] = "unreachable"
		}
		if rdb != nil {
			deps["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				deps["redis"] = "unreachable"
			}
		}
		return deps
	}
}
