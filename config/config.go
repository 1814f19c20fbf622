package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultSecret = "riseup-dev-secret-change-me"

type Config struct {
	Environment string
	ServerPort  string
	ClientURL   string

	MongoURI      string
	MongoDatabase string

	RedisURL string
	CartTTL  time.Duration

	SessionSecret string
	JWTSecret     string
	JWTTTL        time.Duration

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	UploadTimeout       time.Duration

	RazorpayKeyID     string
	RazorpayKeySecret string
	Currency          string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	RateLimitGlobal int
	RateLimitAuth   int
	RateLimitWindow time.Duration

	LogFilePath   string
	LogHMACKey    string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	sessionSecret := getEnv("SESSION_SECRET", defaultSecret)

	return &Config{
		Environment: getEnv("NODE_ENV", "development"),
		ServerPort:  getEnv("PORT", "5000"),
		ClientURL:   getEnv("CLIENT_URL", "http://localhost:5173"),

		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "riseup"),

		RedisURL: getEnv("REDIS_URL", ""),
		CartTTL:  getEnvAsDuration("CART_TTL", 7*24*time.Hour),

		SessionSecret: sessionSecret,
		JWTSecret:     getEnv("JWT_SECRET", sessionSecret),
		JWTTTL:        getEnvAsDuration("JWT_TTL", 7*24*time.Hour),

		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		UploadTimeout:       getEnvAsDuration("UPLOAD_TIMEOUT", 2*time.Minute),

		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		Currency:          getEnv("PAYMENT_CURRENCY", "INR"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASS", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "Rise Up Creators <noreply@riseupcreators.com>"),

		RateLimitGlobal: getEnvAsInt("RATE_LIMIT_GLOBAL", 100),
		RateLimitAuth:   getEnvAsInt("RATE_LIMIT_AUTH", 10),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),

		LogFilePath:   getEnv("LOG_FILE_PATH", "/var/log/riseup/app.log"),
		LogHMACKey:    getEnv("LOG_HMAC_KEY", "default-hmac-key-change-in-production"),
		LogMaxSizeMB:  getEnvAsInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvAsInt("LOG_MAX_AGE_DAYS", 30),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Validate rejects settings that are only acceptable during development.
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	if c.JWTSecret == defaultSecret {
		return errors.New("SESSION_SECRET or JWT_SECRET must be set in production")
	}
	if c.RazorpayKeyID == "" || c.RazorpayKeySecret == "" {
		return errors.New("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required in production")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
