// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	AWS         AWSConfig
	Payment     PaymentConfig
	Media       MediaConfig
	Cache       CacheConfig
	Checkout    CheckoutConfig
	Email       EmailConfig
	Frontend    FrontendConfig
}

type FrontendConfig struct {
	BaseURL        string
	AllowedOrigins []string
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Database, d.SSLMode,
	)
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  int // in hours
	RefreshTokenTTL int // in hours
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
}

type PaymentConfig struct {
	StripeSecretKey      string
	StripePublishableKey string
}

// MediaConfig bounds the image upload pipeline. Uploaded images are resized to
// MaxDimension and re-encoded as JPEG at decreasing quality until they fit
// ImageBudget or hit MinJPEGQuality.
type MediaConfig struct {
	MaxUploadSize  int64  // bytes, cap on a single incoming file
	ImageBudget    int64  // bytes, target size after compression
	MaxDimension   int    // px, longest edge after resize
	MinJPEGQuality int    // quality floor for the compression loop
	StagingTTL     int    // hours before unclaimed staging uploads are purged
	LocalDir       string // local storage root when S3 is not configured
}

// CacheConfig holds the per-resource freshness windows for read endpoints,
// in seconds. GCInterval is the cleanup cadence shared by all caches.
type CacheConfig struct {
	ProductsStale int
	TaxonomyStale int
	StaticStale   int
	GCInterval    int
}

type CheckoutConfig struct {
	Currency              string
	ShippingFee           float64
	FreeShippingThreshold float64
	CartTTL               int // hours
	LowStockThreshold     int
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "storefront"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "warn"),
		},
		JWT: JWTConfig{
			SecretKey:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL:  getEnvAsInt("JWT_ACCESS_TTL", 24),   // 24 hours
			RefreshTokenTTL: getEnvAsInt("JWT_REFRESH_TTL", 168), // 7 days
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "storefront-media"),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
		},
		Payment: PaymentConfig{
			StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
		},
		Media: MediaConfig{
			MaxUploadSize:  getEnvAsInt64("MEDIA_MAX_UPLOAD_SIZE", 10*1024*1024),
			ImageBudget:    getEnvAsInt64("MEDIA_IMAGE_BUDGET", 500*1024),
			MaxDimension:   getEnvAsInt("MEDIA_MAX_DIMENSION", 1920),
			MinJPEGQuality: getEnvAsInt("MEDIA_MIN_JPEG_QUALITY", 40),
			StagingTTL:     getEnvAsInt("MEDIA_STAGING_TTL", 24),
			LocalDir:       getEnv("MEDIA_LOCAL_DIR", "./uploads"),
		},
		Cache: CacheConfig{
			ProductsStale: getEnvAsInt("CACHE_PRODUCTS_STALE", 60),
			TaxonomyStale: getEnvAsInt("CACHE_TAXONOMY_STALE", 300),
			StaticStale:   getEnvAsInt("CACHE_STATIC_STALE", 3600),
			GCInterval:    getEnvAsInt("CACHE_GC_INTERVAL", 600),
		},
		Checkout: CheckoutConfig{
			Currency:              getEnv("CHECKOUT_CURRENCY", "USD"),
			ShippingFee:           getEnvAsFloat("CHECKOUT_SHIPPING_FEE", 5.0),
			FreeShippingThreshold: getEnvAsFloat("CHECKOUT_FREE_SHIPPING_THRESHOLD", 100.0),
			CartTTL:               getEnvAsInt("CART_TTL", 72),
			LowStockThreshold:     getEnvAsInt("LOW_STOCK_THRESHOLD", 5),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@lumenmart.com"),
			FromName:     getEnv("FROM_NAME", "LumenMart"),
		},
		Frontend: FrontendConfig{
			BaseURL:        getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
			AllowedOrigins: getEnvAsSlice("FRONTEND_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Payment.StripeSecretKey == "" && c.Environment == "production" {
		return fmt.Errorf("stripe secret key is required in production")
	}

	if c.Media.MinJPEGQuality < 1 || c.Media.MinJPEGQuality > 100 {
		return fmt.Errorf("MEDIA_MIN_JPEG_QUALITY must be between 1 and 100")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
