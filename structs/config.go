package structs

import (
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Server     *ServerConfig
	Cors       *CorsConfig
	Database   *DatabaseConfig
	Cache      *CacheConfig
	Auth       *AuthConfig
	Email      *EmailConfig
	Shop       *ShopConfig
	Kafka      *KafkaConfig
	RateLimit  *RateLimitConfig
	Encryption *EncryptionConfig
}

type ServerConfig struct {
	AppName        string        // Bengali Boutique
	Environment    string        // development, production
	Port           string        // :8082
	CookieDomain   string        // empty for host-only cookies
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int // in bytes
}

type CorsConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int // in seconds
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxConns     int
	MinConns     int
	MaxLifetime  time.Duration
	MaxIdleTime  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type CacheConfig struct {
	Address         string
	Username        string
	Password        string
	DB              int
	PoolSize        int
	MinIdleConns    int
	MaxIdleConns    int
	PoolTimeout     time.Duration
	IdleTimeout     time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	ProductTTL      time.Duration
}

type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
}

type EmailConfig struct {
	ApiKey     string
	From       string
	AdminEmail string
}

// ShopConfig holds storefront business constants.
type ShopConfig struct {
	ShippingFee      decimal.Decimal
	CurrencySymbol   string
	PageSize         int
	FeaturedCount    int
	LatestReviews    int
	SessionTTL       time.Duration
	IdempotencyTTL   time.Duration
	SessionCookie    string
	FlashCookie      string
	AdminOrdersLimit int
}

type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
}

type RateLimitConfig struct {
	Enabled         bool
	GeneralLimit    int
	GeneralWindow   time.Duration
	CheckoutLimit   int
	CheckoutWindow  time.Duration
	AdminLimit      int
	AdminWindow     time.Duration
	ExpensiveLimit  int
	ExpensiveWindow time.Duration
}

type EncryptionConfig struct {
	Key string // 32 bytes for AES-256, empty disables address encryption
}
