package config

import (
	"bengaliboutique_server/structs"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	configInstance *structs.Config
	configOnce     sync.Once
)

func GetConfig() *structs.Config {
	configOnce.Do(func() {
		configInstance = Load()
	})
	return configInstance
}

// Load builds a fresh configuration from the environment.
func Load() *structs.Config {
	return &structs.Config{
		Server: &structs.ServerConfig{
			AppName:        getEnvAsString("APP_NAME", "Bengali Boutique"),
			Environment:    getEnvAsString("APP_ENV", "development"),
			Port:           getEnvAsString("APP_PORT", ":8082"),
			CookieDomain:   getEnvAsString("COOKIE_DOMAIN", ""),
			ReadTimeout:    getEnvAsTimeDuration("SERVER_READ_TIME_OUT", 15*time.Second),
			WriteTimeout:   getEnvAsTimeDuration("SERVER_WRITE_TIME_OUT", 15*time.Second),
			IdleTimeout:    getEnvAsTimeDuration("SERVER_IDLE_TIME_OUT", 60*time.Second),
			MaxHeaderBytes: getEnvAsInt("SERVER_MAX_HEADER_BYTES", 1<<20), // 1 MB
		},
		Cors: &structs.CorsConfig{
			AllowedOrigins:   getEnvAsSlice("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods:   getEnvAsSlice("CORS_ALLOW_METHODS", []string{"GET", "POST", "OPTIONS"}),
			AllowedHeaders:   getEnvAsSlice("CORS_ALLOW_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-CSRF-Token", "Idempotency-Key"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", true),
			ExposedHeaders:   getEnvAsSlice("CORS_EXPOSED_HEADERS", []string{"Content-Length", "Location"}),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 300),
		},
		Database: &structs.DatabaseConfig{
			Host:         getEnvAsString("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnvAsString("DB_USER", "postgres"),
			Password:     getEnvAsString("DB_PASSWORD", "password"),
			Name:         getEnvAsString("DB_NAME", "bengaliboutique"),
			SSLMode:      getEnvAsString("DB_SSLMODE", "disable"),
			MaxConns:     getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:     getEnvAsInt("DB_MIN_CONNS", 2),
			MaxLifetime:  getEnvAsTimeDuration("DB_MAX_LIFETIME", 30*time.Minute),
			MaxIdleTime:  getEnvAsTimeDuration("DB_MAX_IDLE_TIME", 5*time.Minute),
			ReadTimeout:  getEnvAsTimeDuration("DB_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getEnvAsTimeDuration("DB_WRITE_TIMEOUT", 5*time.Second),
		},
		Cache: &structs.CacheConfig{
			Address:         getEnvAsString("REDIS_ADDRESS", "localhost:6379"),
			Username:        getEnvAsString("REDIS_USERNAME", ""),
			Password:        getEnvAsString("REDIS_PASSWORD", ""),
			DB:              getEnvAsInt("REDIS_DB", 0),
			PoolSize:        getEnvAsInt("REDIS_POOL_SIZE", 20),
			MinIdleConns:    getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
			MaxIdleConns:    getEnvAsInt("REDIS_MAX_IDLE_CONNS", 10),
			PoolTimeout:     getEnvAsTimeDuration("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:     getEnvAsTimeDuration("REDIS_IDLE_TIMEOUT", 5*time.Minute),
			DialTimeout:     getEnvAsTimeDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:     getEnvAsTimeDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:    getEnvAsTimeDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			MaxRetries:      getEnvAsInt("REDIS_MAX_RETRIES", 3),
			MinRetryBackoff: getEnvAsTimeDuration("REDIS_MIN_RETRY_BACKOFF", 8*time.Millisecond),
			MaxRetryBackoff: getEnvAsTimeDuration("REDIS_MAX_RETRY_BACKOFF", 512*time.Millisecond),
			ProductTTL:      getEnvAsTimeDuration("CACHE_PRODUCT_TTL", 10*time.Minute),
		},
		Auth: &structs.AuthConfig{
			AccessTokenSecret: getEnvAsString("AUTH_ACCESS_TOKEN_SECRET", "default_access_secret"),
			AccessTokenExpiry: getEnvAsTimeDuration("AUTH_ACCESS_TOKEN_EXPIRY", 15*time.Minute),
		},
		Email: &structs.EmailConfig{
			ApiKey:     getEnvAsString("RESEND_API_KEY", ""),
			From:       getEnvAsString("EMAIL_FROM", "admin@bengaliboutique.com"),
			AdminEmail: getEnvAsString("ADMIN_EMAIL", "admin@bengaliboutique.com"),
		},
		Shop: &structs.ShopConfig{
			ShippingFee:      getEnvAsDecimal("SHOP_SHIPPING_FEE", decimal.NewFromInt(100)),
			CurrencySymbol:   getEnvAsString("SHOP_CURRENCY_SYMBOL", "৳"),
			PageSize:         getEnvAsInt("SHOP_PAGE_SIZE", 12),
			FeaturedCount:    getEnvAsInt("SHOP_FEATURED_COUNT", 6),
			LatestReviews:    getEnvAsInt("SHOP_LATEST_REVIEWS", 3),
			SessionTTL:       getEnvAsTimeDuration("SESSION_TTL", 14*24*time.Hour),
			IdempotencyTTL:   getEnvAsTimeDuration("IDEMPOTENCY_TTL", 24*time.Hour),
			SessionCookie:    getEnvAsString("SESSION_COOKIE_NAME", "session_id"),
			FlashCookie:      getEnvAsString("FLASH_COOKIE_NAME", "flash"),
			AdminOrdersLimit: getEnvAsInt("ADMIN_ORDERS_PAGE_SIZE", 25),
		},
		Kafka: &structs.KafkaConfig{
			Brokers:    getEnvAsSlice("KAFKA_BROKERS", []string{}),
			OrderTopic: getEnvAsString("KAFKA_ORDER_TOPIC", "boutique.orders"),
		},
		RateLimit: &structs.RateLimitConfig{
			Enabled:         getEnvAsBool("RATE_LIMIT_ENABLED", true),
			GeneralLimit:    getEnvAsInt("RATE_LIMIT_GENERAL", 300),
			GeneralWindow:   getEnvAsTimeDuration("RATE_LIMIT_GENERAL_WINDOW", time.Minute),
			CheckoutLimit:   getEnvAsInt("RATE_LIMIT_CHECKOUT", 10),
			CheckoutWindow:  getEnvAsTimeDuration("RATE_LIMIT_CHECKOUT_WINDOW", time.Minute),
			AdminLimit:      getEnvAsInt("RATE_LIMIT_ADMIN", 120),
			AdminWindow:     getEnvAsTimeDuration("RATE_LIMIT_ADMIN_WINDOW", time.Minute),
			ExpensiveLimit:  getEnvAsInt("RATE_LIMIT_EXPENSIVE", 120),
			ExpensiveWindow: getEnvAsTimeDuration("RATE_LIMIT_EXPENSIVE_WINDOW", time.Minute),
		},
		Encryption: &structs.EncryptionConfig{
			Key: getEnvAsString("ENCRYPTION_KEY", ""),
		},
	}
}

func GetLogLevel() string {
	if IsProduction() {
		return "info"
	}
	return "debug"
}

func IsProduction() bool {
	return GetConfig().Server.Environment == "production"
}
