package services

import (
	"bengaliboutique_server/config"
	"bengaliboutique_server/structs"
	"bengaliboutique_server/structs/tables"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

const idempotencyPending = "pending"

// CacheService provides Redis caching functionality with connection pooling and retry logic.
// It also stores session carts and checkout idempotency keys.
type CacheService struct {
	logger *gecho.Logger
	config *structs.Config
	client *redis.Client
}

func NewCacheService(logger *gecho.Logger, cfg *structs.Config) *CacheService {
	return &CacheService{
		logger: logger,
		config: cfg,
		client: getRedisClient(),
	}
}

// getRedisClient returns a singleton Redis client with proper connection pooling
func getRedisClient() *redis.Client {
	redisOnce.Do(func() {
		cfg := config.GetConfig()
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Address,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,

			// Connection pool settings
			PoolSize:        cfg.Cache.PoolSize,
			MinIdleConns:    cfg.Cache.MinIdleConns,
			MaxIdleConns:    cfg.Cache.MaxIdleConns,
			PoolTimeout:     cfg.Cache.PoolTimeout,
			ConnMaxIdleTime: cfg.Cache.IdleTimeout,

			// Timeouts
			DialTimeout:  cfg.Cache.DialTimeout,
			ReadTimeout:  cfg.Cache.ReadTimeout,
			WriteTimeout: cfg.Cache.WriteTimeout,

			MaxRetries:      cfg.Cache.MaxRetries,
			MinRetryBackoff: cfg.Cache.MinRetryBackoff,
			MaxRetryBackoff: cfg.Cache.MaxRetryBackoff,
		})
	})
	return redisClient
}

// Close closes the Redis connection pool
func (cs *CacheService) Close() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}

// withRetry executes a Redis operation with exponential backoff retry logic
func (cs *CacheService) withRetry(ctx context.Context, operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt == maxRetries {
			break
		}

		// Only retry on network/connection errors, not on logical errors like key not found
		if !isRetryableRedisError(err) {
			return err
		}

		timer := time.NewTimer(backoffWithJitter(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("redis operation failed after %d retries: %w", maxRetries, lastErr)
}

func backoffWithJitter(attempt int) time.Duration {
	maxBackoff := 2000 // ms
	base := 100

	backoff := min(base*(1<<attempt), maxBackoff)

	jitterBytes := make([]byte, 4)
	if _, err := rand.Read(jitterBytes); err != nil {
		return time.Duration(backoff) * time.Millisecond
	}
	jitter := int(uint32(jitterBytes[0])<<24 | uint32(jitterBytes[1])<<16 | uint32(jitterBytes[2])<<8 | uint32(jitterBytes[3]))
	jitter = jitter % (backoff/2 + 1)

	return time.Duration(backoff/2+jitter) * time.Millisecond
}

// isRetryableRedisError determines if an error is worth retrying
func isRetryableRedisError(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return false
	}

	errStr := err.Error()
	retryableErrors := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"broken pipe",
		"no such host",
		"network is unreachable",
	}

	for _, retryableErr := range retryableErrors {
		if strings.Contains(errStr, retryableErr) {
			return true
		}
	}

	return false
}

// Set sets a key with TTL and automatic retry logic
func (cs *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return cs.withRetry(ctx, func() error {
		return cs.client.Set(ctx, key, value, ttl).Err()
	}, 3)
}

// Get retrieves a key with automatic retry logic. Missing keys yield "".
func (cs *CacheService) Get(ctx context.Context, key string) (string, error) {
	var result string

	err := cs.withRetry(ctx, func() error {
		val, err := cs.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			result = ""
			return nil
		}
		if err != nil {
			return err
		}
		result = val
		return nil
	}, 3)

	return result, err
}

// Delete removes keys with automatic retry logic
func (cs *CacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return cs.withRetry(ctx, func() error {
		return cs.client.Del(ctx, keys...).Err()
	}, 3)
}

// ============================================================================
// Session carts
// ============================================================================

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

// Load reads the session cart hash. A missing cart is empty.
func (cs *CacheService) Load(ctx context.Context, sessionID string) (structs.Cart, error) {
	var raw map[string]string
	err := cs.withRetry(ctx, func() error {
		val, err := cs.client.HGetAll(ctx, cartKey(sessionID)).Result()
		if err != nil {
			return err
		}
		raw = val
		return nil
	}, 3)
	if err != nil {
		return nil, err
	}

	cart := make(structs.Cart, len(raw))
	for key, val := range raw {
		qty, err := strconv.Atoi(val)
		if err != nil || qty <= 0 {
			cs.logger.Warn("Ignoring malformed cart entry",
				gecho.Field("session", sessionID),
				gecho.Field("key", key),
				gecho.Field("value", val),
			)
			continue
		}
		cart[key] = qty
	}
	return cart, nil
}

// Save replaces the session cart and refreshes its TTL. Empty carts are deleted.
func (cs *CacheService) Save(ctx context.Context, sessionID string, cart structs.Cart) error {
	key := cartKey(sessionID)
	if len(cart) == 0 {
		return cs.Delete(ctx, key)
	}

	fields := make(map[string]any, len(cart))
	for k, qty := range cart {
		fields[k] = qty
	}

	return cs.withRetry(ctx, func() error {
		_, err := cs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, fields)
			pipe.Expire(ctx, key, cs.config.Shop.SessionTTL)
			return nil
		})
		return err
	}, 3)
}

func (cs *CacheService) Clear(ctx context.Context, sessionID string) error {
	return cs.Delete(ctx, cartKey(sessionID))
}

// ============================================================================
// Product detail cache
// ============================================================================

func productKey(slug string) string {
	return fmt.Sprintf("product:slug:%s", slug)
}

// GetProduct returns the cached product or nil on a miss.
func (cs *CacheService) GetProduct(ctx context.Context, slug string) (*tables.Product, error) {
	val, err := cs.Get(ctx, productKey(slug))
	if err != nil || val == "" {
		return nil, err
	}

	product := &tables.Product{}
	if err := json.Unmarshal([]byte(val), product); err != nil {
		return nil, err
	}
	return product, nil
}

func (cs *CacheService) SetProduct(ctx context.Context, product *tables.Product) error {
	if product == nil {
		return nil
	}
	data, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return cs.Set(ctx, productKey(product.Slug), data, cs.config.Cache.ProductTTL)
}

func (cs *CacheService) InvalidateProducts(ctx context.Context, slugs ...string) error {
	keys := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		keys = append(keys, productKey(slug))
	}
	return cs.Delete(ctx, keys...)
}

// ============================================================================
// Checkout idempotency
// ============================================================================

// Claim reserves key for one checkout. When the key is already held, orderID is
// the order it produced, or uuid.Nil while that checkout is still running.
func (cs *CacheService) Claim(ctx context.Context, key string, ttl time.Duration) (bool, uuid.UUID, error) {
	var claimed bool
	err := cs.withRetry(ctx, func() error {
		ok, err := cs.client.SetNX(ctx, key, idempotencyPending, ttl).Result()
		if err != nil {
			return err
		}
		claimed = ok
		return nil
	}, 3)
	if err != nil || claimed {
		return claimed, uuid.Nil, err
	}

	val, err := cs.Get(ctx, key)
	if err != nil {
		return false, uuid.Nil, err
	}
	if val == "" || val == idempotencyPending {
		return false, uuid.Nil, nil
	}

	orderID, err := uuid.Parse(val)
	if err != nil {
		return false, uuid.Nil, fmt.Errorf("invalid idempotency value for %s: %w", key, err)
	}
	return false, orderID, nil
}

func (cs *CacheService) Complete(ctx context.Context, key string, orderID uuid.UUID, ttl time.Duration) error {
	return cs.Set(ctx, key, orderID.String(), ttl)
}

func (cs *CacheService) Release(ctx context.Context, key string) error {
	return cs.Delete(ctx, key)
}

// ============================================================================
// Rate limiting
// ============================================================================

// IncrementRateLimit atomically increments a rate limit counter
func (cs *CacheService) IncrementRateLimit(ctx context.Context, ip, endpoint string, ttl time.Duration) (int, error) {
	key := fmt.Sprintf("ratelimit:%s:%s", ip, endpoint)

	var result int64
	err := cs.withRetry(ctx, func() error {
		val, err := cs.client.Incr(ctx, key).Result()
		if err != nil {
			return err
		}
		result = val

		// Set expiration only on first increment
		if val == 1 {
			return cs.client.Expire(ctx, key, ttl).Err()
		}
		return nil
	}, 3)

	return int(result), err
}

// Ping tests the Redis connection
func (cs *CacheService) Ping(ctx context.Context) error {
	return cs.withRetry(ctx, func() error {
		return cs.client.Ping(ctx).Err()
	}, 3)
}

// GetConnectionStats returns Redis connection pool statistics
func (cs *CacheService) GetConnectionStats() map[string]any {
	stats := cs.client.PoolStats()

	return map[string]any{
		"hits":        stats.Hits,
		"misses":      stats.Misses,
		"timeouts":    stats.Timeouts,
		"total_conns": stats.TotalConns,
		"idle_conns":  stats.IdleConns,
		"stale_conns": stats.StaleConns,
	}
}
