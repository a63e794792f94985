package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
	"github.com/ethereumfollowprotocol/efp-go/pkg/persistence"
	"github.com/ethereumfollowprotocol/efp-go/pkg/types"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Key prefixes for namespacing in Redis
const (
	keyPrefixCheckpoint  = "efp:checkpoint:"
	keyPrefixEvent       = "efp:event:"
	keySchemaVersion     = "efp:metadata:schema_version"
	currentSchemaVersion = "v1"

	// Per-contract sorted set of event keys. All members share score 0 so Redis orders
	// them lexically, which is (block, log index) order.
	keyPrefixEventIndex = "efp:events:index:"
)

// RedisPersistence stores watcher state in Redis so several watcher replicas can share it.
type RedisPersistence struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string
	mu        sync.RWMutex
	closed    bool
}

// NewRedisPersistence connects to Redis and initializes or validates the schema version.
func NewRedisPersistence(cfg *config.RedisConfig, logger *zap.Logger) (*RedisPersistence, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	// Create Redis client
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	rp := &RedisPersistence{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	// Initialize schema version
	if err := rp.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("Redis persistence initialized",
		"address", cfg.Address,
		"db", cfg.DB,
		"keyPrefix", cfg.KeyPrefix,
	)

	return rp, nil
}

// prefixKey adds the custom key prefix (if configured) to a key
func (r *RedisPersistence) prefixKey(key string) string {
	return r.keyPrefix + key
}

func (r *RedisPersistence) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	existingVersion, err := r.client.Get(ctx, schemaKey).Result()
	if err == redis.Nil {
		// First time setup - set schema version
		return r.client.Set(ctx, schemaKey, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if existingVersion != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
	}
	return nil
}

func (r *RedisPersistence) SaveCheckpoint(checkpoint *persistence.Checkpoint) error {
	data, err := persistence.MarshalCheckpoint(checkpoint)
	if err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	ctx := context.Background()
	if err := r.client.Set(ctx, r.prefixKey(keyPrefixCheckpoint+checkpoint.Contract), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save checkpoint for %s: %w", checkpoint.Contract, err)
	}
	return nil
}

func (r *RedisPersistence) LoadCheckpoint(contract string) (*persistence.Checkpoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	ctx := context.Background()
	data, err := r.client.Get(ctx, r.prefixKey(keyPrefixCheckpoint+contract)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint for %s: %w", contract, err)
	}

	return persistence.UnmarshalCheckpoint(data)
}

func (r *RedisPersistence) SaveEvent(event *types.DecodedEvent) error {
	data, err := persistence.MarshalDecodedEvent(event)
	if err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	ctx := context.Background()
	member := persistence.EventKeyOf(event)

	// Store value and index entry in one transaction
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.prefixKey(keyPrefixEvent+member), data, 0)
	pipe.ZAdd(ctx, r.prefixKey(keyPrefixEventIndex+event.Contract), redis.Z{Score: 0, Member: member})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}
	return nil
}

func (r *RedisPersistence) DeleteEvent(contract string, blockNumber uint64, logIndex uint) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	ctx := context.Background()
	member := persistence.EventKey(contract, blockNumber, logIndex)

	// Delete using pipeline
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.prefixKey(keyPrefixEvent+member))
	pipe.ZRem(ctx, r.prefixKey(keyPrefixEventIndex+contract), member)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func (r *RedisPersistence) ListEvents(contract string) ([]*types.DecodedEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	ctx := context.Background()
	indexKey := r.prefixKey(keyPrefixEventIndex + contract)

	// Get event keys from the index in (block, log index) order
	members, err := r.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list event keys for %s: %w", contract, err)
	}
	if len(members) == 0 {
		return []*types.DecodedEvent{}, nil
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = r.prefixKey(keyPrefixEvent + m)
	}

	// Fetch all values using MGET
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events for %s: %w", contract, err)
	}

	events := make([]*types.DecodedEvent, 0, len(values))
	for i, val := range values {
		if val == nil {
			// indexed but missing, drop the stale index entry
			r.client.ZRem(ctx, indexKey, members[i])
			continue
		}

		data, ok := val.(string)
		if !ok {
			r.logger.Sugar().Warnw("Unexpected value type for DecodedEvent", "key", keys[i])
			continue
		}

		event, err := persistence.UnmarshalDecodedEvent([]byte(data))
		if err != nil {
			r.logger.Sugar().Warnw("Failed to unmarshal DecodedEvent, skipping",
				"key", keys[i], "error", err)
			continue
		}
		events = append(events, event)
	}

	return events, nil
}

func (r *RedisPersistence) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	r.logger.Sugar().Info("Redis persistence closed")
	return nil
}

func (r *RedisPersistence) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	_, err := r.client.Get(ctx, r.prefixKey(keySchemaVersion)).Result()
	if err == redis.Nil {
		return fmt.Errorf("schema version not found - database may not be properly initialized")
	}
	if err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}
	return nil
}
