package factory

import (
	"fmt"

	"github.com/ethereumfollowprotocol/efp-go/pkg/config"
	"github.com/ethereumfollowprotocol/efp-go/pkg/persistence"
	"github.com/ethereumfollowprotocol/efp-go/pkg/persistence/badger"
	"github.com/ethereumfollowprotocol/efp-go/pkg/persistence/memory"
	"github.com/ethereumfollowprotocol/efp-go/pkg/persistence/redis"
	"go.uber.org/zap"
)

// NewPersistence builds the backend selected by cfg.
func NewPersistence(cfg *config.PersistenceConfig, logger *zap.Logger) (persistence.IWatcherPersistence, error) {
	if cfg == nil {
		return nil, fmt.Errorf("persistence config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid persistence config: %w", err)
	}

	switch cfg.Type {
	case config.PersistenceType_Memory:
		logger.Sugar().Warnw("Using in-memory persistence, watcher progress is lost on restart")
		return memory.NewMemoryPersistence(), nil
	case config.PersistenceType_Badger:
		return badger.NewBadgerPersistence(cfg.DataPath, logger)
	case config.PersistenceType_Redis:
		return redis.NewRedisPersistence(cfg.Redis, logger)
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s", cfg.Type)
	}
}
