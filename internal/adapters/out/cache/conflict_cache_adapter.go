package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/offsettrade/visa-checker-bot/internal/config"
	"github.com/offsettrade/visa-checker-bot/internal/core/ports/out"
)

// ConflictCacheAdapter помнит слоты, по которым недавно получен конфликт,
// чтобы селектор не ставил их первыми в очередь на следующих циклах
type ConflictCacheAdapter struct {
	cache  *lru.Cache[string, time.Time]
	mu     sync.RWMutex
	logger out.LoggerPort
}

func NewConflictCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*ConflictCacheAdapter, error) {
	if !cfg.ConflictCache.Enabled {
		logger.Info("cache.disabled", out.LogFields{
			"message": "Conflict cache is disabled",
		})
		return nil, nil
	}

	c, err := lru.New[string, time.Time](cfg.ConflictCache.Size)
	if err != nil {
		logger.Error("cache.init.failed", out.LogFields{
			"error": err.Error(),
			"size":  cfg.ConflictCache.Size,
		})
		return nil, err
	}

	return &ConflictCacheAdapter{
		cache:  c,
		logger: logger,
	}, nil
}

func (c *ConflictCacheAdapter) MarkConflicted(slotID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("cache.conflict.mark", out.LogFields{
		"slotId": slotID,
	})

	c.cache.Add(slotID, time.Now())
}

func (c *ConflictCacheAdapter) RecentlyConflicted(slotID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.cache.Get(slotID)
	return exists
}

func (c *ConflictCacheAdapter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Purge()
}
