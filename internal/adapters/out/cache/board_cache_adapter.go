package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/peacemind-dev/psy-schedule-board/internal/config"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/domain"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/ports/out"
)

// BoardCacheAdapter кэширует производную проекцию расписания по версии
// состояния доски. Версия монотонна, поэтому устаревшие записи не требуют
// инвалидации, их вытесняет LRU
type BoardCacheAdapter struct {
	cache  *lru.Cache[uint64, map[domain.CellKey]domain.ScheduleEntry]
	logger out.LoggerPort
}

func NewBoardCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*BoardCacheAdapter, error) {
	if !cfg.Cache.Enabled {
		logger.Info("cache.disabled", out.LogFields{
			"message": "Cache is disabled",
		})
		return nil, nil
	}

	scheduleCache, err := lru.New[uint64, map[domain.CellKey]domain.ScheduleEntry](cfg.Cache.ScheduleSize)
	if err != nil {
		logger.Error("cache.schedule.init.failed", out.LogFields{
			"error": err.Error(),
			"size":  cfg.Cache.ScheduleSize,
		})
		return nil, err
	}

	return &BoardCacheAdapter{
		cache:  scheduleCache,
		logger: logger.WithModule("BoardCacheAdapter"),
	}, nil
}

func (c *BoardCacheAdapter) GetSchedule(version uint64) (map[domain.CellKey]domain.ScheduleEntry, bool) {
	schedule, exists := c.cache.Get(version)
	if !exists {
		c.logger.Debug("cache.schedule.get.miss", out.LogFields{
			"version": version,
		})
		return nil, false
	}

	c.logger.Debug("cache.schedule.get.hit", out.LogFields{
		"version": version,
		"cells":   len(schedule),
	})
	return schedule, true
}

func (c *BoardCacheAdapter) StoreSchedule(version uint64, schedule map[domain.CellKey]domain.ScheduleEntry) {
	c.logger.Debug("cache.schedule.store", out.LogFields{
		"version": version,
		"cells":   len(schedule),
	})

	c.cache.Add(version, schedule)
}
