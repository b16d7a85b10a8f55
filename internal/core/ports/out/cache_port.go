package out

import (
	"github.com/peacemind-dev/psy-schedule-board/internal/core/domain"
)

// CachePort кэширует производную проекцию расписания по версии состояния.
// Старые версии просто вытесняются, явная инвалидация не нужна
type CachePort interface {
	GetSchedule(version uint64) (map[domain.CellKey]domain.ScheduleEntry, bool)
	StoreSchedule(version uint64, schedule map[domain.CellKey]domain.ScheduleEntry)
}
