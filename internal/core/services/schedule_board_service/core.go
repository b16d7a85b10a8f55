package schedule_board_service

import (
	"context"
	"sync"

	"github.com/peacemind-dev/psy-schedule-board/internal/config"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/domain"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/ports/out"
)

type syncState int

const (
	stateUninitialized syncState = iota
	stateLoading
	stateSynced
)

// ScheduleBoardService владеет состоянием доски в памяти и никому его
// не отдает. Удаленный стор состоянием не владеет: из него читается
// снапшот, в него уходят записи, его события возвращаются через
// процедуру слияния
type ScheduleBoardService struct {
	storePort out.StorePort
	cachePort out.CachePort
	logger    out.LoggerPort
	cfg       *config.Config

	mu       sync.RWMutex
	state    syncState
	doctors  []domain.Doctor
	template []domain.Doctor
	blocks   map[domain.CellKey]struct{}
	version  uint64

	pushCh   chan pushOp
	done     chan struct{}
	stopped  bool
	stopOnce sync.Once
}

func NewScheduleBoardService(
	storePort out.StorePort,
	cachePort out.CachePort,
	logger out.LoggerPort,
	cfg *config.Config,
) *ScheduleBoardService {
	roster := domain.DefaultRoster(cfg.Board.DoctorCount, cfg.Board.SlotsPerDoctor)

	s := &ScheduleBoardService{
		storePort: storePort,
		cachePort: cachePort,
		logger:    logger.WithModule("ScheduleBoardService"),
		cfg:       cfg,
		doctors:   roster,
		template:  domain.CloneRoster(roster),
		blocks:    make(map[domain.CellKey]struct{}),
		pushCh:    make(chan pushOp, cfg.Board.PushQueueSize),
		done:      make(chan struct{}),
	}

	go s.runPushWorker()

	return s
}

// Initialize: Uninitialized -> Loading -> Synced. Повторный вызов ничего не делает.
// Отсутствующие или битые удаленные данные не фатальны: остаемся на
// составе по умолчанию и работаем локально
func (s *ScheduleBoardService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.state != stateUninitialized {
		s.mu.Unlock()
		s.logger.Debug("board.initialize.skipped", out.LogFields{})
		return nil
	}
	s.state = stateLoading
	s.mu.Unlock()

	s.logger.Info("board.initialize.started", out.LogFields{
		"doctorCount": s.cfg.Board.DoctorCount,
	})

	snapshot, err := s.storePort.ReadAll(ctx)
	if err != nil {
		s.logger.Error("board.initialize.read_failed", out.LogFields{
			"error": err.Error(),
		})
	} else if snapshot == nil {
		s.logger.Info("board.initialize.remote_empty", out.LogFields{})
	} else {
		s.applyRemoteSnapshot(snapshot)
	}

	if err := s.storePort.Subscribe(ctx, s.applyRemoteChange); err != nil {
		// Без подписки локальное состояние остается авторитетным на сессию
		s.logger.Error("board.subscribe.failed", out.LogFields{
			"error": err.Error(),
		})
	}

	s.mu.Lock()
	s.state = stateSynced
	s.mu.Unlock()

	s.logger.Info("board.initialize.completed", out.LogFields{})
	return nil
}

func (s *ScheduleBoardService) Snapshot() domain.BoardSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.BoardSnapshot{
		Doctors:         domain.CloneRoster(s.doctors),
		OutpatientSlots: domain.SortedBlockKeys(s.blocks),
		Version:         s.version,
	}
}

func (s *ScheduleBoardService) Schedule() map[domain.CellKey]domain.ScheduleEntry {
	s.mu.RLock()
	version := s.version
	doctors := domain.CloneRoster(s.doctors)
	s.mu.RUnlock()

	// Проверяем кэш только если он включен
	if s.cachePort != nil && s.cfg.Cache.Enabled {
		if schedule, exists := s.cachePort.GetSchedule(version); exists {
			s.logger.Debug("board.schedule.cache.hit", out.LogFields{
				"version": version,
			})
			return schedule
		}
	}

	schedule := domain.DeriveSchedule(doctors)

	if s.cachePort != nil && s.cfg.Cache.Enabled {
		s.cachePort.StoreSchedule(version, schedule)
	}

	return schedule
}

func (s *ScheduleBoardService) IsBlocked(day string, room int, timeLabel string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.IsBlocked(s.blocks, day, room, timeLabel)
}

func (s *ScheduleBoardService) doctorIndexLocked(doctorID string) int {
	for i := range s.doctors {
		if s.doctors[i].ID == doctorID {
			return i
		}
	}
	return -1
}
