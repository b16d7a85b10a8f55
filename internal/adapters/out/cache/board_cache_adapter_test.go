package cache

import (
	"testing"

	"github.com/peacemind-dev/psy-schedule-board/internal/config"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/domain"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/ports/out"
)

type nopLogger struct{}

func (nopLogger) Debug(string, out.LogFields) {}
func (nopLogger) Info(string, out.LogFields)  {}
func (nopLogger) Warn(string, out.LogFields)  {}
func (nopLogger) Error(string, out.LogFields) {}

func (l nopLogger) WithFields(out.LogFields) out.LoggerPort { return l }
func (l nopLogger) WithModule(string) out.LoggerPort        { return l }

func TestNewBoardCacheAdapter_Disabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.Enabled = false

	adapter, err := NewBoardCacheAdapter(cfg, nopLogger{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if adapter != nil {
		t.Error("Expected nil adapter when cache disabled")
	}
}

func TestBoardCacheAdapter_StoreAndGet(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.Enabled = true
	cfg.Cache.ScheduleSize = 4

	adapter, err := NewBoardCacheAdapter(cfg, nopLogger{})
	if err != nil {
		t.Fatalf("Expected adapter, got %v", err)
	}

	if _, exists := adapter.GetSchedule(1); exists {
		t.Error("Expected miss on empty cache")
	}

	schedule := map[domain.CellKey]domain.ScheduleEntry{
		"mon-10-08:30": {DoctorID: "doctor-1"},
	}
	adapter.StoreSchedule(1, schedule)

	cached, exists := adapter.GetSchedule(1)
	if !exists {
		t.Fatal("Expected hit after store")
	}
	if cached["mon-10-08:30"].DoctorID != "doctor-1" {
		t.Errorf("Expected doctor-1, got %s", cached["mon-10-08:30"].DoctorID)
	}

	if _, exists := adapter.GetSchedule(2); exists {
		t.Error("Expected miss for different version")
	}
}
