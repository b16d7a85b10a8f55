package domain

import (
	"math"
	"time"

	"github.com/peacemind-dev/psy-schedule-board/internal/utils"
)

type SessionState string

const (
	// SessionNotApplicable: слот не в работе или дата начала не задана
	SessionNotApplicable SessionState = "not_applicable"
	// SessionPending: курс запланирован, дата начала в будущем
	SessionPending SessionState = "pending"
	// SessionActive: курс идет, Week содержит номер недели
	SessionActive SessionState = "active"
)

type SessionProgress struct {
	State SessionState `json:"state"`
	Week  int          `json:"week,omitempty"`
}

// SessionCount вычисляет номер недели идущего курса терапии.
// Дни округляются вверх, недели вниз, счет с единицы.
// Проверка будущей даты идет до вычисления разницы, поэтому Abs ниже
// срабатывает только на защите от перестановки аргументов
func SessionCount(slot Slot, asOf time.Time) SessionProgress {
	if slot.Status != SlotStatusInProgress || slot.StartDate == "" {
		return SessionProgress{State: SessionNotApplicable}
	}

	start, err := utils.ParseDate(slot.StartDate)
	if err != nil {
		return SessionProgress{State: SessionNotApplicable}
	}

	if start.After(asOf) {
		return SessionProgress{State: SessionPending}
	}

	elapsedDays := int(math.Ceil(asOf.Sub(start).Abs().Hours() / 24))
	week := elapsedDays/7 + 1

	return SessionProgress{State: SessionActive, Week: week}
}
