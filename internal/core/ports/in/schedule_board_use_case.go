package in

import (
	"context"

	"github.com/peacemind-dev/psy-schedule-board/internal/core/domain"
)

// ScheduleBoardUseCase задает единственную поверхность записи для презентационных
// коллабораторов. Все мутации оптимистичны: локальное состояние меняется
// синхронно, запись в удаленный стор уходит в фоне и не откатывается.
// Неизвестный doctorId или slotIndex превращает мутацию в тихий no-op
type ScheduleBoardUseCase interface {
	// Initialize загружает снапшот удаленного стора и подписывается на его
	// изменения. Повторный вызов после старта ничего не делает
	Initialize(ctx context.Context) error

	// Stop дожидается доставки уже поставленных в очередь записей
	Stop()

	Snapshot() domain.BoardSnapshot
	Schedule() map[domain.CellKey]domain.ScheduleEntry
	IsBlocked(day string, room int, timeLabel string) bool

	RenameDoctor(ctx context.Context, doctorID, name string)
	SetSlotField(ctx context.Context, doctorID string, slotIndex int, field, value string)
	SetSlotStatus(ctx context.Context, doctorID string, slotIndex int, status domain.SlotStatus)
	SetSlotStartDate(ctx context.Context, doctorID string, slotIndex int, startDate string)
	MoveSlot(ctx context.Context, doctorID string, slotIndex int, day, timeLabel string, room int)
	ToggleOutpatientBlock(ctx context.Context, day string, room int, timeLabel string)
}
