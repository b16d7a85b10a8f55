package schedule_board_service

import (
	"context"
	"strconv"

	"github.com/peacemind-dev/psy-schedule-board/internal/core/domain"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/ports/out"
)

// Мутации применяются к памяти синхронно, запись в стор уходит в фоне.
// Кросс-полевой валидации нет намеренно: занятость ячейки только подсказка
// для интерфейса, а не жесткий инвариант записи, сетка может временно
// показать двойное бронирование при гонке двух источников

func (s *ScheduleBoardService) RenameDoctor(ctx context.Context, doctorID, name string) {
	s.mu.Lock()
	idx := s.doctorIndexLocked(doctorID)
	if idx == -1 {
		s.mu.Unlock()
		s.logger.Warn("board.doctor.rename.unknown_doctor", out.LogFields{
			"doctorId": doctorID,
		})
		return
	}

	s.doctors[idx].Name = name
	s.version++
	s.mu.Unlock()

	s.enqueuePush("board.doctor.rename", func(ctx context.Context) error {
		return s.storePort.WriteField(ctx, out.FieldPath{DoctorIndex: idx, SlotIndex: -1, Field: "name"}, name)
	})
}

// SetSlotField заменяет одно поле слота: type, day, time или room.
// Номер кабинета приходит строкой из выпадающего списка, пустая строка
// означает снятие кабинета
func (s *ScheduleBoardService) SetSlotField(ctx context.Context, doctorID string, slotIndex int, field, value string) {
	var pushValue interface{} = value

	s.mu.Lock()
	idx := s.doctorIndexLocked(doctorID)
	if idx == -1 || slotIndex < 0 || slotIndex >= len(s.doctors[idx].Slots) {
		s.mu.Unlock()
		s.logger.Warn("board.slot.set_field.unknown_slot", out.LogFields{
			"doctorId":  doctorID,
			"slotIndex": slotIndex,
		})
		return
	}

	slot := &s.doctors[idx].Slots[slotIndex]

	switch field {
	case "type":
		slot.Type = domain.TherapyType(value)
	case "day":
		slot.Day = value
	case "time":
		slot.Time = value
	case "room":
		if value == "" {
			slot.Room = 0
		} else {
			room, err := strconv.Atoi(value)
			if err != nil {
				s.mu.Unlock()
				s.logger.Warn("board.slot.set_field.bad_room", out.LogFields{
					"doctorId": doctorID,
					"value":    value,
				})
				return
			}
			slot.Room = room
			pushValue = room
		}
	default:
		s.mu.Unlock()
		s.logger.Warn("board.slot.set_field.unknown_field", out.LogFields{
			"field": field,
		})
		return
	}

	s.version++
	s.mu.Unlock()

	s.enqueuePush("board.slot.set_field", func(ctx context.Context) error {
		return s.storePort.WriteField(ctx, out.FieldPath{DoctorIndex: idx, SlotIndex: slotIndex, Field: field}, pushValue)
	})
}

// SetSlotStatus меняет статус слота. При уходе из "In Progress" дата начала
// не очищается: кто хочет чистую дату, очищает ее явно
func (s *ScheduleBoardService) SetSlotStatus(ctx context.Context, doctorID string, slotIndex int, status domain.SlotStatus) {
	s.mu.Lock()
	idx := s.doctorIndexLocked(doctorID)
	if idx == -1 || slotIndex < 0 || slotIndex >= len(s.doctors[idx].Slots) {
		s.mu.Unlock()
		s.logger.Warn("board.slot.set_status.unknown_slot", out.LogFields{
			"doctorId":  doctorID,
			"slotIndex": slotIndex,
		})
		return
	}

	s.doctors[idx].Slots[slotIndex].Status = status
	s.version++
	s.mu.Unlock()

	s.enqueuePush("board.slot.set_status", func(ctx context.Context) error {
		return s.storePort.WriteField(ctx, out.FieldPath{DoctorIndex: idx, SlotIndex: slotIndex, Field: "status"}, string(status))
	})
}

// SetSlotStartDate записывает дату как есть, без проверки корректности
func (s *ScheduleBoardService) SetSlotStartDate(ctx context.Context, doctorID string, slotIndex int, startDate string) {
	s.mu.Lock()
	idx := s.doctorIndexLocked(doctorID)
	if idx == -1 || slotIndex < 0 || slotIndex >= len(s.doctors[idx].Slots) {
		s.mu.Unlock()
		s.logger.Warn("board.slot.set_start_date.unknown_slot", out.LogFields{
			"doctorId":  doctorID,
			"slotIndex": slotIndex,
		})
		return
	}

	s.doctors[idx].Slots[slotIndex].StartDate = startDate
	s.version++
	s.mu.Unlock()

	s.enqueuePush("board.slot.set_start_date", func(ctx context.Context) error {
		return s.storePort.WriteField(ctx, out.FieldPath{DoctorIndex: idx, SlotIndex: slotIndex, Field: "startDate"}, startDate)
	})
}

// MoveSlot обрабатывает перенос слота: день, время и кабинет меняются атомарно.
// Чужой слот в целевой ячейке не выселяется, в проекции побеждает
// последняя запись
func (s *ScheduleBoardService) MoveSlot(ctx context.Context, doctorID string, slotIndex int, day, timeLabel string, room int) {
	s.mu.Lock()
	idx := s.doctorIndexLocked(doctorID)
	if idx == -1 || slotIndex < 0 || slotIndex >= len(s.doctors[idx].Slots) {
		s.mu.Unlock()
		s.logger.Warn("board.slot.move.unknown_slot", out.LogFields{
			"doctorId":  doctorID,
			"slotIndex": slotIndex,
		})
		return
	}

	slot := &s.doctors[idx].Slots[slotIndex]
	slot.Day = day
	slot.Time = timeLabel
	slot.Room = room
	s.version++
	s.mu.Unlock()

	s.enqueuePush("board.slot.move", func(ctx context.Context) error {
		return s.storePort.WriteFields(ctx, out.FieldPath{DoctorIndex: idx, SlotIndex: slotIndex}, map[string]interface{}{
			"day":  day,
			"time": timeLabel,
			"room": room,
		})
	})
}

// ToggleOutpatientBlock переключает амбулаторную пометку ячейки.
// Вызывающий обязан дергать это только для пустых ячеек, занятость
// здесь не проверяется
func (s *ScheduleBoardService) ToggleOutpatientBlock(ctx context.Context, day string, room int, timeLabel string) {
	key := domain.MakeCellKey(day, room, timeLabel)

	s.mu.Lock()
	_, exists := s.blocks[key]
	if exists {
		delete(s.blocks, key)
	} else {
		s.blocks[key] = struct{}{}
	}
	s.version++
	s.mu.Unlock()

	if exists {
		s.enqueuePush("board.block.delete", func(ctx context.Context) error {
			return s.storePort.DeleteBlock(ctx, key)
		})
	} else {
		s.enqueuePush("board.block.insert", func(ctx context.Context) error {
			return s.storePort.InsertBlock(ctx, key)
		})
	}
}
