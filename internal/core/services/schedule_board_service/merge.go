package schedule_board_service

import (
	"github.com/peacemind-dev/psy-schedule-board/internal/core/domain"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/ports/out"
)

// Процедура слияния: удаленные значения перекрывают локальные только для
// присутствующих и корректных по типу полей. ID и тип слота всегда
// переутверждаются из локального шаблона: удаленные данные не могут
// молча подменить идентичность или вид терапии слота.
// Этой же процедурой применяются и начальный снапшот, и живые события

func (s *ScheduleBoardService) applyRemoteSnapshot(snapshot *out.RemoteSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doctors {
		if i >= len(snapshot.Doctors) {
			break
		}
		s.mergeDoctorLocked(i, snapshot.Doctors[i])
	}

	if len(snapshot.Doctors) > len(s.doctors) {
		// Лишние врачи за пределами состава отбрасываются
		s.logger.Warn("board.merge.extra_doctors_dropped", out.LogFields{
			"remote": len(snapshot.Doctors),
			"local":  len(s.doctors),
		})
	}

	blocks := make(map[domain.CellKey]struct{}, len(snapshot.OutpatientSlots))
	for _, key := range snapshot.OutpatientSlots {
		if key == "" {
			continue
		}
		blocks[domain.CellKey(key)] = struct{}{}
	}
	s.blocks = blocks

	s.version++

	s.logger.Info("board.merge.snapshot_applied", out.LogFields{
		"doctors": len(snapshot.Doctors),
		"blocks":  len(blocks),
		"version": s.version,
	})
}

func (s *ScheduleBoardService) mergeDoctorLocked(i int, remote out.RemoteDoctor) {
	doc := &s.doctors[i]

	if remote.Name.Set {
		doc.Name = remote.Name.Value
	}

	for j := range doc.Slots {
		if j >= len(remote.Slots) {
			break
		}
		s.mergeSlotLocked(i, j, remote.Slots[j])
	}
}

func (s *ScheduleBoardService) mergeSlotLocked(i, j int, remote out.RemoteSlot) {
	slot := &s.doctors[i].Slots[j]
	tpl := s.template[i].Slots[j]

	// Идентичность всегда из шаблона, даже если удаленный слот ее прислал
	slot.ID = tpl.ID
	slot.Type = tpl.Type

	if remote.Day.Set {
		slot.Day = remote.Day.Value
	}
	if remote.Time.Set {
		slot.Time = remote.Time.Value
	}
	if remote.Room.Set {
		slot.Room = remote.Room.Room
	}
	if remote.Status.Set && domain.IsSlotStatus(remote.Status.Value) {
		slot.Status = domain.SlotStatus(remote.Status.Value)
	}
	if remote.StartDate.Set {
		slot.StartDate = remote.StartDate.Value
	}
}

// applyRemoteChange применяет событие живой ленты изменений. Событие,
// пришедшее позже локальной записи того же поля, ее перетирает: побеждает
// последняя примененная запись, сверки версий нет. Это явный контракт,
// а не гонка, которую нужно чинить
func (s *ScheduleBoardService) applyRemoteChange(event out.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch event.Kind {
	case out.ChangeKindDoctor:
		if event.Doctor == nil || event.DoctorIndex < 0 || event.DoctorIndex >= len(s.doctors) {
			s.logger.Warn("board.remote_change.bad_doctor", out.LogFields{
				"eventId":     event.ID,
				"doctorIndex": event.DoctorIndex,
			})
			return
		}
		s.mergeDoctorLocked(event.DoctorIndex, *event.Doctor)

	case out.ChangeKindSlot:
		if event.Slot == nil ||
			event.DoctorIndex < 0 || event.DoctorIndex >= len(s.doctors) ||
			event.SlotIndex < 0 || event.SlotIndex >= len(s.doctors[event.DoctorIndex].Slots) {
			s.logger.Warn("board.remote_change.bad_slot", out.LogFields{
				"eventId":     event.ID,
				"doctorIndex": event.DoctorIndex,
				"slotIndex":   event.SlotIndex,
			})
			return
		}
		s.mergeSlotLocked(event.DoctorIndex, event.SlotIndex, *event.Slot)

	case out.ChangeKindBlockInsert:
		if event.BlockKey == "" {
			return
		}
		s.blocks[domain.CellKey(event.BlockKey)] = struct{}{}

	case out.ChangeKindBlockDelete:
		// Удаление строки убирает ключ из набора, слоты не трогает
		delete(s.blocks, domain.CellKey(event.BlockKey))

	default:
		s.logger.Warn("board.remote_change.unknown_kind", out.LogFields{
			"eventId": event.ID,
			"kind":    event.Kind,
		})
		return
	}

	s.version++

	s.logger.Debug("board.remote_change.applied", out.LogFields{
		"eventId": event.ID,
		"kind":    event.Kind,
		"version": s.version,
	})
}
