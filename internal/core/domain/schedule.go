package domain

import (
	"fmt"
	"sort"
)

// CellKey идентифицирует ячейку недельной сетки: "{day}-{room}-{time}".
// Не хранится на слоте, всегда вычисляется заново при чтении
type CellKey string

func MakeCellKey(day string, room int, timeLabel string) CellKey {
	return CellKey(fmt.Sprintf("%s-%d-%s", day, room, timeLabel))
}

// ScheduleEntry несет размещенный слот с денормализованным именем врача
type ScheduleEntry struct {
	Slot
	DoctorID   string `json:"doctorId"`
	DoctorName string `json:"doctorName"`
}

// DeriveSchedule строит проекцию ячейка -> занимающий слот.
// При коллизии ключей побеждает последний слот в порядке обхода врач-слот
func DeriveSchedule(doctors []Doctor) map[CellKey]ScheduleEntry {
	schedule := make(map[CellKey]ScheduleEntry)

	for _, doc := range doctors {
		for _, slot := range doc.Slots {
			if !slot.IsPlaced() {
				continue
			}

			key := MakeCellKey(slot.Day, slot.Room, slot.Time)
			schedule[key] = ScheduleEntry{
				Slot:       slot,
				DoctorID:   doc.ID,
				DoctorName: doc.Name,
			}
		}
	}

	return schedule
}

// IsBlocked реализует правило конфликта: ячейка недоступна для терапии, только если
// заданы все три координаты и ключ помечен как амбулаторный.
// Используется для подсказок в выпадающих списках, запись не прерывает
func IsBlocked(blocks map[CellKey]struct{}, day string, room int, timeLabel string) bool {
	if day == "" || room == 0 || timeLabel == "" {
		return false
	}

	_, blocked := blocks[MakeCellKey(day, room, timeLabel)]
	return blocked
}

// SortedBlockKeys возвращает ключи амбулаторных ячеек в стабильном порядке
func SortedBlockKeys(blocks map[CellKey]struct{}) []CellKey {
	keys := make([]CellKey, 0, len(blocks))
	for key := range blocks {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// BoardSnapshot несет консистентный снимок состояния доски для рендеринга
type BoardSnapshot struct {
	Doctors         []Doctor  `json:"doctors"`
	OutpatientSlots []CellKey `json:"outpatientSlots"`
	Version         uint64    `json:"version"`
}
