package out

import (
	"context"

	"github.com/google/uuid"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/domain"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/json_types"
)

// Удаленный стор адресуется позиционно: индекс врача, затем индекс слота.
// Перестановка врачей или слотов без миграции ломает соответствие

// FieldPath адресует одно поле в дереве удаленного стора.
// SlotIndex = -1 означает поле самого врача (сейчас это только name)
type FieldPath struct {
	DoctorIndex int
	SlotIndex   int
	Field       string
}

// RemoteSlot описывает слот, как его прислал удаленный стор. Каждое поле опционально,
// id и type здесь никогда не применяются к локальному состоянию
type RemoteSlot struct {
	ID        json_types.StringOrEmpty `json:"id"`
	Type      json_types.StringOrEmpty `json:"type"`
	Day       json_types.StringOrEmpty `json:"day"`
	Time      json_types.StringOrEmpty `json:"time"`
	Room      json_types.RoomOrEmpty   `json:"room"`
	Status    json_types.StringOrEmpty `json:"status"`
	StartDate json_types.StringOrEmpty `json:"startDate"`
}

type RemoteDoctor struct {
	Name  json_types.StringOrEmpty `json:"name"`
	Slots []RemoteSlot             `json:"slots"`
}

type RemoteSnapshot struct {
	Doctors         []RemoteDoctor `json:"doctors"`
	OutpatientSlots []string       `json:"outpatientSlots"`
}

type ChangeKind string

const (
	ChangeKindDoctor      ChangeKind = "doctor"
	ChangeKindSlot        ChangeKind = "slot"
	ChangeKindBlockInsert ChangeKind = "block_insert"
	ChangeKindBlockDelete ChangeKind = "block_delete"
)

// ChangeEvent уведомляет об изменении строки удаленного стора.
// Применяется к состоянию той же процедурой слияния, что и начальный снапшот
type ChangeEvent struct {
	ID          uuid.UUID     `json:"id"`
	Kind        ChangeKind    `json:"kind"`
	DoctorIndex int           `json:"doctorIndex"`
	SlotIndex   int           `json:"slotIndex"`
	Doctor      *RemoteDoctor `json:"doctor,omitempty"`
	Slot        *RemoteSlot   `json:"slot,omitempty"`
	BlockKey    string        `json:"blockKey,omitempty"`
}

type StorePort interface {
	// Полный снапшот дерева; nil без ошибки, если стор пуст
	ReadAll(ctx context.Context) (*RemoteSnapshot, error)

	// Запись ровно одного измененного поля, никогда не всего состава
	WriteField(ctx context.Context, path FieldPath, value interface{}) error

	// Запись нескольких полей одного слота за раз (перенос слота)
	WriteFields(ctx context.Context, path FieldPath, fields map[string]interface{}) error

	InsertBlock(ctx context.Context, key domain.CellKey) error
	DeleteBlock(ctx context.Context, key domain.CellKey) error

	// Подписка на уведомления об изменениях; стор без ленты изменений
	// молча возвращает nil
	Subscribe(ctx context.Context, onChange func(ChangeEvent)) error
}
