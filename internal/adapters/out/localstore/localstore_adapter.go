package localstore

import (
	"context"
	"fmt"

	"github.com/peacemind-dev/psy-schedule-board/internal/config"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/domain"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/json_types"
	"github.com/peacemind-dev/psy-schedule-board/internal/core/ports/out"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LocalStoreAdapter реализует реляционный вариант стора: строки слотов
// с ключом (doctor_index, slot_index) в локальной sqlite-базе. Ленты
// изменений у него нет, Subscribe ничего не делает

type doctorRow struct {
	DoctorIndex int    `gorm:"primaryKey;column:doctor_index"`
	Name        string `gorm:"column:name"`
}

func (doctorRow) TableName() string { return "doctors" }

type slotRow struct {
	DoctorIndex int    `gorm:"primaryKey;column:doctor_index"`
	SlotIndex   int    `gorm:"primaryKey;column:slot_index"`
	Type        string `gorm:"column:type"`
	Day         string `gorm:"column:day"`
	Time        string `gorm:"column:time"`
	Room        int    `gorm:"column:room"`
	Status      string `gorm:"column:status"`
	StartDate   string `gorm:"column:start_date"`
}

func (slotRow) TableName() string { return "slots" }

type blockRow struct {
	Key string `gorm:"primaryKey;column:cell_key"`
}

func (blockRow) TableName() string { return "outpatient_blocks" }

// Допустимые имена полей и их колонки; поле вне списка считается ошибкой адресации
var slotFieldColumns = map[string]string{
	"type":      "type",
	"day":       "day",
	"time":      "time",
	"room":      "room",
	"status":    "status",
	"startDate": "start_date",
}

type LocalStoreAdapter struct {
	db     *gorm.DB
	logger out.LoggerPort
}

func NewLocalStoreAdapter(cfg *config.Config, log out.LoggerPort) (*LocalStoreAdapter, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Store.SqlitePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Error("localstore.open.failed", out.LogFields{
			"error": err.Error(),
			"path":  cfg.Store.SqlitePath,
		})
		return nil, err
	}

	if err := db.AutoMigrate(&doctorRow{}, &slotRow{}, &blockRow{}); err != nil {
		log.Error("localstore.migrate.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	return &LocalStoreAdapter{
		db:     db,
		logger: log,
	}, nil
}

func (a *LocalStoreAdapter) ReadAll(ctx context.Context) (*out.RemoteSnapshot, error) {
	var doctors []doctorRow
	if err := a.db.WithContext(ctx).Find(&doctors).Error; err != nil {
		return nil, err
	}

	var slots []slotRow
	if err := a.db.WithContext(ctx).Find(&slots).Error; err != nil {
		return nil, err
	}

	var blocks []blockRow
	if err := a.db.WithContext(ctx).Find(&blocks).Error; err != nil {
		return nil, err
	}

	if len(doctors) == 0 && len(slots) == 0 && len(blocks) == 0 {
		a.logger.Info("localstore.snapshot.empty", out.LogFields{})
		return nil, nil
	}

	snapshot := &out.RemoteSnapshot{}

	// Восстанавливаем позиционное дерево из строк
	maxDoctor := -1
	for _, row := range doctors {
		if row.DoctorIndex > maxDoctor {
			maxDoctor = row.DoctorIndex
		}
	}
	for _, row := range slots {
		if row.DoctorIndex > maxDoctor {
			maxDoctor = row.DoctorIndex
		}
	}

	snapshot.Doctors = make([]out.RemoteDoctor, maxDoctor+1)

	for _, row := range doctors {
		snapshot.Doctors[row.DoctorIndex].Name = json_types.StringOrEmpty{Value: row.Name, Set: true}
	}

	for _, row := range slots {
		doc := &snapshot.Doctors[row.DoctorIndex]
		for len(doc.Slots) <= row.SlotIndex {
			doc.Slots = append(doc.Slots, out.RemoteSlot{})
		}
		doc.Slots[row.SlotIndex] = out.RemoteSlot{
			Type:      json_types.StringOrEmpty{Value: row.Type, Set: row.Type != ""},
			Day:       json_types.StringOrEmpty{Value: row.Day, Set: true},
			Time:      json_types.StringOrEmpty{Value: row.Time, Set: true},
			Room:      json_types.RoomOrEmpty{Room: row.Room, Set: true},
			Status:    json_types.StringOrEmpty{Value: row.Status, Set: row.Status != ""},
			StartDate: json_types.StringOrEmpty{Value: row.StartDate, Set: true},
		}
	}

	for _, row := range blocks {
		snapshot.OutpatientSlots = append(snapshot.OutpatientSlots, row.Key)
	}

	a.logger.Debug("localstore.snapshot.read", out.LogFields{
		"doctors": len(doctors),
		"slots":   len(slots),
		"blocks":  len(blocks),
	})

	return snapshot, nil
}

func (a *LocalStoreAdapter) WriteField(ctx context.Context, path out.FieldPath, value interface{}) error {
	if path.SlotIndex < 0 {
		if path.Field != "name" {
			return fmt.Errorf("unknown doctor field: %s", path.Field)
		}

		name, _ := value.(string)
		tx := a.db.WithContext(ctx).Model(&doctorRow{}).
			Where("doctor_index = ?", path.DoctorIndex).
			Update("name", name)
		if tx.Error != nil {
			return tx.Error
		}
		if tx.RowsAffected == 0 {
			return a.db.WithContext(ctx).Create(&doctorRow{DoctorIndex: path.DoctorIndex, Name: name}).Error
		}
		return nil
	}

	column, ok := slotFieldColumns[path.Field]
	if !ok {
		return fmt.Errorf("unknown slot field: %s", path.Field)
	}

	return a.updateSlotColumns(ctx, path, map[string]interface{}{column: normalizeValue(path.Field, value)})
}

func (a *LocalStoreAdapter) WriteFields(ctx context.Context, path out.FieldPath, fields map[string]interface{}) error {
	columns := make(map[string]interface{}, len(fields))
	for field, value := range fields {
		column, ok := slotFieldColumns[field]
		if !ok {
			return fmt.Errorf("unknown slot field: %s", field)
		}
		columns[column] = normalizeValue(field, value)
	}

	return a.updateSlotColumns(ctx, path, columns)
}

func (a *LocalStoreAdapter) updateSlotColumns(ctx context.Context, path out.FieldPath, columns map[string]interface{}) error {
	tx := a.db.WithContext(ctx).Model(&slotRow{}).
		Where("doctor_index = ? AND slot_index = ?", path.DoctorIndex, path.SlotIndex).
		Updates(columns)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected > 0 {
		return nil
	}

	// Первой записи слота строка еще не существует
	row := slotRow{DoctorIndex: path.DoctorIndex, SlotIndex: path.SlotIndex}
	applyColumns(&row, columns)
	return a.db.WithContext(ctx).Create(&row).Error
}

func (a *LocalStoreAdapter) InsertBlock(ctx context.Context, key domain.CellKey) error {
	// Повторная вставка того же ключа ничего не меняет
	existing := a.db.WithContext(ctx).Where("cell_key = ?", string(key)).First(&blockRow{})
	if existing.Error == nil {
		return nil
	}
	if existing.Error != gorm.ErrRecordNotFound {
		return existing.Error
	}

	return a.db.WithContext(ctx).Create(&blockRow{Key: string(key)}).Error
}

func (a *LocalStoreAdapter) DeleteBlock(ctx context.Context, key domain.CellKey) error {
	return a.db.WithContext(ctx).Where("cell_key = ?", string(key)).Delete(&blockRow{}).Error
}

func (a *LocalStoreAdapter) Subscribe(ctx context.Context, onChange func(out.ChangeEvent)) error {
	// У локальной базы нет подписок на строки
	a.logger.Info("localstore.subscribe.noop", out.LogFields{})
	return nil
}

// Пустой кабинет приходит пустой строкой, в колонке он ноль
func normalizeValue(field string, value interface{}) interface{} {
	if field != "room" {
		return value
	}

	switch v := value.(type) {
	case string:
		if v == "" {
			return 0
		}
		return v
	default:
		return value
	}
}

func applyColumns(row *slotRow, columns map[string]interface{}) {
	for column, value := range columns {
		switch column {
		case "type":
			row.Type, _ = value.(string)
		case "day":
			row.Day, _ = value.(string)
		case "time":
			row.Time, _ = value.(string)
		case "room":
			if room, ok := value.(int); ok {
				row.Room = room
			}
		case "status":
			row.Status, _ = value.(string)
		case "start_date":
			row.StartDate, _ = value.(string)
		}
	}
}
