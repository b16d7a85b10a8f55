package json_types

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Типы для терпимого к форме разбора удаленных данных: поле берется,
// только когда оно присутствует и имеет ожидаемый тип, все остальное
// молча считается отсутствующим и не валит разбор целиком

// StringOrEmpty хранит опциональную строку. Set = поле присутствовало и было строкой
type StringOrEmpty struct {
	Value string
	Set   bool
}

func (s *StringOrEmpty) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		// Не строка, считаем поле отсутствующим
		return nil
	}

	*s = StringOrEmpty{Value: value, Set: true}
	return nil
}

func (s StringOrEmpty) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}

// RoomOrEmpty хранит опциональный номер кабинета. Удаленный стор исторически
// хранит либо число, либо числовую строку, либо пустую строку.
// Set с Room = 0 означает явно пустое значение
type RoomOrEmpty struct {
	Room int
	Set  bool
}

func (r *RoomOrEmpty) UnmarshalJSON(data []byte) error {
	str := strings.TrimSpace(string(data))
	if str == "null" {
		return nil
	}

	// Пустая строка значит, что кабинет явно не задан
	if str == `""` {
		*r = RoomOrEmpty{Set: true}
		return nil
	}

	// Числовая строка
	if strings.HasPrefix(str, `"`) {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return nil
		}
		room, err := strconv.Atoi(value)
		if err != nil {
			return nil
		}
		*r = RoomOrEmpty{Room: room, Set: true}
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return nil
	}
	if room, err := num.Int64(); err == nil {
		*r = RoomOrEmpty{Room: int(room), Set: true}
		return nil
	}
	if room, err := num.Float64(); err == nil {
		*r = RoomOrEmpty{Room: int(room), Set: true}
	}

	return nil
}

func (r RoomOrEmpty) MarshalJSON() ([]byte, error) {
	if r.Room == 0 {
		return json.Marshal("")
	}
	return json.Marshal(r.Room)
}
