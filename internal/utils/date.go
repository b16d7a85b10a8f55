package utils

import (
	"fmt"
	"time"
)

// StartCurrentDay возвращает ту же дату со временем 00:00 и прежней таймзоной
func StartCurrentDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate парсит дату начала курса. Основной формат: дата без времени,
// как ее присылает date-инпут; на всякий случай пробуем RFC3339 и дату со временем
func ParseDate(str string) (time.Time, error) {
	parsedDate, err := time.Parse("2006-01-02", str)
	if err != nil {
		parsedDate, err = time.Parse(time.RFC3339, str)
		if err != nil {
			parsedDate, err = time.Parse("2006-01-02T15:04:05", str)
			if err != nil {
				return time.Time{}, fmt.Errorf("failed to parse date: %v", err)
			}
		}
	}

	return parsedDate, nil
}
