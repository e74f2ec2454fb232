package utils

import (
	"fmt"
	"time"
)

// StartCurrentDay возвращает новую дату, где время установлено на 00:00, а таймзона остается прежней.
func StartCurrentDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate парсит дату из строки в формате YYYY-MM-DD, если не удается, то пробует RFC3339
func ParseDate(str string) (time.Time, error) {
	parsedDate, err := time.ParseInLocation("2006-01-02", str, time.UTC)
	if err != nil {
		parsedDate, err = time.Parse(time.RFC3339, str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse date: %v", err)
		}
	}

	return parsedDate, nil
}
