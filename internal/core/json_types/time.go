package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClockTime - время начала слота в формате HH:MM
type ClockTime struct {
	Time time.Time
}

func (t *ClockTime) UnmarshalJSON(data []byte) error {
	// Убираем кавычки вокруг строки
	str := string(data[1 : len(data)-1])
	parsedTime, err := time.Parse("15:04", str)
	if err != nil {
		// Некоторые ответы содержат секунды
		parsedTime, err = time.Parse("15:04:05", str)
		if err != nil {
			return fmt.Errorf("failed to parse time: %v", err)
		}
	}
	*t = ClockTime{Time: parsedTime}
	return nil
}

func (t ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format("15:04"))
}

// Format12Hour возвращает время в 12-часовом формате, как его ожидает
// поле appointmentTime запроса reschedule, например "09:00 AM"
func (t ClockTime) Format12Hour() string {
	return t.Time.UTC().Format("03:04 PM")
}
