package domain

import (
	"time"

	"github.com/offsettrade/visa-checker-bot/internal/core/json_types"
)

type SlotStatus string

const (
	SlotStatusUnbooked SlotStatus = "UNBOOKED"
	SlotStatusBooked   SlotStatus = "BOOKED"
)

// Slot - свободное окно записи, которое вернул портал
// Живет ровно один цикл опроса, между циклами не кэшируется
type Slot struct {
	ID        string               `json:"slotId"`
	Date      json_types.ApiDate   `json:"slotDate"`
	StartTime json_types.ClockTime `json:"startTime"`
	Status    SlotStatus           `json:"slotStatus"`
}

func (s Slot) IsUnbooked() bool {
	return s.Status == SlotStatusUnbooked
}

// StartsAt объединяет дату и время начала слота в один момент времени
func (s Slot) StartsAt() time.Time {
	d := s.Date.Date
	t := s.StartTime.Time
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}
