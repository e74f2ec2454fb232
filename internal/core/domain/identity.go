package domain

import (
	"fmt"
	"time"
)

// IdentityContext - неизменяемые реквизиты заявителя, задаются один раз при старте
type IdentityContext struct {
	ApplicantID   string
	ApplicationID string
	PostUserID    int
	AppointmentID int
	VisaType      string
	VisaClass     string
}

// DateWindow - желаемый диапазон дат записи, границы включительно
type DateWindow struct {
	From time.Time
	To   time.Time
}

func (w DateWindow) Validate() error {
	if w.From.IsZero() || w.To.IsZero() {
		return fmt.Errorf("date window is not set")
	}
	if w.From.After(w.To) {
		return fmt.Errorf("date window start %s is after end %s",
			w.From.Format("2006-01-02"), w.To.Format("2006-01-02"))
	}
	return nil
}

func (w DateWindow) FromString() string {
	return w.From.Format("2006-01-02")
}

func (w DateWindow) ToString() string {
	return w.To.Format("2006-01-02")
}

// Contains проверяет, попадает ли дата в диапазон
func (w DateWindow) Contains(t time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(w.From) && !day.After(w.To)
}
