package domain

type RescheduleStatus string

const (
	RescheduleStatusScheduled RescheduleStatus = "SCHEDULED"
	RescheduleStatusConflict  RescheduleStatus = "CONFLICT"
	RescheduleStatusError     RescheduleStatus = "ERROR"
)

// RescheduleOutcome - итог одной попытки либо всей гонки перезаписи
type RescheduleOutcome struct {
	SlotID string
	Status RescheduleStatus
	Detail string
}

func (o RescheduleOutcome) IsScheduled() bool {
	return o.Status == RescheduleStatusScheduled
}

func (o RescheduleOutcome) IsConflict() bool {
	return o.Status == RescheduleStatusConflict
}

// ActivitySnapshot - состояние активности на момент чтения
// Отдается наружу только копией
type ActivitySnapshot struct {
	Polling      bool `json:"polling"`
	Rescheduling bool `json:"rescheduling"`
}
