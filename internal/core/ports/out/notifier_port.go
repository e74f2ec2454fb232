package out

import (
	"context"
	"time"

	"github.com/offsettrade/visa-checker-bot/internal/core/domain"
)

// OutcomeEvent - событие об итоге цикла перезаписи для внешних потребителей
type OutcomeEvent struct {
	EventID    string                  `json:"eventId"`
	OccurredAt time.Time               `json:"occurredAt"`
	SlotID     string                  `json:"slotId,omitempty"`
	Status     domain.RescheduleStatus `json:"status"`
	Detail     string                  `json:"detail,omitempty"`
}

type NotifierPort interface {
	PublishOutcome(ctx context.Context, event OutcomeEvent) error
	Close() error
}
