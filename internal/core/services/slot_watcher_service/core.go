package slot_watcher_service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/offsettrade/visa-checker-bot/internal/config"
	"github.com/offsettrade/visa-checker-bot/internal/core/domain"
	"github.com/offsettrade/visa-checker-bot/internal/core/ports/out"
)

type SlotWatcherService struct {
	portalPort   out.PortalPort
	attemptCache out.AttemptCachePort
	notifierPort out.NotifierPort
	logger       out.LoggerPort
	cfg          *config.Config

	state *activityState

	mu     sync.Mutex
	stopCh chan struct{}

	// Подавление повторного лога "дат нет", читается только из цикла опроса
	noDatesLogged bool

	totalAttempts atomic.Int64
}

func NewSlotWatcherService(
	portalPort out.PortalPort,
	attemptCache out.AttemptCachePort,
	notifierPort out.NotifierPort,
	cfg *config.Config,
	logger out.LoggerPort,
) *SlotWatcherService {
	return &SlotWatcherService{
		portalPort:   portalPort,
		attemptCache: attemptCache,
		notifierPort: notifierPort,
		cfg:          cfg,
		logger:       logger.WithModule("SlotWatcherService"),
		state:        &activityState{},
	}
}

func (s *SlotWatcherService) Status() domain.ActivitySnapshot {
	return s.state.Snapshot()
}

func (s *SlotWatcherService) RotateToken(token string) {
	s.portalPort.RotateToken(token)
}

func (s *SlotWatcherService) publishOutcome(ctx context.Context, outcome domain.RescheduleOutcome) {
	if s.notifierPort == nil {
		return
	}

	event := out.OutcomeEvent{
		EventID:    uuid.New().String(),
		OccurredAt: time.Now(),
		SlotID:     outcome.SlotID,
		Status:     outcome.Status,
		Detail:     outcome.Detail,
	}

	if err := s.notifierPort.PublishOutcome(ctx, event); err != nil {
		s.logger.Error("watcher.notify.failed", out.LogFields{
			"eventId": event.EventID,
			"error":   err.Error(),
		})
	}
}
