package slot_watcher_service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/offsettrade/visa-checker-bot/internal/core/domain"
	"github.com/offsettrade/visa-checker-bot/internal/core/ports/out"
)

// StartPolling переводит планировщик из Idle в Active
// Повторный вызов при активном опросе - no-op с логом
func (s *SlotWatcherService) StartPolling() error {
	s.mu.Lock()
	if s.stopCh != nil {
		s.mu.Unlock()
		s.logger.Info("poller.start.noop", out.LogFields{
			"message": "polling is already active",
		})
		return nil
	}

	stopCh := make(chan struct{})
	s.stopCh = stopCh
	s.noDatesLogged = false
	s.mu.Unlock()

	s.state.reset()
	if s.attemptCache != nil {
		s.attemptCache.Reset()
	}

	s.logger.Info("poller.started", out.LogFields{
		"fromDate": s.cfg.Watcher.Window.FromString(),
		"toDate":   s.cfg.Watcher.Window.ToString(),
		"interval": s.cfg.Watcher.PollInterval.String(),
	})

	go s.pollLoop(stopCh)

	return nil
}

func (s *SlotWatcherService) StopPolling() {
	s.stop("stop.requested")
}

// stop гасит таймер и polling ровно один раз, повторные вызовы - no-op
func (s *SlotWatcherService) stop(reason string) {
	s.mu.Lock()
	stopCh := s.stopCh
	s.stopCh = nil
	s.mu.Unlock()

	if stopCh == nil {
		return
	}

	close(stopCh)
	s.state.setPolling(false)

	s.logger.Info("poller.stopped", out.LogFields{
		"reason": reason,
	})
}

func (s *SlotWatcherService) pollLoop(stopCh chan struct{}) {
	ticker := time.NewTicker(s.cfg.Watcher.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.tick(context.Background())
		}
	}
}

// tick - один полный цикл: даты -> слоты -> отбор -> гонка
func (s *SlotWatcherService) tick(ctx context.Context) {
	// Циклы не перекрываются: пока идет гонка, тик пропускается целиком
	if s.state.Snapshot().Rescheduling {
		s.logger.Debug("poller.tick.busy", out.LogFields{})
		return
	}

	window := s.cfg.Watcher.Window

	dates, err := s.portalPort.GetAvailableDates(ctx, window)
	if err != nil {
		if errors.Is(err, out.ErrAuthExpired) {
			// Опрос не останавливаем: токен могут обновить снаружи между тиками
			s.logger.Warn("poller.tick.auth_expired", out.LogFields{
				"message": "auth token expired, waiting for external refresh",
			})
		} else {
			s.logger.Error("poller.tick.dates_failed", out.LogFields{
				"error": err.Error(),
			})
		}
		return
	}

	if len(dates) == 0 {
		// Логируем только переход в пустое состояние, пока оно длится - молчим
		if !s.noDatesLogged {
			s.logger.Info("poller.dates.none", out.LogFields{
				"fromDate": window.FromString(),
				"toDate":   window.ToString(),
			})
			s.noDatesLogged = true
		}
		return
	}
	s.noDatesLogged = false

	slots := s.collectSlots(ctx, window, dates)
	if len(slots) == 0 {
		s.logger.Debug("poller.slots.none", out.LogFields{
			"dates": len(dates),
		})
		return
	}

	candidates := s.selectCandidates(slots, s.cfg.Watcher.ParallelAttempts)
	if len(candidates) == 0 {
		return
	}

	s.state.setRescheduling(true)
	outcome := s.runRace(ctx, candidates)
	s.resolveCycle(ctx, outcome)
}

// collectSlots запрашивает слоты по каждой дате параллельно,
// собирает в одну коллекцию и оставляет только UNBOOKED
func (s *SlotWatcherService) collectSlots(ctx context.Context, window domain.DateWindow, dates []time.Time) []domain.Slot {
	var result []domain.Slot
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, date := range dates {
		wg.Add(1)
		go func(date time.Time) {
			defer wg.Done()

			slots, err := s.portalPort.GetAvailableTimes(ctx, window, date)
			if err != nil {
				// Сбой по одной дате не валит цикл, дата просто выпадает
				s.logger.Warn("poller.times.failed", out.LogFields{
					"slotDate": date.Format("2006-01-02"),
					"error":    err.Error(),
				})
				return
			}

			unbooked := make([]domain.Slot, 0, len(slots))
			for _, slot := range slots {
				if slot.IsUnbooked() {
					unbooked = append(unbooked, slot)
				}
			}

			mu.Lock()
			result = append(result, unbooked...)
			mu.Unlock()
		}(date)
	}

	wg.Wait()

	return result
}
