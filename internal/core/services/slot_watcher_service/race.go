package slot_watcher_service

import (
	"context"

	"github.com/offsettrade/visa-checker-bot/internal/core/domain"
	"github.com/offsettrade/visa-checker-bot/internal/core/ports/out"
)

// runRace запускает по горутине на кандидата и принимает первый
// терминальный исход, успешный или нет. Это гонка до первого финишера,
// а не до первого успеха: проигравший с ошибкой может опередить
// еще не завершившийся успех, тогда цикл повторится на следующем тике.
func (s *SlotWatcherService) runRace(ctx context.Context, candidates []domain.Slot) domain.RescheduleOutcome {
	s.logger.Info("race.started", out.LogFields{
		"candidates": len(candidates),
	})

	// raceCtx не передается в сетевые вызовы: его отмена лишь запрещает
	// новые ретраи, уже летящие запросы дорабатывают до конца
	raceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan domain.RescheduleOutcome, len(candidates))
	for _, candidate := range candidates {
		go s.attemptCandidate(ctx, raceCtx, candidate, results)
	}

	outcome := <-results
	cancel()

	return outcome
}

// attemptCandidate гоняет ретраи по одному слоту до maxRetries попыток
func (s *SlotWatcherService) attemptCandidate(ctx, raceCtx context.Context, slot domain.Slot, results chan<- domain.RescheduleOutcome) {
	window := s.cfg.Watcher.Window
	maxRetries := s.cfg.Watcher.MaxRetries

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if raceCtx.Err() != nil {
			// Гонка уже решена
			return
		}

		s.totalAttempts.Add(1)

		outcome, err := s.portalPort.SubmitReschedule(ctx, window, slot)
		if err != nil {
			// AuthExpired и сетевые сбои терминальны для кандидата
			results <- domain.RescheduleOutcome{
				SlotID: slot.ID,
				Status: domain.RescheduleStatusError,
				Detail: err.Error(),
			}
			return
		}

		if outcome.IsScheduled() {
			results <- outcome
			return
		}

		// Конфликт: слот успел занять другой заявитель
		if s.attemptCache != nil {
			s.attemptCache.MarkConflicted(slot.ID)
		}

		if !s.cfg.Watcher.RetrySameSlot {
			break
		}

		s.logger.Debug("race.candidate.conflict_retry", out.LogFields{
			"slotId":  slot.ID,
			"attempt": attempt,
		})
	}

	results <- domain.RescheduleOutcome{
		SlotID: slot.ID,
		Status: domain.RescheduleStatusError,
		Detail: "conflict retries exhausted",
	}
}

// resolveCycle применяет итог гонки к состоянию активности
func (s *SlotWatcherService) resolveCycle(ctx context.Context, outcome domain.RescheduleOutcome) {
	if outcome.IsScheduled() {
		s.logger.Info("race.won", out.LogFields{
			"slotId": outcome.SlotID,
		})
		s.publishOutcome(ctx, outcome)
		s.state.setRescheduling(false)
		s.stop("reschedule.succeeded")
		return
	}

	s.logger.Warn("race.lost", out.LogFields{
		"slotId": outcome.SlotID,
		"status": outcome.Status,
		"detail": outcome.Detail,
	})
	s.state.setRescheduling(false)

	// Глобальный бюджет попыток: после исчерпания опрос останавливается
	// навсегда. При нулевом бюджете следующий тик попробует снова.
	if budget := s.cfg.Watcher.MaxTotalAttempts; budget > 0 && s.totalAttempts.Load() >= int64(budget) {
		s.logger.Error("race.budget_exhausted", out.LogFields{
			"totalAttempts": s.totalAttempts.Load(),
			"budget":        budget,
		})
		s.publishOutcome(ctx, outcome)
		s.stop("attempt_budget.exhausted")
	}
}
