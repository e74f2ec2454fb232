package slot_watcher_service

import (
	"github.com/offsettrade/visa-checker-bot/internal/core/domain"
	"github.com/offsettrade/visa-checker-bot/internal/core/ports/out"
)

// selectCandidates отбирает до maxCount слотов для гонки перезаписи:
// только UNBOOKED, от ранних к поздним
func (s *SlotWatcherService) selectCandidates(slots []domain.Slot, maxCount int) []domain.Slot {
	if maxCount <= 0 || len(slots) == 0 {
		return nil
	}

	eligible := make(SlotSlice, 0, len(slots))
	for _, slot := range slots {
		if slot.IsUnbooked() {
			eligible = append(eligible, slot)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	sorted := eligible.quickSort()

	// Слоты с недавним конфликтом уходят в конец очереди,
	// чтобы не долбить только что отклоненные слоты
	if s.attemptCache != nil {
		sorted = s.deprioritizeConflicted(sorted)
	}

	if len(sorted) > maxCount {
		sorted = sorted[:maxCount]
	}

	s.logger.Debug("selector.candidates", out.LogFields{
		"eligible": len(eligible),
		"selected": len(sorted),
	})

	return sorted
}

func (s *SlotWatcherService) deprioritizeConflicted(slots SlotSlice) SlotSlice {
	fresh := make(SlotSlice, 0, len(slots))
	conflicted := SlotSlice{}

	for _, slot := range slots {
		if s.attemptCache.RecentlyConflicted(slot.ID) {
			conflicted = append(conflicted, slot)
		} else {
			fresh = append(fresh, slot)
		}
	}

	return append(fresh, conflicted...)
}
