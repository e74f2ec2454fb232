package slot_watcher_service

import (
	"sync"

	"github.com/offsettrade/visa-checker-bot/internal/core/domain"
)

// activityState - единственный разделяемый изменяемый ресурс сервиса
// Пишут в него только планировщик и координатор гонки, остальные читают снимок
type activityState struct {
	mu           sync.RWMutex
	polling      bool
	rescheduling bool
}

func (s *activityState) Snapshot() domain.ActivitySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.ActivitySnapshot{
		Polling:      s.polling,
		Rescheduling: s.rescheduling,
	}
}

func (s *activityState) setPolling(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.polling = v
}

func (s *activityState) setRescheduling(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rescheduling = v
}

// reset возвращает состояние к началу опроса
func (s *activityState) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.polling = true
	s.rescheduling = false
}
