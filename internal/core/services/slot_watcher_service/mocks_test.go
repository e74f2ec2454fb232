package slot_watcher_service

import (
	"context"
	"sync"
	"time"

	"github.com/offsettrade/visa-checker-bot/internal/config"
	"github.com/offsettrade/visa-checker-bot/internal/core/domain"
	"github.com/offsettrade/visa-checker-bot/internal/core/json_types"
	"github.com/offsettrade/visa-checker-bot/internal/core/ports/out"
)

// recordingLogger считает события по ключам
type recordingLogger struct {
	mu     sync.Mutex
	events []string
}

func (l *recordingLogger) record(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *recordingLogger) count(event string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e == event {
			n++
		}
	}
	return n
}

func (l *recordingLogger) Debug(event string, fields out.LogFields) { l.record(event) }
func (l *recordingLogger) Info(event string, fields out.LogFields)  { l.record(event) }
func (l *recordingLogger) Warn(event string, fields out.LogFields)  { l.record(event) }
func (l *recordingLogger) Error(event string, fields out.LogFields) { l.record(event) }

func (l *recordingLogger) WithFields(fields out.LogFields) out.LoggerPort { return l }
func (l *recordingLogger) WithModule(module string) out.LoggerPort        { return l }

// mockPortal настраивается поведением на каждую операцию
type mockPortal struct {
	mu sync.Mutex

	datesFn      func() ([]time.Time, error)
	timesFn      func(date time.Time) ([]domain.Slot, error)
	rescheduleFn func(slot domain.Slot) (domain.RescheduleOutcome, error)

	rescheduleCalls map[string]int
}

func newMockPortal() *mockPortal {
	return &mockPortal{
		rescheduleCalls: make(map[string]int),
	}
}

func (m *mockPortal) GetAvailableDates(ctx context.Context, window domain.DateWindow) ([]time.Time, error) {
	if m.datesFn == nil {
		return nil, nil
	}
	return m.datesFn()
}

func (m *mockPortal) GetAvailableTimes(ctx context.Context, window domain.DateWindow, date time.Time) ([]domain.Slot, error) {
	if m.timesFn == nil {
		return nil, nil
	}
	return m.timesFn(date)
}

func (m *mockPortal) SubmitReschedule(ctx context.Context, window domain.DateWindow, slot domain.Slot) (domain.RescheduleOutcome, error) {
	m.mu.Lock()
	m.rescheduleCalls[slot.ID]++
	m.mu.Unlock()

	if m.rescheduleFn == nil {
		return domain.RescheduleOutcome{SlotID: slot.ID, Status: domain.RescheduleStatusScheduled}, nil
	}
	return m.rescheduleFn(slot)
}

func (m *mockPortal) RotateToken(token string) {}

func (m *mockPortal) callsFor(slotID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rescheduleCalls[slotID]
}

func (m *mockPortal) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.rescheduleCalls {
		n += c
	}
	return n
}

// mockAttemptCache - простая память о конфликтах поверх map
type mockAttemptCache struct {
	mu         sync.Mutex
	conflicted map[string]bool
}

func newMockAttemptCache() *mockAttemptCache {
	return &mockAttemptCache{conflicted: make(map[string]bool)}
}

func (m *mockAttemptCache) MarkConflicted(slotID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicted[slotID] = true
}

func (m *mockAttemptCache) RecentlyConflicted(slotID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conflicted[slotID]
}

func (m *mockAttemptCache) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicted = make(map[string]bool)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Watcher.Window = domain.DateWindow{
		From: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
	}
	// Большой интервал: тики в тестах дергаются вручную
	cfg.Watcher.PollInterval = time.Hour
	cfg.Watcher.ParallelAttempts = 3
	cfg.Watcher.MaxRetries = 3
	cfg.Watcher.RetrySameSlot = true
	return cfg
}

func newTestService(portal out.PortalPort, cfg *config.Config) (*SlotWatcherService, *recordingLogger) {
	logger := &recordingLogger{}
	svc := NewSlotWatcherService(portal, nil, nil, cfg, logger)
	return svc, logger
}

func newSlot(id string, date time.Time, clock string, status domain.SlotStatus) domain.Slot {
	t, _ := time.Parse("15:04", clock)
	return domain.Slot{
		ID:        id,
		Date:      json_types.ApiDate{Date: date},
		StartTime: json_types.ClockTime{Time: t},
		Status:    status,
	}
}
