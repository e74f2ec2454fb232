package slot_watcher_service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offsettrade/visa-checker-bot/internal/core/domain"
	"github.com/offsettrade/visa-checker-bot/internal/core/ports/out"
)

func TestStartPolling_NoopWhenAlreadyActive(t *testing.T) {
	svc, logger := newTestService(newMockPortal(), testConfig())

	require.NoError(t, svc.StartPolling())
	t.Cleanup(svc.StopPolling)

	require.NoError(t, svc.StartPolling())

	assert.Equal(t, 1, logger.count("poller.started"))
	assert.Equal(t, 1, logger.count("poller.start.noop"))
	assert.True(t, svc.Status().Polling)
}

func TestStopPolling_Idempotent(t *testing.T) {
	svc, logger := newTestService(newMockPortal(), testConfig())

	require.NoError(t, svc.StartPolling())
	svc.StopPolling()
	svc.StopPolling()

	assert.Equal(t, 1, logger.count("poller.stopped"))
	assert.False(t, svc.Status().Polling)
}

func TestRestart_ResetsRescheduling(t *testing.T) {
	svc, _ := newTestService(newMockPortal(), testConfig())

	require.NoError(t, svc.StartPolling())
	svc.state.setRescheduling(true)
	svc.StopPolling()

	require.NoError(t, svc.StartPolling())
	t.Cleanup(svc.StopPolling)

	snapshot := svc.Status()
	assert.True(t, snapshot.Polling)
	assert.False(t, snapshot.Rescheduling)
}

func TestTick_SkippedWhileRescheduling(t *testing.T) {
	portal := newMockPortal()
	datesCalled := 0
	portal.datesFn = func() ([]time.Time, error) {
		datesCalled++
		return []time.Time{jun3}, nil
	}
	svc, logger := newTestService(portal, testConfig())

	svc.state.setRescheduling(true)
	svc.tick(context.Background())

	assert.Zero(t, datesCalled)
	assert.Equal(t, 1, logger.count("poller.tick.busy"))
}

func TestTick_AuthExpiredLeavesStateUntouched(t *testing.T) {
	portal := newMockPortal()
	portal.datesFn = func() ([]time.Time, error) {
		return nil, out.ErrAuthExpired
	}
	svc, logger := newTestService(portal, testConfig())

	require.NoError(t, svc.StartPolling())
	t.Cleanup(svc.StopPolling)

	before := svc.Status()
	svc.tick(context.Background())
	after := svc.Status()

	assert.Equal(t, before, after)
	assert.Zero(t, portal.totalCalls())
	assert.Equal(t, 1, logger.count("poller.tick.auth_expired"))
}

func TestTick_EmptyDatesNoStateChange(t *testing.T) {
	// Пустой список дат (в том числе 404 от портала) завершает тик без действий
	portal := newMockPortal()
	portal.datesFn = func() ([]time.Time, error) {
		return nil, nil
	}
	svc, _ := newTestService(portal, testConfig())

	require.NoError(t, svc.StartPolling())
	t.Cleanup(svc.StopPolling)

	before := svc.Status()
	svc.tick(context.Background())
	after := svc.Status()

	assert.Equal(t, before, after)
	assert.Zero(t, portal.totalCalls())
}

func TestTick_EmptyDatesLogSuppression(t *testing.T) {
	portal := newMockPortal()
	empty := true
	portal.datesFn = func() ([]time.Time, error) {
		if empty {
			return nil, nil
		}
		return []time.Time{jun3}, nil
	}
	portal.timesFn = func(date time.Time) ([]domain.Slot, error) {
		return nil, nil
	}
	svc, logger := newTestService(portal, testConfig())

	// Серия пустых тиков дает ровно одно уведомление
	for i := 0; i < 5; i++ {
		svc.tick(context.Background())
	}
	assert.Equal(t, 1, logger.count("poller.dates.none"))

	// Непустой результат сбрасывает подавление
	empty = false
	svc.tick(context.Background())

	empty = true
	svc.tick(context.Background())
	svc.tick(context.Background())
	assert.Equal(t, 2, logger.count("poller.dates.none"))
}

func TestTick_DatesErrorSkipsTick(t *testing.T) {
	portal := newMockPortal()
	portal.datesFn = func() ([]time.Time, error) {
		return nil, assert.AnError
	}
	svc, logger := newTestService(portal, testConfig())

	svc.tick(context.Background())

	assert.Zero(t, portal.totalCalls())
	assert.Equal(t, 1, logger.count("poller.tick.dates_failed"))
}

func TestTick_NoUnbookedSlotsEndsTick(t *testing.T) {
	portal := newMockPortal()
	portal.datesFn = func() ([]time.Time, error) {
		return []time.Time{jun3}, nil
	}
	portal.timesFn = func(date time.Time) ([]domain.Slot, error) {
		return []domain.Slot{
			newSlot("taken", date, "09:00", domain.SlotStatusBooked),
		}, nil
	}
	svc, _ := newTestService(portal, testConfig())

	svc.tick(context.Background())

	assert.Zero(t, portal.totalCalls())
}

func TestTick_TimesFailureDropsDateOnly(t *testing.T) {
	portal := newMockPortal()
	portal.datesFn = func() ([]time.Time, error) {
		return []time.Time{jun3, jun4}, nil
	}
	portal.timesFn = func(date time.Time) ([]domain.Slot, error) {
		if date.Equal(jun3) {
			return nil, assert.AnError
		}
		return []domain.Slot{
			newSlot("ok", date, "09:00", domain.SlotStatusUnbooked),
		}, nil
	}
	svc, logger := newTestService(portal, testConfig())

	require.NoError(t, svc.StartPolling())
	t.Cleanup(svc.StopPolling)

	svc.tick(context.Background())

	// Слот со второй даты дошел до гонки, несмотря на сбой первой
	assert.Equal(t, 1, portal.callsFor("ok"))
	assert.Equal(t, 1, logger.count("poller.times.failed"))
}

func TestTick_EndToEndRescheduleSuccess(t *testing.T) {
	// Окно 2025-06-01..2025-06-10, одна дата, один свободный слот на 09:00,
	// перезапись успешна
	portal := newMockPortal()
	portal.datesFn = func() ([]time.Time, error) {
		return []time.Time{jun3}, nil
	}
	portal.timesFn = func(date time.Time) ([]domain.Slot, error) {
		return []domain.Slot{
			newSlot("slot-1", date, "09:00", domain.SlotStatusUnbooked),
		}, nil
	}
	svc, _ := newTestService(portal, testConfig())

	require.NoError(t, svc.StartPolling())
	t.Cleanup(svc.StopPolling)

	svc.tick(context.Background())

	snapshot := svc.Status()
	assert.False(t, snapshot.Polling)
	assert.False(t, snapshot.Rescheduling)
	assert.Equal(t, 1, portal.callsFor("slot-1"))
}
