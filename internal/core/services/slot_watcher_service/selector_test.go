package slot_watcher_service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offsettrade/visa-checker-bot/internal/core/domain"
)

var (
	jun3 = time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	jun4 = time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	jun5 = time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
)

func TestSelectCandidates_FiltersSortsTruncates(t *testing.T) {
	svc, _ := newTestService(newMockPortal(), testConfig())

	slots := []domain.Slot{
		newSlot("d", jun5, "10:00", domain.SlotStatusUnbooked),
		newSlot("a", jun3, "14:00", domain.SlotStatusUnbooked),
		newSlot("x", jun3, "09:00", domain.SlotStatusBooked),
		newSlot("b", jun3, "09:30", domain.SlotStatusUnbooked),
		newSlot("c", jun4, "11:00", domain.SlotStatusUnbooked),
	}

	selected := svc.selectCandidates(slots, 2)

	require.Len(t, selected, 2)
	assert.Equal(t, "b", selected[0].ID)
	assert.Equal(t, "a", selected[1].ID)
	for _, slot := range selected {
		assert.True(t, slot.IsUnbooked())
	}
}

func TestSelectCandidates_SortedNonDecreasing(t *testing.T) {
	svc, _ := newTestService(newMockPortal(), testConfig())

	slots := []domain.Slot{
		newSlot("1", jun5, "08:00", domain.SlotStatusUnbooked),
		newSlot("2", jun3, "16:00", domain.SlotStatusUnbooked),
		newSlot("3", jun4, "12:00", domain.SlotStatusUnbooked),
		newSlot("4", jun3, "08:00", domain.SlotStatusUnbooked),
	}

	selected := svc.selectCandidates(slots, 10)

	require.Len(t, selected, 4)
	for i := 1; i < len(selected); i++ {
		assert.False(t, selected[i].StartsAt().Before(selected[i-1].StartsAt()))
	}
}

func TestSelectCandidates_StableOnTies(t *testing.T) {
	svc, _ := newTestService(newMockPortal(), testConfig())

	// Одинаковый момент начала: порядок из входа сохраняется
	slots := []domain.Slot{
		newSlot("first", jun3, "09:00", domain.SlotStatusUnbooked),
		newSlot("second", jun3, "09:00", domain.SlotStatusUnbooked),
		newSlot("third", jun3, "09:00", domain.SlotStatusUnbooked),
	}

	selected := svc.selectCandidates(slots, 3)

	require.Len(t, selected, 3)
	assert.Equal(t, "first", selected[0].ID)
	assert.Equal(t, "second", selected[1].ID)
	assert.Equal(t, "third", selected[2].ID)
}

func TestSelectCandidates_Idempotent(t *testing.T) {
	svc, _ := newTestService(newMockPortal(), testConfig())

	slots := []domain.Slot{
		newSlot("a", jun4, "10:00", domain.SlotStatusUnbooked),
		newSlot("b", jun3, "10:00", domain.SlotStatusUnbooked),
		newSlot("c", jun3, "10:00", domain.SlotStatusBooked),
	}

	first := svc.selectCandidates(slots, 2)
	second := svc.selectCandidates(slots, 2)

	assert.Equal(t, first, second)
}

func TestSelectCandidates_EmptyInput(t *testing.T) {
	svc, _ := newTestService(newMockPortal(), testConfig())

	assert.Empty(t, svc.selectCandidates(nil, 3))
	assert.Empty(t, svc.selectCandidates([]domain.Slot{}, 3))
}

func TestSelectCandidates_NonPositiveMaxCount(t *testing.T) {
	svc, _ := newTestService(newMockPortal(), testConfig())

	slots := []domain.Slot{
		newSlot("a", jun3, "09:00", domain.SlotStatusUnbooked),
	}

	assert.Empty(t, svc.selectCandidates(slots, 0))
	assert.Empty(t, svc.selectCandidates(slots, -1))
}

func TestSelectCandidates_AtMostEligible(t *testing.T) {
	svc, _ := newTestService(newMockPortal(), testConfig())

	slots := []domain.Slot{
		newSlot("a", jun3, "09:00", domain.SlotStatusUnbooked),
		newSlot("b", jun3, "10:00", domain.SlotStatusBooked),
	}

	selected := svc.selectCandidates(slots, 5)

	require.Len(t, selected, 1)
	assert.Equal(t, "a", selected[0].ID)
}

func TestSelectCandidates_DeprioritizesRecentlyConflicted(t *testing.T) {
	cfg := testConfig()
	logger := &recordingLogger{}
	attemptCache := newMockAttemptCache()
	svc := NewSlotWatcherService(newMockPortal(), attemptCache, nil, cfg, logger)

	attemptCache.MarkConflicted("early")

	slots := []domain.Slot{
		newSlot("early", jun3, "09:00", domain.SlotStatusUnbooked),
		newSlot("late", jun5, "09:00", domain.SlotStatusUnbooked),
	}

	// Слот с недавним конфликтом уступает место более позднему
	selected := svc.selectCandidates(slots, 1)

	require.Len(t, selected, 1)
	assert.Equal(t, "late", selected[0].ID)
}
