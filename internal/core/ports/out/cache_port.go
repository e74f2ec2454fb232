package out

// AttemptCachePort - память о слотах, по которым недавно был получен конфликт
// Такие слоты уходят в конец очереди кандидатов на следующих циклах
type AttemptCachePort interface {
	MarkConflicted(slotID string)
	RecentlyConflicted(slotID string) bool
	Reset()
}
