package slot_watcher_service

import "github.com/offsettrade/visa-checker-bot/internal/core/domain"

type SlotSlice []domain.Slot

// quickSort - функция для сортировки SlotSlice по моменту начала слота
// Разбиение на less/equal/greater сохраняет исходный порядок равных элементов
func (s SlotSlice) quickSort() SlotSlice {
	if len(s) < 2 {
		return s
	}

	// Выбираем опорный элемент
	pivot := s[len(s)/2].StartsAt()

	// Разделяем слайс на три части
	less := SlotSlice{}
	equal := SlotSlice{}
	greater := SlotSlice{}

	for _, slot := range s {
		startsAt := slot.StartsAt()
		if startsAt.Before(pivot) {
			less = append(less, slot)
		} else if startsAt.Equal(pivot) {
			equal = append(equal, slot)
		} else {
			greater = append(greater, slot)
		}
	}

	// Рекурсивно сортируем подмассивы и объединяем их
	return append(append(less.quickSort(), equal...), greater.quickSort()...)
}
