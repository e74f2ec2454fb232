package in

import (
	"github.com/offsettrade/visa-checker-bot/internal/core/domain"
)

type SlotWatcherUseCase interface {
	// Запуск периодического опроса портала
	// Повторный запуск при активном опросе - no-op
	StartPolling() error

	// Остановка опроса, безопасна при неактивном опросе
	StopPolling()

	// Текущее состояние активности
	Status() domain.ActivitySnapshot

	// Замена токена авторизации портала на лету
	RotateToken(token string)
}
