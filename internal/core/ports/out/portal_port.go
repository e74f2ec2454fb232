package out

import (
	"context"
	"errors"
	"time"

	"github.com/offsettrade/visa-checker-bot/internal/core/domain"
)

var (
	// ErrAuthExpired - токен авторизации больше не действителен,
	// текущий цикл прерывается, но опрос продолжается
	ErrAuthExpired = errors.New("portal auth token expired")

	// ErrForbidden - портал отклонил запрос по правам доступа
	ErrForbidden = errors.New("portal request forbidden")
)

type PortalPort interface {
	// Список дат с доступными слотами в пределах окна
	// Ответ 404 трактуется как пустой список, а не как ошибка
	GetAvailableDates(ctx context.Context, window domain.DateWindow) ([]time.Time, error)

	// Список слотов на конкретную дату
	GetAvailableTimes(ctx context.Context, window domain.DateWindow, date time.Time) ([]domain.Slot, error)

	// Попытка перезаписи на слот
	// Конфликт (409) - это исход, а не ошибка: слот успели занять
	SubmitReschedule(ctx context.Context, window domain.DateWindow, slot domain.Slot) (domain.RescheduleOutcome, error)

	// Замена токена авторизации, подхватывается со следующего запроса
	RotateToken(token string)
}
