package session

import (
	"fmt"

	"interviewer-ai/internal/config"
)

// ConsentError сигнализирует, что статус согласия субъекта запрещает
// запуск сессии. Не обходится автоматически: требуется правка профиля
// оператором.
type ConsentError struct {
	SubjectID string
	Status    config.ConsentStatus
}

func (e *ConsentError) Error() string {
	return fmt.Sprintf("согласие субъекта %s имеет статус %q: запуск сессии запрещен",
		e.SubjectID, e.Status)
}

// BusyError сигнализирует о попытке выполнить переход, пока другой переход
// еще не завершен. Вызывающий должен повторить попытку позже, очередь
// переходов не ведется.
type BusyError struct {
	SessionID string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("сессия %s: переход уже выполняется", e.SessionID)
}
