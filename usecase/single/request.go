// Package single реализует обобщенный, типобезопасный сценарий
// использования (use case), бизнес-логика которого производит одно
// отложенное значение. Сценарий оборачивает логику двумя сквозными
// преобразованиями: планирующим (где выполняется работа) и
// диагностическим (отладочный вывод). Терминальный вызов Execute
// применяет оба преобразования; композиционный вызов Chain — только
// диагностическое, откладывая планирование до внешней границы цепочки.
package single

import (
	"context"
	"errors"
)

// Request представляет собой интерфейс-маркер для входного запроса
// сценария, параметризованный типом возвращаемого значения R.
type Request[R any] interface{}

// Handler определяет строго типизированную функцию бизнес-логики для
// запроса Q, которая возвращает результат типа R.
type Handler[Q Request[R], R any] func(ctx context.Context, req Q) (R, error)

// Metadatable — это интерфейс для запросов, которые могут переносить
// метаданные (например, контекст трассировки).
type Metadatable interface {
	Metadata() map[string]string
}

// ErrNilRequest возвращается, когда обязательный входной запрос не задан.
// Это ошибка использования: выполнение прерывается немедленно, до
// планирования и до вызова бизнес-логики.
var ErrNilRequest = errors.New("входной запрос сценария не задан")
