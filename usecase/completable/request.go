// Package completable реализует обобщенный, типобезопасный сценарий
// использования, бизнес-логика которого не производит значения и
// сигнализирует только о завершении (успешном или с ошибкой).
// Оборачивание и вызовы Execute/Chain устроены так же, как в пакете
// single: терминальный вызов применяет диагностическое и планирующее
// преобразования, композиционный — только диагностическое.
package completable

import (
	"context"
	"errors"
)

// Request представляет собой интерфейс-маркер для входного запроса сценария.
type Request interface{}

// Handler определяет строго типизированную функцию бизнес-логики для
// запроса Q, сигнализирующую только о завершении.
type Handler[Q Request] func(ctx context.Context, req Q) error

// Metadatable — это интерфейс для запросов, которые могут переносить
// метаданные (например, контекст трассировки).
type Metadatable interface {
	Metadata() map[string]string
}

// ErrNilRequest возвращается, когда обязательный входной запрос не задан.
// Это ошибка использования: выполнение прерывается немедленно, до
// планирования и до вызова бизнес-логики.
var ErrNilRequest = errors.New("входной запрос сценария не задан")
