// Package stream реализует обобщенный, типобезопасный сценарий
// использования, бизнес-логика которого производит поток значений и
// сигнал завершения. Значения доставляются потребителю через канал
// элементов Item. Терминальный вызов Execute запускает бизнес-логику
// через планировщик; композиционный вызов Chain — в горутине,
// принадлежащей вызывающей стороне, откладывая планирование до внешней
// границы цепочки.
package stream

import (
	"context"
	"errors"
)

// Request представляет собой интерфейс-маркер для входного запроса
// сценария, параметризованный типом элемента потока R.
type Request[R any] interface{}

// Handler определяет строго типизированную функцию бизнес-логики потока.
// Значения передаются потребителю через emit; ошибка из emit означает,
// что потребитель недоступен, и производство следует прекратить.
// Возврат из Handler завершает поток; ненулевая ошибка доставляется
// потребителю последним элементом.
type Handler[Q Request[R], R any] func(ctx context.Context, req Q, emit func(R) error) error

// Item — это элемент потока, доставляемый потребителю.
// Поток завершается закрытием канала; при аварийном завершении
// последним элементом доставляется Item с заполненным Err.
type Item[R any] struct {
	Value R
	Err   error
}

// ErrorHandler — это функция для обработки ошибки, завершившей поток.
type ErrorHandler[Q Request[R], R any] func(err error, req Q)

// Metadatable — это интерфейс для запросов, которые могут переносить
// метаданные (например, контекст трассировки).
type Metadatable interface {
	Metadata() map[string]string
}

// ErrNilRequest возвращается, когда обязательный входной запрос не задан.
// Это ошибка использования: выполнение прерывается немедленно, до
// планирования и до вызова бизнес-логики.
var ErrNilRequest = errors.New("входной запрос сценария не задан")
