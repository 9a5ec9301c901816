// Package scheduler реализует планировщики выполнения для сценариев
// использования. Планировщик определяет, ГДЕ выполняется бизнес-логика:
// в текущей горутине, в ограниченном пуле воркеров или строго
// последовательно. Терминальный вызов сценария применяет планировщик
// ровно один раз, на внешней границе цепочки композиции.
package scheduler

import (
	"context"
	"errors"
)

// ErrStopped возвращается при попытке запланировать задачу после
// завершения работы планировщика.
var ErrStopped = errors.New("планировщик остановлен")

// Scheduler определяет контракт для всех механизмов планирования задач.
type Scheduler interface {
	// Schedule передает задачу на выполнение. Вызов может блокироваться,
	// пока в очереди планировщика нет места; отмена контекста прерывает
	// ожидание. Сама задача выполняется асинхронно.
	Schedule(ctx context.Context, task func()) error

	// Shutdown прекращает прием новых задач и дожидается завершения
	// уже принятых. Отмена контекста прерывает ожидание.
	Shutdown(ctx context.Context) error
}

// Immediate — это планировщик, выполняющий задачу немедленно,
// в горутине вызывающей стороны. Используется по умолчанию.
type Immediate struct{}

// NewImmediate создает новый экземпляр Immediate.
func NewImmediate() *Immediate {
	return &Immediate{}
}

// Schedule выполняет задачу синхронно, без очереди.
func (s *Immediate) Schedule(ctx context.Context, task func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	task()
	return nil
}

// Shutdown в данной реализации не выполняет никаких действий.
func (s *Immediate) Shutdown(ctx context.Context) error {
	return nil
}
