package single

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-reflect"
)

// Provider определяет контракт для сменных механизмов выполнения сценария.
type Provider[Q Request[R], R any] interface {
	// Execute выполняет бизнес-логику сценария для указанного запроса.
	Execute(ctx context.Context, req Q) (R, error)

	// Register регистрирует функцию бизнес-логики сценария.
	Register(handler Handler[Q, R]) error

	// Shutdown корректно завершает работу провайдера.
	Shutdown(ctx context.Context) error
}

// localProvider — это локальная, внутрипроцессная реализация провайдера.
type localProvider[Q Request[R], R any] struct {
	handler Handler[Q, R]
	mu      sync.RWMutex
	cfg     *config[Q, R]
}

// newLocalProvider создает новый экземпляр локального провайдера.
func newLocalProvider[Q Request[R], R any](cfg *config[Q, R]) (*localProvider[Q, R], error) {
	return &localProvider[Q, R]{
		cfg: cfg,
	}, nil
}

// Execute выполняет зарегистрированную бизнес-логику для указанного запроса.
func (p *localProvider[Q, R]) Execute(ctx context.Context, req Q) (R, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.handler == nil {
		var zero R
		reqType := reflect.TypeOf(req)
		return zero, fmt.Errorf("бизнес-логика для запроса '%s' не зарегистрирована", reqType)
	}

	return p.handler(ctx, req)
}

// Register регистрирует бизнес-логику сценария.
func (p *localProvider[Q, R]) Register(handler Handler[Q, R]) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handler != nil {
		var req Q
		reqType := reflect.TypeOf(req)
		return fmt.Errorf("бизнес-логика для запроса '%s' уже зарегистрирована", reqType)
	}

	p.handler = handler
	return nil
}

// Shutdown в данной реализации не выполняет никаких действий.
func (p *localProvider[Q, R]) Shutdown(ctx context.Context) error {
	return nil
}

// isNilRequest сообщает, отсутствует ли входное значение запроса.
// Отсутствующим считается nil-интерфейс, а также nil-указатель,
// nil-карта или nil-срез под интерфейсом.
func isNilRequest(req any) bool {
	if req == nil {
		return true
	}

	val := reflect.ValueOf(req)
	switch val.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return val.IsNil()
	default:
		return false
	}
}
