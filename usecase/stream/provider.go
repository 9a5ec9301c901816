package stream

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-reflect"
)

// Provider определяет контракт для сменных механизмов выполнения потокового сценария.
type Provider[Q Request[R], R any] interface {
	// Execute выполняет бизнес-логику потока, передавая значения в emit.
	Execute(ctx context.Context, req Q, emit func(R) error) error

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

// Execute выполняет зарегистрированную бизнес-логику потока.
func (p *localProvider[Q, R]) Execute(ctx context.Context, req Q, emit func(R) error) error {
	p.mu.RLock()
	handler := p.handler
	p.mu.RUnlock()

	if handler == nil {
		reqType := reflect.TypeOf(req)
		return fmt.Errorf("бизнес-логика для запроса '%s' не зарегистрирована", reqType)
	}

	return handler(ctx, req, emit)
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
