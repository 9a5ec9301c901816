package completable

import (
	"context"
	"fmt"
	"sync"

	"github.com/goccy/go-reflect"
)

// Provider определяет контракт для сменных механизмов выполнения сценария.
type Provider[Q Request] interface {
	// Execute выполняет бизнес-логику сценария для указанного запроса.
	Execute(ctx context.Context, req Q) error

	// Register регистрирует функцию бизнес-логики сценария.
	Register(handler Handler[Q]) error

	// Shutdown корректно завершает работу провайдера.
	Shutdown(ctx context.Context) error
}

// localProvider — это локальная, внутрипроцессная реализация провайдера.
type localProvider[Q Request] struct {
	handler Handler[Q]
	mu      sync.RWMutex
	cfg     *config[Q]
}

// newLocalProvider создает новый экземпляр локального провайдера.
func newLocalProvider[Q Request](cfg *config[Q]) (*localProvider[Q], error) {
	return &localProvider[Q]{
		cfg: cfg,
	}, nil
}

// Execute выполняет зарегистрированную бизнес-логику для указанного запроса.
func (p *localProvider[Q]) Execute(ctx context.Context, req Q) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.handler == nil {
		reqType := reflect.TypeOf(req)
		return fmt.Errorf("бизнес-логика для запроса '%s' не зарегистрирована", reqType)
	}

	return p.handler(ctx, req)
}

// Register регистрирует бизнес-логику сценария.
func (p *localProvider[Q]) Register(handler Handler[Q]) error {
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
func (p *localProvider[Q]) Shutdown(ctx context.Context) error {
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
