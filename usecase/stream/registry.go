package stream

import (
	"context"
	"fmt"
	"sync"
)

// Registry - это потокобезопасный реестр для управления экземплярами сценариев.
type Registry struct {
	useCases map[string]any
	mu       sync.RWMutex
}

// NewRegistry создает новый экземпляр реестра сценариев.
func NewRegistry() *Registry {
	return &Registry{
		useCases: make(map[string]any),
	}
}

// UseCase возвращает строго типизированный экземпляр сценария для указанного имени.
func UseCase[Q Request[R], R any](r *Registry, name string, opts ...Option[Q, R]) (IUseCase[Q, R], error) {
	r.mu.RLock()
	uc, exists := r.useCases[name]
	r.mu.RUnlock()

	if exists {
		if typedUseCase, ok := uc.(IUseCase[Q, R]); ok {
			return typedUseCase, nil
		}
		return nil, fmt.Errorf("сценарий '%s' уже существует с другим типом", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if uc, exists := r.useCases[name]; exists {
		if typedUseCase, ok := uc.(IUseCase[Q, R]); ok {
			return typedUseCase, nil
		}
		return nil, fmt.Errorf("сценарий '%s' уже существует с другим типом", name)
	}

	newUseCase, err := New(opts...)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать новый сценарий: %w", err)
	}
	r.useCases[name] = newUseCase

	return newUseCase, nil
}

// Shutdown корректно завершает работу всех зарегистрированных сценариев.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, uc := range r.useCases {
		if u, ok := uc.(interface{ Shutdown(context.Context) error }); ok {
			if err := u.Shutdown(ctx); err != nil {
				return fmt.Errorf("ошибка при завершении работы сценария '%s': %w", name, err)
			}
		}
	}

	return nil
}
