package completable

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/x-research-team/interactor-framework/usecase/scheduler"
)

// IUseCase определяет основной, строго типизированный интерфейс сценария,
// сигнализирующего только о завершении.
type IUseCase[Q Request] interface {
	// Execute — терминальный вызов для внешней стороны: к бизнес-логике
	// применяются диагностическое преобразование (если включено) и
	// планирующее преобразование.
	Execute(ctx context.Context, req Q) error

	// Chain — композиционный вызов для использования внутри бизнес-логики
	// другого сценария: применяется только диагностическое преобразование.
	// Планирование откладывается и выполняется ровно один раз, внешним
	// терминальным вызовом.
	Chain(ctx context.Context, req Q) error

	// Register регистрирует бизнес-логику сценария.
	Register(handler Handler[Q]) error

	// Shutdown корректно завершает работу сценария. Планировщик сценарию
	// не принадлежит и останавливается вызывающей стороной.
	Shutdown(ctx context.Context) error
}

// useCaseImpl представляет собой реализацию IUseCase.
type useCaseImpl[Q Request] struct {
	chained   Provider[Q]
	scheduler scheduler.Scheduler
	cfg       *config[Q]
}

// New создает новый, готовый к использованию экземпляр сценария.
func New[Q Request](opts ...Option[Q]) (IUseCase[Q], error) {
	cfg := &config[Q]{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.scheduler == nil {
		cfg.scheduler = scheduler.NewImmediate()
	}

	provider, err := newLocalProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать локальный провайдер: %w", err)
	}

	allMiddlewares := []Middleware[Q]{
		NewDebugMiddleware[Q](cfg.debugLogger, cfg.debug),
		NewLoggingMiddleware[Q](cfg.logger),
		NewMetricsMiddleware[Q](cfg.meterProvider),
		NewTracingMiddleware[Q](cfg.tracerProvider, cfg.propagator),
	}
	allMiddlewares = append(allMiddlewares, cfg.middlewares...)
	wrappedProvider := applyMiddlewares(provider, allMiddlewares...)

	return &useCaseImpl[Q]{
		chained:   wrappedProvider,
		scheduler: cfg.scheduler,
		cfg:       cfg,
	}, nil
}

// Register регистрирует бизнес-логику сценария.
func (u *useCaseImpl[Q]) Register(handler Handler[Q]) error {
	return u.chained.Register(handler)
}

// Execute выполняет сценарий через планировщик и дожидается завершения.
func (u *useCaseImpl[Q]) Execute(ctx context.Context, req Q) error {
	if isNilRequest(req) {
		return ErrNilRequest
	}

	out := make(chan error, 1)
	if err := u.scheduler.Schedule(ctx, func() {
		out <- u.chained.Execute(ctx, req)
	}); err != nil {
		return fmt.Errorf("не удалось запланировать выполнение сценария: %w", err)
	}

	select {
	case err := <-out:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Chain выполняет сценарий в горутине вызывающей стороны, без планировщика.
func (u *useCaseImpl[Q]) Chain(ctx context.Context, req Q) error {
	if isNilRequest(req) {
		return ErrNilRequest
	}

	return u.chained.Execute(ctx, req)
}

// Shutdown корректно завершает работу сценария.
func (u *useCaseImpl[Q]) Shutdown(ctx context.Context) error {
	return u.chained.Shutdown(ctx)
}
