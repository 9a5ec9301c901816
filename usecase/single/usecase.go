package single

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/x-research-team/interactor-framework/usecase/scheduler"
)

// IUseCase определяет основной, строго типизированный интерфейс сценария,
// производящего одно отложенное значение.
type IUseCase[Q Request[R], R any] interface {
	// Execute — терминальный вызов для внешней стороны: к бизнес-логике
	// применяются диагностическое преобразование (если включено) и
	// планирующее преобразование.
	Execute(ctx context.Context, req Q) (R, error)

	// Chain — композиционный вызов для использования внутри бизнес-логики
	// другого сценария: применяется только диагностическое преобразование.
	// Планирование откладывается и выполняется ровно один раз, внешним
	// терминальным вызовом.
	Chain(ctx context.Context, req Q) (R, error)

	// Register регистрирует бизнес-логику сценария.
	Register(handler Handler[Q, R]) error

	// Shutdown корректно завершает работу сценария. Планировщик сценарию
	// не принадлежит и останавливается вызывающей стороной.
	Shutdown(ctx context.Context) error
}

// useCaseImpl представляет собой реализацию IUseCase.
type useCaseImpl[Q Request[R], R any] struct {
	chained   Provider[Q, R]
	scheduler scheduler.Scheduler
	cfg       *config[Q, R]
}

// New создает новый, готовый к использованию экземпляр сценария.
func New[Q Request[R], R any](opts ...Option[Q, R]) (IUseCase[Q, R], error) {
	cfg := &config[Q, R]{
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

	// Диагностическое преобразование стоит первым в цепочке, чтобы дамп
	// охватывал выполнение целиком.
	allMiddlewares := []Middleware[Q, R]{
		NewDebugMiddleware[Q, R](cfg.debugLogger, cfg.debug),
		NewLoggingMiddleware[Q, R](cfg.logger),
		NewMetricsMiddleware[Q, R](cfg.meterProvider),
		NewTracingMiddleware[Q, R](cfg.tracerProvider, cfg.propagator),
	}
	allMiddlewares = append(allMiddlewares, cfg.middlewares...)
	wrappedProvider := applyMiddlewares(provider, allMiddlewares...)

	return &useCaseImpl[Q, R]{
		chained:   wrappedProvider,
		scheduler: cfg.scheduler,
		cfg:       cfg,
	}, nil
}

// Register регистрирует бизнес-логику сценария.
func (u *useCaseImpl[Q, R]) Register(handler Handler[Q, R]) error {
	return u.chained.Register(handler)
}

// Execute выполняет сценарий через планировщик и дожидается результата.
func (u *useCaseImpl[Q, R]) Execute(ctx context.Context, req Q) (R, error) {
	if isNilRequest(req) {
		var zero R
		return zero, ErrNilRequest
	}

	type outcome struct {
		result R
		err    error
	}

	out := make(chan outcome, 1)
	if err := u.scheduler.Schedule(ctx, func() {
		result, err := u.chained.Execute(ctx, req)
		out <- outcome{result: result, err: err}
	}); err != nil {
		var zero R
		return zero, fmt.Errorf("не удалось запланировать выполнение сценария: %w", err)
	}

	select {
	case o := <-out:
		return o.result, o.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Chain выполняет сценарий в горутине вызывающей стороны, без планировщика.
func (u *useCaseImpl[Q, R]) Chain(ctx context.Context, req Q) (R, error) {
	if isNilRequest(req) {
		var zero R
		return zero, ErrNilRequest
	}

	return u.chained.Execute(ctx, req)
}

// Shutdown корректно завершает работу сценария.
func (u *useCaseImpl[Q, R]) Shutdown(ctx context.Context) error {
	return u.chained.Shutdown(ctx)
}
