package stream

import (
	"context"
	"fmt"
	"sync"

	"log/slog"

	"github.com/x-research-team/interactor-framework/usecase/scheduler"
)

// IUseCase определяет основной, строго типизированный интерфейс
// потокового сценария.
type IUseCase[Q Request[R], R any] interface {
	// Execute — терминальный вызов для внешней стороны: к бизнес-логике
	// применяются диагностическое преобразование (если включено) и
	// планирующее преобразование. Возвращаемый канал закрывается по
	// завершении потока; ошибка завершения доставляется последним Item.
	Execute(ctx context.Context, req Q) (<-chan Item[R], error)

	// Chain — композиционный вызов для использования внутри бизнес-логики
	// другого сценария: применяется только диагностическое преобразование,
	// бизнес-логика выполняется в горутине композиции. Планирование
	// откладывается и выполняется ровно один раз, внешним терминальным
	// вызовом.
	Chain(ctx context.Context, req Q) (<-chan Item[R], error)

	// Register регистрирует бизнес-логику сценария.
	Register(handler Handler[Q, R]) error

	// Shutdown дожидается завершения запущенных потоков. Планировщик
	// сценарию не принадлежит и останавливается вызывающей стороной.
	Shutdown(ctx context.Context) error
}

// useCaseImpl представляет собой реализацию IUseCase.
type useCaseImpl[Q Request[R], R any] struct {
	chained   Provider[Q, R]
	scheduler scheduler.Scheduler
	cfg       *config[Q, R]
	streamWg  sync.WaitGroup
}

// New создает новый, готовый к использованию экземпляр потокового сценария.
func New[Q Request[R], R any](opts ...Option[Q, R]) (IUseCase[Q, R], error) {
	cfg := &config[Q, R]{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	provider, err := newLocalProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать локальный провайдер: %w", err)
	}

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

// Execute запускает поток через планировщик.
func (u *useCaseImpl[Q, R]) Execute(ctx context.Context, req Q) (<-chan Item[R], error) {
	if isNilRequest(req) {
		return nil, ErrNilRequest
	}

	items, run := u.prepare(ctx, req)

	u.streamWg.Add(1)

	// Без планировщика поток выполняется в выделенной горутине:
	// синхронный запуск заблокировал бы производителя до появления
	// потребителя канала.
	if u.scheduler == nil {
		go run()
		return items, nil
	}

	if err := u.scheduler.Schedule(ctx, run); err != nil {
		u.streamWg.Done()
		return nil, fmt.Errorf("не удалось запланировать потоковый сценарий: %w", err)
	}

	return items, nil
}

// Chain запускает поток в горутине композиции, без планировщика.
func (u *useCaseImpl[Q, R]) Chain(ctx context.Context, req Q) (<-chan Item[R], error) {
	if isNilRequest(req) {
		return nil, ErrNilRequest
	}

	items, run := u.prepare(ctx, req)

	u.streamWg.Add(1)
	go run()

	return items, nil
}

// prepare собирает канал элементов и функцию запуска бизнес-логики потока.
func (u *useCaseImpl[Q, R]) prepare(ctx context.Context, req Q) (<-chan Item[R], func()) {
	items := make(chan Item[R], u.cfg.buffer)

	emit := func(value R) error {
		select {
		case items <- Item[R]{Value: value}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	run := func() {
		defer u.streamWg.Done()
		defer close(items)

		if err := u.chained.Execute(ctx, req, emit); err != nil {
			if u.cfg.errorHandler != nil {
				u.cfg.errorHandler(err, req)
			}
			select {
			case items <- Item[R]{Err: err}:
			case <-ctx.Done():
			}
		}
	}

	return items, run
}

// Shutdown дожидается завершения всех запущенных потоков.
func (u *useCaseImpl[Q, R]) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		u.streamWg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return u.chained.Shutdown(ctx)
}
