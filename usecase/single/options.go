package single

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/x-research-team/interactor-framework/usecase/scheduler"
)

// config содержит неэкспортируемую конфигурацию сценария.
type config[Q Request[R], R any] struct {
	logger         *slog.Logger
	debugLogger    *slog.Logger
	debug          bool
	scheduler      scheduler.Scheduler
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	propagator     propagation.TextMapPropagator
	middlewares    []Middleware[Q, R]
}

// Option определяет тип для функциональных опций, которые изменяют конфигурацию сценария.
type Option[Q Request[R], R any] func(*config[Q, R])

// WithLogger возвращает опцию, которая устанавливает логгер сценария.
func WithLogger[Q Request[R], R any](logger *slog.Logger) Option[Q, R] {
	return func(c *config[Q, R]) {
		c.logger = logger
	}
}

// WithDebug возвращает опцию, которая включает диагностическое
// преобразование. Без этой опции отладочный вывод не выполняется.
func WithDebug[Q Request[R], R any](logger *slog.Logger) Option[Q, R] {
	return func(c *config[Q, R]) {
		c.debug = true
		c.debugLogger = logger
	}
}

// WithScheduler возвращает опцию, которая устанавливает планировщик
// терминального вызова Execute. По умолчанию используется scheduler.Immediate.
func WithScheduler[Q Request[R], R any](s scheduler.Scheduler) Option[Q, R] {
	return func(c *config[Q, R]) {
		c.scheduler = s
	}
}

// WithTracerProvider возвращает опцию, которая устанавливает провайдер трассировки.
func WithTracerProvider[Q Request[R], R any](provider trace.TracerProvider) Option[Q, R] {
	return func(c *config[Q, R]) {
		c.tracerProvider = provider
	}
}

// WithMeterProvider возвращает опцию, которая устанавливает провайдер метрик.
func WithMeterProvider[Q Request[R], R any](provider metric.MeterProvider) Option[Q, R] {
	return func(c *config[Q, R]) {
		c.meterProvider = provider
	}
}

// WithPropagator возвращает опцию, которая устанавливает механизм распространения контекста.
func WithPropagator[Q Request[R], R any](propagator propagation.TextMapPropagator) Option[Q, R] {
	return func(c *config[Q, R]) {
		c.propagator = propagator
	}
}

// WithMiddleware возвращает опцию, которая добавляет один или несколько middleware в цепочку обработки.
func WithMiddleware[Q Request[R], R any](mw ...Middleware[Q, R]) Option[Q, R] {
	return func(c *config[Q, R]) {
		c.middlewares = append(c.middlewares, mw...)
	}
}
