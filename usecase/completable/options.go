package completable

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/x-research-team/interactor-framework/usecase/scheduler"
)

// config содержит неэкспортируемую конфигурацию сценария.
type config[Q Request] struct {
	logger         *slog.Logger
	debugLogger    *slog.Logger
	debug          bool
	scheduler      scheduler.Scheduler
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	propagator     propagation.TextMapPropagator
	middlewares    []Middleware[Q]
}

// Option определяет тип для функциональных опций, которые изменяют конфигурацию сценария.
type Option[Q Request] func(*config[Q])

// WithLogger возвращает опцию, которая устанавливает логгер сценария.
func WithLogger[Q Request](logger *slog.Logger) Option[Q] {
	return func(c *config[Q]) {
		c.logger = logger
	}
}

// WithDebug возвращает опцию, которая включает диагностическое
// преобразование. Без этой опции отладочный вывод не выполняется.
func WithDebug[Q Request](logger *slog.Logger) Option[Q] {
	return func(c *config[Q]) {
		c.debug = true
		c.debugLogger = logger
	}
}

// WithScheduler возвращает опцию, которая устанавливает планировщик
// терминального вызова Execute. По умолчанию используется scheduler.Immediate.
func WithScheduler[Q Request](s scheduler.Scheduler) Option[Q] {
	return func(c *config[Q]) {
		c.scheduler = s
	}
}

// WithTracerProvider возвращает опцию, которая устанавливает провайдер трассировки.
func WithTracerProvider[Q Request](provider trace.TracerProvider) Option[Q] {
	return func(c *config[Q]) {
		c.tracerProvider = provider
	}
}

// WithMeterProvider возвращает опцию, которая устанавливает провайдер метрик.
func WithMeterProvider[Q Request](provider metric.MeterProvider) Option[Q] {
	return func(c *config[Q]) {
		c.meterProvider = provider
	}
}

// WithPropagator возвращает опцию, которая устанавливает механизм распространения контекста.
func WithPropagator[Q Request](propagator propagation.TextMapPropagator) Option[Q] {
	return func(c *config[Q]) {
		c.propagator = propagator
	}
}

// WithMiddleware возвращает опцию, которая добавляет один или несколько middleware в цепочку обработки.
func WithMiddleware[Q Request](mw ...Middleware[Q]) Option[Q] {
	return func(c *config[Q]) {
		c.middlewares = append(c.middlewares, mw...)
	}
}
