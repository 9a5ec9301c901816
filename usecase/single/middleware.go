package single

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/goccy/go-reflect"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName    = "github.com/x-research-team/interactor-framework/usecase/single"
	instrumentationVersion = "0.1.0"
	metricKeyPrefix        = "usecase."
)

// Middleware определяет интерфейс для middleware сценария.
// Middleware позволяет добавлять сквозную функциональность (логирование,
// метрики, трассировка, отладка) вокруг бизнес-логики.
type Middleware[Q Request[R], R any] interface {
	// Wrap оборачивает следующий провайдер в цепочке, добавляя свою логику.
	Wrap(next Provider[Q, R]) Provider[Q, R]
}

// MiddlewareFunc является адаптером, позволяющим использовать обычные функции как middleware.
type MiddlewareFunc[Q Request[R], R any] func(next Provider[Q, R]) Provider[Q, R]

// Wrap реализует интерфейс Middleware.
func (f MiddlewareFunc[Q, R]) Wrap(next Provider[Q, R]) Provider[Q, R] {
	return f(next)
}

// loggingMiddleware реализует Middleware для логирования выполнения сценария.
type loggingMiddleware[Q Request[R], R any] struct {
	logger *slog.Logger
}

// NewLoggingMiddleware создает новое middleware для логирования.
// Если логгер не предоставлен (nil), возвращается no-op middleware.
func NewLoggingMiddleware[Q Request[R], R any](logger *slog.Logger) Middleware[Q, R] {
	if logger == nil {
		return &noopMiddleware[Q, R]{}
	}
	return &loggingMiddleware[Q, R]{
		logger: logger,
	}
}

// Wrap оборачивает провайдер для добавления логирования.
func (m *loggingMiddleware[Q, R]) Wrap(next Provider[Q, R]) Provider[Q, R] {
	return &loggingProvider[Q, R]{
		next:   next,
		logger: m.logger,
	}
}

// loggingProvider - это обертка над провайдером, которая добавляет логирование.
type loggingProvider[Q Request[R], R any] struct {
	next   Provider[Q, R]
	logger *slog.Logger
}

// Execute логирует и выполняет сценарий.
func (p *loggingProvider[Q, R]) Execute(ctx context.Context, req Q) (result R, err error) {
	reqType, reqID := getRequestTypeAndID(req)
	p.logger.Info("выполнение сценария", slog.String("request_type", reqType), slog.String("request_id", reqID))

	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime)
		if err != nil {
			p.logger.Error("ошибка выполнения сценария",
				slog.String("request_type", reqType),
				slog.String("request_id", reqID),
				slog.Any("error", err),
				slog.Duration("duration", duration),
			)
		}
	}()

	return p.next.Execute(ctx, req)
}

// Register логирует и регистрирует бизнес-логику.
func (p *loggingProvider[Q, R]) Register(handler Handler[Q, R]) (err error) {
	handlerName := getHandlerName(handler)
	p.logger.Info("регистрация бизнес-логики сценария", slog.String("handler_name", handlerName))
	defer func() {
		if err != nil {
			p.logger.Error("ошибка регистрации бизнес-логики",
				slog.String("handler_name", handlerName),
				slog.Any("error", err),
			)
		}
	}()
	return p.next.Register(handler)
}

// Shutdown делегирует вызов следующему провайдеру в цепочке.
func (p *loggingProvider[Q, R]) Shutdown(ctx context.Context) error {
	return p.next.Shutdown(ctx)
}

// debugMiddleware реализует диагностическое преобразование сценария:
// подробный отладочный вывод запроса и результата каждого выполнения.
type debugMiddleware[Q Request[R], R any] struct {
	logger *slog.Logger
}

// NewDebugMiddleware создает диагностическое middleware.
// Преобразование активно только при включенном флаге отладки и наличии
// логгера; иначе возвращается no-op middleware.
func NewDebugMiddleware[Q Request[R], R any](logger *slog.Logger, enabled bool) Middleware[Q, R] {
	if !enabled || logger == nil {
		return &noopMiddleware[Q, R]{}
	}
	return &debugMiddleware[Q, R]{
		logger: logger,
	}
}

// Wrap оборачивает провайдер для добавления отладочного вывода.
func (m *debugMiddleware[Q, R]) Wrap(next Provider[Q, R]) Provider[Q, R] {
	return &debugProvider[Q, R]{
		next:   next,
		logger: m.logger,
	}
}

// debugProvider - это обертка над провайдером, которая дампит запрос и результат.
type debugProvider[Q Request[R], R any] struct {
	next   Provider[Q, R]
	logger *slog.Logger
}

// Execute выводит отладочную информацию и выполняет сценарий.
func (p *debugProvider[Q, R]) Execute(ctx context.Context, req Q) (result R, err error) {
	reqType, _ := getRequestTypeAndID(req)
	executionID := uuid.NewString()

	p.logger.Debug("отладка: запрос сценария",
		slog.String("request_type", reqType),
		slog.String("execution_id", executionID),
		slog.Any("request", req),
	)

	startTime := time.Now()
	result, err = p.next.Execute(ctx, req)
	duration := time.Since(startTime)

	if err != nil {
		p.logger.Debug("отладка: сценарий завершился ошибкой",
			slog.String("request_type", reqType),
			slog.String("execution_id", executionID),
			slog.Any("error", err),
			slog.Duration("duration", duration),
		)
		return result, err
	}

	p.logger.Debug("отладка: результат сценария",
		slog.String("request_type", reqType),
		slog.String("execution_id", executionID),
		slog.Any("result", result),
		slog.Duration("duration", duration),
	)

	return result, err
}

// Register делегирует вызов.
func (p *debugProvider[Q, R]) Register(handler Handler[Q, R]) error {
	return p.next.Register(handler)
}

// Shutdown делегирует вызов.
func (p *debugProvider[Q, R]) Shutdown(ctx context.Context) error {
	return p.next.Shutdown(ctx)
}

// metricsMiddleware реализует Middleware для сбора метрик OpenTelemetry.
type metricsMiddleware[Q Request[R], R any] struct {
	meter               metric.Meter
	executeCounter      metric.Int64Counter
	executeDurationHist metric.Float64Histogram
}

// NewMetricsMiddleware создает новое middleware для сбора метрик.
func NewMetricsMiddleware[Q Request[R], R any](provider metric.MeterProvider) Middleware[Q, R] {
	if provider == nil {
		return &noopMiddleware[Q, R]{}
	}

	meter := provider.Meter(instrumentationName)

	executeCounter, err := meter.Int64Counter(
		metricKeyPrefix+"execute.count",
		metric.WithDescription("Количество выполнений сценария"),
		metric.WithUnit("{executions}"),
	)
	if err != nil {
		panic(fmt.Sprintf("не удалось создать счетчик execute.count: %v", err))
	}

	executeDurationHist, err := meter.Float64Histogram(
		metricKeyPrefix+"execute.duration",
		metric.WithDescription("Длительность выполнения сценария"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		panic(fmt.Sprintf("не удалось создать гистограмму execute.duration: %v", err))
	}

	return &metricsMiddleware[Q, R]{
		meter:               meter,
		executeCounter:      executeCounter,
		executeDurationHist: executeDurationHist,
	}
}

// Wrap оборачивает провайдер для добавления сбора метрик.
func (m *metricsMiddleware[Q, R]) Wrap(next Provider[Q, R]) Provider[Q, R] {
	return &metricsProvider[Q, R]{
		next:                next,
		executeCounter:      m.executeCounter,
		executeDurationHist: m.executeDurationHist,
	}
}

// metricsProvider - это обертка над провайдером, которая собирает метрики.
type metricsProvider[Q Request[R], R any] struct {
	next                Provider[Q, R]
	executeCounter      metric.Int64Counter
	executeDurationHist metric.Float64Histogram
}

// Execute собирает метрики и выполняет сценарий.
func (p *metricsProvider[Q, R]) Execute(ctx context.Context, req Q) (result R, err error) {
	startTime := time.Now()
	result, err = p.next.Execute(ctx, req)
	duration := float64(time.Since(startTime).Milliseconds())

	status := "success"
	if err != nil {
		status = "error"
	}
	reqType, _ := getRequestTypeAndID(req)

	p.executeCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("request.type", reqType),
		attribute.String("status", status),
	))

	p.executeDurationHist.Record(ctx, duration, metric.WithAttributes(
		attribute.String("request.type", reqType),
		attribute.String("status", status),
	))

	return result, err
}

// Register делегирует вызов.
func (p *metricsProvider[Q, R]) Register(handler Handler[Q, R]) error {
	return p.next.Register(handler)
}

// Shutdown делегирует вызов.
func (p *metricsProvider[Q, R]) Shutdown(ctx context.Context) error {
	return p.next.Shutdown(ctx)
}

// tracingMiddleware реализует Middleware для распределенной трассировки OpenTelemetry.
type tracingMiddleware[Q Request[R], R any] struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// NewTracingMiddleware создает новое middleware для трассировки.
func NewTracingMiddleware[Q Request[R], R any](tp trace.TracerProvider, p propagation.TextMapPropagator) Middleware[Q, R] {
	if tp == nil {
		return &noopMiddleware[Q, R]{}
	}

	if p == nil {
		p = propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	}

	return &tracingMiddleware[Q, R]{
		tracer: tp.Tracer(
			instrumentationName,
			trace.WithInstrumentationVersion(instrumentationVersion),
		),
		propagator: p,
	}
}

// Wrap оборачивает провайдер для добавления логики трассировки.
func (m *tracingMiddleware[Q, R]) Wrap(next Provider[Q, R]) Provider[Q, R] {
	return &tracingProvider[Q, R]{
		next:       next,
		tracer:     m.tracer,
		propagator: m.propagator,
	}
}

// tracingProvider - это обертка над провайдером, которая управляет спанами трассировки.
type tracingProvider[Q Request[R], R any] struct {
	next       Provider[Q, R]
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// Execute создает спан для выполнения сценария и извлекает контекст трассировки.
func (p *tracingProvider[Q, R]) Execute(ctx context.Context, req Q) (result R, err error) {
	if md, ok := (any(req)).(Metadatable); ok {
		ctx = p.propagator.Extract(ctx, propagation.MapCarrier(md.Metadata()))
	}

	reqType, _ := getRequestTypeAndID(req)
	spanName := fmt.Sprintf("%s execute", reqType)

	ctx, span := p.tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindInternal))
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}()

	return p.next.Execute(ctx, req)
}

// Register делегирует вызов.
func (p *tracingProvider[Q, R]) Register(handler Handler[Q, R]) error {
	return p.next.Register(handler)
}

// Shutdown делегирует вызов.
func (p *tracingProvider[Q, R]) Shutdown(ctx context.Context) error {
	return p.next.Shutdown(ctx)
}

// applyMiddlewares применяет цепочку middleware к базовому провайдеру.
// Middleware применяются в обратном порядке, чтобы обеспечить правильную последовательность вызовов.
func applyMiddlewares[Q Request[R], R any](provider Provider[Q, R], middlewares ...Middleware[Q, R]) Provider[Q, R] {
	p := provider
	for i := len(middlewares) - 1; i >= 0; i-- {
		p = middlewares[i].Wrap(p)
	}
	return p
}

// noopMiddleware представляет собой пустое middleware.
type noopMiddleware[Q Request[R], R any] struct{}

// Wrap просто возвращает следующий провайдер без изменений.
func (m *noopMiddleware[Q, R]) Wrap(next Provider[Q, R]) Provider[Q, R] {
	return next
}

// getRequestTypeAndID извлекает тип и ID запроса с помощью рефлексии.
func getRequestTypeAndID(req any) (string, string) {
	val := reflect.ValueOf(req)
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return reflect.TypeOf(req).String(), "unknown"
		}
		val = val.Elem()
	}
	if !val.IsValid() {
		return "unknown", "unknown"
	}

	reqType := val.Type().Name()
	reqID := "unknown"

	if val.Kind() == reflect.Struct {
		if idField := val.FieldByName("ID"); idField.IsValid() {
			reqID = fmt.Sprintf("%v", idField.Interface())
		}
	}

	return reqType, reqID
}

// getHandlerName извлекает имя функции бизнес-логики.
func getHandlerName(handler any) string {
	v := reflect.ValueOf(handler)
	if v.Kind() == reflect.Func {
		if pc := v.Pointer(); pc != 0 {
			if f := runtime.FuncForPC(pc); f != nil {
				return f.Name()
			}
		}
	}
	return reflect.TypeOf(handler).String()
}
