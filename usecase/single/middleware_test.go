package single_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/x-research-team/interactor-framework/usecase/single"
)

// Тест диагностического преобразования: при включенной отладке запрос и
// результат выводятся в лог на уровне Debug.
func TestDebugMiddleware_DumpsRequestAndResult(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	debugLogger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	uc, err := single.New[testRequest, string](
		single.WithLogger[testRequest, string](nil),
		single.WithDebug[testRequest, string](debugLogger),
	)
	require.NoError(t, err)
	require.NoError(t, uc.Register(testHandler))

	result, err := uc.Execute(context.Background(), testRequest{Value: "debugged"})

	require.NoError(t, err)
	assert.Equal(t, "processed: debugged", result)

	output := buf.String()
	assert.Contains(t, output, "запрос сценария", "Отладочный вывод должен содержать дамп запроса")
	assert.Contains(t, output, "результат сценария", "Отладочный вывод должен содержать дамп результата")
	assert.Contains(t, output, "debugged", "Отладочный вывод должен содержать значение запроса")
	assert.Contains(t, output, "execution_id", "Отладочный вывод должен содержать идентификатор выполнения")
}

// Тест диагностического преобразования: без флага отладки вывод отсутствует.
func TestDebugMiddleware_DisabledByDefault(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Логгер задан, но флаг отладки не включен: диагностики быть не должно.
	uc, err := single.New[testRequest, string](
		single.WithLogger[testRequest, string](logger),
	)
	require.NoError(t, err)
	require.NoError(t, uc.Register(testHandler))

	_, err = uc.Execute(context.Background(), testRequest{Value: "quiet"})
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "отладка", "Без флага отладки диагностический вывод должен отсутствовать")
}

// Тест middleware метрик: выполнение сценария учитывается счетчиком.
func TestMetricsMiddleware_CountsExecutions(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	uc, err := single.New[testRequest, string](
		single.WithLogger[testRequest, string](nil),
		single.WithMeterProvider[testRequest, string](meterProvider),
	)
	require.NoError(t, err)
	require.NoError(t, uc.Register(testHandler))

	_, err = uc.Execute(context.Background(), testRequest{Value: "metered"})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm), "Сбор метрик не должен вызывать ошибку")

	var count int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != "usecase.execute.count" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "Метрика execute.count должна быть суммой int64")
			for _, dp := range sum.DataPoints {
				count += dp.Value
			}
		}
	}

	assert.Equal(t, int64(1), count, "Счетчик выполнений должен учитывать одно выполнение")
}

// Тест middleware трассировки: выполнение сценария создает спан.
func TestTracingMiddleware_CreatesSpan(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	uc, err := single.New[testRequest, string](
		single.WithLogger[testRequest, string](nil),
		single.WithTracerProvider[testRequest, string](tracerProvider),
	)
	require.NoError(t, err)
	require.NoError(t, uc.Register(testHandler))

	_, err = uc.Execute(context.Background(), testRequest{Value: "traced"})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1, "Выполнение сценария должно создавать ровно один спан")
	assert.Equal(t, "testRequest execute", spans[0].Name(), "Имя спана должно содержать тип запроса")
}
