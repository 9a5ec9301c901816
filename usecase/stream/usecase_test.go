package stream_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-research-team/interactor-framework/usecase/stream"
)

// Тестовый запрос для проверки.
type testRequest struct {
	Count int
}

// countingScheduler — это планировщик-счетчик для проверки количества
// применений планирующего преобразования. Задачи выполняются в отдельной
// горутине, как в реальном пуле.
type countingScheduler struct {
	calls atomic.Int64
}

func (s *countingScheduler) Schedule(ctx context.Context, task func()) error {
	s.calls.Add(1)
	go task()
	return nil
}

func (s *countingScheduler) Shutdown(ctx context.Context) error {
	return nil
}

// rangeHandler эмитирует числа от 0 до Count-1.
func rangeHandler(ctx context.Context, req testRequest, emit func(int) error) error {
	for i := 0; i < req.Count; i++ {
		if err := emit(i); err != nil {
			return err
		}
	}
	return nil
}

// collect вычитывает поток до закрытия канала.
func collect[R any](items <-chan stream.Item[R]) ([]R, error) {
	var values []R
	for item := range items {
		if item.Err != nil {
			return values, item.Err
		}
		values = append(values, item.Value)
	}
	return values, nil
}

// Тест успешного выполнения потока: все значения доставлены, канал закрыт.
func TestUseCase_Execute_Success(t *testing.T) {
	t.Parallel()

	uc, err := stream.New[testRequest, int]()
	require.NoError(t, err, "Создание сценария не должно вызывать ошибку")
	require.NoError(t, uc.Register(rangeHandler), "Регистрация бизнес-логики не должна вызывать ошибку")

	items, err := uc.Execute(context.Background(), testRequest{Count: 5})
	require.NoError(t, err, "Запуск потока не должен вызывать ошибку")

	values, streamErr := collect(items)
	require.NoError(t, streamErr, "Поток не должен завершаться ошибкой")
	assert.Equal(t, []int{0, 1, 2, 3, 4}, values, "Поток должен доставить все значения по порядку")
}

// Тест потока с ошибкой: ошибка доставляется последним элементом,
// обработчик ошибок вызывается.
func TestUseCase_Execute_HandlerError(t *testing.T) {
	t.Parallel()

	handlerErr := errors.New("отказ источника")
	var handled atomic.Bool

	uc, err := stream.New[testRequest, int](
		stream.WithErrorHandler[testRequest, int](func(err error, req testRequest) {
			handled.Store(true)
		}),
		stream.WithBuffer[testRequest, int](4),
	)
	require.NoError(t, err)
	require.NoError(t, uc.Register(func(ctx context.Context, req testRequest, emit func(int) error) error {
		if err := emit(42); err != nil {
			return err
		}
		return handlerErr
	}))

	items, err := uc.Execute(context.Background(), testRequest{Count: 1})
	require.NoError(t, err)

	values, streamErr := collect(items)
	assert.Equal(t, []int{42}, values, "Значения, произведенные до отказа, должны быть доставлены")
	require.Error(t, streamErr, "Ошибка бизнес-логики должна доставляться потребителю")
	assert.ErrorIs(t, streamErr, handlerErr)
	assert.True(t, handled.Load(), "Обработчик ошибок должен быть вызван")
}

// Тест предусловия: отсутствующий входной запрос прерывает выполнение немедленно.
func TestUseCase_Execute_NilRequest(t *testing.T) {
	t.Parallel()

	sched := &countingScheduler{}
	uc, err := stream.New[*testRequest, int](
		stream.WithScheduler[*testRequest, int](sched),
	)
	require.NoError(t, err)
	require.NoError(t, uc.Register(func(ctx context.Context, req *testRequest, emit func(int) error) error {
		return nil
	}))

	items, err := uc.Execute(context.Background(), nil)

	require.Error(t, err, "Запуск потока с nil-запросом должен вызывать ошибку")
	assert.ErrorIs(t, err, stream.ErrNilRequest, "Ошибка должна быть ErrNilRequest")
	assert.Nil(t, items, "Канал не должен создаваться при отсутствующем запросе")
	assert.Equal(t, int64(0), sched.calls.Load(), "Планировщик не должен задействоваться при отсутствующем запросе")
}

// Тест терминального и композиционного вызовов: планировщик применяется
// только терминальным вызовом.
func TestUseCase_ExecuteAndChain_SchedulerUsage(t *testing.T) {
	t.Parallel()

	sched := &countingScheduler{}
	uc, err := stream.New[testRequest, int](
		stream.WithScheduler[testRequest, int](sched),
	)
	require.NoError(t, err)
	require.NoError(t, uc.Register(rangeHandler))

	chainedItems, err := uc.Chain(context.Background(), testRequest{Count: 3})
	require.NoError(t, err)
	values, streamErr := collect(chainedItems)
	require.NoError(t, streamErr)
	assert.Equal(t, []int{0, 1, 2}, values)
	assert.Equal(t, int64(0), sched.calls.Load(), "Композиционный вызов не должен применять планировщик")

	terminalItems, err := uc.Execute(context.Background(), testRequest{Count: 3})
	require.NoError(t, err)
	values, streamErr = collect(terminalItems)
	require.NoError(t, streamErr)
	assert.Equal(t, []int{0, 1, 2}, values)
	assert.Equal(t, int64(1), sched.calls.Load(), "Терминальный вызов должен применять планировщик ровно один раз")
}

// Тест отмены контекста: производитель останавливается, канал закрывается.
func TestUseCase_Execute_ContextCancel(t *testing.T) {
	t.Parallel()

	var terminatedWith atomic.Value

	uc, err := stream.New[testRequest, int](
		stream.WithErrorHandler[testRequest, int](func(err error, req testRequest) {
			terminatedWith.Store(err)
		}),
	)
	require.NoError(t, err)
	require.NoError(t, uc.Register(func(ctx context.Context, req testRequest, emit func(int) error) error {
		for i := 0; ; i++ {
			if err := emit(i); err != nil {
				return err
			}
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	items, err := uc.Execute(ctx, testRequest{})
	require.NoError(t, err)

	// Вычитываем первое значение и отменяем контекст.
	first, ok := <-items
	require.True(t, ok, "Первое значение должно быть доставлено")
	require.NoError(t, first.Err)
	assert.Equal(t, 0, first.Value)

	cancel()

	// Поток должен завершиться закрытием канала.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-items:
			if !ok {
				err, _ := terminatedWith.Load().(error)
				require.Error(t, err, "Обработчик ошибок должен получить причину завершения")
				assert.ErrorIs(t, err, context.Canceled)
				return
			}
		case <-deadline:
			t.Fatal("Поток не завершился после отмены контекста")
		}
	}
}

// Тест Shutdown: дожидается завершения запущенных потоков.
func TestUseCase_Shutdown_WaitsForStreams(t *testing.T) {
	t.Parallel()

	uc, err := stream.New[testRequest, int](
		stream.WithBuffer[testRequest, int](8),
	)
	require.NoError(t, err)
	require.NoError(t, uc.Register(rangeHandler))

	items, err := uc.Execute(context.Background(), testRequest{Count: 5})
	require.NoError(t, err)

	values, streamErr := collect(items)
	require.NoError(t, streamErr)
	require.Len(t, values, 5)

	require.NoError(t, uc.Shutdown(context.Background()), "Shutdown после завершения потоков не должен вызывать ошибку")
}

// Тест реестра: один и тот же экземпляр для одного имени.
func TestRegistry_UseCase_Success(t *testing.T) {
	t.Parallel()

	registry := stream.NewRegistry()
	name := "test.stream"

	uc1, err := stream.UseCase[testRequest, int](registry, name)
	require.NoError(t, err, "Первое получение сценария не должно вызывать ошибку")
	require.NotNil(t, uc1)

	uc2, err := stream.UseCase[testRequest, int](registry, name)
	require.NoError(t, err, "Второе получение сценария не должно вызывать ошибку")

	assert.Same(t, uc1, uc2, "Реестр должен возвращать один и тот же экземпляр сценария для одного имени")
}
