package completable_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-research-team/interactor-framework/usecase/completable"
)

// Тестовый запрос для проверки.
type testRequest struct {
	Value string
}

// countingScheduler — это планировщик-счетчик для проверки количества
// применений планирующего преобразования.
type countingScheduler struct {
	calls atomic.Int64
}

func (s *countingScheduler) Schedule(ctx context.Context, task func()) error {
	s.calls.Add(1)
	task()
	return nil
}

func (s *countingScheduler) Shutdown(ctx context.Context) error {
	return nil
}

// Тест успешной регистрации и выполнения сценария.
func TestUseCase_Execute_Success(t *testing.T) {
	t.Parallel()

	var completed atomic.Bool
	uc, err := completable.New[testRequest]()
	require.NoError(t, err, "Создание сценария не должно вызывать ошибку")
	require.NoError(t, uc.Register(func(ctx context.Context, req testRequest) error {
		completed.Store(true)
		return nil
	}))

	err = uc.Execute(context.Background(), testRequest{Value: "test"})

	require.NoError(t, err, "Выполнение сценария не должно вызывать ошибку")
	assert.True(t, completed.Load(), "Бизнес-логика должна быть выполнена")
}

// Тест передачи ошибки бизнес-логики вызывающей стороне.
func TestUseCase_Execute_HandlerError(t *testing.T) {
	t.Parallel()

	handlerErr := errors.New("отказ бизнес-логики")
	uc, err := completable.New[testRequest]()
	require.NoError(t, err)
	require.NoError(t, uc.Register(func(ctx context.Context, req testRequest) error {
		return handlerErr
	}))

	err = uc.Execute(context.Background(), testRequest{Value: "test"})

	require.Error(t, err, "Ошибка бизнес-логики должна передаваться вызывающей стороне")
	assert.ErrorIs(t, err, handlerErr)
}

// Тест ошибки при выполнении сценария без зарегистрированной бизнес-логики.
func TestUseCase_Execute_NoHandler(t *testing.T) {
	t.Parallel()

	uc, err := completable.New[testRequest]()
	require.NoError(t, err)

	err = uc.Execute(context.Background(), testRequest{Value: "test"})

	require.Error(t, err, "Выполнение без бизнес-логики должно вызывать ошибку")
	assert.Contains(t, err.Error(), "не зарегистрирована")
}

// Тест предусловия: отсутствующий входной запрос прерывает выполнение
// немедленно, без планирования и без вызова бизнес-логики.
func TestUseCase_Execute_NilRequest(t *testing.T) {
	t.Parallel()

	sched := &countingScheduler{}
	var handlerCalled atomic.Bool

	uc, err := completable.New[*testRequest](
		completable.WithScheduler[*testRequest](sched),
	)
	require.NoError(t, err)
	require.NoError(t, uc.Register(func(ctx context.Context, req *testRequest) error {
		handlerCalled.Store(true)
		return nil
	}))

	err = uc.Execute(context.Background(), nil)

	require.Error(t, err, "Выполнение с nil-запросом должно вызывать ошибку")
	assert.ErrorIs(t, err, completable.ErrNilRequest, "Ошибка должна быть ErrNilRequest")
	assert.False(t, handlerCalled.Load(), "Бизнес-логика не должна вызываться при отсутствующем запросе")
	assert.Equal(t, int64(0), sched.calls.Load(), "Планировщик не должен задействоваться при отсутствующем запросе")
}

// Тест терминального и композиционного вызовов: планировщик применяется
// только терминальным вызовом.
func TestUseCase_ExecuteAndChain_SchedulerUsage(t *testing.T) {
	t.Parallel()

	sched := &countingScheduler{}
	uc, err := completable.New[testRequest](
		completable.WithScheduler[testRequest](sched),
	)
	require.NoError(t, err)
	require.NoError(t, uc.Register(func(ctx context.Context, req testRequest) error {
		return nil
	}))

	require.NoError(t, uc.Chain(context.Background(), testRequest{Value: "chained"}))
	assert.Equal(t, int64(0), sched.calls.Load(), "Композиционный вызов не должен применять планировщик")

	require.NoError(t, uc.Execute(context.Background(), testRequest{Value: "terminal"}))
	assert.Equal(t, int64(1), sched.calls.Load(), "Терминальный вызов должен применять планировщик ровно один раз")
}

// Тест реестра: один и тот же экземпляр для одного имени.
func TestRegistry_UseCase_Success(t *testing.T) {
	t.Parallel()

	registry := completable.NewRegistry()
	name := "test.usecase"

	uc1, err := completable.UseCase[testRequest](registry, name)
	require.NoError(t, err, "Первое получение сценария не должно вызывать ошибку")
	require.NotNil(t, uc1)

	uc2, err := completable.UseCase[testRequest](registry, name)
	require.NoError(t, err, "Второе получение сценария не должно вызывать ошибку")

	assert.Same(t, uc1, uc2, "Реестр должен возвращать один и тот же экземпляр сценария для одного имени")
}
