package scheduler_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-research-team/interactor-framework/usecase/scheduler"
)

// Тест немедленного планировщика: задача выполняется синхронно.
func TestImmediate_Schedule(t *testing.T) {
	t.Parallel()

	s := scheduler.NewImmediate()

	executed := false
	err := s.Schedule(context.Background(), func() {
		executed = true
	})

	require.NoError(t, err, "Планирование задачи не должно вызывать ошибку")
	assert.True(t, executed, "Задача должна быть выполнена до возврата из Schedule")
	require.NoError(t, s.Shutdown(context.Background()))
}

// Тест немедленного планировщика с отмененным контекстом.
func TestImmediate_Schedule_CanceledContext(t *testing.T) {
	t.Parallel()

	s := scheduler.NewImmediate()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executed := false
	err := s.Schedule(ctx, func() {
		executed = true
	})

	require.Error(t, err, "Планирование с отмененным контекстом должно вызывать ошибку")
	assert.False(t, executed, "Задача не должна выполняться при отмененном контексте")
}

// Тест пула: все задачи выполняются.
func TestPool_Schedule(t *testing.T) {
	t.Parallel()

	p := scheduler.NewPool(scheduler.WithWorkers(4), scheduler.WithQueueSize(16))

	const total = 100
	var counter atomic.Int64
	var wg sync.WaitGroup
	wg.Add(total)

	for i := 0; i < total; i++ {
		err := p.Schedule(context.Background(), func() {
			defer wg.Done()
			counter.Add(1)
		})
		require.NoError(t, err, "Планирование задачи не должно вызывать ошибку")
	}

	wg.Wait()
	assert.Equal(t, int64(total), counter.Load(), "Все запланированные задачи должны быть выполнены")
	require.NoError(t, p.Shutdown(context.Background()), "Остановка пула не должна вызывать ошибку")
}

// Тест пула: Schedule после Shutdown возвращает ErrStopped.
func TestPool_Schedule_AfterShutdown(t *testing.T) {
	t.Parallel()

	p := scheduler.NewPool(scheduler.WithWorkers(1))
	require.NoError(t, p.Shutdown(context.Background()))

	err := p.Schedule(context.Background(), func() {})

	require.Error(t, err, "Планирование после остановки должно вызывать ошибку")
	assert.ErrorIs(t, err, scheduler.ErrStopped, "Ошибка должна быть ErrStopped")
}

// Тест пула: Shutdown дожидается задач, уже находящихся в очереди.
func TestPool_Shutdown_DrainsQueue(t *testing.T) {
	t.Parallel()

	p := scheduler.NewPool(scheduler.WithWorkers(1), scheduler.WithQueueSize(10))

	var counter atomic.Int64
	block := make(chan struct{})

	// Первая задача занимает единственного воркера.
	require.NoError(t, p.Schedule(context.Background(), func() {
		<-block
		counter.Add(1)
	}))

	// Остальные задачи остаются в очереди.
	for i := 0; i < 5; i++ {
		require.NoError(t, p.Schedule(context.Background(), func() {
			counter.Add(1)
		}))
	}

	close(block)
	require.NoError(t, p.Shutdown(context.Background()), "Остановка пула не должна вызывать ошибку")
	assert.Equal(t, int64(6), counter.Load(), "Shutdown должен дождаться выполнения всех принятых задач")
}

// Тест пула: отмена контекста прерывает ожидание места в очереди.
func TestPool_Schedule_ContextCancelOnFullQueue(t *testing.T) {
	t.Parallel()

	p := scheduler.NewPool(scheduler.WithWorkers(1), scheduler.WithQueueSize(0))
	defer p.Shutdown(context.Background())

	block := make(chan struct{})
	defer close(block)

	// Занимаем единственного воркера: очередь нулевого размера заполнена.
	require.NoError(t, p.Schedule(context.Background(), func() {
		<-block
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := p.Schedule(ctx, func() {})
	require.Error(t, err, "Ожидание места в заполненной очереди должно прерываться контекстом")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// Тест последовательного планировщика: порядок выполнения FIFO,
// без конкурентного выполнения.
func TestSerial_Schedule_FIFO(t *testing.T) {
	t.Parallel()

	s := scheduler.NewSerial(scheduler.WithQueueSize(32))

	const total = 20
	var mu sync.Mutex
	order := make([]int, 0, total)
	var wg sync.WaitGroup
	wg.Add(total)

	for i := 0; i < total; i++ {
		i := i
		require.NoError(t, s.Schedule(context.Background(), func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}

	wg.Wait()

	expected := make([]int, 0, total)
	for i := 0; i < total; i++ {
		expected = append(expected, i)
	}
	assert.Equal(t, expected, order, "Последовательный планировщик должен сохранять порядок поступления задач")
	require.NoError(t, s.Shutdown(context.Background()))
}
