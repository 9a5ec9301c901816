package scheduler

import (
	"context"
	"sync"
)

const (
	defaultWorkers   = 10
	defaultQueueSize = 100
)

// poolOptions определяет набор параметров для конфигурации пула воркеров.
// Структура не экспортируется и управляется исключительно через
// функциональные опции типа PoolOption.
type poolOptions struct {
	// workers задает количество воркеров в пуле.
	// Значение по умолчанию: 10.
	workers int
	// queueSize определяет размер буферизированного канала задач.
	// Значение по умолчанию: 100.
	queueSize int
}

// PoolOption — это функциональная опция для настройки пула.
type PoolOption func(*poolOptions)

// WithWorkers устанавливает количество воркеров пула.
func WithWorkers(n int) PoolOption {
	return func(o *poolOptions) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithQueueSize устанавливает размер очереди задач пула.
func WithQueueSize(n int) PoolOption {
	return func(o *poolOptions) {
		if n >= 0 {
			o.queueSize = n
		}
	}
}

// Pool — это планировщик на основе ограниченного пула горутин.
// Задачи выполняются воркерами в порядке поступления; при заполненной
// очереди Schedule блокируется до появления места или отмены контекста.
type Pool struct {
	tasks    chan func()
	quit     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewPool создает новый пул и запускает его воркеров.
func NewPool(opts ...PoolOption) *Pool {
	cfg := &poolOptions{
		workers:   defaultWorkers,
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	p := &Pool{
		tasks: make(chan func(), cfg.queueSize),
		quit:  make(chan struct{}),
	}

	for i := 0; i < cfg.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Schedule передает задачу одному из воркеров пула.
func (p *Pool) Schedule(ctx context.Context, task func()) error {
	select {
	case <-p.quit:
		return ErrStopped
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	case <-p.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown прекращает прием задач и дожидается завершения воркеров.
// Задачи, уже находящиеся в очереди, будут выполнены.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() {
		close(p.quit)
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		// Выполняем задачи, успевшие попасть в очередь в момент остановки.
		for {
			select {
			case task := <-p.tasks:
				task()
			default:
				close(done)
				return
			}
		}
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// worker — это основная функция горутины-воркера.
func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case task := <-p.tasks:
			task()
		case <-p.quit:
			// Дорабатываем оставшиеся в очереди задачи и выходим.
			for {
				select {
				case task := <-p.tasks:
					task()
				default:
					return
				}
			}
		}
	}
}
