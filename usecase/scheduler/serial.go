package scheduler

// Serial — это планировщик, выполняющий задачи строго последовательно,
// одну за другой, в порядке поступления (FIFO). Подходит для работы с
// состоянием, не допускающим конкурентного доступа.
type Serial struct {
	*Pool
}

// NewSerial создает новый последовательный планировщик.
// Опция WithWorkers игнорируется: воркер всегда один.
func NewSerial(opts ...PoolOption) *Serial {
	cfg := &poolOptions{
		workers:   1,
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Serial{
		Pool: NewPool(WithWorkers(1), WithQueueSize(cfg.queueSize)),
	}
}
