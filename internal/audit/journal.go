package audit

/*
Журнал рендеров: неблокирующая запись событий из горячего пути,
накопление пачками и сброс в Sink по таймеру или по размеру пачки.
При остановке канал закрывается, воркер вычитывает остаток и делает финальный flush.
*/

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sink определяет, куда физически уходят пачки событий
type Sink interface {
	WriteBatch(ctx context.Context, events []RenderEvent) error
}

// BufferObserver получает текущую заполненность буфера (для метрик)
type BufferObserver interface {
	ObserveJournalFill(n int)
}

type Config struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
}

type Journal struct {
	ch        chan RenderEvent // Буфер для асинхронности
	sink      Sink
	observer  BufferObserver
	logger    *zap.Logger
	batchSize int
	interval  time.Duration
	wg        sync.WaitGroup
	closeMu   sync.RWMutex // Log держит RLock на проверку и отправку, Stop берет Lock на закрытие
	isClosed  bool
	stopOnce  sync.Once
}

func NewJournal(sink Sink, cfg Config, observer BufferObserver, logger *zap.Logger) *Journal {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	return &Journal{
		ch:        make(chan RenderEvent, cfg.BufferSize),
		sink:      sink,
		observer:  observer,
		logger:    logger.With(zap.String("mod", "journal")),
		batchSize: cfg.BatchSize,
		interval:  cfg.FlushInterval,
	}
}

func (j *Journal) Start() {
	j.wg.Add(1)
	go j.worker()
}

// Stop «запирает» вход в канал и ждет, пока воркер всё допишет.
func (j *Journal) Stop() {
	j.stopOnce.Do(func() {
		// Ждем, пока текущие Log закончат отправку, и закрываем канал
		j.closeMu.Lock()
		j.isClosed = true
		j.logger.Info("stopping journal: closing channel and flushing buffer...")
		close(j.ch)
		j.closeMu.Unlock()

		j.wg.Wait()
		j.logger.Info("journal stopped gracefully")
	})
}

func (j *Journal) Log(event RenderEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	j.closeMu.RLock()
	defer j.closeMu.RUnlock()

	if j.isClosed {
		j.logger.Warn("render event dropped: journal is stopping", zap.String("id", event.ID))
		return
	}

	// Load Shedding: рендер не ждет журнал
	select {
	case j.ch <- event:
		if j.observer != nil {
			j.observer.ObserveJournalFill(len(j.ch))
		}
	default:
		j.logger.Error("journal_buffer_overflow",
			zap.String("view", event.View),
			zap.String("trace_id", event.TraceID),
		)
	}
}

func (j *Journal) worker() {
	defer j.wg.Done()

	batch := make([]RenderEvent, 0, j.batchSize)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Background: контекст запроса к этому моменту уже закрыт
		if err := j.sink.WriteBatch(context.Background(), batch); err != nil {
			j.logger.Error("journal flush failed", zap.Error(err))
		}
		batch = batch[:0]
		if j.observer != nil {
			j.observer.ObserveJournalFill(len(j.ch))
		}
	}

	for {
		select {
		case event, ok := <-j.ch:
			if !ok {
				// Канал закрыт в Stop(): остаток уже вычитан, финальный сброс
				flush()
				j.logger.Debug("journal worker finished")
				return
			}
			batch = append(batch, event)
			if len(batch) >= j.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
