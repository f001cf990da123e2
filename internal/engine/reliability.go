package engine

import (
	"context"
	"errors"
	"time"

	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/connectors"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/provider"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultRateBurst = 60

// callerGoneError помечает ошибку, вызванную отменой контекста вызывающего
type callerGoneError struct{ err error }

func (e *callerGoneError) Error() string { return e.err.Error() }
func (e *callerGoneError) Unwrap() error { return e.err }

type ReliabilityConfig struct {
	Name string

	// Локальный бюджет запросов: публичный API дает 60 анонимных запросов в час.
	// Это страховка от шторма, обычная работа дашборда в него не упирается.
	RateInterval time.Duration
	RateBurst    int

	CBMaxRequests uint32
	CBInterval    time.Duration
	CBTimeout     time.Duration
	CBFailures    uint32 // Сколько ошибок подряд открывают предохранитель
}

// ReliabilityWrapper защищает ленту уязвимостей лимитером и Circuit Breaker.
// Повторов нет: одна попытка, а при отказе провайдер откатывается на синтетику.
type ReliabilityWrapper struct {
	next    provider.AdvisorySource
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewReliabilityWrapper(next provider.AdvisorySource, cfg ReliabilityConfig, metrics *Metrics, logger *zap.Logger) *ReliabilityWrapper {
	logger = logger.Named("feed-reliability")
	failures := cfg.CBFailures
	if failures == 0 {
		failures = 3
	}

	// Настройка предохранителя
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.CBMaxRequests,
		Interval:    cfg.CBInterval,
		Timeout:     cfg.CBTimeout, // Время, через которое CB попробует "закрыться"
		// Ушедший клиент — не сбой ленты
		IsSuccessful: func(err error) bool {
			var gone *callerGoneError
			return err == nil || errors.As(err, &gone)
		},
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("feed", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			if metrics != nil {
				metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})

	// Настройка лимитера
	interval := cfg.RateInterval
	if interval <= 0 {
		interval = time.Minute
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = defaultRateBurst
	}

	if metrics != nil {
		metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))
	}

	return &ReliabilityWrapper{
		next:    next,
		cb:      cb,
		limiter: rate.NewLimiter(rate.Every(interval), burst),
		logger:  logger,
	}
}

func (w *ReliabilityWrapper) FetchAdvisories(ctx context.Context) ([]connectors.RawAdvisory, error) {
	// 0. Клиент уже ушел: не тратим бюджет и не трогаем предохранитель
	if err := ctx.Err(); err != nil {
		return nil, &connectors.FeedError{Reason: connectors.ReasonTransport, Cause: err}
	}

	// 1. Rate Limiter: не ждем токен, а сразу уходим на синтетику
	if !w.limiter.Allow() {
		return nil, &connectors.FeedError{Reason: connectors.ReasonRateLimited}
	}

	// 2. Circuit Breaker
	result, err := w.cb.Execute(func() (interface{}, error) {
		items, err := w.next.FetchAdvisories(ctx)
		if err != nil && ctx.Err() != nil {
			return nil, &callerGoneError{err: err}
		}
		return items, err
	})
	if err != nil {
		var gone *callerGoneError
		if errors.As(err, &gone) {
			return nil, gone.err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &connectors.FeedError{Reason: connectors.ReasonCircuitOpen, Cause: err}
		}
		return nil, err
	}

	return result.([]connectors.RawAdvisory), nil
}

// State — текущее состояние предохранителя (для тестов и диагностики)
func (w *ReliabilityWrapper) State() gobreaker.State {
	return w.cb.State()
}
