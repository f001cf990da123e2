package connectors

import (
	"errors"
	"fmt"
)

// Причины отказа источника уязвимостей. Используются как метка метрики.
const (
	ReasonTransport   = "transport"
	ReasonStatus      = "status"
	ReasonDecode      = "decode"
	ReasonEmpty       = "empty"
	ReasonCircuitOpen = "circuit_open"
	ReasonRateLimited = "rate_limited"
)

// FeedError — классифицированная ошибка получения ленты.
type FeedError struct {
	Reason string
	Cause  error
}

func (e *FeedError) Error() string {
	if e.Cause == nil {
		return "advisory feed: " + e.Reason
	}
	return fmt.Sprintf("advisory feed: %s: %v", e.Reason, e.Cause)
}

func (e *FeedError) Unwrap() error { return e.Cause }

// FailureReason достает причину из цепочки ошибок; неклассифицированное считаем транспортом.
func FailureReason(err error) string {
	var fErr *FeedError
	if errors.As(err, &fErr) {
		return fErr.Reason
	}
	return ReasonTransport
}
