package engine

import (
	"context"
	"sync"
	"time"

	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/audit"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/connectors"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/provider"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/shaper"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type stubFeed struct {
	mu    sync.Mutex
	items []connectors.RawAdvisory
	err   error
	calls int
}

func (s *stubFeed) FetchAdvisories(ctx context.Context) ([]connectors.RawAdvisory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.items, s.err
}

func (s *stubFeed) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.RenderEvent
}

func (a *recordingAuditor) Log(e audit.RenderEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAuditor) Events() []audit.RenderEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]audit.RenderEvent(nil), a.events...)
}

var testNow = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

func newTestCore(feed provider.AdvisorySource) (*DashboardCore, *Metrics, *recordingAuditor) {
	metrics := NewMetrics(prometheus.NewRegistry())
	p := provider.New(feed, provider.Config{Seed: 7, Now: func() time.Time { return testNow }}, metrics, zap.NewNop())
	auditor := &recordingAuditor{}
	return NewDashboardCore(p, shaper.New(), auditor, metrics, zap.NewNop()), metrics, auditor
}

func strPtr(s string) *string { return &s }
