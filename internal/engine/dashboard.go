package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/audit"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/domain"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/provider"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/shaper"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrUnknownView = errors.New("unknown view")

// Auditor — журнал рендеров
type Auditor interface {
	Log(event audit.RenderEvent)
}

// DashboardCore собирает вкладку: данные провайдера -> шейпер -> ViewResult.
// Общего изменяемого состояния у вкладок нет, поэтому их можно рендерить параллельно.
type DashboardCore struct {
	provider *provider.Provider
	shaper   *shaper.Shaper
	auditor  Auditor
	metrics  *Metrics
	logger   *zap.Logger
}

func NewDashboardCore(p *provider.Provider, s *shaper.Shaper, auditor Auditor, metrics *Metrics, logger *zap.Logger) *DashboardCore {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &DashboardCore{
		provider: p,
		shaper:   s,
		auditor:  auditor,
		metrics:  metrics,
		logger:   logger.Named("dashboard"),
	}
}

// Render выполняет полный цикл одной вкладки. Ошибка возможна только для неизвестной вкладки:
// сбои данных и шейпинга уже упакованы в ChartResult.
func (d *DashboardCore) Render(ctx context.Context, view domain.View) (domain.ViewResult, error) {
	start := time.Now()

	var (
		table any
		rows  int
		chart domain.ChartResult
	)
	switch view {
	case domain.ViewTrends:
		t := d.provider.Trends()
		table, rows, chart = t, t.Len(), d.shaper.Bubble(t)
	case domain.ViewAdvisories:
		t := d.provider.Advisories(ctx)
		table, rows, chart = t, t.Len(), d.shaper.SeverityTimeline(t)
	case domain.ViewLocationRisk:
		t := d.provider.LocationRisk()
		table, rows, chart = t, t.Len(), d.shaper.RiskHeatmap(t)
	case domain.ViewPhishing:
		t := d.provider.PhishingTimeline()
		table, rows, chart = t, t.Len(), d.shaper.PhishingDualAxis(t)
	default:
		return domain.ViewResult{}, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}

	res := domain.ViewResult{
		View:     view,
		RenderID: uuid.New().String(),
		Table:    table,
		Chart:    chart,
	}
	d.record(ctx, res.RenderID, view, rows, chart, start)
	return res, nil
}

// RenderAll рендерит все вкладки параллельно и возвращает их в каноническом порядке.
func (d *DashboardCore) RenderAll(ctx context.Context) ([]domain.ViewResult, error) {
	results := make([]domain.ViewResult, len(domain.Views))
	g, gCtx := errgroup.WithContext(ctx)
	for i, v := range domain.Views {
		g.Go(func() error {
			res, err := d.Render(gCtx, v)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Shape строит график по таблице, присланной клиентом. RenderID результата совпадает
// с ID события журнала. Ошибка — только для неизвестной вкладки или нечитаемого JSON.
func (d *DashboardCore) Shape(ctx context.Context, view domain.View, body io.Reader) (domain.ViewResult, error) {
	start := time.Now()

	var (
		table any
		rows  int
		chart domain.ChartResult
	)
	switch view {
	case domain.ViewTrends:
		t, err := domain.DecodeTable[domain.TrendRecord](body)
		if err != nil {
			return domain.ViewResult{}, err
		}
		table, rows, chart = t, t.Len(), d.shaper.Bubble(t)
	case domain.ViewAdvisories:
		t, err := domain.DecodeTable[domain.AdvisoryRecord](body)
		if err != nil {
			return domain.ViewResult{}, err
		}
		table, rows, chart = t, t.Len(), d.shaper.SeverityTimeline(t)
	case domain.ViewLocationRisk:
		t, err := domain.DecodeTable[domain.LocationRiskSample](body)
		if err != nil {
			return domain.ViewResult{}, err
		}
		table, rows, chart = t, t.Len(), d.shaper.RiskHeatmap(t)
	case domain.ViewPhishing:
		t, err := domain.DecodeTable[domain.PhishingMonthRecord](body)
		if err != nil {
			return domain.ViewResult{}, err
		}
		table, rows, chart = t, t.Len(), d.shaper.PhishingDualAxis(t)
	default:
		return domain.ViewResult{}, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}

	res := domain.ViewResult{
		View:     view,
		RenderID: uuid.New().String(),
		Table:    table,
		Chart:    chart,
	}
	d.record(ctx, res.RenderID, view, rows, chart, start)
	return res, nil
}

// record пишет метрики, лог и событие журнала по итогам рендера
func (d *DashboardCore) record(ctx context.Context, id string, view domain.View, rows int, chart domain.ChartResult, start time.Time) {
	duration := time.Since(start)
	status := string(chart.Status)

	d.metrics.RendersTotal.WithLabelValues(string(view), status).Inc()
	d.metrics.RenderDuration.WithLabelValues(string(view), status).Observe(duration.Seconds())

	if chart.Status == domain.StatusError {
		d.logger.Warn("view rendered with error placeholder",
			zap.String("view", string(view)),
			zap.String("message", chart.Message))
	}

	if d.auditor != nil {
		d.auditor.Log(audit.RenderEvent{
			ID:         id,
			TraceID:    TraceIDFromContext(ctx),
			View:       string(view),
			Status:     status,
			Rows:       rows,
			Message:    chart.Message,
			Timestamp:  start,
			DurationMs: duration.Milliseconds(),
		})
	}
}
