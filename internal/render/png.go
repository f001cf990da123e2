package render

/*
Пакет render превращает ChartResult в PNG.
Заглушки (no_data / error) рисуются как текстовая карточка, а любой сбой
go-chart тоже уходит в карточку ошибки, чтобы клиент всегда получал картинку.
*/

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"
)

const (
	defaultWidth  = 900
	defaultHeight = 450

	minBubble, maxBubble = 6.0, 30.0
)

type Config struct {
	Width  int
	Height int
}

type PNGRenderer struct {
	width  int
	height int
	logger *zap.Logger
}

func NewPNGRenderer(cfg Config, logger *zap.Logger) *PNGRenderer {
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHeight
	}
	return &PNGRenderer{
		width:  cfg.Width,
		height: cfg.Height,
		logger: logger.Named("render"),
	}
}

// Render пишет PNG в w. Ошибка возвращается только при сбое записи.
func (r *PNGRenderer) Render(w io.Writer, res domain.ChartResult) error {
	if res.IsPlaceholder() || res.Chart == nil {
		return writePlaceholder(w, r.width, r.height, res.Status, res.Message)
	}

	var buf bytes.Buffer
	if err := r.renderChart(&buf, res.Chart); err != nil {
		r.logger.Warn("chart render failed, drawing error placeholder",
			zap.String("kind", string(res.Chart.Kind)),
			zap.Error(err))
		return writePlaceholder(w, r.width, r.height, domain.StatusError,
			fmt.Sprintf("Error rendering %s: %v", res.Chart.Title, err))
	}

	_, err := buf.WriteTo(w)
	return err
}

func (r *PNGRenderer) renderChart(w io.Writer, c *domain.Chart) (err error) {
	// go-chart паникует на вырожденных диапазонах
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	switch c.Kind {
	case domain.KindBubble:
		return r.bubble(w, c)
	case domain.KindStackedBar:
		return r.stacked(w, c)
	case domain.KindHeatmap:
		return r.heatmap(w, c)
	case domain.KindHistogram:
		return r.histogram(w, c)
	case domain.KindDualAxis:
		return r.dualAxis(w, c)
	default:
		return fmt.Errorf("unsupported chart kind %q", c.Kind)
	}
}

func (r *PNGRenderer) bubble(w io.Writer, c *domain.Chart) error {
	d := c.Bubble
	if d == nil || len(d.Points) == 0 {
		return fmt.Errorf("bubble chart has no points")
	}

	// 1. Шкала размеров пузырей
	maxSize, maxY := 0.0, 0.0
	for _, p := range d.Points {
		maxSize = math.Max(maxSize, p.Size)
		maxY = math.Max(maxY, p.Y)
	}
	radius := func(size float64) float64 {
		if maxSize <= 0 {
			return minBubble
		}
		return minBubble + (maxBubble-minBubble)*math.Sqrt(size/maxSize)
	}

	// 2. По серии на категорию, чтобы у каждой был свой цвет и пункт легенды
	series := make([]chart.Series, 0, len(d.Categories))
	for i, cat := range d.Categories {
		var xs, ys, sizes []float64
		for _, p := range d.Points {
			if p.Category != cat {
				continue
			}
			xs = append(xs, float64(i))
			ys = append(ys, p.Y)
			sizes = append(sizes, radius(p.Size))
		}
		color := chart.GetDefaultColor(i)
		series = append(series, chart.ContinuousSeries{
			Name: cat,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotColor:    color.WithAlpha(180),
				DotWidthProvider: func(_, _ chart.Range, index int, _, _ float64) float64 {
					return sizes[index]
				},
			},
			XValues: xs,
			YValues: ys,
		})
	}

	// 3. Оси с явными диапазонами: одна точка не должна ломать рендер
	ticks := make([]chart.Tick, len(d.Categories))
	for i, cat := range d.Categories {
		ticks[i] = chart.Tick{Value: float64(i), Label: cat}
	}

	ch := chart.Chart{
		Title:  c.Title,
		Width:  r.width,
		Height: r.height,
		XAxis: chart.XAxis{
			Name:  c.XAxis.Title,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(d.Categories)) - 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  c.YAxis.Title,
			Range: &chart.ContinuousRange{Min: 0, Max: paddedMax(maxY)},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

func (r *PNGRenderer) stacked(w io.Writer, c *domain.Chart) error {
	d := c.Stacked
	if d == nil || len(d.Categories) == 0 {
		return fmt.Errorf("stacked chart has no categories")
	}

	bars := make([]chart.StackedBar, len(d.Categories))
	for j, month := range d.Categories {
		bar := chart.StackedBar{Name: month}
		for i, s := range d.Series {
			// Нулевые сегменты go-chart рисует как линию, пропускаем их
			if j >= len(s.Values) || s.Values[j] <= 0 {
				continue
			}
			color := chart.GetDefaultColor(i)
			bar.Values = append(bar.Values, chart.Value{
				Label: s.Name,
				Value: s.Values[j],
				Style: chart.Style{FillColor: color, StrokeColor: color},
			})
		}
		if len(bar.Values) == 0 {
			return fmt.Errorf("month %s has no incidents", month)
		}
		bars[j] = bar
	}

	sc := chart.StackedBarChart{
		Title:      c.Title,
		Width:      r.width,
		Height:     r.height,
		BarSpacing: 20,
		Bars:       bars,
	}
	return sc.Render(chart.PNG, w)
}

func (r *PNGRenderer) heatmap(w io.Writer, c *domain.Chart) error {
	d := c.Heatmap
	if d == nil || len(d.X) == 0 || len(d.Y) == 0 {
		return fmt.Errorf("heatmap has no cells")
	}

	// 1. Разворачиваем заполненные ячейки в точки; пустые не рисуем
	var xs, ys, values []float64
	for i, hour := range d.Y {
		for j, day := range d.X {
			if i >= len(d.Z) || j >= len(d.Z[i]) || d.Z[i][j] == nil {
				continue
			}
			xs = append(xs, float64(day))
			ys = append(ys, float64(hour))
			values = append(values, *d.Z[i][j])
		}
	}
	if len(values) == 0 {
		return fmt.Errorf("heatmap has no filled cells")
	}

	vmin, vmax := slices.Min(values), slices.Max(values)
	if vmax <= vmin {
		vmax = vmin + 1
	}
	cellWidth := math.Max(4, float64(r.width)/float64(len(d.X)+2)/2)

	ch := chart.Chart{
		Title:  c.Title,
		Width:  r.width,
		Height: r.height,
		XAxis: chart.XAxis{
			Name:  c.XAxis.Title,
			Range: &chart.ContinuousRange{Min: float64(d.X[0]) - 1, Max: float64(d.X[len(d.X)-1]) + 1},
		},
		YAxis: chart.YAxis{
			Name:  c.YAxis.Title,
			Range: &chart.ContinuousRange{Min: float64(d.Y[0]) - 1, Max: float64(d.Y[len(d.Y)-1]) + 1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name: "privacy risk",
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    cellWidth,
					DotColorProvider: func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
						return chart.Viridis(values[index], vmin, vmax)
					},
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return ch.Render(chart.PNG, w)
}

func (r *PNGRenderer) histogram(w io.Writer, c *domain.Chart) error {
	d := c.Histogram
	if d == nil || len(d.Bins) == 0 {
		return fmt.Errorf("histogram has no bins")
	}

	bars := make([]chart.Value, len(d.Bins))
	total := 0
	for i, b := range d.Bins {
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%.0f-%.0f", b.Lower, b.Upper),
			Value: float64(b.Count),
		}
		total += b.Count
	}
	if total == 0 {
		return fmt.Errorf("histogram is empty")
	}

	bc := chart.BarChart{
		Title:      c.Title,
		Width:      r.width,
		Height:     r.height,
		BarWidth:   max(10, r.width/(len(bars)*2)),
		BarSpacing: 8,
		Bars:       bars,
	}
	return bc.Render(chart.PNG, w)
}

func (r *PNGRenderer) dualAxis(w io.Writer, c *domain.Chart) error {
	d := c.DualAxis
	if d == nil || len(d.Labels) == 0 {
		return fmt.Errorf("dual axis chart has no points")
	}

	xs := make([]float64, len(d.Labels))
	ticks := make([]chart.Tick, len(d.Labels))
	for i, l := range d.Labels {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: l}
	}

	primaryColor, secondaryColor := chart.GetDefaultColor(0), chart.GetDefaultColor(1)
	ch := chart.Chart{
		Title:  c.Title,
		Width:  r.width,
		Height: r.height,
		XAxis: chart.XAxis{
			Name:  c.XAxis.Title,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(d.Labels)) - 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  c.YAxis.Title,
			Range: &chart.ContinuousRange{Min: 0, Max: paddedMax(slices.Max(d.Primary.Values))},
		},
		YAxisSecondary: chart.YAxis{
			Name:  axisTitle(c.Y2Axis),
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    d.Primary.Name,
				Style:   chart.Style{StrokeColor: primaryColor, StrokeWidth: 2, DotColor: primaryColor, DotWidth: 3},
				XValues: xs,
				YValues: d.Primary.Values,
			},
			chart.ContinuousSeries{
				Name:    d.Secondary.Name,
				YAxis:   chart.YAxisSecondary,
				Style:   chart.Style{StrokeColor: secondaryColor, StrokeWidth: 2, StrokeDashArray: []float64{5, 5}},
				XValues: xs,
				YValues: d.Secondary.Values,
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch.Render(chart.PNG, w)
}

func paddedMax(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v * 1.15
}

func axisTitle(a *domain.Axis) string {
	if a == nil {
		return ""
	}
	return a.Title
}
