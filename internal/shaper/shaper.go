package shaper

/*
Пакет shaper превращает таблицу вкладки в спецификацию графика.
Каждая операция сначала проверяет форму входа (обязательные колонки, непустота),
а любой сбой трансформации возвращает заглушку вместо паники.
Категориальные группировки упорядочены по первому появлению во входе.
*/

import (
	"fmt"
	"slices"
	"strings"

	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/domain"
)

// Сообщения заглушек
const (
	msgNoTrends     = "No trend data available"
	msgNoAdvisories = "No security advisory data available"
	msgNoLocation   = "No location risk data available"
	msgNoPhishing   = "No phishing data available"
)

// Границы сетки тепловой карты. Всё, что вне, ломает сводную таблицу.
const (
	gridMinHour, gridMaxHour = 0, 23
	gridMinDay, gridMaxDay   = 1, 31
)

// Гистограмма риска: 10 корзин по 10 пунктов на [0, 100]
const (
	histBins  = 10
	histWidth = 10.0
)

type Shaper struct{}

func New() *Shaper { return &Shaper{} }

// guard превращает панику внутри трансформации в заглушку "error".
func guard(op string, fn func() domain.ChartResult) (res domain.ChartResult) {
	defer func() {
		if r := recover(); r != nil {
			res = domain.Failed(fmt.Sprintf("Error creating %s: %v", op, r))
		}
	}()
	return fn()
}

func missingMessage(base string, missing []string) string {
	return fmt.Sprintf("%s (missing columns: %s)", base, strings.Join(missing, ", "))
}

// appendUnique добавляет значение, если его еще нет, и возвращает его индекс.
func appendUnique(list []string, v string) ([]string, int) {
	if i := slices.Index(list, v); i >= 0 {
		return list, i
	}
	return append(list, v), len(list)
}

// Bubble: точка на тренд, X — категория, Y и размер — объем, цвет — категория.
func (s *Shaper) Bubble(t domain.Table[domain.TrendRecord]) domain.ChartResult {
	return guard("bubble chart", func() domain.ChartResult {
		if missing := t.MissingColumns(domain.TrendColumns...); len(missing) > 0 {
			return domain.NoData(missingMessage(msgNoTrends, missing))
		}
		if t.Len() == 0 {
			return domain.NoData(msgNoTrends)
		}

		data := &domain.BubbleData{Points: make([]domain.BubblePoint, 0, t.Len())}
		for _, r := range t.Rows {
			if r.Volume < 0 {
				return domain.Failed(fmt.Sprintf("Error creating bubble chart: negative volume for %s", r.Trend))
			}
			data.Categories, _ = appendUnique(data.Categories, r.Category)
			data.Points = append(data.Points, domain.BubblePoint{
				Label:    r.Trend,
				Category: r.Category,
				Y:        float64(r.Volume),
				Size:     float64(r.Volume),
			})
		}

		return domain.Ok(domain.Chart{
			Kind:   domain.KindBubble,
			Title:  "Twitter Privacy & Security Trends",
			XAxis:  domain.Axis{Title: "Category"},
			YAxis:  domain.Axis{Title: "Volume"},
			Bubble: data,
		})
	})
}

// SeverityTimeline считает уязвимости по месяцам публикации и уровням критичности.
// Месяцы идут по возрастанию, уровни — в порядке первого появления, пустые ячейки равны 0.
func (s *Shaper) SeverityTimeline(t domain.Table[domain.AdvisoryRecord]) domain.ChartResult {
	return guard("timeline", func() domain.ChartResult {
		if missing := t.MissingColumns(domain.ColPublished, domain.ColSeverity); len(missing) > 0 {
			return domain.NoData(missingMessage(msgNoAdvisories, missing))
		}
		if t.Len() == 0 {
			return domain.NoData(msgNoAdvisories)
		}

		var severities []string
		counts := make(map[string]map[string]int) // месяц -> уровень -> количество
		for i, r := range t.Rows {
			if r.Published.IsZero() {
				return domain.Failed(fmt.Sprintf("Error creating timeline: row %d has no published timestamp", i))
			}
			if r.Severity == "" {
				return domain.Failed(fmt.Sprintf("Error creating timeline: row %d has no severity", i))
			}

			month := r.Published.UTC().Format("2006-01")
			severities, _ = appendUnique(severities, r.Severity)
			if counts[month] == nil {
				counts[month] = make(map[string]int)
			}
			counts[month][r.Severity]++
		}

		months := make([]string, 0, len(counts))
		for m := range counts {
			months = append(months, m)
		}
		slices.Sort(months) // "YYYY-MM" сортируется хронологически

		series := make([]domain.Series, 0, len(severities))
		for _, sev := range severities {
			values := make([]float64, len(months))
			for j, m := range months {
				values[j] = float64(counts[m][sev])
			}
			series = append(series, domain.Series{Name: sev, Values: values})
		}

		return domain.Ok(domain.Chart{
			Kind:    domain.KindStackedBar,
			Title:   "GitHub Security Incidents Timeline",
			XAxis:   domain.Axis{Title: "Month"},
			YAxis:   domain.Axis{Title: "Number of Incidents"},
			Stacked: &domain.StackedData{Categories: months, Series: series},
		})
	})
}

// RiskHeatmap строит сводную таблицу среднего риска по (час, день).
// Ячейки без выборок остаются пустыми (nil), а не нулевыми.
// Если сводную построить нельзя, откатывается к гистограмме значений риска.
func (s *Shaper) RiskHeatmap(t domain.Table[domain.LocationRiskSample]) domain.ChartResult {
	return guard("heatmap", func() domain.ChartResult {
		if missing := t.MissingColumns(domain.ColHour, domain.ColDay); len(missing) > 0 {
			return domain.NoData(missingMessage(msgNoLocation, missing))
		}
		if t.Len() == 0 {
			return domain.NoData(msgNoLocation)
		}

		heatmap, err := pivotRisk(t)
		if err == nil {
			return domain.Ok(domain.Chart{
				Kind:    domain.KindHeatmap,
				Title:   "Location Privacy Risk Heatmap",
				XAxis:   domain.Axis{Title: "Day of Month"},
				YAxis:   domain.Axis{Title: "Hour of Day"},
				Heatmap: heatmap,
			})
		}

		if !t.HasColumns(domain.ColPrivacyRisk) {
			return domain.Failed(fmt.Sprintf("Error creating heatmap: %v", err))
		}
		return domain.Ok(domain.Chart{
			Kind:      domain.KindHistogram,
			Title:     "Privacy Risk Distribution",
			XAxis:     domain.Axis{Title: "Privacy Risk"},
			YAxis:     domain.Axis{Title: "Samples"},
			Histogram: riskHistogram(t.Rows),
		})
	})
}

type cell struct{ hour, day int }

func pivotRisk(t domain.Table[domain.LocationRiskSample]) (*domain.HeatmapData, error) {
	if !t.HasColumns(domain.ColPrivacyRisk) {
		return nil, fmt.Errorf("pivot needs %s column", domain.ColPrivacyRisk)
	}

	sums := make(map[cell]float64)
	hits := make(map[cell]int)
	var hours, days []int
	for _, r := range t.Rows {
		if r.Hour < gridMinHour || r.Hour > gridMaxHour || r.Day < gridMinDay || r.Day > gridMaxDay {
			return nil, fmt.Errorf("sample (hour=%d, day=%d) is outside the grid", r.Hour, r.Day)
		}
		c := cell{r.Hour, r.Day}
		sums[c] += float64(r.PrivacyRisk)
		hits[c]++
		if !slices.Contains(hours, r.Hour) {
			hours = append(hours, r.Hour)
		}
		if !slices.Contains(days, r.Day) {
			days = append(days, r.Day)
		}
	}
	slices.Sort(hours)
	slices.Sort(days)

	z := make([][]*float64, len(hours))
	for i, h := range hours {
		z[i] = make([]*float64, len(days))
		for j, d := range days {
			c := cell{h, d}
			if n := hits[c]; n > 0 {
				mean := sums[c] / float64(n)
				z[i][j] = &mean
			}
		}
	}

	return &domain.HeatmapData{X: days, Y: hours, Z: z}, nil
}

// riskHistogram раскладывает значения по корзинам; выбросы прижимаются к крайним корзинам.
func riskHistogram(rows []domain.LocationRiskSample) *domain.HistogramData {
	bins := make([]domain.HistogramBin, histBins)
	for i := range bins {
		bins[i] = domain.HistogramBin{Lower: float64(i) * histWidth, Upper: float64(i+1) * histWidth}
	}
	for _, r := range rows {
		idx := int(float64(r.PrivacyRisk) / histWidth)
		idx = max(0, min(idx, histBins-1))
		bins[idx].Count++
	}
	return &domain.HistogramData{Field: domain.ColPrivacyRisk, Bins: bins}
}

// PhishingDualAxis: инциденты на основной оси, доля обнаружения ×100 — на вторичной.
func (s *Shaper) PhishingDualAxis(t domain.Table[domain.PhishingMonthRecord]) domain.ChartResult {
	return guard("phishing chart", func() domain.ChartResult {
		if missing := t.MissingColumns(domain.PhishingColumns...); len(missing) > 0 {
			return domain.NoData(missingMessage(msgNoPhishing, missing))
		}
		if t.Len() == 0 {
			return domain.NoData(msgNoPhishing)
		}

		data := &domain.DualAxisData{
			Labels:    make([]string, 0, t.Len()),
			Primary:   domain.Series{Name: "Phishing Incidents", Values: make([]float64, 0, t.Len())},
			Secondary: domain.Series{Name: "Detection Rate (%)", Values: make([]float64, 0, t.Len())},
		}
		for i, r := range t.Rows {
			if r.Month.IsZero() {
				return domain.Failed(fmt.Sprintf("Error creating phishing chart: row %d has no month", i))
			}
			data.Labels = append(data.Labels, r.Month.UTC().Format("Jan 2006"))
			data.Primary.Values = append(data.Primary.Values, float64(r.Incidents))
			data.Secondary.Values = append(data.Secondary.Values, r.DetectionRate*100)
		}

		return domain.Ok(domain.Chart{
			Kind:     domain.KindDualAxis,
			Title:    "Phishing Incidents vs Detection Rate",
			XAxis:    domain.Axis{Title: "Month"},
			YAxis:    domain.Axis{Title: "Incidents"},
			Y2Axis:   &domain.Axis{Title: "Detection Rate (%)"},
			DualAxis: data,
		})
	})
}
