package render

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/domain"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/provider"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/shaper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func renderPNG(t *testing.T, res domain.ChartResult) []byte {
	t.Helper()
	r := NewPNGRenderer(Config{Width: 640, Height: 320}, zap.NewNop())

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, res))

	img, err := png.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy())
	return buf.Bytes()
}

func TestRender_AllViews(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	p := provider.New(nil, provider.Config{Seed: 3, Now: func() time.Time { return now }}, nil, zap.NewNop())
	s := shaper.New()

	cases := map[string]domain.ChartResult{
		"bubble":   s.Bubble(p.Trends()),
		"stacked":  s.SeverityTimeline(p.FallbackAdvisories(now)),
		"heatmap":  s.RiskHeatmap(p.LocationRisk()),
		"dual":     s.PhishingDualAxis(p.PhishingTimeline()),
		"fallback": s.RiskHeatmap(domain.NewTable(domain.LocationRiskColumns, []domain.LocationRiskSample{{Hour: 30, Day: 2, PrivacyRisk: 55}})),
	}
	for name, res := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, domain.StatusOK, res.Status, res.Message)
			renderPNG(t, res)
		})
	}
}

func TestRender_Placeholders(t *testing.T) {
	noData := renderPNG(t, domain.NoData("No data available for location-based privacy risk analysis"))
	failed := renderPNG(t, domain.Failed("Error creating heatmap: boom"))
	assert.NotEqual(t, noData, failed)
}

func TestRender_BrokenChartFallsBackToErrorCard(t *testing.T) {
	broken := domain.ChartResult{Status: domain.StatusOK, Chart: &domain.Chart{Kind: domain.KindHeatmap, Title: "Heatmap"}}
	got := renderPNG(t, broken)

	want := renderPNG(t, domain.Failed("Error rendering Heatmap: heatmap has no cells"))
	assert.Equal(t, want, got)
}

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"no data", "for view"}, wrapText("no data for view", 8))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, wrapText("abcdefghij", 4))
	assert.Empty(t, wrapText("   ", 10))
}
