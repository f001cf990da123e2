package provider

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/connectors"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

type stubFeed struct {
	items []connectors.RawAdvisory
	err   error
	calls int
}

func (s *stubFeed) FetchAdvisories(ctx context.Context) ([]connectors.RawAdvisory, error) {
	s.calls++
	return s.items, s.err
}

type recordingObserver struct {
	outcomes []string
}

func (o *recordingObserver) ObserveFeed(outcome string) {
	o.outcomes = append(o.outcomes, outcome)
}

func strPtr(s string) *string { return &s }

func newTestProvider(feed AdvisorySource, obs FeedObserver) *Provider {
	return New(feed, Config{Seed: 42, Now: func() time.Time { return fixedNow }}, obs, zap.NewNop())
}

func TestTrends_FixedSet(t *testing.T) {
	tbl := newTestProvider(nil, nil).Trends()

	require.Equal(t, 6, tbl.Len())
	assert.Equal(t, domain.TrendColumns, tbl.Columns)

	counts := map[string]int{}
	for _, r := range tbl.Rows {
		counts[r.Category]++
	}
	assert.Equal(t, map[string]int{"Technology": 2, "Social": 1, "Education": 1, "Legal": 1, "Security": 1}, counts)
	assert.Equal(t, "#DataPrivacy", tbl.Rows[0].Trend)
	assert.Equal(t, "#CyberSecurity", tbl.Rows[1].Trend)
}

func TestAdvisories_LiveMapping(t *testing.T) {
	long := strings.Repeat("x", 120)
	feed := &stubFeed{items: []connectors.RawAdvisory{
		{Severity: strPtr("critical"), PublishedAt: strPtr("2024-02-10T09:30:00Z"), Summary: strPtr("Heap overflow")},
		{Summary: strPtr(long)},
		{Severity: strPtr("")},
	}}
	obs := &recordingObserver{}

	tbl := newTestProvider(feed, obs).Advisories(context.Background())

	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"ok"}, obs.outcomes)

	assert.Equal(t, "Critical", tbl.Rows[0].Severity)
	assert.Equal(t, time.Date(2024, 2, 10, 9, 30, 0, 0, time.UTC), tbl.Rows[0].Published)
	assert.Equal(t, "Heap overflow", tbl.Rows[0].Summary)

	// Значения по умолчанию: medium и "сейчас"
	assert.Equal(t, "Medium", tbl.Rows[1].Severity)
	assert.Equal(t, fixedNow, tbl.Rows[1].Published)
	assert.Len(t, tbl.Rows[1].Summary, domain.MaxSummaryLen)
	assert.Equal(t, "Medium", tbl.Rows[2].Severity)

	for _, r := range tbl.Rows {
		assert.GreaterOrEqual(t, r.CVSS, 4.0)
		assert.LessOrEqual(t, r.CVSS, 9.5)
	}
}

func TestAdvisories_TakesFirstFifteen(t *testing.T) {
	items := make([]connectors.RawAdvisory, 30)
	tbl := newTestProvider(&stubFeed{items: items}, nil).Advisories(context.Background())
	assert.Equal(t, 15, tbl.Len())
}

func TestAdvisories_FallbackOnFailure(t *testing.T) {
	cases := []struct {
		name   string
		feed   AdvisorySource
		reason string
	}{
		{"status", &stubFeed{err: &connectors.FeedError{Reason: connectors.ReasonStatus}}, connectors.ReasonStatus},
		{"empty", &stubFeed{err: &connectors.FeedError{Reason: connectors.ReasonEmpty}}, connectors.ReasonEmpty},
		{"bad timestamp", &stubFeed{items: []connectors.RawAdvisory{{PublishedAt: strPtr("yesterday")}}}, connectors.ReasonDecode},
		{"no feed", nil, connectors.ReasonTransport},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obs := &recordingObserver{}
			tbl := newTestProvider(tc.feed, obs).Advisories(context.Background())

			assertFallback(t, tbl)
			assert.Equal(t, []string{tc.reason}, obs.outcomes)
		})
	}
}

func assertFallback(t *testing.T, tbl domain.Table[domain.AdvisoryRecord]) {
	t.Helper()
	require.Equal(t, 15, tbl.Len())
	assert.Equal(t, domain.AdvisoryColumns, tbl.Columns)

	cycle := []string{"Critical", "High", "Medium", "Low"}
	for i, r := range tbl.Rows {
		assert.Equal(t, cycle[i%4], r.Severity, "row %d", i)
		assert.Equal(t, fallbackSummaries[i%10], r.Summary, "row %d", i)
		assert.Equal(t, fixedNow.AddDate(0, 0, -i), r.Published, "row %d", i)
		assert.GreaterOrEqual(t, r.CVSS, 4.0)
		assert.LessOrEqual(t, r.CVSS, 9.5)
	}
}

func TestLocationRisk_Bounds(t *testing.T) {
	tbl := newTestProvider(nil, nil).LocationRisk()

	require.Equal(t, 80, tbl.Len())
	for _, r := range tbl.Rows {
		assert.True(t, r.Hour >= 0 && r.Hour <= 23, "hour %d", r.Hour)
		assert.True(t, r.Day >= 1 && r.Day <= 30, "day %d", r.Day)
		assert.True(t, r.PrivacyRisk >= 10 && r.PrivacyRisk <= 95, "risk %d", r.PrivacyRisk)
	}
}

func TestPhishingTimeline_Months(t *testing.T) {
	tbl := newTestProvider(nil, nil).PhishingTimeline()

	require.Equal(t, 10, tbl.Len())
	assert.Equal(t, time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC), tbl.Rows[0].Month)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), tbl.Rows[9].Month)

	for i, r := range tbl.Rows {
		assert.Equal(t, 1, r.Month.Day())
		if i > 0 {
			assert.True(t, r.Month.After(tbl.Rows[i-1].Month))
		}
		assert.True(t, r.Incidents >= 80 && r.Incidents <= 200)
		assert.True(t, r.DetectionRate >= 0.6 && r.DetectionRate <= 0.9)
	}
}

func TestSeed_Reproducible(t *testing.T) {
	a := newTestProvider(nil, nil).LocationRisk()
	b := newTestProvider(nil, nil).LocationRisk()
	assert.Equal(t, a, b)
}

func TestNormalizeSeverity(t *testing.T) {
	assert.Equal(t, "High", NormalizeSeverity("HIGH"))
	assert.Equal(t, "Low", NormalizeSeverity(" low "))
	assert.Equal(t, "", NormalizeSeverity(""))
}
