package provider

/*
Пакет provider готовит по одной таблице на вкладку дашборда.
Три вкладки синтетические, вкладка уязвимостей делает один сетевой запрос
и при любом сбое подменяет ответ детерминированным синтетическим набором.
*/

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/connectors"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/domain"
	"go.uber.org/zap"
)

// Диапазоны синтетических данных
const (
	locationSamples = 80

	minHour, maxHour = 0, 23
	minDay, maxDay   = 1, 30
	minRisk, maxRisk = 10, 95

	minIncidents, maxIncidents = 80, 200
	minDetection, maxDetection = 0.6, 0.9
	phishingMonths             = 10

	minCVSS, maxCVSS = 4.0, 9.5

	defaultMaxAdvisories = 15
	defaultSeverity      = "medium"
)

// Начало фишинговой ленты; окно — июнь 2023 … март 2024 включительно
var phishingFrom = time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)

// fallbackSummaries — каталог описаний для синтетических уязвимостей
var fallbackSummaries = []string{
	"Remote code execution via crafted template input",
	"SQL injection in search query parameter",
	"Cross-site scripting in user profile rendering",
	"Authentication bypass through session fixation",
	"Path traversal in file download endpoint",
	"Server-side request forgery in webhook handler",
	"Insecure deserialization of cached session data",
	"Denial of service through unbounded regex backtracking",
	"Sensitive token leakage in debug logs",
	"Privilege escalation via misconfigured role mapping",
}

// AdvisorySource — внешний источник уязвимостей (GitHub или обертка надежности над ним).
type AdvisorySource interface {
	FetchAdvisories(ctx context.Context) ([]connectors.RawAdvisory, error)
}

// FeedObserver получает исход каждой попытки чтения ленты ("ok" или причина отказа).
type FeedObserver interface {
	ObserveFeed(outcome string)
}

type Config struct {
	Seed          uint64 // 0 — недетерминированный генератор
	MaxAdvisories int
	Now           func() time.Time // Часы; для тестов
}

type Provider struct {
	feed          AdvisorySource
	observer      FeedObserver
	rnd           *lockedRand
	now           func() time.Time
	maxAdvisories int
	logger        *zap.Logger
}

func New(feed AdvisorySource, cfg Config, observer FeedObserver, logger *zap.Logger) *Provider {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	limit := cfg.MaxAdvisories
	if limit <= 0 {
		limit = defaultMaxAdvisories
	}
	return &Provider{
		feed:          feed,
		observer:      observer,
		rnd:           newRand(cfg.Seed),
		now:           now,
		maxAdvisories: limit,
		logger:        logger.Named("provider"),
	}
}

// Trends — фиксированный набор из шести трендов.
func (p *Provider) Trends() domain.Table[domain.TrendRecord] {
	return domain.NewTable(domain.TrendColumns, []domain.TrendRecord{
		{Trend: "#DataPrivacy", Volume: 14000, Category: "Technology"},
		{Trend: "#CyberSecurity", Volume: 22000, Category: "Technology"},
		{Trend: "#OnlineSafety", Volume: 9000, Category: "Social"},
		{Trend: "#DigitalEthics", Volume: 6000, Category: "Education"},
		{Trend: "#GDPR", Volume: 12000, Category: "Legal"},
		{Trend: "#Phishing", Volume: 8000, Category: "Security"},
	})
}

// Advisories делает одну попытку чтения ленты. Ошибка наружу не выходит:
// при любом сбое возвращается синтетический набор из 15 записей.
func (p *Provider) Advisories(ctx context.Context) domain.Table[domain.AdvisoryRecord] {
	now := p.now()

	records, err := p.liveAdvisories(ctx, now)
	if err != nil {
		reason := connectors.FailureReason(err)
		p.observe(reason)
		p.logger.Warn("advisory feed unavailable, using synthetic records",
			zap.String("reason", reason),
			zap.Error(err))
		return p.FallbackAdvisories(now)
	}

	p.observe("ok")
	p.logger.Debug("advisory feed fetched", zap.Int("count", len(records)))
	return domain.NewTable(domain.AdvisoryColumns, records)
}

func (p *Provider) liveAdvisories(ctx context.Context, now time.Time) ([]domain.AdvisoryRecord, error) {
	if p.feed == nil {
		return nil, &connectors.FeedError{Reason: connectors.ReasonTransport, Cause: fmt.Errorf("feed is not configured")}
	}

	items, err := p.feed.FetchAdvisories(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) > p.maxAdvisories {
		items = items[:p.maxAdvisories]
	}

	records := make([]domain.AdvisoryRecord, 0, len(items))
	for i, item := range items {
		rec, err := p.toRecord(item, now)
		if err != nil {
			return nil, &connectors.FeedError{Reason: connectors.ReasonDecode, Cause: fmt.Errorf("item %d: %w", i, err)}
		}
		records = append(records, rec)
	}
	return records, nil
}

// toRecord переводит элемент ленты в запись. CVSS из ленты не используется,
// оценка всегда синтетическая.
func (p *Provider) toRecord(item connectors.RawAdvisory, now time.Time) (domain.AdvisoryRecord, error) {
	severity := defaultSeverity
	if item.Severity != nil && *item.Severity != "" {
		severity = *item.Severity
	}

	published := now
	if item.PublishedAt != nil && *item.PublishedAt != "" {
		t, err := time.Parse(time.RFC3339, *item.PublishedAt)
		if err != nil {
			return domain.AdvisoryRecord{}, fmt.Errorf("published_at: %w", err)
		}
		published = t
	}

	var summary string
	if item.Summary != nil {
		summary = truncate(*item.Summary, domain.MaxSummaryLen)
	}

	return domain.AdvisoryRecord{
		Severity:  NormalizeSeverity(severity),
		Published: published,
		Summary:   summary,
		CVSS:      p.rnd.floatBetween(minCVSS, maxCVSS),
	}, nil
}

// FallbackAdvisories — 15 записей за последние 15 дней: уровни по кругу
// Critical, High, Medium, Low, описания по кругу из каталога. Никогда не падает.
func (p *Provider) FallbackAdvisories(now time.Time) domain.Table[domain.AdvisoryRecord] {
	records := make([]domain.AdvisoryRecord, 0, defaultMaxAdvisories)
	for i := 0; i < defaultMaxAdvisories; i++ {
		records = append(records, domain.AdvisoryRecord{
			Severity:  domain.SeverityCycle[i%len(domain.SeverityCycle)],
			Published: now.AddDate(0, 0, -i),
			Summary:   fallbackSummaries[i%len(fallbackSummaries)],
			CVSS:      p.rnd.floatBetween(minCVSS, maxCVSS),
		})
	}
	return domain.NewTable(domain.AdvisoryColumns, records)
}

// LocationRisk — 80 независимых точек; пары (час, день) могут повторяться.
func (p *Provider) LocationRisk() domain.Table[domain.LocationRiskSample] {
	rows := make([]domain.LocationRiskSample, 0, locationSamples)
	for i := 0; i < locationSamples; i++ {
		rows = append(rows, domain.LocationRiskSample{
			Hour:        p.rnd.intBetween(minHour, maxHour),
			Day:         p.rnd.intBetween(minDay, maxDay),
			PrivacyRisk: p.rnd.intBetween(minRisk, maxRisk),
		})
	}
	return domain.NewTable(domain.LocationRiskColumns, rows)
}

// PhishingTimeline — по одной строке на месяц, первое число месяца, по возрастанию.
func (p *Provider) PhishingTimeline() domain.Table[domain.PhishingMonthRecord] {
	rows := make([]domain.PhishingMonthRecord, 0, phishingMonths)
	for i := 0; i < phishingMonths; i++ {
		rows = append(rows, domain.PhishingMonthRecord{
			Month:         phishingFrom.AddDate(0, i, 0),
			Incidents:     p.rnd.intBetween(minIncidents, maxIncidents),
			DetectionRate: p.rnd.floatBetween(minDetection, maxDetection),
		})
	}
	return domain.NewTable(domain.PhishingColumns, rows)
}

func (p *Provider) observe(outcome string) {
	if p.observer != nil {
		p.observer.ObserveFeed(outcome)
	}
}

// NormalizeSeverity приводит уровень к виду "High": первая буква заглавная, остальные строчные.
func NormalizeSeverity(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return strings.ToUpper(string(r)) + strings.ToLower(s[size:])
}

// truncate обрезает строку по символам, а не по байтам.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
