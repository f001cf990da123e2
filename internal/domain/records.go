package domain

import "time"

// Имена колонок таблиц. Совпадают с JSON-тегами записей,
// по ним шейпер проверяет наличие обязательных данных.
const (
	ColTrend    = "trend"
	ColVolume   = "volume"
	ColCategory = "category"

	ColSeverity  = "severity"
	ColPublished = "published"
	ColSummary   = "summary"
	ColCVSS      = "cvss"

	ColHour        = "hour"
	ColDay         = "day"
	ColPrivacyRisk = "privacy_risk"

	ColMonth         = "month"
	ColIncidents     = "incidents"
	ColDetectionRate = "detection_rate"
)

var (
	TrendColumns        = []string{ColTrend, ColVolume, ColCategory}
	AdvisoryColumns     = []string{ColSeverity, ColPublished, ColSummary, ColCVSS}
	LocationRiskColumns = []string{ColHour, ColDay, ColPrivacyRisk}
	PhishingColumns     = []string{ColMonth, ColIncidents, ColDetectionRate}
)

// Уровни критичности уязвимостей
const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
)

// SeverityCycle — порядок чередования уровней в синтетических данных
var SeverityCycle = []string{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

type TrendRecord struct {
	Trend    string `json:"trend"`
	Volume   int    `json:"volume"`
	Category string `json:"category"`
}

type AdvisoryRecord struct {
	Severity  string    `json:"severity"` // Critical / High / Medium / Low
	Published time.Time `json:"published"`
	Summary   string    `json:"summary"` // Не длиннее MaxSummaryLen символов
	CVSS      float64   `json:"cvss"`    // Синтетическая оценка 4.0–9.5
}

// MaxSummaryLen — предел длины описания уязвимости (в символах)
const MaxSummaryLen = 80

// LocationRiskSample — одна обезличенная точка: час, день месяца и оценка риска
type LocationRiskSample struct {
	Hour        int `json:"hour"`
	Day         int `json:"day"`
	PrivacyRisk int `json:"privacy_risk"`
}

type PhishingMonthRecord struct {
	Month         time.Time `json:"month"` // Первое число месяца (UTC)
	Incidents     int       `json:"incidents"`
	DetectionRate float64   `json:"detection_rate"` // Доля 0..1
}
