package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTable_ColumnsFromRowKeys(t *testing.T) {
	body := `{"rows": [
		{"severity": "High", "summary": "a"},
		{"summary": "b", "severity": "Low", "published": "2024-01-05T10:00:00Z"}
	]}`

	tbl, err := DecodeTable[AdvisoryRecord](strings.NewReader(body))
	require.NoError(t, err)

	// Порядок первого появления, а не алфавитный
	assert.Equal(t, []string{ColSeverity, ColSummary, ColPublished}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.Rows[0].Published.IsZero())
	assert.Equal(t, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC), tbl.Rows[1].Published.UTC())
	assert.Equal(t, []string{ColCVSS}, tbl.MissingColumns(ColSeverity, ColCVSS))
}

func TestDecodeTable_ExplicitColumnsWin(t *testing.T) {
	body := `{"columns": ["hour", "day"], "rows": [{"hour": 5, "day": 10, "privacy_risk": 20}]}`

	tbl, err := DecodeTable[LocationRiskSample](strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, []string{ColHour, ColDay}, tbl.Columns)
	assert.False(t, tbl.HasColumns(ColPrivacyRisk))
	assert.Equal(t, 20, tbl.Rows[0].PrivacyRisk)
}

func TestDecodeTable_Errors(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"rows": [`,
		"row not object": `{"rows": [1]}`,
		"wrong type":     `{"rows": [{"hour": "five"}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeTable[LocationRiskSample](strings.NewReader(body))
			assert.Error(t, err)
		})
	}
}

func TestNewTable_NilRowsBecomeEmpty(t *testing.T) {
	tbl := NewTable[TrendRecord](TrendColumns, nil)
	assert.NotNil(t, tbl.Rows)
	assert.Equal(t, 0, tbl.Len())
	assert.True(t, tbl.HasColumns(TrendColumns...))
}

func TestParseView(t *testing.T) {
	v, err := ParseView("location-risk")
	require.NoError(t, err)
	assert.Equal(t, ViewLocationRisk, v)

	_, err = ParseView("weather")
	assert.Error(t, err)
}
