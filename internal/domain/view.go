package domain

import "fmt"

// View — одна вкладка дашборда: пара (таблица, график).
type View string

const (
	ViewTrends       View = "trends"
	ViewAdvisories   View = "advisories"
	ViewLocationRisk View = "location-risk"
	ViewPhishing     View = "phishing"
)

// Views — канонический порядок вкладок
var Views = []View{ViewTrends, ViewAdvisories, ViewLocationRisk, ViewPhishing}

func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// ViewResult — то, что уходит слою отображения за один рендер вкладки.
type ViewResult struct {
	View     View        `json:"view"`
	RenderID string      `json:"render_id"`
	Table    any         `json:"table"`
	Chart    ChartResult `json:"chart"`
}
