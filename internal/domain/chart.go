package domain

// ResultStatus различает нормальный график и две заглушки:
// no_data (информационная) и error (сбой трансформации).
type ResultStatus string

const (
	StatusOK     ResultStatus = "ok"
	StatusNoData ResultStatus = "no_data"
	StatusError  ResultStatus = "error"
)

type ChartKind string

const (
	KindBubble     ChartKind = "bubble"
	KindStackedBar ChartKind = "stacked_bar"
	KindHeatmap    ChartKind = "heatmap"
	KindHistogram  ChartKind = "histogram"
	KindDualAxis   ChartKind = "dual_axis"
)

// ChartResult — итог шейпинга. Операции шейпера никогда не паникуют и не возвращают error:
// любой сбой превращается в заглушку с человекочитаемым сообщением.
type ChartResult struct {
	Status  ResultStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Chart   *Chart       `json:"chart,omitempty"`
}

func Ok(c Chart) ChartResult {
	return ChartResult{Status: StatusOK, Chart: &c}
}

func NoData(reason string) ChartResult {
	return ChartResult{Status: StatusNoData, Message: reason}
}

func Failed(reason string) ChartResult {
	return ChartResult{Status: StatusError, Message: reason}
}

func (r ChartResult) IsPlaceholder() bool { return r.Status != StatusOK }

type Axis struct {
	Title string `json:"title"`
}

// Chart — спецификация графика для внешнего слоя отображения.
// Заполнено ровно одно из полей данных, соответствующее Kind.
type Chart struct {
	Kind   ChartKind `json:"kind"`
	Title  string    `json:"title"`
	XAxis  Axis      `json:"x_axis"`
	YAxis  Axis      `json:"y_axis"`
	Y2Axis *Axis     `json:"y2_axis,omitempty"` // Только для двухосевого графика

	Bubble    *BubbleData    `json:"bubble,omitempty"`
	Stacked   *StackedData   `json:"stacked,omitempty"`
	Heatmap   *HeatmapData   `json:"heatmap,omitempty"`
	Histogram *HistogramData `json:"histogram,omitempty"`
	DualAxis  *DualAxisData  `json:"dual_axis,omitempty"`
}

type BubblePoint struct {
	Label    string  `json:"label"`    // Подпись при наведении (тренд)
	Category string  `json:"category"` // Ось X и цвет
	Y        float64 `json:"y"`
	Size     float64 `json:"size"`
}

type BubbleData struct {
	Categories []string      `json:"categories"` // В порядке первого появления
	Points     []BubblePoint `json:"points"`
}

type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// StackedData — столбцы по категориям X, каждая серия — отдельный слой стека.
type StackedData struct {
	Categories []string `json:"categories"`
	Series     []Series `json:"series"`
}

// HeatmapData: Z[i][j] — значение для Y[i] (час) и X[j] (день); nil — нет данных в ячейке.
type HeatmapData struct {
	X []int        `json:"x"`
	Y []int        `json:"y"`
	Z [][]*float64 `json:"z"`
}

type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type HistogramData struct {
	Field string         `json:"field"`
	Bins  []HistogramBin `json:"bins"`
}

// DualAxisData — две серии на общей оси X, вторая — на независимой правой оси Y.
type DualAxisData struct {
	Labels    []string `json:"labels"`
	Primary   Series   `json:"primary"`
	Secondary Series   `json:"secondary"`
}
