package audit

import "time"

// RenderEvent — запись о рендере одной вкладки. Хранит только метаданные,
// сами таблицы в журнал не попадают.
type RenderEvent struct {
	ID         string    `json:"id"`       // UUID события (совпадает с render_id ответа)
	TraceID    string    `json:"trace_id"` // Сквозной ID запроса
	View       string    `json:"view"`
	Status     string    `json:"status"` // ok / no_data / error
	Rows       int       `json:"rows"`
	Message    string    `json:"message,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
}
