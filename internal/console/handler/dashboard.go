package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const renderIDHeader = "X-Render-ID"

// maxShapeBody — предел тела запроса для присланной клиентом таблицы
const maxShapeBody = 1 << 20

// DashboardService Описываем, что нам нужно от ядра
type DashboardService interface {
	Render(ctx context.Context, view domain.View) (domain.ViewResult, error)
	RenderAll(ctx context.Context) ([]domain.ViewResult, error)
	Shape(ctx context.Context, view domain.View, body io.Reader) (domain.ViewResult, error)
}

// ChartRenderer превращает результат шейпинга в картинку
type ChartRenderer interface {
	Render(w io.Writer, res domain.ChartResult) error
}

type DashboardHandler struct {
	service  DashboardService
	renderer ChartRenderer
	logger   *zap.Logger
}

func NewDashboardHandler(s DashboardService, r ChartRenderer, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{service: s, renderer: r, logger: logger.Named("dashboard-handler")}
}

// ListViews GET /api/v1/views
func (h *DashboardHandler) ListViews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]domain.View{"views": domain.Views})
}

// GetDashboard GET /api/v1/dashboard — все вкладки в каноническом порядке
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.RenderAll(r.Context())
	if err != nil {
		h.logger.Error("failed to render dashboard", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render dashboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]domain.ViewResult{"views": results})
}

// GetView GET /api/v1/views/{view}
func (h *DashboardHandler) GetView(w http.ResponseWriter, r *http.Request) {
	view, ok := h.viewParam(w, r)
	if !ok {
		return
	}

	res, err := h.service.Render(r.Context(), view)
	if err != nil {
		h.logger.Error("failed to render view", zap.String("view", string(view)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render view")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetChartPNG GET /api/v1/views/{view}/chart.png
// Заглушки тоже отдаются картинкой со статусом 200: это нормальный исход рендера.
func (h *DashboardHandler) GetChartPNG(w http.ResponseWriter, r *http.Request) {
	view, ok := h.viewParam(w, r)
	if !ok {
		return
	}

	res, err := h.service.Render(r.Context(), view)
	if err != nil {
		h.logger.Error("failed to render view", zap.String("view", string(view)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render view")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set(renderIDHeader, res.RenderID)
	w.Header().Set("X-Chart-Status", string(res.Chart.Status))
	if err := h.renderer.Render(w, res.Chart); err != nil {
		// Заголовки уже ушли, остается только залогировать
		h.logger.Warn("failed to write chart image", zap.String("view", string(view)), zap.Error(err))
	}
}

// ShapeTable POST /api/v1/views/{view}/shape
// Тело ответа — ChartResult, ID рендера (он же ID события журнала) — в X-Render-ID.
func (h *DashboardHandler) ShapeTable(w http.ResponseWriter, r *http.Request) {
	view, ok := h.viewParam(w, r)
	if !ok {
		return
	}

	res, err := h.service.Shape(r.Context(), view, http.MaxBytesReader(w, r.Body, maxShapeBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "table is too large")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set(renderIDHeader, res.RenderID)
	writeJSON(w, http.StatusOK, res.Chart)
}

func (h *DashboardHandler) viewParam(w http.ResponseWriter, r *http.Request) (domain.View, bool) {
	view, err := domain.ParseView(chi.URLParam(r, "view"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return view, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
