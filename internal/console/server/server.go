package server

import (
	"net/http"
	"time"

	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/console/handler"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/engine"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type ConsoleServer struct {
	router *chi.Mux
	logger *zap.Logger

	dashHandler *handler.DashboardHandler // /api/v1/...
}

// NewConsoleServer инициализирует HTTP API дашборда со всеми зависимостями
func NewConsoleServer(logger *zap.Logger, dashH *handler.DashboardHandler) *ConsoleServer {
	s := &ConsoleServer{
		router:      chi.NewRouter(),
		logger:      logger.Named("console-api"),
		dashHandler: dashH,
	}

	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(engine.TracingMiddleware)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	// --- 2. Служебное ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// --- 3. Вкладки дашборда ---
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dashboard", s.dashHandler.GetDashboard)

		r.Route("/views", func(r chi.Router) {
			r.Get("/", s.dashHandler.ListViews)
			r.Route("/{view}", func(r chi.Router) {
				r.Get("/", s.dashHandler.GetView)
				r.Get("/chart.png", s.dashHandler.GetChartPNG)
				r.Post("/shape", s.dashHandler.ShapeTable) // Таблица от клиента -> ChartResult
			})
		})
	})
}

// requestLogger пишет одну строку zap на запрос
func (s *ConsoleServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("trace_id", engine.TraceIDFromContext(r.Context())),
		)
	})
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
