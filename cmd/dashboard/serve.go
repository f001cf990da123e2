package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/console/handler"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/console/server"
	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/engine"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, the gRPC API and the metrics endpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return a.serve(ctx)
	},
}

func (a *app) serve(ctx context.Context) error {
	logger := a.logger

	// 1. Журнал рендеров работает все время жизни процесса
	a.journal.Start()
	defer a.journal.Stop()

	// 2. Порт gRPC занимаем до старта горутин: при ошибке запускать нечего и гасить тоже
	var grpcLis net.Listener
	if a.cfg.GRPC.Enabled {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.GRPC.Port))
		if err != nil {
			return fmt.Errorf("failed to listen gRPC: %w", err)
		}
		grpcLis = lis
	}

	// 3. HTTP API
	dashH := handler.NewDashboardHandler(a.core, a.renderer, logger)
	srv := &http.Server{
		Addr:         a.cfg.Server.Addr(),
		Handler:      server.NewConsoleServer(logger, dashH),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP API started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// 4. Метрики для Prometheus
	var metricsSrv *http.Server
	if a.cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: fmt.Sprintf(":%d", a.cfg.Metrics.Port), Handler: mux}
		g.Go(func() error {
			logger.Info("metrics endpoint started", zap.String("addr", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	// 5. gRPC API
	var grpcSrv *grpc.Server
	if grpcLis != nil {
		lis := grpcLis
		grpcSrv = grpc.NewServer(grpc.UnaryInterceptor(engine.UnaryTracingInterceptor()))
		engine.RegisterDashboardServiceServer(grpcSrv, engine.NewGRPCDashboardServer(a.core))
		g.Go(func() error {
			logger.Info("gRPC API started", zap.String("addr", lis.Addr().String()))
			if err := grpcSrv.Serve(lis); err != nil {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	// 6. Graceful Shutdown: по сигналу или по падению любого из серверов
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("dashboard stopping...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if metricsSrv != nil {
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
			}
		}
		if grpcSrv != nil {
			grpcSrv.GracefulStop()
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("dashboard exited properly")
	return nil
}
