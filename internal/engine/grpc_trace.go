package engine

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// UnaryTracingInterceptor переносит x-trace-id из метаданных вызова в контекст,
// как TracingMiddleware делает для HTTP.
func UnaryTracingInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		var traceID string
		// В gRPC заголовки обычно в нижнем регистре
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get("x-trace-id"); len(ids) > 0 {
				traceID = ids[0]
			}
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}

		// Возвращаем ID клиенту в заголовках ответа
		_ = grpc.SetHeader(ctx, metadata.Pairs("x-trace-id", traceID))

		return handler(WithTraceID(ctx, traceID), req)
	}
}
