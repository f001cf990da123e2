package main

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/infra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func freePort(t *testing.T) int {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	require.NoError(t, lis.Close())
	return port
}

func TestServe_GRPCPortBusyStartsNothing(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := infra.LoadConfig("", nil)
	require.NoError(t, err)

	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()

	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	cfg.GRPC.Port = busy.Addr().(*net.TCPAddr).Port
	cfg.Metrics.Enabled = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = buildApp(cfg, zap.NewNop()).serve(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen gRPC")

	// HTTP-порт остался свободным: сервер не стартовал
	lis, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port))
	require.NoError(t, err)
	lis.Close()
}
