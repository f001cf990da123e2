package engine

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func dialBufconn(t *testing.T, core *DashboardCore) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	srv := grpc.NewServer(grpc.UnaryInterceptor(UnaryTracingInterceptor()))
	RegisterDashboardServiceServer(srv, NewGRPCDashboardServer(core))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestGRPC_Render(t *testing.T) {
	core, _, auditor := newTestCore(nil)
	conn := dialBufconn(t, core)

	req, err := structpb.NewStruct(map[string]interface{}{"view": "trends"})
	require.NoError(t, err)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-trace-id", "grpc-trace")
	var header metadata.MD
	out := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, RenderMethod, req, out, grpc.Header(&header)))

	m := out.AsMap()
	assert.Equal(t, "trends", m["view"])
	chart := m["chart"].(map[string]interface{})
	assert.Equal(t, "ok", chart["status"])
	points := chart["chart"].(map[string]interface{})["bubble"].(map[string]interface{})["points"].([]interface{})
	assert.Len(t, points, 6)

	assert.Equal(t, []string{"grpc-trace"}, header.Get("x-trace-id"))
	require.Len(t, auditor.Events(), 1)
	assert.Equal(t, "grpc-trace", auditor.Events()[0].TraceID)
}

func TestGRPC_RenderErrors(t *testing.T) {
	core, _, _ := newTestCore(nil)
	conn := dialBufconn(t, core)

	cases := map[string]struct {
		fields map[string]interface{}
		code   codes.Code
	}{
		"missing view": {map[string]interface{}{}, codes.InvalidArgument},
		"unknown view": {map[string]interface{}{"view": "weather"}, codes.NotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req, err := structpb.NewStruct(tc.fields)
			require.NoError(t, err)

			err = conn.Invoke(context.Background(), RenderMethod, req, new(structpb.Struct))
			require.Error(t, err)
			assert.Equal(t, tc.code, status.Code(err))
		})
	}
}
