package engine

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/RichyRichard/mtech-cybersecurity-dashboard-2/internal/domain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	DashboardServiceName = "dashboard.v1.DashboardService"
	RenderMethod         = "/" + DashboardServiceName + "/Render"
)

// DashboardServiceServer — контракт gRPC-сервиса. Запрос и ответ — google.protobuf.Struct,
// поэтому сгенерированный код не нужен.
type DashboardServiceServer interface {
	Render(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var dashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: DashboardServiceName,
	HandlerType: (*DashboardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Render", Handler: renderHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dashboard/v1/dashboard.proto",
}

func renderHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardServiceServer).Render(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RenderMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DashboardServiceServer).Render(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RegisterDashboardServiceServer регистрирует сервис на gRPC-сервере
func RegisterDashboardServiceServer(s grpc.ServiceRegistrar, srv DashboardServiceServer) {
	s.RegisterService(&dashboardServiceDesc, srv)
}

type GRPCDashboardServer struct {
	core *DashboardCore
}

func NewGRPCDashboardServer(core *DashboardCore) *GRPCDashboardServer {
	return &GRPCDashboardServer{core: core}
}

// Render принимает {"view": "<name>"} и возвращает ViewResult в виде Struct.
func (s *GRPCDashboardServer) Render(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name := req.GetFields()["view"].GetStringValue()
	if name == "" {
		return nil, status.Error(codes.InvalidArgument, "view is required")
	}
	view, err := domain.ParseView(name)
	if err != nil {
		return nil, status.Error(codes.NotFound, err.Error())
	}

	// Тот же пайплайн, что и для HTTP
	res, err := s.core.Render(ctx, view)
	if err != nil {
		if errors.Is(err, ErrUnknownView) {
			return nil, status.Error(codes.NotFound, err.Error())
		}
		return nil, status.Error(codes.Internal, err.Error())
	}

	// Собираем ответ через JSON: те же имена полей, что и в HTTP API
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	return out, nil
}
