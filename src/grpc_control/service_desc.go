package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Full method names of dashboard.DashboardControl.
const (
	ServiceName           = "dashboard.DashboardControl"
	RenderFullMethodName  = "/" + ServiceName + "/Render"
	PeriodsFullMethodName = "/" + ServiceName + "/Periods"
	HealthFullMethodName  = "/" + ServiceName + "/Health"
)

// DashboardControlServer is the server API for dashboard.DashboardControl.
// Messages are protobuf well-known types so no generated code is needed.
type DashboardControlServer interface {
	Render(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Periods(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Health(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterDashboardControlServer attaches srv to s.
func RegisterDashboardControlServer(s grpc.ServiceRegistrar, srv DashboardControlServer) {
	s.RegisterService(&DashboardControl_ServiceDesc, srv)
}

// -----------------------------------------------------------------------------

func _DashboardControl_Render_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardControlServer).Render(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RenderFullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DashboardControlServer).Render(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _DashboardControl_Periods_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardControlServer).Periods(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PeriodsFullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DashboardControlServer).Periods(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _DashboardControl_Health_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardControlServer).Health(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: HealthFullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DashboardControlServer).Health(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// DashboardControl_ServiceDesc is the grpc.ServiceDesc for dashboard.DashboardControl.
var DashboardControl_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Render", Handler: _DashboardControl_Render_Handler},
		{MethodName: "Periods", Handler: _DashboardControl_Periods_Handler},
		{MethodName: "Health", Handler: _DashboardControl_Health_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dashboard_control.proto",
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

type DashboardControlClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardControlClient(cc grpc.ClientConnInterface) *DashboardControlClient {
	return &DashboardControlClient{cc: cc}
}

func (c *DashboardControlClient) Render(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RenderFullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardControlClient) Periods(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, PeriodsFullMethodName, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardControlClient) Health(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, HealthFullMethodName, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
