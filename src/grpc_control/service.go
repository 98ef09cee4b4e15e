package grpc_control

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/pipeline"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ControlService implements DashboardControlServer over the render pipeline
type ControlService struct {
	Dashboard *pipeline.Dashboard
	Logger    *logger.Logger
	started   time.Time
}

// NewControlService creates a new instance of ControlService
func NewControlService(dashboard *pipeline.Dashboard, log *logger.Logger) *ControlService {
	return &ControlService{
		Dashboard: dashboard,
		Logger:    log,
		started:   time.Now(),
	}
}

// -----------------------------------------------------------------------------

// Render decodes a dashboard request from the struct fields and returns the full response.
func (s *ControlService) Render(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req models.MDashboardRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}

	resp, err := s.Dashboard.Render(ctx, req)
	if err != nil {
		s.Logger.Warning("gRPC: render %s failed: %v", req.Ticker, err)
		return nil, statusFor(err)
	}

	out, err := toStruct(resp)
	if err != nil {
		s.Logger.Error("gRPC: failed to encode response: %v", err)
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) Periods(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	periods := make([]interface{}, len(models.PeriodTokens))
	for i, p := range models.PeriodTokens {
		periods[i] = p
	}
	out, err := structpb.NewStruct(map[string]interface{}{
		"periods": periods,
		"default": s.Dashboard.Settings.DefaultPeriod,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) Health(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(map[string]interface{}{
		"status":         "ok",
		"provider":       s.Dashboard.Provider.Name(),
		"uptime_seconds": time.Since(s.started).Seconds(),
		"market_open":    s.Dashboard.MarketOpen(s.Dashboard.Settings.DefaultTicker),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Conversions
// -----------------------------------------------------------------------------

// statusFor maps pipeline errors onto gRPC status codes.
func statusFor(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, helpers.ErrValidation):
		code = codes.InvalidArgument
	case errors.Is(err, helpers.ErrEmptyResult):
		code = codes.NotFound
	case errors.Is(err, helpers.ErrNoOverlap),
		errors.Is(err, helpers.ErrInsufficientData),
		errors.Is(err, helpers.ErrForecastFailed):
		code = codes.FailedPrecondition
	case errors.Is(err, helpers.ErrProvider):
		code = codes.Unavailable
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	}
	return status.Error(code, err.Error())
}

// fromStruct decodes the struct through its JSON form, rejecting unknown fields.
func fromStruct(in *structpb.Struct, dst interface{}) error {
	if in == nil {
		return nil
	}
	raw, err := json.Marshal(in.AsMap())
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// ControlServer runs the gRPC listener for ControlService
type ControlServer struct {
	Addr   string
	Logger *logger.Logger
	server *grpc.Server
}

// NewControlServer registers service on a fresh grpc.Server bound to host:port.
func NewControlServer(host string, port int, service DashboardControlServer, log *logger.Logger) *ControlServer {
	s := grpc.NewServer()
	RegisterDashboardControlServer(s, service)
	return &ControlServer{
		Addr:   fmt.Sprintf("%s:%d", host, port),
		Logger: log,
		server: s,
	}
}

// -----------------------------------------------------------------------------

// Start listens on Addr and serves until Stop.
func (c *ControlServer) Start() error {
	lis, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC on %s: %w", c.Addr, err)
	}
	return c.Serve(lis)
}

// Serve serves on an existing listener.
func (c *ControlServer) Serve(lis net.Listener) error {
	c.Logger.Info("Starting gRPC Control Server on %s", lis.Addr())
	if err := c.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop drains in-flight calls, forcing the stop when ctx expires first.
func (c *ControlServer) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.server.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		c.server.Stop()
		return ctx.Err()
	}
}
