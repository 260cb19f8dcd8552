package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name of the daemon
const ServiceName = "spacetraders.daemon.v1.DaemonService"

const (
	methodStartBehavior     = "StartBehavior"
	methodStopBehavior      = "StopBehavior"
	methodListContinuations = "ListContinuations"
	methodPing              = "Ping"
)

// DaemonServiceServer is the server side of the daemon control service.
// Requests and responses are generic structpb messages so no generated code is needed.
type DaemonServiceServer interface {
	StartBehavior(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	StopBehavior(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListContinuations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(srv DaemonServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(name string, method unaryMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(DaemonServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(name),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return method(srv.(DaemonServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// DaemonServiceDesc describes the daemon service for grpc.Server.RegisterService
var DaemonServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DaemonServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: methodStartBehavior,
			Handler: unaryHandler(methodStartBehavior, func(srv DaemonServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
				return srv.StartBehavior(ctx, req)
			}),
		},
		{
			MethodName: methodStopBehavior,
			Handler: unaryHandler(methodStopBehavior, func(srv DaemonServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
				return srv.StopBehavior(ctx, req)
			}),
		},
		{
			MethodName: methodListContinuations,
			Handler: unaryHandler(methodListContinuations, func(srv DaemonServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
				return srv.ListContinuations(ctx, req)
			}),
		},
		{
			MethodName: methodPing,
			Handler: unaryHandler(methodPing, func(srv DaemonServiceServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
				return srv.Ping(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "daemon.proto",
}

// RegisterDaemonServiceServer registers srv on s
func RegisterDaemonServiceServer(s grpc.ServiceRegistrar, srv DaemonServiceServer) {
	s.RegisterService(&DaemonServiceDesc, srv)
}

// ContinuationInfo is the wire view of one continuation
type ContinuationInfo struct {
	ID         string
	ShipSymbol string
	Action     string
	Status     string
	DueAt      time.Time
	LastError  string
}

// StartBehaviorResult reports the first continuation of a started behavior
type StartBehaviorResult struct {
	ShipSymbol     string
	Behavior       string
	ContinuationID string
	DueAt          time.Time
}

// StopBehaviorResult reports how many continuations were cancelled
type StopBehaviorResult struct {
	ShipSymbol string
	Cancelled  int
}

// PingResult reports daemon liveness
type PingResult struct {
	Status      string
	ArmedTimers int
}

func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[key].GetStringValue()
}

func intField(s *structpb.Struct, key string) int {
	if s == nil {
		return 0
	}
	return int(s.GetFields()[key].GetNumberValue())
}

func timeField(s *structpb.Struct, key string) time.Time {
	raw := stringField(s, key)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func continuationInfoToValue(c ContinuationInfo) map[string]interface{} {
	return map[string]interface{}{
		"id":          c.ID,
		"ship_symbol": c.ShipSymbol,
		"action":      c.Action,
		"status":      c.Status,
		"due_at":      c.DueAt.UTC().Format(time.RFC3339),
		"last_error":  c.LastError,
	}
}

func continuationInfoFromValue(v *structpb.Value) ContinuationInfo {
	s := v.GetStructValue()
	return ContinuationInfo{
		ID:         stringField(s, "id"),
		ShipSymbol: stringField(s, "ship_symbol"),
		Action:     stringField(s, "action"),
		Status:     stringField(s, "status"),
		DueAt:      timeField(s, "due_at"),
		LastError:  stringField(s, "last_error"),
	}
}
