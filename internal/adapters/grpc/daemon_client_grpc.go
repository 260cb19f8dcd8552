package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// DaemonClientGRPC talks to the daemon control service over gRPC
type DaemonClientGRPC struct {
	conn *grpc.ClientConn
}

// NewDaemonClientGRPC creates a new gRPC daemon client
// socketPath should be a Unix domain socket path (e.g., "/tmp/spacetraders-daemon.sock")
func NewDaemonClientGRPC(socketPath string) (*DaemonClientGRPC, error) {
	conn, err := grpc.NewClient(
		"unix:"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon socket: %w", err)
	}
	return &DaemonClientGRPC{conn: conn}, nil
}

// NewDaemonClientFromConn wraps an existing connection
func NewDaemonClientFromConn(conn *grpc.ClientConn) *DaemonClientGRPC {
	return &DaemonClientGRPC{conn: conn}
}

// Close closes the gRPC connection
func (c *DaemonClientGRPC) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *DaemonClientGRPC) invoke(ctx context.Context, method string, fields map[string]interface{}) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, fullMethod(method), in, out); err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}
	return out, nil
}

// StartBehavior asks the daemon to start a behavior on a ship
func (c *DaemonClientGRPC) StartBehavior(ctx context.Context, shipSymbol, behavior, targetResource string) (*StartBehaviorResult, error) {
	out, err := c.invoke(ctx, methodStartBehavior, map[string]interface{}{
		"ship_symbol":     shipSymbol,
		"behavior":        behavior,
		"target_resource": targetResource,
	})
	if err != nil {
		return nil, err
	}
	return &StartBehaviorResult{
		ShipSymbol:     stringField(out, "ship_symbol"),
		Behavior:       stringField(out, "behavior"),
		ContinuationID: stringField(out, "continuation_id"),
		DueAt:          timeField(out, "due_at"),
	}, nil
}

// StopBehavior asks the daemon to stop a ship's behavior
func (c *DaemonClientGRPC) StopBehavior(ctx context.Context, shipSymbol string) (*StopBehaviorResult, error) {
	out, err := c.invoke(ctx, methodStopBehavior, map[string]interface{}{
		"ship_symbol": shipSymbol,
	})
	if err != nil {
		return nil, err
	}
	return &StopBehaviorResult{
		ShipSymbol: stringField(out, "ship_symbol"),
		Cancelled:  intField(out, "cancelled"),
	}, nil
}

// ListContinuations lists pending continuations; an empty ship symbol lists all ships
func (c *DaemonClientGRPC) ListContinuations(ctx context.Context, shipSymbol string) ([]ContinuationInfo, error) {
	out, err := c.invoke(ctx, methodListContinuations, map[string]interface{}{
		"ship_symbol": shipSymbol,
	})
	if err != nil {
		return nil, err
	}
	values := out.GetFields()["continuations"].GetListValue().GetValues()
	infos := make([]ContinuationInfo, 0, len(values))
	for _, v := range values {
		infos = append(infos, continuationInfoFromValue(v))
	}
	return infos, nil
}

// Ping checks that the daemon is alive
func (c *DaemonClientGRPC) Ping(ctx context.Context) (*PingResult, error) {
	out, err := c.invoke(ctx, methodPing, map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	return &PingResult{
		Status:      stringField(out, "status"),
		ArmedTimers: intField(out, "armed_timers"),
	}, nil
}
