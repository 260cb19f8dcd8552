package grpc

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	appBehavior "github.com/ropable/spacetraders-api/internal/application/behavior"
	"github.com/ropable/spacetraders-api/internal/application/common"
	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/domain/behavior"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
)

// DaemonServer implements the gRPC daemon service.
// Handles CLI requests and owns the continuation scheduler for the process lifetime.
type DaemonServer struct {
	mediator      mediator.Mediator
	scheduler     *ContinuationScheduler
	continuations behavior.ContinuationRepository
	logger        common.Logger
	listener      net.Listener

	// Shutdown coordination
	shutdownChan chan os.Signal
	done         chan struct{}
	closeOnce    sync.Once
}

// NewDaemonServer creates a daemon server listening on a unix socket
func NewDaemonServer(
	med mediator.Mediator,
	scheduler *ContinuationScheduler,
	continuations behavior.ContinuationRepository,
	socketPath string,
	logger common.Logger,
) (*DaemonServer, error) {
	// Remove existing socket file if present
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	// Owner only
	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	server := NewDaemonServerWithListener(med, scheduler, continuations, listener, logger)
	signal.Notify(server.shutdownChan, os.Interrupt, syscall.SIGTERM)
	return server, nil
}

// NewDaemonServerWithListener creates a daemon server on an existing listener.
// No signal handling is installed; call Shutdown to stop it.
func NewDaemonServerWithListener(
	med mediator.Mediator,
	scheduler *ContinuationScheduler,
	continuations behavior.ContinuationRepository,
	listener net.Listener,
	logger common.Logger,
) *DaemonServer {
	if logger == nil {
		logger = common.LoggerFromContext(context.Background())
	}
	return &DaemonServer{
		mediator:      med,
		scheduler:     scheduler,
		continuations: continuations,
		logger:        logger,
		listener:      listener,
		shutdownChan:  make(chan os.Signal, 1),
		done:          make(chan struct{}),
	}
}

// Start begins serving gRPC requests and blocks until shutdown
func (s *DaemonServer) Start() error {
	s.logger.Log("INFO", "daemon server listening", map[string]interface{}{
		"address": s.listener.Addr().String(),
	})

	go s.handleShutdown()

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(s.loggingInterceptor))
	RegisterDaemonServiceServer(grpcServer, s)

	errChan := make(chan error, 1)
	go func() {
		if err := grpcServer.Serve(s.listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-s.done:
		s.logger.Log("INFO", "initiating graceful shutdown of gRPC server", nil)
		grpcServer.GracefulStop()
		return nil
	}
}

// Shutdown stops the daemon as if it received SIGTERM
func (s *DaemonServer) Shutdown() {
	select {
	case s.shutdownChan <- syscall.SIGTERM:
	default:
	}
}

func (s *DaemonServer) handleShutdown() {
	<-s.shutdownChan
	s.logger.Log("INFO", "shutdown signal received, stopping daemon", nil)

	signal.Stop(s.shutdownChan)
	if s.scheduler != nil {
		s.scheduler.Stop()
	}

	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *DaemonServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	started := time.Now()
	resp, err := handler(common.WithLogger(ctx, s.logger), req)
	metadata := map[string]interface{}{
		"method":   info.FullMethod,
		"duration": time.Since(started).String(),
	}
	if err != nil {
		metadata["error"] = err.Error()
		s.logger.Log("WARN", "daemon request failed", metadata)
	} else {
		s.logger.Log("DEBUG", "daemon request served", metadata)
	}
	return resp, err
}

// StartBehavior annotates a ship with a behavior and schedules its first step
func (s *DaemonServer) StartBehavior(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	shipSymbol := stringField(req, "ship_symbol")
	if shipSymbol == "" {
		return nil, status.Error(codes.InvalidArgument, "ship_symbol is required")
	}
	b, err := navigation.ParseBehavior(stringField(req, "behavior"))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	response, err := s.mediator.Send(ctx, &appBehavior.StartBehaviorCommand{
		ShipSymbol:     shipSymbol,
		Behavior:       b,
		TargetResource: stringField(req, "target_resource"),
	})
	if err != nil {
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	started, ok := response.(*appBehavior.StartBehaviorResponse)
	if !ok {
		return nil, status.Error(codes.Internal, "unexpected response type from StartBehaviorCommand")
	}

	fields := map[string]interface{}{
		"ship_symbol": started.ShipSymbol,
		"behavior":    string(started.Behavior),
	}
	if started.Continuation != nil {
		fields["continuation_id"] = started.Continuation.ID
		fields["due_at"] = started.Continuation.DueAt.UTC().Format(time.RFC3339)
	}
	return newStruct(fields)
}

// StopBehavior cancels a ship's pending continuations and clears its behavior
func (s *DaemonServer) StopBehavior(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	shipSymbol := stringField(req, "ship_symbol")
	if shipSymbol == "" {
		return nil, status.Error(codes.InvalidArgument, "ship_symbol is required")
	}

	response, err := s.mediator.Send(ctx, &appBehavior.StopBehaviorCommand{ShipSymbol: shipSymbol})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	stopped, ok := response.(*appBehavior.StopBehaviorResponse)
	if !ok {
		return nil, status.Error(codes.Internal, "unexpected response type from StopBehaviorCommand")
	}

	return newStruct(map[string]interface{}{
		"ship_symbol": stopped.ShipSymbol,
		"cancelled":   len(stopped.Cancelled),
	})
}

// ListContinuations lists pending continuations, optionally for one ship
func (s *DaemonServer) ListContinuations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var (
		pending []*behavior.Continuation
		err     error
	)
	if shipSymbol := stringField(req, "ship_symbol"); shipSymbol != "" {
		pending, err = s.continuations.ListPendingByShip(ctx, shipSymbol)
	} else {
		pending, err = s.continuations.ListPending(ctx)
	}
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}

	items := make([]interface{}, 0, len(pending))
	for _, c := range pending {
		items = append(items, continuationInfoToValue(ContinuationInfo{
			ID:         c.ID,
			ShipSymbol: c.ShipSymbol,
			Action:     string(c.Action),
			Status:     string(c.Status),
			DueAt:      c.DueAt,
			LastError:  c.LastError,
		}))
	}
	return newStruct(map[string]interface{}{"continuations": items})
}

// Ping reports liveness and the number of armed timers
func (s *DaemonServer) Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	armed := 0
	if s.scheduler != nil {
		armed = s.scheduler.PendingCount()
	}
	return newStruct(map[string]interface{}{
		"status":       "ok",
		"armed_timers": armed,
	})
}

func newStruct(fields map[string]interface{}) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode response: %v", err))
	}
	return out, nil
}

var _ DaemonServiceServer = (*DaemonServer)(nil)
