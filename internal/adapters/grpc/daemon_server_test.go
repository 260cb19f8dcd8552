package grpc_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ggrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/ropable/spacetraders-api/internal/adapters/grpc"
	appBehavior "github.com/ropable/spacetraders-api/internal/application/behavior"
	"github.com/ropable/spacetraders-api/internal/application/mediator"
	"github.com/ropable/spacetraders-api/internal/domain/behavior"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/test/helpers"
)

type daemonHarness struct {
	client *grpc.DaemonClientGRPC
	repo   *helpers.MockContinuationRepository
	starts []*appBehavior.StartBehaviorCommand
}

func startDaemon(t *testing.T) *daemonHarness {
	t.Helper()
	h := &daemonHarness{repo: helpers.NewMockContinuationRepository()}

	med := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*appBehavior.StartBehaviorCommand](med, mediator.HandlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			cmd := request.(*appBehavior.StartBehaviorCommand)
			h.starts = append(h.starts, cmd)
			if cmd.Behavior == navigation.BehaviorHaul {
				return nil, errors.New("unsupported behavior: HAUL")
			}
			c, err := behavior.NewContinuation(cmd.ShipSymbol, behavior.ActionTradeCycle, nil, helpers.Epoch, helpers.Epoch)
			if err != nil {
				return nil, err
			}
			return &appBehavior.StartBehaviorResponse{ShipSymbol: cmd.ShipSymbol, Behavior: cmd.Behavior, Continuation: c}, nil
		})))
	require.NoError(t, mediator.RegisterHandler[*appBehavior.StopBehaviorCommand](med, mediator.HandlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			cmd := request.(*appBehavior.StopBehaviorCommand)
			cancelled, err := h.repo.CancelByShip(ctx, cmd.ShipSymbol)
			if err != nil {
				return nil, err
			}
			return &appBehavior.StopBehaviorResponse{ShipSymbol: cmd.ShipSymbol, Cancelled: cancelled}, nil
		})))

	lis := bufconn.Listen(1024 * 1024)
	server := grpc.NewDaemonServerWithListener(med, nil, h.repo, lis, nil)
	go func() { _ = server.Start() }()
	t.Cleanup(server.Shutdown)

	conn, err := ggrpc.NewClient("passthrough:///bufnet",
		ggrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		ggrpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	h.client = grpc.NewDaemonClientFromConn(conn)
	t.Cleanup(func() { _ = h.client.Close() })
	return h
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestDaemonServer_StartBehavior(t *testing.T) {
	h := startDaemon(t)

	result, err := h.client.StartBehavior(testContext(t), "AGENT-1", "TRADE", "")

	require.NoError(t, err)
	assert.Equal(t, "AGENT-1", result.ShipSymbol)
	assert.Equal(t, "TRADE", result.Behavior)
	assert.NotEmpty(t, result.ContinuationID)
	assert.True(t, result.DueAt.Equal(helpers.Epoch))
	require.Len(t, h.starts, 1)
	assert.Equal(t, navigation.BehaviorTrade, h.starts[0].Behavior)
}

func TestDaemonServer_StartBehaviorRejectsBadInput(t *testing.T) {
	h := startDaemon(t)

	_, err := h.client.StartBehavior(testContext(t), "", "TRADE", "")
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(errors.Unwrap(err)))

	_, err = h.client.StartBehavior(testContext(t), "AGENT-1", "DANCE", "")
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(errors.Unwrap(err)))

	_, err = h.client.StartBehavior(testContext(t), "AGENT-1", "HAUL", "")
	require.Error(t, err)
	assert.Equal(t, codes.FailedPrecondition, status.Code(errors.Unwrap(err)))
}

func TestDaemonServer_StopBehaviorAndList(t *testing.T) {
	h := startDaemon(t)
	ctx := testContext(t)

	for _, ship := range []string{"AGENT-1", "AGENT-1", "AGENT-2"} {
		c, err := behavior.NewContinuation(ship, behavior.ActionTradeCycle, nil, helpers.Epoch.Add(time.Minute), helpers.Epoch)
		require.NoError(t, err)
		require.NoError(t, h.repo.Save(ctx, c))
	}

	all, err := h.client.ListContinuations(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	stopped, err := h.client.StopBehavior(ctx, "AGENT-1")
	require.NoError(t, err)
	assert.Equal(t, 2, stopped.Cancelled)

	remaining, err := h.client.ListContinuations(ctx, "AGENT-2")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "AGENT-2", remaining[0].ShipSymbol)
	assert.Equal(t, "TRADE_CYCLE", remaining[0].Action)
	assert.True(t, remaining[0].DueAt.Equal(helpers.Epoch.Add(time.Minute)))
}

func TestDaemonServer_Ping(t *testing.T) {
	h := startDaemon(t)

	pong, err := h.client.Ping(testContext(t))

	require.NoError(t, err)
	assert.Equal(t, "ok", pong.Status)
	assert.Equal(t, 0, pong.ArmedTimers)
}
