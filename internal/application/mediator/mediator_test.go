package mediator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
)

type pingQuery struct{ Value string }

type pongResponse struct{ Value string }

func TestMediator_DispatchesToRegisteredHandler(t *testing.T) {
	m := mediator.NewMediator()
	require.NoError(t, mediator.RegisterHandler[*pingQuery](m, mediator.HandlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			return &pongResponse{Value: request.(*pingQuery).Value}, nil
		})))

	resp, err := m.Send(context.Background(), &pingQuery{Value: "hello"})

	require.NoError(t, err)
	assert.Equal(t, "hello", resp.(*pongResponse).Value)
}

func TestMediator_RejectsDuplicateAndUnknown(t *testing.T) {
	m := mediator.NewMediator()
	h := mediator.HandlerFunc(func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
		return nil, nil
	})
	require.NoError(t, mediator.RegisterHandler[*pingQuery](m, h))
	assert.Error(t, mediator.RegisterHandler[*pingQuery](m, h))

	_, err := m.Send(context.Background(), &pongResponse{})
	assert.Error(t, err)

	_, err = m.Send(context.Background(), nil)
	assert.Error(t, err)
}

func TestMediator_MiddlewareOrder(t *testing.T) {
	m := mediator.NewMediator()
	var calls []string
	require.NoError(t, mediator.RegisterHandler[*pingQuery](m, mediator.HandlerFunc(
		func(ctx context.Context, request mediator.Request) (mediator.Response, error) {
			calls = append(calls, "handler")
			return nil, errors.New("boom")
		})))
	for _, name := range []string{"outer", "inner"} {
		name := name
		m.Use(func(ctx context.Context, request mediator.Request, next mediator.HandlerFunc) (mediator.Response, error) {
			calls = append(calls, name)
			return next(ctx, request)
		})
	}

	_, err := m.Send(context.Background(), &pingQuery{})

	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"outer", "inner", "handler"}, calls)
}
