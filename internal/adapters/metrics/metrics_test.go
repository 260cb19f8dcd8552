package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropable/spacetraders-api/internal/application/mediator"
)

func TestShipMetricsCollector_RecordsThroughGlobals(t *testing.T) {
	InitRegistry()
	defer func() { Registry = nil; SetGlobalShipCollector(nil) }()

	c := NewShipMetricsCollector()
	require.NoError(t, c.Register())
	SetGlobalShipCollector(c)

	RecordShipAction("dock", "APPLIED")
	RecordShipAction("dock", "APPLIED")
	RecordTrade("IRON_ORE", "SELL", 10, 450)
	RecordFuelConsumption("DRIFT", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.actionsTotal.WithLabelValues("dock", "APPLIED")))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.tradeUnits.WithLabelValues("IRON_ORE", "SELL")))
	assert.Equal(t, 450.0, testutil.ToFloat64(c.tradeCredits.WithLabelValues("SELL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fuelConsumed.WithLabelValues("DRIFT")))
}

func TestGlobals_NoCollectorIsSafe(t *testing.T) {
	SetGlobalShipCollector(nil)
	SetGlobalBehaviorCollector(nil)
	assert.NotPanics(t, func() {
		RecordShipAction("orbit", "NOOP")
		RecordCycle("TRADE_CYCLE", "scheduled", 1)
		RecordContinuationScheduled("TRADE_CYCLE", 5)
	})
}

func TestRegister_NoRegistryIsNoop(t *testing.T) {
	Registry = nil
	assert.NoError(t, NewAPIMetricsCollector().Register())
	assert.False(t, IsEnabled())
}

func TestBehaviorMetricsCollector_PendingGauge(t *testing.T) {
	c := NewBehaviorMetricsCollector(func() int { return 3 })
	assert.Equal(t, 3.0, testutil.ToFloat64(c.pendingContinuations))

	c.RecordContinuationScheduled("EXTRACT_UNTIL_FULL", -5)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.continuationsTotal.WithLabelValues("EXTRACT_UNTIL_FULL")))
}

type dockShipCommand struct{}

type declinedResult struct{}

func (declinedResult) Err() error { return errors.New("rejected") }

func TestPrometheusMiddleware_RecordsRequestStatus(t *testing.T) {
	c := NewCommandMetricsCollector()
	mw := PrometheusMiddleware(c)

	_, err := mw(context.Background(), &dockShipCommand{}, func(ctx context.Context, r mediator.Request) (mediator.Response, error) {
		return nil, errors.New("boom")
	})
	assert.Error(t, err)

	_, err = mw(context.Background(), &dockShipCommand{}, func(ctx context.Context, r mediator.Request) (mediator.Response, error) {
		return declinedResult{}, nil
	})
	assert.NoError(t, err)

	_, err = mw(context.Background(), &dockShipCommand{}, func(ctx context.Context, r mediator.Request) (mediator.Response, error) {
		return "done", nil
	})
	assert.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.total.WithLabelValues("dockShipCommand", statusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.total.WithLabelValues("dockShipCommand", statusDeclined)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.total.WithLabelValues("dockShipCommand", statusOK)))
}

func TestMarketMetricsCollector_UpdatesOpportunities(t *testing.T) {
	source := func(ctx context.Context) ([]SystemOpportunities, error) {
		return []SystemOpportunities{{SystemSymbol: "X1-S", Pairs: 4, ProfitablePairs: 2, BestEfficiency: 3.7}}, nil
	}
	c := NewMarketMetricsCollector(source, time.Hour)
	c.ctx = context.Background()

	c.updateOpportunities()
	c.RecordMarketSync(time.Second, 12, nil)

	assert.Equal(t, 4.0, testutil.ToFloat64(c.tradePairs.WithLabelValues("X1-S")))
	assert.Equal(t, 3.7, testutil.ToFloat64(c.bestEfficiency.WithLabelValues("X1-S")))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.tradeGoodsUpserted))
}

func TestHandler_ServesRegistry(t *testing.T) {
	InitRegistry()
	defer func() { Registry = nil; SetGlobalBehaviorCollector(nil) }()

	c := NewBehaviorMetricsCollector(func() int { return 2 })
	require.NoError(t, c.Register())

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "spacetraders_daemon_continuations_pending 2")
}

func TestHandler_DisabledRegistry(t *testing.T) {
	Registry = nil

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
