package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

var testEpoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*SpaceTradersClient, *shared.MockClock) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	clock := shared.NewMockClock(testEpoch)
	client := NewSpaceTradersClientWithConfig(Config{
		BaseURL:     server.URL,
		Token:       "test-token",
		MaxRetries:  3,
		BackoffBase: 100 * time.Millisecond,
		Limiter:     rate.NewLimiter(rate.Inf, 1),
		Clock:       clock,
	})
	return client, clock
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

const shipJSON = `{
  "symbol": "AGENT-1",
  "registration": {"role": "HAULER"},
  "nav": {
    "systemSymbol": "X1-TEST",
    "waypointSymbol": "X1-TEST-B2",
    "status": "IN_TRANSIT",
    "flightMode": "CRUISE",
    "route": {
      "origin": {"symbol": "X1-TEST-A1"},
      "destination": {"symbol": "X1-TEST-B2"},
      "departureTime": "2025-06-01T12:00:00Z",
      "arrival": "2025-06-01T12:04:15Z"
    }
  },
  "frame": {"symbol": "FRAME_LIGHT_FREIGHTER"},
  "engine": {"speed": 10},
  "modules": [{"symbol": "MODULE_CARGO_HOLD_II"}],
  "mounts": [{"symbol": "MOUNT_MINING_LASER_I"}],
  "cargo": {
    "capacity": 40,
    "units": 12,
    "inventory": [
      {"symbol": "IRON_ORE", "name": "Iron Ore", "description": "", "units": 12},
      {"symbol": "ICE_WATER", "name": "Ice Water", "description": "", "units": 0}
    ]
  },
  "fuel": {"current": 80, "capacity": 100},
  "cooldown": {"shipSymbol": "AGENT-1", "totalSeconds": 70, "remainingSeconds": 30, "expiration": "2025-06-01T12:00:30Z"}
}`

func TestGetShip_ParsesSnapshot(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/my/ships/AGENT-1", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"data": `+shipJSON+`}`)
	})

	ship, err := client.GetShip(context.Background(), "AGENT-1")
	require.NoError(t, err)

	assert.Equal(t, navigation.NavStatusInTransit, ship.NavStatus())
	assert.Equal(t, shared.FlightModeCruise, ship.FlightMode())
	assert.Equal(t, "X1-TEST-B2", ship.WaypointSymbol())
	require.NotNil(t, ship.Route())
	assert.Equal(t, "X1-TEST-A1", ship.Route().Origin)
	assert.True(t, ship.Route().Arrival.Equal(testEpoch.Add(255*time.Second)))
	assert.Equal(t, 80, ship.Fuel().Current)
	assert.Equal(t, 12, ship.Cargo().Units)
	require.Len(t, ship.Cargo().Inventory, 1, "zero-unit items are pruned")
	assert.Equal(t, "IRON_ORE", ship.Cargo().Inventory[0].Symbol)
	assert.Equal(t, []string{"MODULE_CARGO_HOLD_II"}, ship.Modules())
	assert.Equal(t, []string{"MOUNT_MINING_LASER_I"}, ship.Mounts())
	assert.Equal(t, "HAULER", ship.Role())
	require.NotNil(t, ship.CooldownExpiration())
	assert.Equal(t, navigation.BehaviorNone, ship.Behavior())
}

func TestGetShip_MissingNavFailsLoudly(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data": {"symbol": "AGENT-1", "cargo": {"capacity": 0, "units": 0, "inventory": []}, "fuel": {"current": 0, "capacity": 0}}}`)
	})

	_, err := client.GetShip(context.Background(), "AGENT-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid payload")
}

func TestGet_NotFoundIsAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"error": {"message": "Waypoint X1-TEST-Z9 not found", "code": 4202}}`)
	})

	_, err := client.GetWaypoint(context.Background(), "X1-TEST-Z9")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, 4202, apiErr.Code)
	assert.Equal(t, "Waypoint X1-TEST-Z9 not found", apiErr.Message)
}

func TestListWaypoints_PaginatesUntilEmptyPage(t *testing.T) {
	var pages []string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/systems/X1-TEST/waypoints", r.URL.Path)
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		switch page {
		case "1":
			writeJSON(w, http.StatusOK, `{"data": [
				{"symbol": "X1-TEST-A1", "type": "PLANET", "systemSymbol": "X1-TEST", "x": 0, "y": 0, "traits": [{"symbol": "MARKETPLACE"}]},
				{"symbol": "X1-TEST-A2", "type": "MOON", "systemSymbol": "X1-TEST", "x": 1, "y": 0, "orbits": "X1-TEST-A1", "traits": []}
			]}`)
		case "2":
			writeJSON(w, http.StatusOK, `{"data": [{"symbol": "X1-TEST-B1", "type": "ASTEROID", "x": 30, "y": -4, "isUnderConstruction": true}]}`)
		default:
			writeJSON(w, http.StatusOK, `{"data": []}`)
		}
	})

	waypoints, err := client.ListWaypoints(context.Background(), "X1-TEST")
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, pages)
	require.Len(t, waypoints, 3)
	assert.True(t, waypoints[0].IsMarket())
	assert.Equal(t, "X1-TEST-A1", waypoints[1].Orbits)
	assert.Equal(t, "X1-TEST", waypoints[2].SystemSymbol, "system is inferred from the symbol")
	assert.True(t, waypoints[2].IsUnderConstruction)
}

func TestListShips_StopsWhenTotalReached(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusOK, `{"data": [`+shipJSON+`], "meta": {"total": 1, "page": 1, "limit": 20}}`)
	})

	ships, err := client.ListShips(context.Background())
	require.NoError(t, err)
	assert.Len(t, ships, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetMarket_ParsesCatalogAndPrices(t *testing.T) {
	client, clock := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/systems/X1-TEST/waypoints/X1-TEST-A1/market", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"data": {
			"symbol": "X1-TEST-A1",
			"exports": [{"symbol": "IRON_ORE", "name": "Iron Ore", "description": "ore"}],
			"imports": [{"symbol": "FUEL", "name": "", "description": ""}],
			"exchange": [],
			"transactions": [{"waypointSymbol": "X1-TEST-A1", "shipSymbol": "AGENT-1", "tradeSymbol": "FUEL", "type": "PURCHASE", "units": 3, "pricePerUnit": 72, "totalPrice": 216, "timestamp": "2025-06-01T11:00:00Z"}],
			"tradeGoods": [
				{"symbol": "IRON_ORE", "type": "EXPORT", "tradeVolume": 20, "supply": "HIGH", "activity": "STRONG", "purchasePrice": 12, "sellPrice": 10},
				{"symbol": "FUEL", "type": "IMPORT", "tradeVolume": 100, "supply": "MODERATE", "purchasePrice": 72, "sellPrice": 70}
			]
		}}`)
	})

	mkt, err := client.GetMarket(context.Background(), "X1-TEST-A1")
	require.NoError(t, err)

	assert.Equal(t, "X1-TEST-A1", mkt.WaypointSymbol())
	require.Len(t, mkt.Exports(), 1)
	assert.Equal(t, "FUEL", mkt.Imports()[0].Name, "name falls back to the symbol")
	iron := mkt.FindGood("IRON_ORE", market.RoleExport)
	require.NotNil(t, iron)
	assert.Equal(t, 20, iron.TradeVolume())
	assert.True(t, iron.UpdatedAt().Equal(clock.Now()))
	require.Len(t, mkt.Transactions(), 1)
	assert.Equal(t, market.TransactionPurchase, mkt.Transactions()[0].Type)
}

func TestGetCooldown_NoContentMeansNone(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	cooldown, err := client.GetCooldown(context.Background(), "AGENT-1")
	require.NoError(t, err)
	assert.Nil(t, cooldown)
}

func TestGetCooldown_ReturnsExpiration(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data": {"shipSymbol": "AGENT-1", "totalSeconds": 70, "remainingSeconds": 42, "expiration": "2025-06-01T12:00:42Z"}}`)
	})

	cooldown, err := client.GetCooldown(context.Background(), "AGENT-1")
	require.NoError(t, err)
	require.NotNil(t, cooldown)
	assert.True(t, cooldown.Equal(testEpoch.Add(42*time.Second)))
}

func TestMutation_RejectionIsPayloadNotError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, http.StatusBadRequest, `{"error": {"message": "Ship is not currently in orbit", "code": 4236, "data": {"shipSymbol": "AGENT-1"}}}`)
	})

	payload, err := client.NavigateShip(context.Background(), "AGENT-1", "X1-TEST-B2")
	require.NoError(t, err)
	require.True(t, payload.Rejected())
	assert.Equal(t, 4236, payload.Failure.Code)
	assert.Equal(t, "AGENT-1", payload.Failure.Data["shipSymbol"])
}

func TestPurchaseCargo_ParsesTradeBlocks(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/my/ships/AGENT-1/purchase", r.URL.Path)
		var body cargoRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, cargoRequest{Symbol: "IRON_ORE", Units: 20}, body)
		writeJSON(w, http.StatusCreated, `{"data": {
			"agent": {"accountId": "acc", "symbol": "AGENT", "headquarters": "X1-TEST-A1", "credits": 99760, "startingFaction": "COSMIC", "shipCount": 2},
			"cargo": {"capacity": 40, "units": 20, "inventory": [{"symbol": "IRON_ORE", "name": "Iron Ore", "description": "", "units": 20}]},
			"transaction": {"waypointSymbol": "X1-TEST-A1", "shipSymbol": "AGENT-1", "tradeSymbol": "IRON_ORE", "type": "PURCHASE", "units": 20, "pricePerUnit": 12, "totalPrice": 240, "timestamp": "2025-06-01T12:00:00Z"}
		}}`)
	})

	payload, err := client.PurchaseCargo(context.Background(), "AGENT-1", "IRON_ORE", 20)
	require.NoError(t, err)
	require.False(t, payload.Rejected())

	require.NotNil(t, payload.Agent)
	assert.Equal(t, 99760, payload.Agent.Credits)
	require.NotNil(t, payload.Cargo)
	assert.Equal(t, 20, payload.Cargo.GetItemUnits("IRON_ORE"))
	require.NotNil(t, payload.Transaction)
	assert.Equal(t, 240, payload.Transaction.TotalPrice)
	assert.Nil(t, payload.Nav)
}

func TestSetFlightMode_AcceptsBareNav(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/my/ships/AGENT-1/nav", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"data": {"systemSymbol": "X1-TEST", "waypointSymbol": "X1-TEST-A1", "status": "IN_ORBIT", "flightMode": "DRIFT"}}`)
	})

	payload, err := client.SetFlightMode(context.Background(), "AGENT-1", shared.FlightModeDrift)
	require.NoError(t, err)
	require.NotNil(t, payload.Nav)
	assert.Equal(t, shared.FlightModeDrift, payload.Nav.FlightMode)
	assert.Equal(t, navigation.NavStatusInOrbit, payload.Nav.Status)
}

func TestExtract_ParsesYieldAndCooldown(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"data": {
			"cooldown": {"shipSymbol": "AGENT-1", "totalSeconds": 70, "remainingSeconds": 70, "expiration": "2025-06-01T12:01:10Z"},
			"extraction": {"shipSymbol": "AGENT-1", "yield": {"symbol": "ICE_WATER", "units": 7}},
			"cargo": {"capacity": 40, "units": 7, "inventory": [{"symbol": "ICE_WATER", "name": "Ice Water", "description": "", "units": 7}]}
		}}`)
	})

	payload, err := client.ExtractResources(context.Background(), "AGENT-1")
	require.NoError(t, err)
	require.NotNil(t, payload.Yield)
	assert.Equal(t, "ICE_WATER", payload.Yield.Symbol)
	assert.Equal(t, 7, payload.Yield.Units)
	require.NotNil(t, payload.Cooldown)
	assert.True(t, payload.Cooldown.Equal(testEpoch.Add(70*time.Second)))
}

func TestExtract_ExpiredCooldownClearsInsteadOfDropping(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"data": {
			"cooldown": {"shipSymbol": "AGENT-1", "totalSeconds": 70, "remainingSeconds": 0, "expiration": "2025-06-01T11:59:00Z"},
			"extraction": {"shipSymbol": "AGENT-1", "yield": {"symbol": "ICE_WATER", "units": 3}},
			"cargo": {"capacity": 40, "units": 3, "inventory": [{"symbol": "ICE_WATER", "name": "Ice Water", "description": "", "units": 3}]}
		}}`)
	})

	payload, err := client.ExtractResources(context.Background(), "AGENT-1")
	require.NoError(t, err)
	assert.Nil(t, payload.Cooldown)
	assert.True(t, payload.CooldownCleared)
}

func TestDock_NoCooldownBlockLeavesCooldownAlone(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data": {"nav": {"systemSymbol": "X1-TEST", "waypointSymbol": "X1-TEST-A1", "status": "DOCKED", "flightMode": "CRUISE"}}}`)
	})

	payload, err := client.DockShip(context.Background(), "AGENT-1")
	require.NoError(t, err)
	assert.Nil(t, payload.Cooldown)
	assert.False(t, payload.CooldownCleared)
}

func TestSend_RetriesServiceUnavailable(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, `{"data": {"symbol": "X1-TEST", "sectorSymbol": "X1", "type": "RED_STAR", "x": 1, "y": 2}}`)
	})

	sys, err := client.GetSystem(context.Background(), "X1-TEST")
	require.NoError(t, err)
	assert.Equal(t, "RED_STAR", sys.Type)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSend_HonoursRetryAfter(t *testing.T) {
	var calls int32
	client, clock := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(w, http.StatusOK, `{"data": {"symbol": "X1-TEST"}}`)
	})

	_, err := client.GetSystem(context.Background(), "X1-TEST")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, clock.Now().Sub(testEpoch))
}

func TestSend_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetAgent(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls), "one attempt plus three retries")
}

func TestSend_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusUnauthorized, `{"error": {"message": "bad token", "code": 401}}`)
	})

	_, err := client.GetAgent(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

type recordingRecorder struct {
	mu       sync.Mutex
	requests []string
	retries  []string
	rejected []int
}

func (r *recordingRecorder) RecordAPIRequest(method, endpoint string, statusCode int, duration float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, fmt.Sprintf("%s %s %d", method, endpoint, statusCode))
}

func (r *recordingRecorder) RecordAPIRetry(method, endpoint, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retries = append(r.retries, reason)
}

func (r *recordingRecorder) RecordRateLimitWait(duration float64) {}

func (r *recordingRecorder) RecordRejection(endpoint string, code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, code)
}

func TestSend_ReportsToRecorder(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusGatewayTimeout)
			return
		}
		writeJSON(w, http.StatusBadRequest, `{"error": {"message": "Ship is not docked", "code": 4244}}`)
	}))
	defer server.Close()

	recorder := &recordingRecorder{}
	client := NewSpaceTradersClientWithConfig(Config{
		BaseURL:  server.URL,
		Limiter:  rate.NewLimiter(rate.Inf, 1),
		Clock:    shared.NewMockClock(testEpoch),
		Recorder: recorder,
	})

	payload, err := client.SellCargo(context.Background(), "AGENT-1", "IRON_ORE", 5)
	require.NoError(t, err)
	require.True(t, payload.Rejected())

	assert.Equal(t, []string{
		"POST /my/ships/{ship}/sell 504",
		"POST /my/ships/{ship}/sell 400",
	}, recorder.requests)
	assert.Equal(t, []string{"504"}, recorder.retries)
	assert.Equal(t, []int{4244}, recorder.rejected)
}

func TestEndpointLabel(t *testing.T) {
	tests := map[string]string{
		"/my/agent":                                   "/my/agent",
		"/my/ships/AGENT-1/navigate":                  "/my/ships/{ship}/navigate",
		"/my/ships?page=2&limit=20":                   "/my/ships",
		"/systems/X1-TEST/waypoints/X1-TEST-A1/market": "/systems/{system}/waypoints/{waypoint}/market",
	}
	for path, want := range tests {
		assert.Equal(t, want, endpointLabel(path), path)
	}
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	limiter := NewRateLimiter(0, 0, 0)
	assert.Equal(t, rate.Every(2*time.Second), limiter.Limit())
	assert.Equal(t, defaultRateBurst, limiter.Burst())
}
