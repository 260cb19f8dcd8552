package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	domainPorts "github.com/ropable/spacetraders-api/internal/domain/ports"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

// act runs a ship mutation. An upstream rejection comes back as a payload
// with Failure set and a nil error.
func (c *SpaceTradersClient) act(ctx context.Context, method, shipSymbol, action string, body interface{}) (*domainPorts.ActionPayload, error) {
	path := fmt.Sprintf("/my/ships/%s/%s", url.PathEscape(shipSymbol), action)

	var env envelope
	failure, err := c.mutate(ctx, method, path, body, &env)
	if err != nil {
		return nil, fmt.Errorf("failed to %s ship %s: %w", action, shipSymbol, err)
	}
	if failure != nil {
		return &domainPorts.ActionPayload{Failure: failure}, nil
	}

	dto, err := decodeAction(env.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to %s ship %s: %w", action, shipSymbol, err)
	}
	payload, err := toPayload(dto)
	if err != nil {
		return nil, fmt.Errorf("failed to %s ship %s: %w", action, shipSymbol, err)
	}
	return payload, nil
}

// decodeAction accepts both {"nav": {...}, ...} and a bare nav object, which
// older versions of the nav endpoint answer with
func decodeAction(raw json.RawMessage) (*actionDTO, error) {
	var dto actionDTO
	if err := decode(raw, &dto); err != nil {
		return nil, err
	}
	if dto.Nav == nil {
		var bare struct {
			Status string `json:"status"`
		}
		if json.Unmarshal(raw, &bare) == nil && bare.Status != "" {
			var nav shipNavDTO
			if err := decode(raw, &nav); err != nil {
				return nil, err
			}
			dto.Nav = &nav
		}
	}
	return &dto, nil
}

// OrbitShip moves a docked ship into orbit
func (c *SpaceTradersClient) OrbitShip(ctx context.Context, shipSymbol string) (*domainPorts.ActionPayload, error) {
	return c.act(ctx, http.MethodPost, shipSymbol, "orbit", nil)
}

// DockShip docks a ship at its current waypoint
func (c *SpaceTradersClient) DockShip(ctx context.Context, shipSymbol string) (*domainPorts.ActionPayload, error) {
	return c.act(ctx, http.MethodPost, shipSymbol, "dock", nil)
}

// SetFlightMode changes the flight mode of a ship
func (c *SpaceTradersClient) SetFlightMode(ctx context.Context, shipSymbol string, mode shared.FlightMode) (*domainPorts.ActionPayload, error) {
	return c.act(ctx, http.MethodPatch, shipSymbol, "nav", flightModeRequest{FlightMode: mode.Name()})
}

// NavigateShip sends a ship to a waypoint in its system
func (c *SpaceTradersClient) NavigateShip(ctx context.Context, shipSymbol, destination string) (*domainPorts.ActionPayload, error) {
	return c.act(ctx, http.MethodPost, shipSymbol, "navigate", navigateRequest{WaypointSymbol: destination})
}

// RefuelShip buys fuel. units <= 0 fills the tank.
func (c *SpaceTradersClient) RefuelShip(ctx context.Context, shipSymbol string, units int, fromCargo bool) (*domainPorts.ActionPayload, error) {
	body := refuelRequest{FromCargo: fromCargo}
	if units > 0 {
		body.Units = units
	}
	return c.act(ctx, http.MethodPost, shipSymbol, "refuel", body)
}

// PurchaseCargo buys units of a good at the docked market
func (c *SpaceTradersClient) PurchaseCargo(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*domainPorts.ActionPayload, error) {
	return c.act(ctx, http.MethodPost, shipSymbol, "purchase", cargoRequest{Symbol: tradeSymbol, Units: units})
}

// SellCargo sells units of a good at the docked market
func (c *SpaceTradersClient) SellCargo(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*domainPorts.ActionPayload, error) {
	return c.act(ctx, http.MethodPost, shipSymbol, "sell", cargoRequest{Symbol: tradeSymbol, Units: units})
}

// JettisonCargo drops units of a good into space
func (c *SpaceTradersClient) JettisonCargo(ctx context.Context, shipSymbol, tradeSymbol string, units int) (*domainPorts.ActionPayload, error) {
	return c.act(ctx, http.MethodPost, shipSymbol, "jettison", cargoRequest{Symbol: tradeSymbol, Units: units})
}

// ExtractResources mines the asteroid the ship orbits
func (c *SpaceTradersClient) ExtractResources(ctx context.Context, shipSymbol string) (*domainPorts.ActionPayload, error) {
	return c.act(ctx, http.MethodPost, shipSymbol, "extract", nil)
}

// SiphonResources siphons gas from the giant the ship orbits
func (c *SpaceTradersClient) SiphonResources(ctx context.Context, shipSymbol string) (*domainPorts.ActionPayload, error) {
	return c.act(ctx, http.MethodPost, shipSymbol, "siphon", nil)
}

var _ domainPorts.APIClient = (*SpaceTradersClient)(nil)
