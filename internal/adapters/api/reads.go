package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ropable/spacetraders-api/internal/domain/contract"
	"github.com/ropable/spacetraders-api/internal/domain/market"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/player"
	"github.com/ropable/spacetraders-api/internal/domain/shared"
	"github.com/ropable/spacetraders-api/internal/domain/shipyard"
	"github.com/ropable/spacetraders-api/internal/domain/system"
)

// fetch GETs path and decodes its data object into dto
func (c *SpaceTradersClient) fetch(ctx context.Context, path string, dto interface{}) error {
	var env envelope
	if err := c.get(ctx, path, &env); err != nil {
		return err
	}
	return decode(env.Data, dto)
}

// paginate walks path page by page (limit=20) until an empty page, or until
// meta.total says every item was seen
func (c *SpaceTradersClient) paginate(ctx context.Context, path string, each func(raw json.RawMessage) error) error {
	seen := 0
	for page := 1; ; page++ {
		var env envelope
		pagePath := fmt.Sprintf("%s?page=%d&limit=%d", path, page, pageLimit)
		if err := c.get(ctx, pagePath, &env); err != nil {
			return fmt.Errorf("page %d: %w", page, err)
		}

		var items []json.RawMessage
		if err := json.Unmarshal(env.Data, &items); err != nil {
			return fmt.Errorf("page %d: failed to unmarshal list: %w", page, err)
		}
		if len(items) == 0 {
			return nil
		}
		for _, raw := range items {
			if err := each(raw); err != nil {
				return err
			}
		}

		seen += len(items)
		if env.Meta != nil && env.Meta.Total > 0 && seen >= env.Meta.Total {
			return nil
		}
	}
}

func waypointPath(waypointSymbol string) string {
	return fmt.Sprintf("/systems/%s/waypoints/%s",
		url.PathEscape(shared.ExtractSystemSymbol(waypointSymbol)), url.PathEscape(waypointSymbol))
}

// GetAgent retrieves the agent owning the token
func (c *SpaceTradersClient) GetAgent(ctx context.Context) (*player.Agent, error) {
	var dto agentDTO
	if err := c.fetch(ctx, "/my/agent", &dto); err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return toAgent(&dto)
}

// GetShip retrieves ship details
func (c *SpaceTradersClient) GetShip(ctx context.Context, symbol string) (*navigation.Ship, error) {
	var dto shipDTO
	if err := c.fetch(ctx, "/my/ships/"+url.PathEscape(symbol), &dto); err != nil {
		return nil, fmt.Errorf("failed to get ship: %w", err)
	}
	return toShip(&dto)
}

// ListShips retrieves all ships for the authenticated agent
func (c *SpaceTradersClient) ListShips(ctx context.Context) ([]*navigation.Ship, error) {
	var ships []*navigation.Ship
	err := c.paginate(ctx, "/my/ships", func(raw json.RawMessage) error {
		var dto shipDTO
		if err := decode(raw, &dto); err != nil {
			return err
		}
		ship, err := toShip(&dto)
		if err != nil {
			return err
		}
		ships = append(ships, ship)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list ships: %w", err)
	}
	return ships, nil
}

// GetCooldown returns the reactor cooldown expiry, or nil when the ship is
// not cooling down (the upstream answers 204)
func (c *SpaceTradersClient) GetCooldown(ctx context.Context, shipSymbol string) (*time.Time, error) {
	resp, err := c.send(ctx, http.MethodGet, "/my/ships/"+url.PathEscape(shipSymbol)+"/cooldown", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get cooldown: %w", err)
	}
	if resp.status < 200 || resp.status >= 300 {
		return nil, fmt.Errorf("failed to get cooldown: %w", parseAPIError(resp.status, resp.body))
	}
	if resp.status == http.StatusNoContent || len(resp.body) == 0 {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(resp.body, &env); err != nil {
		return nil, fmt.Errorf("failed to get cooldown: %w", err)
	}
	var dto cooldownDTO
	if err := decode(env.Data, &dto); err != nil {
		return nil, fmt.Errorf("failed to get cooldown: %w", err)
	}
	if dto.Expiration == nil || dto.RemainingSeconds <= 0 {
		return nil, nil
	}
	expiration := dto.Expiration.UTC()
	return &expiration, nil
}

// GetSystem retrieves a star system
func (c *SpaceTradersClient) GetSystem(ctx context.Context, symbol string) (*system.System, error) {
	var dto systemDTO
	if err := c.fetch(ctx, "/systems/"+url.PathEscape(symbol), &dto); err != nil {
		return nil, fmt.Errorf("failed to get system: %w", err)
	}
	return toSystem(&dto), nil
}

// ListWaypoints retrieves every waypoint of a system
func (c *SpaceTradersClient) ListWaypoints(ctx context.Context, systemSymbol string) ([]*shared.Waypoint, error) {
	var waypoints []*shared.Waypoint
	path := fmt.Sprintf("/systems/%s/waypoints", url.PathEscape(systemSymbol))
	err := c.paginate(ctx, path, func(raw json.RawMessage) error {
		var dto waypointDTO
		if err := decode(raw, &dto); err != nil {
			return err
		}
		wp, err := toWaypoint(&dto)
		if err != nil {
			return err
		}
		waypoints = append(waypoints, wp)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list waypoints: %w", err)
	}
	return waypoints, nil
}

// GetWaypoint retrieves one waypoint
func (c *SpaceTradersClient) GetWaypoint(ctx context.Context, symbol string) (*shared.Waypoint, error) {
	var dto waypointDTO
	if err := c.fetch(ctx, waypointPath(symbol), &dto); err != nil {
		return nil, fmt.Errorf("failed to get waypoint: %w", err)
	}
	return toWaypoint(&dto)
}

// GetMarket retrieves market data for a waypoint. Prices are only present
// when one of the agent's ships is there.
func (c *SpaceTradersClient) GetMarket(ctx context.Context, waypointSymbol string) (*market.Market, error) {
	var dto marketDTO
	if err := c.fetch(ctx, waypointPath(waypointSymbol)+"/market", &dto); err != nil {
		return nil, fmt.Errorf("failed to get market: %w", err)
	}
	return toMarket(&dto, c.clock.Now())
}

// GetShipyard retrieves the ship types sold at a waypoint
func (c *SpaceTradersClient) GetShipyard(ctx context.Context, waypointSymbol string) (*shipyard.Shipyard, error) {
	var dto shipyardDTO
	if err := c.fetch(ctx, waypointPath(waypointSymbol)+"/shipyard", &dto); err != nil {
		return nil, fmt.Errorf("failed to get shipyard: %w", err)
	}
	return toShipyard(&dto), nil
}

// ListContracts retrieves every contract of the agent
func (c *SpaceTradersClient) ListContracts(ctx context.Context) ([]*contract.Contract, error) {
	var contracts []*contract.Contract
	err := c.paginate(ctx, "/my/contracts", func(raw json.RawMessage) error {
		var dto contractDTO
		if err := decode(raw, &dto); err != nil {
			return err
		}
		converted, err := toContract(&dto)
		if err != nil {
			return err
		}
		contracts = append(contracts, converted)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return contracts, nil
}
