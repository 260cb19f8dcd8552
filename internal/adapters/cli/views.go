package cli

import (
	"time"

	shipTypes "github.com/ropable/spacetraders-api/internal/application/ship/types"
	"github.com/ropable/spacetraders-api/internal/domain/contract"
	"github.com/ropable/spacetraders-api/internal/domain/navigation"
	"github.com/ropable/spacetraders-api/internal/domain/player"
)

// Views give domain entities a stable json/yaml shape for --output

type cargoItemView struct {
	Symbol string `json:"symbol" yaml:"symbol"`
	Units  int    `json:"units" yaml:"units"`
}

type routeView struct {
	Origin      string `json:"origin" yaml:"origin"`
	Destination string `json:"destination" yaml:"destination"`
	Departure   string `json:"departure" yaml:"departure"`
	Arrival     string `json:"arrival" yaml:"arrival"`
}

type shipView struct {
	Symbol            string          `json:"symbol" yaml:"symbol"`
	Role              string          `json:"role,omitempty" yaml:"role,omitempty"`
	Waypoint          string          `json:"waypoint" yaml:"waypoint"`
	Status            string          `json:"status" yaml:"status"`
	FlightMode        string          `json:"flightMode" yaml:"flightMode"`
	Behavior          string          `json:"behavior" yaml:"behavior"`
	Fuel              int             `json:"fuel" yaml:"fuel"`
	FuelCapacity      int             `json:"fuelCapacity" yaml:"fuelCapacity"`
	CargoUnits        int             `json:"cargoUnits" yaml:"cargoUnits"`
	CargoCapacity     int             `json:"cargoCapacity" yaml:"cargoCapacity"`
	Cargo             []cargoItemView `json:"cargo,omitempty" yaml:"cargo,omitempty"`
	Route             *routeView      `json:"route,omitempty" yaml:"route,omitempty"`
	ArrivalIn         float64         `json:"arrivalInSeconds,omitempty" yaml:"arrivalInSeconds,omitempty"`
	CooldownRemaining float64         `json:"cooldownSeconds,omitempty" yaml:"cooldownSeconds,omitempty"`
}

func newShipView(s *navigation.Ship, now time.Time) shipView {
	v := shipView{
		Symbol:     s.Symbol(),
		Role:       s.Role(),
		Waypoint:   s.WaypointSymbol(),
		Status:     string(s.NavStatus()),
		FlightMode: s.FlightMode().Name(),
		Behavior:   string(s.Behavior()),
	}
	if fuel := s.Fuel(); fuel != nil {
		v.Fuel = fuel.Current
		v.FuelCapacity = fuel.Capacity
	}
	if cargo := s.Cargo(); cargo != nil {
		v.CargoUnits = cargo.Units
		v.CargoCapacity = cargo.Capacity
		for _, item := range cargo.Inventory {
			v.Cargo = append(v.Cargo, cargoItemView{Symbol: item.Symbol, Units: item.Units})
		}
	}
	if route := s.Route(); route != nil && s.IsInTransit() {
		v.Route = &routeView{
			Origin:      route.Origin,
			Destination: route.Destination,
			Departure:   route.Departure.UTC().Format(time.RFC3339),
			Arrival:     route.Arrival.UTC().Format(time.RFC3339),
		}
		v.ArrivalIn = s.TimeUntilArrival(now).Seconds()
	}
	v.CooldownRemaining = s.CooldownRemaining(now).Seconds()
	return v
}

type actionView struct {
	Action      string    `json:"action" yaml:"action"`
	Ship        string    `json:"ship" yaml:"ship"`
	Outcome     string    `json:"outcome" yaml:"outcome"`
	Reason      string    `json:"reason,omitempty" yaml:"reason,omitempty"`
	FailureCode int       `json:"failureCode,omitempty" yaml:"failureCode,omitempty"`
	Units       int       `json:"units,omitempty" yaml:"units,omitempty"`
	Yield       string    `json:"yield,omitempty" yaml:"yield,omitempty"`
	TotalPrice  int       `json:"totalPrice,omitempty" yaml:"totalPrice,omitempty"`
	Arrival     string    `json:"arrival,omitempty" yaml:"arrival,omitempty"`
	Cooldown    float64   `json:"cooldownSeconds,omitempty" yaml:"cooldownSeconds,omitempty"`
	State       *shipView `json:"state,omitempty" yaml:"state,omitempty"`
}

func newActionView(r *shipTypes.ActionResult, now time.Time) actionView {
	v := actionView{
		Action:   r.Action,
		Ship:     r.ShipSymbol,
		Outcome:  string(r.Outcome),
		Reason:   r.Reason,
		Units:    r.Units,
		Cooldown: r.CooldownRemaining.Seconds(),
	}
	if r.Failure != nil {
		v.FailureCode = r.Failure.Code
		if v.Reason == "" {
			v.Reason = r.Failure.Message
		}
	}
	if r.Yield != nil {
		v.Yield = r.Yield.Symbol
		v.Units = r.Yield.Units
	}
	if r.Transaction != nil {
		v.TotalPrice = r.Transaction.TotalPrice
	}
	if r.Arrival != nil {
		v.Arrival = r.Arrival.UTC().Format(time.RFC3339)
	}
	if r.Ship != nil {
		state := newShipView(r.Ship, now)
		v.State = &state
	}
	return v
}

type agentView struct {
	Symbol       string `json:"symbol" yaml:"symbol"`
	AccountID    string `json:"accountId,omitempty" yaml:"accountId,omitempty"`
	Headquarters string `json:"headquarters" yaml:"headquarters"`
	Faction      string `json:"faction" yaml:"faction"`
	Credits      int    `json:"credits" yaml:"credits"`
	ShipCount    int    `json:"shipCount" yaml:"shipCount"`
	Cached       bool   `json:"cached" yaml:"cached"`
}

func newAgentView(a *player.Agent, cached bool) agentView {
	return agentView{
		Symbol:       a.Symbol,
		AccountID:    a.AccountID,
		Headquarters: a.Headquarters,
		Faction:      a.StartingFaction,
		Credits:      a.Credits,
		ShipCount:    a.ShipCount,
		Cached:       cached,
	}
}

type deliverView struct {
	TradeSymbol string `json:"tradeSymbol" yaml:"tradeSymbol"`
	Destination string `json:"destination" yaml:"destination"`
	Required    int    `json:"required" yaml:"required"`
	Fulfilled   int    `json:"fulfilled" yaml:"fulfilled"`
}

type contractView struct {
	ID          string        `json:"id" yaml:"id"`
	Faction     string        `json:"faction" yaml:"faction"`
	Type        string        `json:"type" yaml:"type"`
	Accepted    bool          `json:"accepted" yaml:"accepted"`
	Fulfilled   bool          `json:"fulfilled" yaml:"fulfilled"`
	Deadline    string        `json:"deadline" yaml:"deadline"`
	OnAccepted  int           `json:"onAccepted" yaml:"onAccepted"`
	OnFulfilled int           `json:"onFulfilled" yaml:"onFulfilled"`
	Deliver     []deliverView `json:"deliver" yaml:"deliver"`
}

func newContractView(c *contract.Contract) contractView {
	v := contractView{
		ID:          c.ID,
		Faction:     c.FactionSymbol,
		Type:        c.Type,
		Accepted:    c.Accepted,
		Fulfilled:   c.Fulfilled,
		Deadline:    c.Terms.Deadline.UTC().Format(time.RFC3339),
		OnAccepted:  c.Terms.Payment.OnAccepted,
		OnFulfilled: c.Terms.Payment.OnFulfilled,
		Deliver:     make([]deliverView, 0, len(c.Terms.Deliver)),
	}
	for _, d := range c.Terms.Deliver {
		v.Deliver = append(v.Deliver, deliverView{
			TradeSymbol: d.TradeSymbol,
			Destination: d.DestinationSymbol,
			Required:    d.UnitsRequired,
			Fulfilled:   d.UnitsFulfilled,
		})
	}
	return v
}
