package navigation

import (
	"fmt"
	"time"

	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

// NavStatus represents ship navigation status
type NavStatus string

const (
	NavStatusDocked    NavStatus = "DOCKED"
	NavStatusInOrbit   NavStatus = "IN_ORBIT"
	NavStatusInTransit NavStatus = "IN_TRANSIT"
)

var validNavStatuses = map[NavStatus]bool{
	NavStatusDocked:    true,
	NavStatusInOrbit:   true,
	NavStatusInTransit: true,
}

// ParseNavStatus validates an upstream nav status string
func ParseNavStatus(status string) (NavStatus, error) {
	s := NavStatus(status)
	if !validNavStatuses[s] {
		return "", shared.NewInvalidShipDataError(fmt.Sprintf("invalid nav_status: %s", status))
	}
	return s, nil
}

// Behavior is the locally annotated autonomous policy for a ship. It is never
// sent to the server.
type Behavior string

const (
	BehaviorNone  Behavior = "NONE"
	BehaviorTrade Behavior = "TRADE"
	BehaviorMine  Behavior = "MINE"
	BehaviorHaul  Behavior = "HAUL"
)

// ParseBehavior parses a behavior tag; empty means NONE
func ParseBehavior(value string) (Behavior, error) {
	switch b := Behavior(value); b {
	case "":
		return BehaviorNone, nil
	case BehaviorNone, BehaviorTrade, BehaviorMine, BehaviorHaul:
		return b, nil
	default:
		return "", shared.NewValidationError("behavior", fmt.Sprintf("unknown behavior %q", value))
	}
}

// Route is the flight plan of a ship in transit
type Route struct {
	Origin      string
	Destination string
	Departure   time.Time
	Arrival     time.Time
}

// ShipState is the flat representation of a ship used to rebuild the entity
// from a remote snapshot or a database row.
type ShipState struct {
	Symbol             string
	SystemSymbol       string
	WaypointSymbol     string
	NavStatus          NavStatus
	FlightMode         shared.FlightMode
	Route              *Route
	Fuel               *shared.Fuel
	Cargo              *shared.Cargo
	EngineSpeed        int
	FrameSymbol        string
	Role               string
	Modules            []string
	Mounts             []string
	CooldownExpiration *time.Time
	Behavior           Behavior
}

// Ship entity - a player's spacecraft
//
// Invariants:
// - Symbol is non-empty
// - NavStatus is exactly one of DOCKED, IN_ORBIT, IN_TRANSIT
// - A route is held only while IN_TRANSIT
// - Cargo never exceeds capacity and holds no zero-unit items
//
// Navigation state machine:
// - DOCKED -> orbit -> IN_ORBIT
// - IN_ORBIT -> dock -> DOCKED
// - IN_ORBIT -> navigate -> IN_TRANSIT
// - IN_TRANSIT -> arrival -> IN_ORBIT
type Ship struct {
	symbol             string
	systemSymbol       string
	waypointSymbol     string
	navStatus          NavStatus
	flightMode         shared.FlightMode
	route              *Route
	fuel               *shared.Fuel
	cargo              *shared.Cargo
	engineSpeed        int
	frameSymbol        string
	role               string
	modules            []string
	mounts             []string
	cooldownExpiration *time.Time
	behavior           Behavior
}

// ReconstructShip rebuilds a Ship from persisted or remote state with validation
func ReconstructShip(state ShipState) (*Ship, error) {
	s := &Ship{
		symbol:             state.Symbol,
		systemSymbol:       state.SystemSymbol,
		waypointSymbol:     state.WaypointSymbol,
		navStatus:          state.NavStatus,
		flightMode:         state.FlightMode,
		route:              state.Route,
		fuel:               state.Fuel,
		cargo:              state.Cargo,
		engineSpeed:        state.EngineSpeed,
		frameSymbol:        state.FrameSymbol,
		role:               state.Role,
		modules:            state.Modules,
		mounts:             state.Mounts,
		cooldownExpiration: state.CooldownExpiration,
		behavior:           state.Behavior,
	}
	if s.behavior == "" {
		s.behavior = BehaviorNone
	}
	if s.systemSymbol == "" && s.waypointSymbol != "" {
		s.systemSymbol = shared.ExtractSystemSymbol(s.waypointSymbol)
	}
	if s.navStatus != NavStatusInTransit {
		s.route = nil
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Ship) validate() error {
	if s.symbol == "" {
		return shared.NewInvalidShipDataError("ship symbol cannot be empty")
	}
	if !validNavStatuses[s.navStatus] {
		return shared.NewInvalidShipDataError(fmt.Sprintf("invalid nav_status: %s", s.navStatus))
	}
	if !s.flightMode.IsValid() {
		return shared.NewInvalidShipDataError(fmt.Sprintf("invalid flight mode: %d", s.flightMode))
	}
	if s.fuel == nil {
		return shared.NewInvalidShipDataError("fuel cannot be nil")
	}
	if s.cargo == nil {
		return shared.NewInvalidShipDataError("cargo cannot be nil")
	}
	if s.cargo.Units > s.cargo.Capacity {
		return shared.NewInvalidShipDataError("cargo units cannot exceed cargo capacity")
	}
	if s.navStatus == NavStatusInTransit && s.route == nil {
		return shared.NewInvalidShipDataError("ship in transit must have a route")
	}
	return nil
}

// State returns a copy of the ship's flat state
func (s *Ship) State() ShipState {
	return ShipState{
		Symbol:             s.symbol,
		SystemSymbol:       s.systemSymbol,
		WaypointSymbol:     s.waypointSymbol,
		NavStatus:          s.navStatus,
		FlightMode:         s.flightMode,
		Route:              s.route,
		Fuel:               s.fuel,
		Cargo:              s.cargo,
		EngineSpeed:        s.engineSpeed,
		FrameSymbol:        s.frameSymbol,
		Role:               s.role,
		Modules:            s.modules,
		Mounts:             s.mounts,
		CooldownExpiration: s.cooldownExpiration,
		Behavior:           s.behavior,
	}
}

// Getters

func (s *Ship) Symbol() string {
	return s.symbol
}

func (s *Ship) SystemSymbol() string {
	return s.systemSymbol
}

// WaypointSymbol is the current waypoint, or the destination while in transit
func (s *Ship) WaypointSymbol() string {
	return s.waypointSymbol
}

func (s *Ship) NavStatus() NavStatus {
	return s.navStatus
}

func (s *Ship) FlightMode() shared.FlightMode {
	return s.flightMode
}

func (s *Ship) Route() *Route {
	return s.route
}

func (s *Ship) Fuel() *shared.Fuel {
	return s.fuel
}

func (s *Ship) Cargo() *shared.Cargo {
	return s.cargo
}

func (s *Ship) EngineSpeed() int {
	return s.engineSpeed
}

func (s *Ship) FrameSymbol() string {
	return s.frameSymbol
}

func (s *Ship) Role() string {
	return s.role
}

func (s *Ship) Modules() []string {
	return s.modules
}

func (s *Ship) Mounts() []string {
	return s.mounts
}

func (s *Ship) Behavior() Behavior {
	return s.behavior
}

func (s *Ship) CooldownExpiration() *time.Time {
	return s.cooldownExpiration
}

// State queries

func (s *Ship) IsDocked() bool {
	return s.navStatus == NavStatusDocked
}

func (s *Ship) IsInOrbit() bool {
	return s.navStatus == NavStatusInOrbit
}

func (s *Ship) IsInTransit() bool {
	return s.navStatus == NavStatusInTransit
}

// InCooldown reports now < cooldown expiry
func (s *Ship) InCooldown(now time.Time) bool {
	return s.cooldownExpiration != nil && now.Before(*s.cooldownExpiration)
}

// CooldownRemaining returns the time left on the cooldown, or zero
func (s *Ship) CooldownRemaining(now time.Time) time.Duration {
	if !s.InCooldown(now) {
		return 0
	}
	return s.cooldownExpiration.Sub(now)
}

// TimeUntilArrival returns the time left in transit, or zero
func (s *Ship) TimeUntilArrival(now time.Time) time.Duration {
	if s.route == nil || !s.IsInTransit() {
		return 0
	}
	if d := s.route.Arrival.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Navigation state transitions

// NeedsOrbit reports whether an orbit call would change state.
//
// Transitions:
// - DOCKED → IN_ORBIT (true)
// - IN_ORBIT → IN_ORBIT (no-op)
// - IN_TRANSIT → IN_TRANSIT (no-op)
func (s *Ship) NeedsOrbit() bool {
	return s.navStatus == NavStatusDocked
}

// NeedsDock reports whether a dock call would change state.
//
// Transitions:
// - IN_ORBIT → DOCKED (true)
// - DOCKED → DOCKED (no-op)
// - IN_TRANSIT → error
func (s *Ship) NeedsDock() (bool, error) {
	switch s.navStatus {
	case NavStatusDocked:
		return false, nil
	case NavStatusInTransit:
		return false, shared.NewInvalidNavStatusError("cannot dock while in transit")
	default:
		return true, nil
	}
}

// EnsureNotInTransit rejects actions that need the ship stationary
func (s *Ship) EnsureNotInTransit(action string) error {
	if s.navStatus == NavStatusInTransit {
		return shared.NewInvalidNavStatusError(fmt.Sprintf("cannot %s while in transit", action))
	}
	return nil
}

// ApplyNav replaces nav state with a canonical snapshot.
// The route is kept only when the snapshot says IN_TRANSIT.
func (s *Ship) ApplyNav(status NavStatus, mode shared.FlightMode, systemSymbol, waypointSymbol string, route *Route) error {
	if !validNavStatuses[status] {
		return shared.NewInvalidShipDataError(fmt.Sprintf("invalid nav_status: %s", status))
	}
	if !mode.IsValid() {
		return shared.NewInvalidFlightModeError(mode.Name())
	}
	if status == NavStatusInTransit && route == nil {
		return shared.NewInvalidShipDataError("ship in transit must have a route")
	}

	s.navStatus = status
	s.flightMode = mode
	if systemSymbol != "" {
		s.systemSymbol = systemSymbol
	}
	if waypointSymbol != "" {
		s.waypointSymbol = waypointSymbol
	}
	if status == NavStatusInTransit {
		s.route = route
	} else {
		s.route = nil
	}
	return nil
}

// ResolveArrival moves an IN_TRANSIT ship whose arrival has passed into orbit.
// Returns true if the state changed.
func (s *Ship) ResolveArrival(now time.Time) bool {
	if !s.IsInTransit() || s.route == nil || now.Before(s.route.Arrival) {
		return false
	}
	s.navStatus = NavStatusInOrbit
	s.waypointSymbol = s.route.Destination
	s.route = nil
	return true
}

// SetFlightMode changes the flight mode; rejected while in transit
func (s *Ship) SetFlightMode(mode shared.FlightMode) error {
	if !mode.IsValid() {
		return shared.NewInvalidFlightModeError(mode.Name())
	}
	if err := s.EnsureNotInTransit("change flight mode"); err != nil {
		return err
	}
	s.flightMode = mode
	return nil
}

// Fuel, cargo and cooldown updates

func (s *Ship) ApplyFuel(fuel *shared.Fuel) {
	if fuel != nil {
		s.fuel = fuel
	}
}

// ApplyCargo reconciles the local manifest with a canonical snapshot
func (s *Ship) ApplyCargo(snapshot *shared.Cargo) {
	if snapshot == nil {
		return
	}
	s.cargo = s.cargo.Reconcile(snapshot)
}

// ApplyCooldown sets the cooldown expiry; nil clears it
func (s *Ship) ApplyCooldown(expiration *time.Time) {
	if expiration == nil {
		s.cooldownExpiration = nil
		return
	}
	t := expiration.UTC()
	s.cooldownExpiration = &t
}

// SetBehavior annotates the ship with its desired autonomous behavior
func (s *Ship) SetBehavior(b Behavior) {
	s.behavior = b
}

// Refresh copies server-owned state from a freshly fetched snapshot while
// keeping local annotations such as the desired behavior.
func (s *Ship) Refresh(remote *Ship) {
	behavior := s.behavior
	cargo := s.cargo.Reconcile(remote.cargo)
	*s = *remote
	s.cargo = cargo
	s.behavior = behavior
}

func (s *Ship) String() string {
	return fmt.Sprintf("Ship(symbol=%s, location=%s, status=%s, fuel=%s)",
		s.symbol, s.waypointSymbol, s.navStatus, s.fuel)
}
