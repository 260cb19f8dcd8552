package shipyard

import "context"

// Shipyard lists the ship types buildable at a waypoint
type Shipyard struct {
	WaypointSymbol  string
	ShipTypes       []string
	ModificationFee int
}

// ShipyardRepository caches shipyards by waypoint
type ShipyardRepository interface {
	Save(ctx context.Context, s *Shipyard) error
	FindByWaypoint(ctx context.Context, waypointSymbol string) (*Shipyard, error)
}
