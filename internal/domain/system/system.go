package system

import (
	"context"

	"github.com/ropable/spacetraders-api/internal/domain/shared"
)

// System is a star system containing waypoints
type System struct {
	Symbol       string
	SectorSymbol string
	Type         string
	X            int
	Y            int
}

// WaypointRepository caches waypoints and their systems
type WaypointRepository interface {
	SaveSystem(ctx context.Context, s *System) error
	FindSystem(ctx context.Context, symbol string) (*System, error)

	// Save upserts a waypoint keyed by symbol; traits are replaced
	Save(ctx context.Context, waypoint *shared.Waypoint) error

	// FindBySymbol returns the cached waypoint, or nil when unknown
	FindBySymbol(ctx context.Context, symbol string) (*shared.Waypoint, error)

	// ListBySystem returns every cached waypoint of a system ordered by symbol
	ListBySystem(ctx context.Context, systemSymbol string) ([]*shared.Waypoint, error)

	// ListByTrait returns the waypoints of a system carrying trait
	ListByTrait(ctx context.Context, systemSymbol, trait string) ([]*shared.Waypoint, error)
}
