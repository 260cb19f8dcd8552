package navigation

import "context"

// ShipRepository persists the local copy of ship state
type ShipRepository interface {
	// FindBySymbol returns the cached ship, or nil when it was never synced
	FindBySymbol(ctx context.Context, symbol string) (*Ship, error)

	// ListAll returns every cached ship ordered by symbol
	ListAll(ctx context.Context) ([]*Ship, error)

	// ListByBehavior returns ships annotated with the given behavior
	ListByBehavior(ctx context.Context, behavior Behavior) ([]*Ship, error)

	// Save upserts the ship and reconciles its cargo items
	Save(ctx context.Context, ship *Ship) error
}
