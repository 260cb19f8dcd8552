package types

import "github.com/ropable/spacetraders-api/internal/domain/shared"

// Ship command types - shared between handlers and the behavior driver to avoid circular imports.
// Every command is answered with an *ActionResult.

// OrbitShipCommand - Command to put a ship into orbit at its current waypoint
type OrbitShipCommand struct {
	ShipSymbol string
}

// DockShipCommand - Command to dock a ship at its current waypoint
type DockShipCommand struct {
	ShipSymbol string
}

// SetFlightModeCommand - Command to set a ship's flight mode
type SetFlightModeCommand struct {
	ShipSymbol string
	Mode       shared.FlightMode
}

// NavigateShipCommand - Command for single-hop navigation inside a system.
// The ship's flight mode drops to DRIFT when its fuel cannot cover the trip.
type NavigateShipCommand struct {
	ShipSymbol  string
	Destination string
}

// RefuelShipCommand - Command to refuel a ship at its current waypoint
type RefuelShipCommand struct {
	ShipSymbol string
	Units      *int // nil = refuel to full
	FromCargo  bool
}

// PurchaseCargoCommand - Command to buy a trade good at the current market
type PurchaseCargoCommand struct {
	ShipSymbol  string
	TradeSymbol string
	Units       *int // nil = min(trade volume, free capacity)
}

// SellCargoCommand - Command to sell a held good at the current market
type SellCargoCommand struct {
	ShipSymbol  string
	TradeSymbol string
	Units       *int // nil = everything held
}

// SellAllCargoCommand - Command to sell every held good at the current market
type SellAllCargoCommand struct {
	ShipSymbol string
}

// JettisonCargoCommand - Command to dump cargo into space
type JettisonCargoCommand struct {
	ShipSymbol  string
	TradeSymbol string
	Units       *int // nil = everything held
}

// ExtractResourcesCommand - Command to mine the current waypoint
type ExtractResourcesCommand struct {
	ShipSymbol string
}

// SiphonResourcesCommand - Command to siphon gas at the current waypoint
type SiphonResourcesCommand struct {
	ShipSymbol string
}

// RefreshShipCommand - Command to reload the ship from the server
type RefreshShipCommand struct {
	ShipSymbol string
}
