package shared

import (
	"fmt"
	"math"
	"strings"
)

// Waypoint traits that gate features of a location
const (
	TraitMarketplace = "MARKETPLACE"
	TraitShipyard    = "SHIPYARD"
)

// Coordinates is a server-assigned position inside a system. Immutable.
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Distance returns the Euclidean distance between two coordinate pairs
func Distance(a, b Coordinates) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Waypoint is a located point of interest within a system
type Waypoint struct {
	Symbol              string   `json:"symbol"`
	SystemSymbol        string   `json:"systemSymbol"`
	Type                string   `json:"type"`
	X                   int      `json:"x"`
	Y                   int      `json:"y"`
	Orbits              string   `json:"orbits,omitempty"`
	Traits              []string `json:"traits,omitempty"`
	IsUnderConstruction bool     `json:"isUnderConstruction"`
}

// NewWaypoint creates a waypoint, inferring its system from the symbol
func NewWaypoint(symbol string, x, y int) (*Waypoint, error) {
	if symbol == "" {
		return nil, NewValidationError("symbol", "cannot be empty")
	}

	return &Waypoint{
		Symbol:       symbol,
		SystemSymbol: ExtractSystemSymbol(symbol),
		X:            x,
		Y:            y,
		Traits:       []string{},
	}, nil
}

// Coordinates returns the waypoint position
func (w *Waypoint) Coordinates() Coordinates {
	return Coordinates{X: w.X, Y: w.Y}
}

// DistanceTo returns the Euclidean distance to another waypoint
func (w *Waypoint) DistanceTo(other *Waypoint) float64 {
	return Distance(w.Coordinates(), other.Coordinates())
}

// HasTrait reports whether the waypoint carries the given trait symbol
func (w *Waypoint) HasTrait(trait string) bool {
	for _, t := range w.Traits {
		if t == trait {
			return true
		}
	}
	return false
}

// IsMarket reports whether the waypoint has a marketplace
func (w *Waypoint) IsMarket() bool {
	return w.HasTrait(TraitMarketplace)
}

// IsShipyard reports whether the waypoint has a shipyard
func (w *Waypoint) IsShipyard() bool {
	return w.HasTrait(TraitShipyard)
}

func (w *Waypoint) String() string {
	return fmt.Sprintf("Waypoint(%s)", w.Symbol)
}

// ExtractSystemSymbol returns everything before the last hyphen of a waypoint symbol.
// Example: "X1-AB12-C3D4" -> "X1-AB12"
func ExtractSystemSymbol(waypointSymbol string) string {
	if i := strings.LastIndex(waypointSymbol, "-"); i >= 0 {
		return waypointSymbol[:i]
	}
	return waypointSymbol
}
