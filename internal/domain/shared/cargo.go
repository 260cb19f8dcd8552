package shared

import (
	"fmt"
	"sort"
)

// CargoItem is one cargo type held in a ship's hold
type CargoItem struct {
	Symbol      string
	Name        string
	Description string
	Units       int
}

// NewCargoItem creates a new cargo item with validation
func NewCargoItem(symbol, name, description string, units int) (*CargoItem, error) {
	if units < 0 {
		return nil, NewValidationError("cargo.units", "cannot be negative")
	}
	if symbol == "" {
		return nil, NewValidationError("cargo.symbol", "cannot be empty")
	}

	return &CargoItem{
		Symbol:      symbol,
		Name:        name,
		Description: description,
		Units:       units,
	}, nil
}

// Cargo is a ship's cargo manifest. Zero-unit items never appear in Inventory.
type Cargo struct {
	Capacity  int
	Units     int
	Inventory []*CargoItem
}

// NewCargo builds a manifest from a canonical snapshot. Items with zero units
// are pruned and Units is recomputed from the inventory.
func NewCargo(capacity int, inventory []*CargoItem) (*Cargo, error) {
	if capacity < 0 {
		return nil, NewValidationError("cargo.capacity", "cannot be negative")
	}

	kept := make([]*CargoItem, 0, len(inventory))
	units := 0
	for _, item := range inventory {
		if item == nil {
			continue
		}
		if item.Units < 0 {
			return nil, NewValidationError("cargo.units", fmt.Sprintf("%s has negative units", item.Symbol))
		}
		if item.Units == 0 {
			continue
		}
		copied := *item
		kept = append(kept, &copied)
		units += item.Units
	}
	if units > capacity {
		return nil, NewValidationError("cargo.units", fmt.Sprintf("%d exceed capacity %d", units, capacity))
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Symbol < kept[j].Symbol })

	return &Cargo{Capacity: capacity, Units: units, Inventory: kept}, nil
}

// EmptyCargo returns an empty hold of the given capacity
func EmptyCargo(capacity int) *Cargo {
	return &Cargo{Capacity: capacity, Inventory: []*CargoItem{}}
}

// Reconcile returns the manifest that exactly matches snapshot: items in the
// snapshot are upserted and every local item absent from it is dropped.
// Display names already known locally are preserved when the snapshot omits them.
func (c *Cargo) Reconcile(snapshot *Cargo) *Cargo {
	names := make(map[string]*CargoItem, len(c.Inventory))
	for _, item := range c.Inventory {
		names[item.Symbol] = item
	}

	items := make([]*CargoItem, 0, len(snapshot.Inventory))
	for _, item := range snapshot.Inventory {
		copied := *item
		if known, ok := names[item.Symbol]; ok {
			if copied.Name == "" {
				copied.Name = known.Name
			}
			if copied.Description == "" {
				copied.Description = known.Description
			}
		}
		items = append(items, &copied)
	}

	reconciled, err := NewCargo(snapshot.Capacity, items)
	if err != nil {
		// snapshot was already validated; fall back to it as-is
		return snapshot
	}
	return reconciled
}

// Item returns the inventory entry for symbol, or nil
func (c *Cargo) Item(symbol string) *CargoItem {
	for _, item := range c.Inventory {
		if item.Symbol == symbol {
			return item
		}
	}
	return nil
}

// GetItemUnits gets units of specific trade good in cargo (0 if not present)
func (c *Cargo) GetItemUnits(symbol string) int {
	if item := c.Item(symbol); item != nil {
		return item.Units
	}
	return 0
}

// HasItem checks if cargo contains at least minUnits of specific item
func (c *Cargo) HasItem(symbol string, minUnits int) bool {
	return c.GetItemUnits(symbol) >= minUnits
}

// ItemsOtherThan lists the held items whose symbol differs from symbol
func (c *Cargo) ItemsOtherThan(symbol string) []*CargoItem {
	var others []*CargoItem
	for _, item := range c.Inventory {
		if item.Symbol != symbol {
			others = append(others, item)
		}
	}
	return others
}

// AvailableCapacity calculates available cargo space
func (c *Cargo) AvailableCapacity() int {
	return c.Capacity - c.Units
}

// IsEmpty checks if cargo hold is empty
func (c *Cargo) IsEmpty() bool {
	return c.Units == 0
}

// IsFull checks if cargo hold is full
func (c *Cargo) IsFull() bool {
	return c.Units >= c.Capacity
}

func (c *Cargo) String() string {
	return fmt.Sprintf("Cargo(%d/%d)", c.Units, c.Capacity)
}
