package shared

import "fmt"

// Fuel represents an immutable fuel state
type Fuel struct {
	Current  int
	Capacity int
}

// NewFuel creates a new fuel value object with validation
func NewFuel(current, capacity int) (*Fuel, error) {
	if current < 0 {
		return nil, NewValidationError("fuel.current", "cannot be negative")
	}
	if capacity < 0 {
		return nil, NewValidationError("fuel.capacity", "cannot be negative")
	}
	if current > capacity {
		return nil, NewValidationError("fuel.current", fmt.Sprintf("%d exceeds capacity %d", current, capacity))
	}

	return &Fuel{Current: current, Capacity: capacity}, nil
}

// Consume returns new Fuel with amount consumed, floored at zero
func (f *Fuel) Consume(amount int) *Fuel {
	next := f.Current - amount
	if next < 0 {
		next = 0
	}
	return &Fuel{Current: next, Capacity: f.Capacity}
}

// Missing returns the units needed to fill the tank
func (f *Fuel) Missing() int {
	return f.Capacity - f.Current
}

// CanCover reports whether the tank holds at least cost units
func (f *Fuel) CanCover(cost int) bool {
	return f.Current >= cost
}

// IsFull checks if fuel is at capacity
func (f *Fuel) IsFull() bool {
	return f.Current == f.Capacity
}

func (f *Fuel) String() string {
	return fmt.Sprintf("Fuel(%d/%d)", f.Current, f.Capacity)
}
