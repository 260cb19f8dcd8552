package contract

import (
	"context"
	"fmt"
	"time"
)

type Payment struct {
	OnAccepted  int
	OnFulfilled int
}

// DeliverGood is one cargo delivery a contract requires
type DeliverGood struct {
	TradeSymbol       string
	DestinationSymbol string
	UnitsRequired     int
	UnitsFulfilled    int
}

// Remaining returns the units still to deliver
func (d DeliverGood) Remaining() int {
	if d.UnitsFulfilled >= d.UnitsRequired {
		return 0
	}
	return d.UnitsRequired - d.UnitsFulfilled
}

type Terms struct {
	Deadline time.Time
	Payment  Payment
	Deliver  []DeliverGood
}

// Contract mirrors a faction contract; upserted by ID on every sync
type Contract struct {
	ID               string
	FactionSymbol    string
	Type             string
	Terms            Terms
	Accepted         bool
	Fulfilled        bool
	Expiration       time.Time
	DeadlineToAccept time.Time
}

// Validate checks identifying fields
func (c *Contract) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("contract ID cannot be empty")
	}
	if c.FactionSymbol == "" {
		return fmt.Errorf("faction symbol cannot be empty")
	}
	return nil
}

// IsActive reports an accepted, unfulfilled contract
func (c *Contract) IsActive() bool {
	return c.Accepted && !c.Fulfilled
}

func (c *Contract) String() string {
	return fmt.Sprintf("%s %s (%s)", c.Type, c.ID, c.FactionSymbol)
}

// ContractRepository persists contracts
type ContractRepository interface {
	Save(ctx context.Context, c *Contract) error
	FindByID(ctx context.Context, id string) (*Contract, error)
	ListAll(ctx context.Context) ([]*Contract, error)
}
