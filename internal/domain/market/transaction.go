package market

import (
	"fmt"
	"time"
)

// TransactionType is the side of a market transaction
type TransactionType string

const (
	TransactionPurchase TransactionType = "PURCHASE"
	TransactionSell     TransactionType = "SELL"
)

// Transaction records a completed trade at a market. Append-only.
type Transaction struct {
	WaypointSymbol string
	ShipSymbol     string
	TradeSymbol    string
	Type           TransactionType
	Units          int
	PricePerUnit   int
	TotalPrice     int
	Timestamp      time.Time
}

// Validate checks the natural key fields are present
func (t *Transaction) Validate() error {
	if t.WaypointSymbol == "" || t.ShipSymbol == "" || t.TradeSymbol == "" {
		return fmt.Errorf("%w: waypoint, ship and trade symbol are required", ErrInvalidTransaction)
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp is required", ErrInvalidTransaction)
	}
	if t.Units < 0 || t.PricePerUnit < 0 || t.TotalPrice < 0 {
		return fmt.Errorf("%w: negative amounts", ErrInvalidTransaction)
	}
	return nil
}

// NaturalKey identifies a transaction across repeated syncs:
// market + ship + good + units + price + timestamp.
func (t *Transaction) NaturalKey() string {
	return fmt.Sprintf("%s|%s|%s|%d|%d|%s",
		t.WaypointSymbol, t.ShipSymbol, t.TradeSymbol, t.Units, t.PricePerUnit,
		t.Timestamp.UTC().Format(time.RFC3339Nano))
}

func (t *Transaction) String() string {
	return fmt.Sprintf("%s %s %d %s for %d", t.ShipSymbol, t.Type, t.Units, t.TradeSymbol, t.TotalPrice)
}
