package market

import "errors"

var (
	// ErrMarketNotFound is returned when a market cannot be found
	ErrMarketNotFound = errors.New("market not found")

	// ErrInvalidWaypointSymbol is returned when a waypoint symbol is empty
	ErrInvalidWaypointSymbol = errors.New("invalid waypoint symbol")

	// ErrInvalidGoodSymbol is returned when a good symbol is empty
	ErrInvalidGoodSymbol = errors.New("invalid good symbol")

	// ErrInvalidRole is returned for a trade good type other than EXPORT, IMPORT, EXCHANGE
	ErrInvalidRole = errors.New("invalid trade good role")

	// ErrInvalidPrice is returned when a price is negative
	ErrInvalidPrice = errors.New("invalid price")

	// ErrInvalidTradeVolume is returned when trade volume is negative
	ErrInvalidTradeVolume = errors.New("invalid trade volume")

	// ErrInvalidSupply is returned when a supply value is not in the valid set
	ErrInvalidSupply = errors.New("invalid supply value")

	// ErrInvalidActivity is returned when an activity value is not in the valid set
	ErrInvalidActivity = errors.New("invalid activity value")

	// ErrInvalidTransaction is returned when a transaction misses its natural key fields
	ErrInvalidTransaction = errors.New("invalid transaction")
)
