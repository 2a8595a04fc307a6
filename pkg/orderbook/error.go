package orderbook

import "errors"

var (
	// ErrPoolExhausted is returned when a book needs a new price level but
	// every slot of its level pool is in use.
	ErrPoolExhausted = errors.New("level pool exhausted")
	// ErrOrderNotFound is returned when a cancel names an order id that is not active.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderNotInLevel signals that the registry and the book disagree about
	// where an order rests.
	ErrOrderNotInLevel = errors.New("order not found in its price level")
	// ErrDuplicateOrder is returned when a new order reuses an active order id.
	ErrDuplicateOrder = errors.New("duplicate order id")

	errInvalidOrderKind = errors.New("invalid order kind")
)
