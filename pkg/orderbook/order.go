package orderbook

type Side uint8

const (
	BUY Side = iota
	SELL
)

func (s Side) String() string {
	if s == BUY {
		return "B"
	}
	return "S"
}

func (s Side) opposite() Side {
	if s == BUY {
		return SELL
	}
	return BUY
}

// Kind is the order event type carried by an input record.
type Kind uint8

const (
	INVALID Kind = iota
	NEW
	CANCEL
	FLUSH
)

func (k Kind) String() string {
	switch k {
	case NEW:
		return "NEW"
	case CANCEL:
		return "CANCEL"
	case FLUSH:
		return "FLUSH"
	}
	return "INVALID"
}

// KindFromCode maps a leading type character to its Kind. Unknown codes map to INVALID.
func KindFromCode(code byte) Kind {
	switch code {
	case 'N':
		return NEW
	case 'C':
		return CANCEL
	case 'F':
		return FLUSH
	default:
		return INVALID
	}
}

// MarketPrice is the price carried by a market order.
const MarketPrice int64 = 0

type Order struct {
	ID     int64
	UserID int64
	Symbol string
	Side   Side
	Price  int64 // 0 = market
	Qty    int64 // remaining
	Kind   Kind

	// set by the manager and the book while the order is active
	book    *orderBook
	level   LevelHandle
	resting bool
}

// IsMarket reports whether the order executes at any price.
func (o *Order) IsMarket() bool {
	return o.Price == MarketPrice
}

// Resting reports whether the order currently sits in a price level.
func (o *Order) Resting() bool {
	return o.resting
}

// BuildOrder constructs an order from its type code. It returns false, and no
// order, when the code does not name a known kind. Fields that the kind does
// not use are ignored.
func BuildOrder(code byte, userID, orderID int64, symbol string, price, qty int64, side Side) (*Order, bool) {
	kind := KindFromCode(code)
	switch kind {
	case NEW:
		return &Order{
			ID:     orderID,
			UserID: userID,
			Symbol: symbol,
			Side:   side,
			Price:  price,
			Qty:    qty,
			Kind:   NEW,
			level:  nullHandle,
		}, true
	case CANCEL:
		return &Order{ID: orderID, UserID: userID, Kind: CANCEL, level: nullHandle}, true
	case FLUSH:
		return &Order{Kind: FLUSH, level: nullHandle}, true
	}
	return nil, false
}
