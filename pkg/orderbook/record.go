package orderbook

// Ack acknowledges an accepted New or Cancel before it touches any book.
type Ack struct {
	// Symbol is empty for a cancel of an id that is not active.
	Symbol  string
	UserID  int64
	OrderID int64
}

// Trade is one execution between an aggressor and a resting order. Price is
// always the resting order's price.
type Trade struct {
	Symbol      string
	BuyUserID   int64
	BuyOrderID  int64
	SellUserID  int64
	SellOrderID int64
	Price       int64
	Qty         int64
}

// TopOfBook reports the new best price and quantity of one side. NoMarket is
// set when the side became empty; Price and Qty are zero then.
type TopOfBook struct {
	Symbol   string
	Side     Side
	Price    int64
	Qty      int64
	NoMarket bool
}

// Publisher receives the records emitted by the OrderManager. Calls are made
// from the goroutine that drives the manager, in emission order.
type Publisher interface {
	PublishAck(Ack)
	PublishTrade(Trade)
	PublishTopOfBook(TopOfBook)
}
