// file: pkg/orderbook/orderbook.go

package orderbook

import "fmt"

// bookListener is how a book reports back to its manager.
type bookListener interface {
	onTrade(aggressor, resting *Order, qty int64)
	onFilled(resting *Order)
	onTopOfBook(tob TopOfBook)
}

type orderBook struct {
	symbol string

	bids *priceIndex
	asks *priceIndex

	levels *Pool

	listener bookListener
}

type sideTop struct {
	price int64
	qty   int64
	ok    bool
}

type bookTop struct {
	bid sideTop
	ask sideTop
}

func newOrderBook(symbol string, levelsPerBook int, listener bookListener) *orderBook {
	return &orderBook{
		symbol:   symbol,
		bids:     newPriceIndex(BUY, levelsPerBook),
		asks:     newPriceIndex(SELL, levelsPerBook),
		levels:   NewPool(levelsPerBook),
		listener: listener,
	}
}

func (ob *orderBook) sideIndex(side Side) *priceIndex {
	if side == BUY {
		return ob.bids
	}
	return ob.asks
}

func (ob *orderBook) bestOf(side Side) sideTop {
	e, ok := ob.sideIndex(side).best()
	if !ok {
		return sideTop{}
	}
	return sideTop{price: e.price, qty: ob.levels.Get(e.handle).Qty(), ok: true}
}

// BestBid returns the highest bid price and the quantity resting at it.
func (ob *orderBook) BestBid() (price, qty int64, ok bool) {
	t := ob.bestOf(BUY)
	return t.price, t.qty, t.ok
}

// BestAsk returns the lowest ask price and the quantity resting at it.
func (ob *orderBook) BestAsk() (price, qty int64, ok bool) {
	t := ob.bestOf(SELL)
	return t.price, t.qty, t.ok
}

func (ob *orderBook) top() bookTop {
	return bookTop{bid: ob.bestOf(BUY), ask: ob.bestOf(SELL)}
}

// addOrder matches order against the opposite side and rests what is left of
// a limit order. Top of book changes are published once, after the whole
// operation.
func (ob *orderBook) addOrder(order *Order) error {
	before := ob.top()
	err := ob.executeOrder(order)
	ob.publishTopChanges(before)
	return err
}

func (ob *orderBook) executeOrder(order *Order) error {
	if order.IsMarket() {
		// market orders never rest; with no liquidity they are dropped
		if ob.crosses(order) {
			ob.matchOrder(order)
		}
		return nil
	}

	if ob.crosses(order) {
		ob.matchOrder(order)
	}
	if order.Qty > 0 {
		return ob.insertOrder(order)
	}
	return nil
}

// crosses reports whether order can trade against the opposite best level.
func (ob *orderBook) crosses(order *Order) bool {
	best, ok := ob.sideIndex(order.Side.opposite()).best()
	if !ok {
		return false
	}
	if order.IsMarket() {
		return true
	}
	if order.Side == BUY {
		return order.Price >= best.price
	}
	return order.Price <= best.price
}

func (ob *orderBook) matchOrder(order *Order) {
	counter := ob.sideIndex(order.Side.opposite())

	for order.Qty > 0 && ob.crosses(order) {
		best, _ := counter.best()
		lvl := ob.levels.Get(best.handle)

		matchQty := min(order.Qty, lvl.Front().Qty)
		order.Qty -= matchQty
		resting, done := lvl.fillFront(matchQty)

		ob.listener.onTrade(order, resting, matchQty)

		if done {
			resting.resting = false
			resting.level = nullHandle
			if lvl.Len() == 0 {
				ob.deleteLevel(counter, best)
			}
			ob.listener.onFilled(resting)
		}
	}
}

func (ob *orderBook) insertOrder(order *Order) error {
	index := ob.sideIndex(order.Side)

	h, ok := index.find(order.Price)
	if !ok {
		var err error
		h, err = ob.levels.Alloc()
		if err != nil {
			return fmt.Errorf("%w: symbol %s, side %s, price %d", err, ob.symbol, order.Side, order.Price)
		}
		ob.levels.Get(h).price = order.Price
		index.insert(order.Price, h)
	}

	ob.levels.Get(h).AddOrder(order)
	order.level = h
	order.resting = true
	return nil
}

func (ob *orderBook) cancelOrder(order *Order) error {
	if !order.resting {
		return fmt.Errorf("%w: order %d is not resting", ErrOrderNotInLevel, order.ID)
	}

	before := ob.top()

	h := order.level
	lvl := ob.levels.Get(h)
	if err := lvl.CancelOrder(order); err != nil {
		return err
	}
	order.resting = false
	order.level = nullHandle

	if lvl.Len() == 0 {
		ob.deleteLevel(ob.sideIndex(order.Side), priceEntry{price: order.Price, handle: h})
	}

	ob.publishTopChanges(before)
	return nil
}

func (ob *orderBook) deleteLevel(index *priceIndex, e priceEntry) {
	index.remove(e.price)
	ob.levels.Free(e.handle)
}

func (ob *orderBook) flushOrders() {
	ob.bids.clear()
	ob.asks.clear()
	ob.levels.Clear()
}

func (ob *orderBook) publishTopChanges(before bookTop) {
	after := ob.top()
	if after.bid != before.bid {
		ob.listener.onTopOfBook(ob.topOfBook(BUY, after.bid))
	}
	if after.ask != before.ask {
		ob.listener.onTopOfBook(ob.topOfBook(SELL, after.ask))
	}
}

func (ob *orderBook) topOfBook(side Side, t sideTop) TopOfBook {
	return TopOfBook{
		Symbol:   ob.symbol,
		Side:     side,
		Price:    t.price,
		Qty:      t.qty,
		NoMarket: !t.ok,
	}
}
