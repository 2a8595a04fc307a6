package orderbook

import (
	"fmt"
	"testing"
)

type recordingPublisher struct {
	acks   []Ack
	trades []Trade
	tobs   []TopOfBook
}

func (p *recordingPublisher) PublishAck(a Ack)             { p.acks = append(p.acks, a) }
func (p *recordingPublisher) PublishTrade(t Trade)         { p.trades = append(p.trades, t) }
func (p *recordingPublisher) PublishTopOfBook(t TopOfBook) { p.tobs = append(p.tobs, t) }

func (p *recordingPublisher) reset() {
	p.acks, p.trades, p.tobs = nil, nil, nil
}

func newTestManager(levels int) (*OrderBookManager, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewOrderBookManager(&OrderBookManagerConfig{LevelsPerBook: levels}, pub), pub
}

func newOrder(id, user int64, symbol string, side Side, price, qty int64) *Order {
	o, _ := BuildOrder('N', user, id, symbol, price, qty, side)
	return o
}

func cancelOrder(id, user int64) *Order {
	o, _ := BuildOrder('C', user, id, "", 0, 0, BUY)
	return o
}

// checkInvariants verifies the structural properties every settled book must hold.
func checkInvariants(m *OrderBookManager) error {
	seen := make(map[int64]int)

	for symbol, book := range m.books {
		for _, index := range []*priceIndex{book.bids, book.asks} {
			for i, e := range index.entries {
				if i > 0 && index.entries[i-1].price >= e.price {
					return fmt.Errorf("%s %s: index not strictly ascending at %d", symbol, index.side, i)
				}
				lvl := book.levels.Get(e.handle)
				if !lvl.Valid() {
					return fmt.Errorf("%s: level %d indexed but invalid", symbol, e.price)
				}
				if lvl.Price() != e.price {
					return fmt.Errorf("%s: level price %d indexed at %d", symbol, lvl.Price(), e.price)
				}
				if lvl.Len() == 0 {
					return fmt.Errorf("%s: empty level %d left in index", symbol, e.price)
				}
				var sum int64
				for _, o := range lvl.Orders() {
					if o.Qty <= 0 {
						return fmt.Errorf("%s: resting order %d has qty %d", symbol, o.ID, o.Qty)
					}
					if !o.resting || o.level != e.handle {
						return fmt.Errorf("%s: order %d does not point at its level", symbol, o.ID)
					}
					if o.Side != index.side {
						return fmt.Errorf("%s: order %d on wrong side", symbol, o.ID)
					}
					if _, ok := m.orders[o.ID]; !ok {
						return fmt.Errorf("%s: resting order %d not in registry", symbol, o.ID)
					}
					seen[o.ID]++
					sum += o.Qty
				}
				if sum != lvl.Qty() {
					return fmt.Errorf("%s: level %d aggregate %d != sum %d", symbol, e.price, lvl.Qty(), sum)
				}
			}
		}
		if bid, _, ok := book.BestBid(); ok {
			if ask, _, ok := book.BestAsk(); ok && bid >= ask {
				return fmt.Errorf("%s: crossed book bid %d ask %d", symbol, bid, ask)
			}
		}
		if used := book.bids.Len() + book.asks.Len(); used != book.levels.InUse() {
			return fmt.Errorf("%s: %d levels indexed, %d allocated", symbol, used, book.levels.InUse())
		}
	}

	for id, n := range seen {
		if n != 1 {
			return fmt.Errorf("order %d rests %d times", id, n)
		}
	}
	if len(seen) != len(m.orders) {
		return fmt.Errorf("registry holds %d orders, books hold %d", len(m.orders), len(seen))
	}
	return nil
}

func mustInvariants(t *testing.T, m *OrderBookManager) {
	t.Helper()
	if err := checkInvariants(m); err != nil {
		t.Fatal(err)
	}
}
