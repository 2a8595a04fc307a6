package orderbook

import (
	"testing"

	"pgregory.net/rapid"
)

// Random streams of new and cancel events against a small book must keep
// every structural invariant after each event.
func TestProperty_InvariantsHoldAfterEveryEvent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m, pub := newTestManager(64)
		var nextID int64
		var issued []int64

		steps := rapid.IntRange(1, 200).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if len(issued) > 0 && rapid.IntRange(0, 3).Draw(t, "cancel") == 0 {
				id := rapid.SampledFrom(issued).Draw(t, "id")
				m.Handle(cancelOrder(id, 1))
			} else {
				nextID++
				issued = append(issued, nextID)
				side := rapid.SampledFrom([]Side{BUY, SELL}).Draw(t, "side")
				price := rapid.Int64Range(0, 20).Draw(t, "price")
				qty := rapid.Int64Range(1, 50).Draw(t, "qty")
				acks := len(pub.acks)
				trades := len(pub.trades)
				if err := m.Handle(newOrder(nextID, nextID%5, "SYM", side, price, qty)); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if len(pub.acks) != acks+1 {
					t.Fatalf("expected exactly one ack")
				}
				var filled int64
				for _, tr := range pub.trades[trades:] {
					if tr.Qty <= 0 || tr.Qty > qty {
						t.Fatalf("invalid trade qty %d", tr.Qty)
					}
					filled += tr.Qty
				}
				if filled > qty {
					t.Fatalf("filled %d of %d", filled, qty)
				}
			}
			if err := checkInvariants(m); err != nil {
				t.Fatal(err)
			}
		}
	})
}

// Resting orders at N distinct prices, cancelled in any order, leave an empty
// book and a fully available pool.
func TestProperty_CancelRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		const levels = 32
		m, _ := newTestManager(levels)

		n := rapid.IntRange(1, levels).Draw(t, "n")
		split := rapid.IntRange(0, n).Draw(t, "split")
		ids := make([]int64, 0, n)
		for i := 0; i < n; i++ {
			id := int64(i + 1)
			// bids below 1000, asks above: nothing crosses
			if i < split {
				m.Handle(newOrder(id, 1, "SYM", BUY, int64(999-i), 1))
			} else {
				m.Handle(newOrder(id, 1, "SYM", SELL, int64(1001+i), 1))
			}
			ids = append(ids, id)
		}

		order := rapid.Permutation(ids).Draw(t, "order")
		for _, id := range order {
			if err := m.Handle(cancelOrder(id, 1)); err != nil {
				t.Fatalf("cancel %d: %v", id, err)
			}
		}

		book := m.books["SYM"]
		if book.bids.Len() != 0 || book.asks.Len() != 0 {
			t.Fatalf("expected empty indexes")
		}
		if book.levels.Available() != book.levels.Cap() {
			t.Fatalf("expected %d free levels, got %d", book.levels.Cap(), book.levels.Available())
		}
		if m.ActiveOrders() != 0 {
			t.Fatalf("expected empty registry")
		}
	})
}

// Every trade prints at the resting order's price.
func TestProperty_TradePriceIsRestingPrice(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m, pub := newTestManager(8)

		restSide := rapid.SampledFrom([]Side{BUY, SELL}).Draw(t, "restSide")
		restPrice := rapid.Int64Range(1, 1000).Draw(t, "restPrice")
		m.Handle(newOrder(1, 1, "SYM", restSide, restPrice, 10))

		improve := rapid.Int64Range(0, 100).Draw(t, "improve")
		aggPrice := restPrice + improve
		if restSide == BUY {
			aggPrice = max(restPrice-improve, 1)
		}
		if rapid.Bool().Draw(t, "market") {
			aggPrice = MarketPrice
		}
		m.Handle(newOrder(2, 2, "SYM", restSide.opposite(), aggPrice, 10))

		if len(pub.trades) != 1 {
			t.Fatalf("expected one trade, got %d", len(pub.trades))
		}
		if pub.trades[0].Price != restPrice {
			t.Fatalf("trade printed at %d, resting price %d", pub.trades[0].Price, restPrice)
		}
	})
}
