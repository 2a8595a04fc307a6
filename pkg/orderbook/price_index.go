package orderbook

import "slices"

type priceEntry struct {
	price  int64
	handle LevelHandle
}

// priceIndex keeps the levels of one side sorted ascending by price, one entry
// per price. The best bid is the last entry and the best ask the first.
//
// Books are expected to hold a few dozen levels, so lookups scan linearly from
// the best end instead of bisecting.
type priceIndex struct {
	side    Side
	entries []priceEntry
}

func newPriceIndex(side Side, capacity int) *priceIndex {
	return &priceIndex{
		side:    side,
		entries: make([]priceEntry, 0, capacity),
	}
}

func (pi *priceIndex) Len() int {
	return len(pi.entries)
}

func (pi *priceIndex) empty() bool {
	return len(pi.entries) == 0
}

func (pi *priceIndex) best() (priceEntry, bool) {
	if len(pi.entries) == 0 {
		return priceEntry{}, false
	}
	if pi.side == BUY {
		return pi.entries[len(pi.entries)-1], true
	}
	return pi.entries[0], true
}

// locate returns the position of price if present, otherwise the position at
// which it would be inserted.
func (pi *priceIndex) locate(price int64) (int, bool) {
	if pi.side == BUY {
		for i := len(pi.entries) - 1; i >= 0; i-- {
			switch p := pi.entries[i].price; {
			case p == price:
				return i, true
			case p < price:
				return i + 1, false
			}
		}
		return 0, false
	}
	for i := range pi.entries {
		switch p := pi.entries[i].price; {
		case p == price:
			return i, true
		case p > price:
			return i, false
		}
	}
	return len(pi.entries), false
}

func (pi *priceIndex) find(price int64) (LevelHandle, bool) {
	i, ok := pi.locate(price)
	if !ok {
		return nullHandle, false
	}
	return pi.entries[i].handle, true
}

// insert adds a price that is not yet present.
func (pi *priceIndex) insert(price int64, h LevelHandle) {
	i, ok := pi.locate(price)
	if ok {
		pi.entries[i].handle = h
		return
	}
	pi.entries = slices.Insert(pi.entries, i, priceEntry{price: price, handle: h})
}

func (pi *priceIndex) remove(price int64) bool {
	i, ok := pi.locate(price)
	if !ok {
		return false
	}
	pi.entries = slices.Delete(pi.entries, i, i+1)
	return true
}

func (pi *priceIndex) clear() {
	pi.entries = pi.entries[:0]
}

// prices returns the indexed prices, ascending.
func (pi *priceIndex) prices() []int64 {
	out := make([]int64, len(pi.entries))
	for i, e := range pi.entries {
		out[i] = e.price
	}
	return out
}
