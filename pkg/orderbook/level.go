package orderbook

import (
	"fmt"

	"github.com/gammazero/deque"
)

// Level is the FIFO of resting orders at one price. Orders are referenced,
// not owned; the manager's registry owns them.
type Level struct {
	price  int64
	qty    int64 // sum of remaining qty of orders
	orders deque.Deque[*Order]
	valid  bool
}

func (l *Level) reset() {
	l.orders.Clear()
	l.price = 0
	l.qty = 0
	l.valid = true
}

func (l *Level) Price() int64 { return l.price }
func (l *Level) Qty() int64   { return l.qty }
func (l *Level) Len() int     { return l.orders.Len() }
func (l *Level) Valid() bool  { return l.valid }

// AddOrder appends o at the back of the time queue.
func (l *Level) AddOrder(o *Order) {
	if o.Price != l.price {
		panic(fmt.Sprintf("orderbook: order %d at price %d added to level %d", o.ID, o.Price, l.price))
	}
	l.qty += o.Qty
	l.orders.PushBack(o)
}

// CancelOrder removes o by id. Depth at one price is small, so a linear scan is used.
func (l *Level) CancelOrder(o *Order) error {
	i := l.orders.Index(func(r *Order) bool { return r.ID == o.ID })
	if i < 0 {
		return fmt.Errorf("%w: order %d, price %d", ErrOrderNotInLevel, o.ID, l.price)
	}
	removed := l.orders.Remove(i)
	l.qty -= removed.Qty
	return nil
}

// FlushOrders drops every order and invalidates the level.
func (l *Level) FlushOrders() {
	l.orders.Clear()
	l.qty = 0
	l.valid = false
}

// Front is the oldest resting order, or nil.
func (l *Level) Front() *Order {
	if l.orders.Len() == 0 {
		return nil
	}
	return l.orders.Front()
}

// Orders returns the resting orders in time priority.
func (l *Level) Orders() []*Order {
	out := make([]*Order, 0, l.orders.Len())
	for i := 0; i < l.orders.Len(); i++ {
		out = append(out, l.orders.At(i))
	}
	return out
}

// fillFront executes qty against the front order and pops it once it is done.
func (l *Level) fillFront(qty int64) (front *Order, done bool) {
	front = l.orders.Front()
	front.Qty -= qty
	l.qty -= qty
	if front.Qty == 0 {
		l.orders.PopFront()
		return front, true
	}
	return front, false
}
