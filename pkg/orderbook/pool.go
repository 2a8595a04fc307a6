package orderbook

import "fmt"

// LevelHandle names a slot of a Pool. It stays valid until the slot is freed,
// after which a later Alloc may hand the same value out again.
type LevelHandle int32

const nullHandle LevelHandle = -1

// Pool is a fixed-capacity allocator of price levels with a LIFO free list.
// The backing slice is sized once, so slots never move and Alloc/Free are O(1).
// A Pool is owned by one goroutine.
type Pool struct {
	slots []Level
	next  int           // first never-used slot
	free  []LevelHandle // freed handles, most recent last
}

func NewPool(capacity int) *Pool {
	if capacity <= 0 {
		panic(fmt.Sprintf("orderbook: invalid pool capacity %d", capacity))
	}
	return &Pool{
		slots: make([]Level, capacity),
		free:  make([]LevelHandle, 0, capacity),
	}
}

// Alloc returns a handle to an empty level, reusing the most recently freed
// handle first. It fails with ErrPoolExhausted when every slot is in use.
func (p *Pool) Alloc() (LevelHandle, error) {
	var h LevelHandle
	if n := len(p.free); n > 0 {
		h = p.free[n-1]
		p.free = p.free[:n-1]
	} else if p.next < len(p.slots) {
		h = LevelHandle(p.next)
		p.next++
	} else {
		return nullHandle, ErrPoolExhausted
	}
	p.slots[h].reset()
	return h, nil
}

// Free returns h to the free list. The level it names must not be used afterwards.
func (p *Pool) Free(h LevelHandle) {
	p.slots[h].valid = false
	p.free = append(p.free, h)
}

// Get dereferences a live handle.
func (p *Pool) Get(h LevelHandle) *Level {
	return &p.slots[h]
}

// Clear releases every slot at once.
func (p *Pool) Clear() {
	for i := 0; i < p.next; i++ {
		p.slots[i].FlushOrders()
	}
	p.next = 0
	p.free = p.free[:0]
}

// Cap is the fixed number of slots.
func (p *Pool) Cap() int {
	return len(p.slots)
}

// InUse is the number of allocated, not yet freed, slots.
func (p *Pool) InUse() int {
	return p.next - len(p.free)
}

// Available is the number of Alloc calls that can succeed before exhaustion.
func (p *Pool) Available() int {
	return len(p.slots) - p.InUse()
}
