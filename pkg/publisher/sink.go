package publisher

import (
	"context"
	"errors"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

// Sink is a Publisher that may buffer. The engine flushes sinks whenever its
// input queue runs dry and once more before closing them.
type Sink interface {
	orderbook.Publisher
	Flush(ctx context.Context) error
	Close() error
}

// Fanout forwards every record to each sink in order.
type Fanout []Sink

func (f Fanout) PublishAck(a orderbook.Ack) {
	for _, s := range f {
		s.PublishAck(a)
	}
}

func (f Fanout) PublishTrade(t orderbook.Trade) {
	for _, s := range f {
		s.PublishTrade(t)
	}
}

func (f Fanout) PublishTopOfBook(t orderbook.TopOfBook) {
	for _, s := range f {
		s.PublishTopOfBook(t)
	}
}

func (f Fanout) Flush(ctx context.Context) error {
	var errs []error
	for _, s := range f {
		errs = append(errs, s.Flush(ctx))
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, s := range f {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
