// Package engine runs the ingestion pipeline: one goroutine decodes input
// lines and pushes orders into a ring queue, another drains the queue and
// drives the order book manager.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/orderbook"
	"github.com/joripage/matching-engine/pkg/parser"
	"github.com/joripage/matching-engine/pkg/publisher"
	"github.com/joripage/matching-engine/pkg/ringqueue"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	LevelsPerBook   int
	QueueCapacity   int
	ProducerBackoff ringqueue.BackoffConfig
	ConsumerBackoff ringqueue.BackoffConfig
}

// Stats counts what happened to the input of a run.
type Stats struct {
	// Processed is the number of orders handed to the manager.
	Processed uint64
	// Invalid is the number of input lines the parser dropped.
	Invalid uint64
	// Rejected is the number of processed orders the manager returned an error for.
	Rejected uint64
}

type Engine struct {
	cfg     Config
	queue   *ringqueue.Ring[*orderbook.Order]
	manager *orderbook.OrderBookManager
	sink    publisher.Sink
	logger  *logging.Logger

	running   atomic.Bool
	processed atomic.Uint64
	invalid   atomic.Uint64
	rejected  atomic.Uint64
}

// New builds an engine publishing to sink. The engine owns neither sink nor
// logger; the caller closes them.
func New(cfg Config, sink publisher.Sink, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 65535
	}

	return &Engine{
		cfg:   cfg,
		queue: ringqueue.New[*orderbook.Order](cfg.QueueCapacity),
		manager: orderbook.NewOrderBookManager(&orderbook.OrderBookManagerConfig{
			LevelsPerBook: cfg.LevelsPerBook,
			Logger:        logger.Zap().Named("orderbook"),
		}, sink),
		sink:   sink,
		logger: logger,
	}
}

// Manager exposes the order book manager for queries once Run has returned.
func (e *Engine) Manager() *orderbook.OrderBookManager {
	return e.manager
}

func (e *Engine) Stats() Stats {
	return Stats{
		Processed: e.processed.Load(),
		Invalid:   e.invalid.Load(),
		Rejected:  e.rejected.Load(),
	}
}

// Run consumes src until it reports io.EOF and every queued order has been
// processed, or until ctx is done. Sinks are flushed before Run returns.
func (e *Engine) Run(ctx context.Context, src LineSource) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer e.running.Store(false)

	logger, ctx := e.logger.WithRunID(ctx)
	logger.Info(ctx, "engine started",
		zap.Int("queue_capacity", e.queue.Cap()),
		zap.Int("levels_per_book", e.cfg.LevelsPerBook))

	start := time.Now()
	done := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(done)
		return e.produce(gctx, src)
	})
	g.Go(func() error {
		return e.consume(gctx, done)
	})
	err := g.Wait()

	if ferr := e.sink.Flush(context.WithoutCancel(ctx)); ferr != nil {
		logger.Warn(ctx, "final sink flush failed", zap.Error(ferr))
	}

	stats := e.Stats()
	logger.Info(ctx, "engine stopped",
		zap.Uint64("processed", stats.Processed),
		zap.Uint64("invalid", stats.Invalid),
		zap.Uint64("rejected", stats.Rejected),
		zap.Int("active_orders", e.manager.ActiveOrders()),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))
	return err
}

func (e *Engine) produce(ctx context.Context, src LineSource) error {
	logger := logging.FromContext(ctx, e.logger)
	b := e.cfg.ProducerBackoff.NewBackOff()
	for {
		line, err := src.ReadLine(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		order, err := parser.Parse(line)
		if err != nil {
			e.invalid.Add(1)
			logger.Debug(ctx, "dropping input line", zap.String("line", line), zap.Error(err))
			continue
		}

		if err := e.queue.PushWait(ctx, order, b); err != nil {
			return fmt.Errorf("enqueue order %d: %w", order.ID, err)
		}
	}
}

func (e *Engine) consume(ctx context.Context, done <-chan struct{}) error {
	logger := logging.FromContext(ctx, e.logger)
	idle := e.cfg.ConsumerBackoff.NewBackOff()

	// waitCtx also ends when the producer finishes, so an idle wait never
	// outlives the input.
	waitCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		select {
		case <-done:
			stop()
		case <-waitCtx.Done():
		}
	}()

	flushed := true
	for {
		if order, ok := e.queue.Pop(); ok {
			e.process(ctx, order, logger)
			flushed = false
			continue
		}

		select {
		case <-done:
			// every push happened before done was closed
			for {
				order, ok := e.queue.Pop()
				if !ok {
					return nil
				}
				e.process(ctx, order, logger)
			}
		default:
		}

		if !flushed {
			if err := e.sink.Flush(ctx); err != nil {
				logger.Warn(ctx, "sink flush failed", zap.Error(err))
			}
			flushed = true
		}

		order, ok, err := e.queue.PopWait(waitCtx, idle)
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			// producer finished; drain on the next pass
			continue
		}
		if ok {
			e.process(ctx, order, logger)
			flushed = false
		}
	}
}

func (e *Engine) process(ctx context.Context, order *orderbook.Order, logger *logging.Logger) {
	e.processed.Add(1)
	if err := e.manager.Handle(order); err != nil {
		e.rejected.Add(1)
		logger.Debug(ctx, "order rejected", zap.Int64("order_id", order.ID), zap.Error(err))
	}
}
