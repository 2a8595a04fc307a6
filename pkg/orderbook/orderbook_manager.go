package orderbook

import (
	"fmt"

	"go.uber.org/zap"
)

const DefaultLevelsPerBook = 128

type OrderBookManagerConfig struct {
	// LevelsPerBook is the level pool capacity of each book, both sides together.
	LevelsPerBook int
	Logger        *zap.Logger
}

// OrderBookManager routes orders to per-symbol books and owns every active
// order through its registry. It is not safe for concurrent use; one goroutine
// drives it.
type OrderBookManager struct {
	books     map[string]*orderBook
	orders    map[int64]*Order
	publisher Publisher
	cfg       OrderBookManagerConfig
	logger    *zap.Logger
}

func NewOrderBookManager(cfg *OrderBookManagerConfig, publisher Publisher) *OrderBookManager {
	c := OrderBookManagerConfig{}
	if cfg != nil {
		c = *cfg
	}
	if c.LevelsPerBook <= 0 {
		c.LevelsPerBook = DefaultLevelsPerBook
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	return &OrderBookManager{
		books:     make(map[string]*orderBook),
		orders:    make(map[int64]*Order),
		publisher: publisher,
		cfg:       c,
		logger:    c.Logger,
	}
}

// Handle dispatches one decoded order by kind.
func (s *OrderBookManager) Handle(order *Order) error {
	switch order.Kind {
	case NEW:
		return s.AddOrder(order)
	case CANCEL:
		return s.CancelOrder(order)
	case FLUSH:
		s.Flush()
		return nil
	}
	return fmt.Errorf("%w: %s", errInvalidOrderKind, order.Kind)
}

// AddOrder acknowledges order, registers it and hands it to its symbol's book.
// An order that does not end up resting is released before AddOrder returns.
func (s *OrderBookManager) AddOrder(order *Order) error {
	if _, ok := s.orders[order.ID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateOrder, order.ID)
	}

	s.ackOrder(order)

	book := s.getOrCreateBook(order.Symbol)
	order.book = book
	s.orders[order.ID] = order

	err := book.addOrder(order)
	if !order.resting {
		s.release(order)
	}
	if err != nil {
		s.logger.Warn("order not rested",
			zap.String("symbol", order.Symbol),
			zap.Int64("order_id", order.ID),
			zap.Int64("price", order.Price),
			zap.Int64("unfilled_qty", order.Qty),
			zap.Error(err))
		return err
	}
	return nil
}

// CancelOrder acknowledges cancel and removes the active order it names.
func (s *OrderBookManager) CancelOrder(cancel *Order) error {
	order, ok := s.orders[cancel.ID]
	if ok && cancel.Symbol == "" {
		cancel.Symbol = order.Symbol
	}
	s.ackOrder(cancel)

	if !ok {
		s.logger.Warn("cancel for unknown order", zap.Int64("order_id", cancel.ID), zap.Int64("user_id", cancel.UserID))
		return fmt.Errorf("%w: %d", ErrOrderNotFound, cancel.ID)
	}

	err := order.book.cancelOrder(order)
	s.release(order)
	if err != nil {
		s.logger.Error("registry and book disagree",
			zap.String("symbol", order.Symbol),
			zap.Int64("order_id", order.ID),
			zap.Error(err))
		return err
	}
	return nil
}

// Flush empties every book and the registry without per-order cancels.
func (s *OrderBookManager) Flush() {
	for _, book := range s.books {
		book.flushOrders()
	}
	clear(s.orders)
}

// TopOfBook returns the current best of both sides for symbol.
func (s *OrderBookManager) TopOfBook(symbol string) (bid, ask TopOfBook) {
	book, ok := s.books[symbol]
	if !ok {
		return TopOfBook{Symbol: symbol, Side: BUY, NoMarket: true}, TopOfBook{Symbol: symbol, Side: SELL, NoMarket: true}
	}
	t := book.top()
	return book.topOfBook(BUY, t.bid), book.topOfBook(SELL, t.ask)
}

// ActiveOrders is the number of orders currently in the registry.
func (s *OrderBookManager) ActiveOrders() int {
	return len(s.orders)
}

// Symbols is the number of books created so far.
func (s *OrderBookManager) Symbols() int {
	return len(s.books)
}

func (s *OrderBookManager) getOrCreateBook(symbol string) *orderBook {
	if book, ok := s.books[symbol]; ok {
		return book
	}
	book := newOrderBook(symbol, s.cfg.LevelsPerBook, s)
	s.books[symbol] = book
	s.logger.Debug("book created", zap.String("symbol", symbol), zap.Int("levels", s.cfg.LevelsPerBook))
	return book
}

func (s *OrderBookManager) release(order *Order) {
	delete(s.orders, order.ID)
	order.book = nil
}

func (s *OrderBookManager) ackOrder(order *Order) {
	s.publisher.PublishAck(Ack{Symbol: order.Symbol, UserID: order.UserID, OrderID: order.ID})
}

func (s *OrderBookManager) publishTrade(aggressor, resting *Order, qty int64) {
	buy, sell := aggressor, resting
	if aggressor.Side == SELL {
		buy, sell = resting, aggressor
	}
	s.publisher.PublishTrade(Trade{
		Symbol:      resting.Symbol,
		BuyUserID:   buy.UserID,
		BuyOrderID:  buy.ID,
		SellUserID:  sell.UserID,
		SellOrderID: sell.ID,
		Price:       resting.Price,
		Qty:         qty,
	})
}

func (s *OrderBookManager) onTrade(aggressor, resting *Order, qty int64) {
	s.publishTrade(aggressor, resting, qty)
}

func (s *OrderBookManager) onFilled(resting *Order) {
	s.release(resting)
}

func (s *OrderBookManager) onTopOfBook(tob TopOfBook) {
	s.publisher.PublishTopOfBook(tob)
}
