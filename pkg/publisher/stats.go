package publisher

import (
	"context"
	"sort"

	"github.com/joripage/matching-engine/pkg/orderbook"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SymbolStats is the traded activity of one symbol.
type SymbolStats struct {
	Symbol   string
	Trades   int64
	Volume   int64
	Notional decimal.Decimal // sum of price*qty
}

// VWAP is the volume weighted average trade price, zero with no trades.
func (s SymbolStats) VWAP() decimal.Decimal {
	if s.Volume == 0 {
		return decimal.Zero
	}
	return s.Notional.Div(decimal.NewFromInt(s.Volume))
}

// Stats accumulates per-symbol turnover from trade records and counts the
// other record types. Notional is kept in decimal so long runs cannot overflow.
type Stats struct {
	symbols map[string]*SymbolStats
	acks    int64
	tobs    int64
	logger  *zap.Logger
}

func NewStats(logger *zap.Logger) *Stats {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stats{symbols: make(map[string]*SymbolStats), logger: logger}
}

func (s *Stats) PublishAck(orderbook.Ack) { s.acks++ }

func (s *Stats) PublishTopOfBook(orderbook.TopOfBook) { s.tobs++ }

func (s *Stats) PublishTrade(t orderbook.Trade) {
	st, ok := s.symbols[t.Symbol]
	if !ok {
		st = &SymbolStats{Symbol: t.Symbol, Notional: decimal.Zero}
		s.symbols[t.Symbol] = st
	}
	st.Trades++
	st.Volume += t.Qty
	st.Notional = st.Notional.Add(decimal.NewFromInt(t.Price).Mul(decimal.NewFromInt(t.Qty)))
}

// Symbol returns the stats of one symbol.
func (s *Stats) Symbol(symbol string) (SymbolStats, bool) {
	st, ok := s.symbols[symbol]
	if !ok {
		return SymbolStats{Symbol: symbol, Notional: decimal.Zero}, false
	}
	return *st, true
}

// Snapshot returns every symbol's stats sorted by symbol.
func (s *Stats) Snapshot() []SymbolStats {
	out := make([]SymbolStats, 0, len(s.symbols))
	for _, st := range s.symbols {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func (s *Stats) Flush(ctx context.Context) error {
	return nil
}

// Close logs a summary line per symbol.
func (s *Stats) Close() error {
	s.logger.Info("session totals", zap.Int64("acks", s.acks), zap.Int64("top_of_book_changes", s.tobs))
	for _, st := range s.Snapshot() {
		s.logger.Info("symbol turnover",
			zap.String("symbol", st.Symbol),
			zap.Int64("trades", st.Trades),
			zap.Int64("volume", st.Volume),
			zap.String("notional", st.Notional.String()),
			zap.String("vwap", st.VWAP().StringFixed(4)))
	}
	return nil
}
