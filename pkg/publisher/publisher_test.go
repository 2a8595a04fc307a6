package publisher

import (
	"bytes"
	"context"
	"testing"

	"github.com/joripage/matching-engine/pkg/orderbook"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "A,1,101", FormatAck(orderbook.Ack{UserID: 1, OrderID: 101}))
	assert.Equal(t, "T,1,1,2,102,11,100", FormatTrade(orderbook.Trade{
		BuyUserID: 1, BuyOrderID: 1, SellUserID: 2, SellOrderID: 102, Price: 11, Qty: 100,
	}))
	assert.Equal(t, "B,B,10,100", FormatTopOfBook(orderbook.TopOfBook{Side: orderbook.BUY, Price: 10, Qty: 100}))
	assert.Equal(t, "B,S,-,-", FormatTopOfBook(orderbook.TopOfBook{Side: orderbook.SELL, NoMarket: true}))
	assert.Equal(t, "B,S,-,-", FormatTopOfBook(orderbook.TopOfBook{Side: orderbook.SELL, Price: 10}))
}

func TestWriterSink(t *testing.T) {
	var out bytes.Buffer
	s := NewWriterSink(&out, nil)

	s.PublishAck(orderbook.Ack{UserID: 1, OrderID: 1})
	s.PublishTopOfBook(orderbook.TopOfBook{Side: orderbook.BUY, Price: 10, Qty: 100})
	s.PublishTrade(orderbook.Trade{BuyUserID: 1, BuyOrderID: 1, SellUserID: 2, SellOrderID: 2, Price: 10, Qty: 50})
	assert.Empty(t, out.String(), "output is buffered until flush")

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, "A,1,1\nB,B,10,100\nT,1,1,2,2,10,50\n", out.String())
	require.NoError(t, s.Close())
}

type countingSink struct {
	Stats
	flushed, closed int
}

func (c *countingSink) Flush(context.Context) error { c.flushed++; return nil }
func (c *countingSink) Close() error                { c.closed++; return nil }

func TestFanout(t *testing.T) {
	a := &countingSink{Stats: *NewStats(nil)}
	b := &countingSink{Stats: *NewStats(nil)}
	f := Fanout{a, b}

	f.PublishAck(orderbook.Ack{})
	f.PublishTrade(orderbook.Trade{Symbol: "X", Price: 1, Qty: 1})
	f.PublishTopOfBook(orderbook.TopOfBook{})
	require.NoError(t, f.Flush(context.Background()))
	require.NoError(t, f.Close())

	for _, s := range []*countingSink{a, b} {
		assert.EqualValues(t, 1, s.acks)
		assert.EqualValues(t, 1, s.tobs)
		st, ok := s.Symbol("X")
		assert.True(t, ok)
		assert.EqualValues(t, 1, st.Trades)
		assert.Equal(t, 1, s.flushed)
		assert.Equal(t, 1, s.closed)
	}
}

func TestStats(t *testing.T) {
	s := NewStats(nil)
	s.PublishTrade(orderbook.Trade{Symbol: "IBM", Price: 10, Qty: 50})
	s.PublishTrade(orderbook.Trade{Symbol: "IBM", Price: 12, Qty: 150})
	s.PublishTrade(orderbook.Trade{Symbol: "AAPL", Price: 9_000_000_000, Qty: 9_000_000_000})

	ibm, ok := s.Symbol("IBM")
	require.True(t, ok)
	assert.EqualValues(t, 2, ibm.Trades)
	assert.EqualValues(t, 200, ibm.Volume)
	assert.True(t, ibm.Notional.Equal(decimal.NewFromInt(2300)))
	assert.Equal(t, "11.5", ibm.VWAP().String())

	aapl, _ := s.Symbol("AAPL")
	assert.Equal(t, "81000000000000000000", aapl.Notional.String())

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "AAPL", snap[0].Symbol)

	_, ok = s.Symbol("NONE")
	assert.False(t, ok)
	assert.True(t, SymbolStats{}.VWAP().IsZero())
	assert.NoError(t, s.Close())
}
