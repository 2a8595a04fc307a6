// Package publisher holds the sinks that receive acknowledgement, trade and
// top-of-book records from the order book manager.
package publisher

import (
	"strconv"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

// Record type codes, the first field of every output line.
const (
	TypeAck       = "A"
	TypeTrade     = "T"
	TypeTopOfBook = "B"
)

const noMarket = "-"

// AppendAck appends "A,user,orderId".
func AppendAck(b []byte, a orderbook.Ack) []byte {
	b = append(b, TypeAck...)
	b = append(b, ',')
	b = strconv.AppendInt(b, a.UserID, 10)
	b = append(b, ',')
	return strconv.AppendInt(b, a.OrderID, 10)
}

// AppendTrade appends "T,buyerUser,buyerOrderId,sellerUser,sellerOrderId,price,qty".
func AppendTrade(b []byte, t orderbook.Trade) []byte {
	b = append(b, TypeTrade...)
	for _, v := range [...]int64{t.BuyUserID, t.BuyOrderID, t.SellUserID, t.SellOrderID, t.Price, t.Qty} {
		b = append(b, ',')
		b = strconv.AppendInt(b, v, 10)
	}
	return b
}

// AppendTopOfBook appends "B,side,price,qty", with "-" for both when the side
// has no market.
func AppendTopOfBook(b []byte, t orderbook.TopOfBook) []byte {
	b = append(b, TypeTopOfBook...)
	b = append(b, ',')
	b = append(b, t.Side.String()...)
	if t.NoMarket || t.Price == 0 || t.Qty == 0 {
		return append(b, ","+noMarket+","+noMarket...)
	}
	b = append(b, ',')
	b = strconv.AppendInt(b, t.Price, 10)
	b = append(b, ',')
	return strconv.AppendInt(b, t.Qty, 10)
}

func FormatAck(a orderbook.Ack) string             { return string(AppendAck(nil, a)) }
func FormatTrade(t orderbook.Trade) string         { return string(AppendTrade(nil, t)) }
func FormatTopOfBook(t orderbook.TopOfBook) string { return string(AppendTopOfBook(nil, t)) }
