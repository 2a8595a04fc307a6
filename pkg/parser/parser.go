// Package parser decodes the comma-separated order input format:
//
//	N,user,symbol,price,qty,side,orderId
//	C,user,orderId
//	F
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joripage/matching-engine/pkg/orderbook"
)

var fieldCount = map[orderbook.Kind]int{
	orderbook.NEW:    7,
	orderbook.CANCEL: 3,
	orderbook.FLUSH:  1,
}

// Parse decodes one line. Any error wraps ErrInvalidLine and no order is returned.
func Parse(line string) (*orderbook.Order, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, fmt.Errorf("%w: empty line", ErrInvalidLine)
	}

	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	if len(fields[0]) != 1 {
		return nil, fmt.Errorf("%w: type %q", ErrInvalidLine, fields[0])
	}
	code := fields[0][0]
	kind := orderbook.KindFromCode(code)
	if kind == orderbook.INVALID {
		return nil, fmt.Errorf("%w: type %q", ErrInvalidLine, fields[0])
	}
	if want := fieldCount[kind]; len(fields) != want {
		return nil, fmt.Errorf("%w: %s needs %d fields, got %d", ErrInvalidLine, kind, want, len(fields))
	}

	var (
		user, id, price, qty int64
		symbol               string
		side                 orderbook.Side
		err                  error
	)

	switch kind {
	case orderbook.NEW:
		if user, err = parseInt("user", fields[1]); err != nil {
			return nil, err
		}
		symbol = fields[2]
		if symbol == "" {
			return nil, fmt.Errorf("%w: empty symbol", ErrInvalidLine)
		}
		if price, err = parseInt("price", fields[3]); err != nil {
			return nil, err
		}
		if price < 0 {
			return nil, fmt.Errorf("%w: negative price %d", ErrInvalidLine, price)
		}
		if qty, err = parseInt("qty", fields[4]); err != nil {
			return nil, err
		}
		if qty <= 0 {
			return nil, fmt.Errorf("%w: non-positive qty %d", ErrInvalidLine, qty)
		}
		if side, err = parseSide(fields[5]); err != nil {
			return nil, err
		}
		if id, err = parseInt("orderId", fields[6]); err != nil {
			return nil, err
		}
	case orderbook.CANCEL:
		if user, err = parseInt("user", fields[1]); err != nil {
			return nil, err
		}
		if id, err = parseInt("orderId", fields[2]); err != nil {
			return nil, err
		}
	}

	order, ok := orderbook.BuildOrder(code, user, id, symbol, price, qty, side)
	if !ok {
		return nil, fmt.Errorf("%w: type %q", ErrInvalidLine, fields[0])
	}
	return order, nil
}

func parseInt(name, s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidLine, name, s)
	}
	return v, nil
}

func parseSide(s string) (orderbook.Side, error) {
	switch s {
	case "B":
		return orderbook.BUY, nil
	case "S":
		return orderbook.SELL, nil
	}
	return orderbook.BUY, fmt.Errorf("%w: side %q", ErrInvalidLine, s)
}
