package parser

import "errors"

// ErrInvalidLine wraps every reason a line produced no order.
var ErrInvalidLine = errors.New("invalid order line")
