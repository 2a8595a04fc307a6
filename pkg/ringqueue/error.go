package ringqueue

import "errors"

// ErrQueueFull is returned by PushWait when the backoff policy gives up.
var ErrQueueFull = errors.New("ring queue full")

var errQueueEmpty = errors.New("ring queue empty")
