package engine

import "errors"

var ErrAlreadyRunning = errors.New("engine already running")
