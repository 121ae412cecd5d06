package scheduler

import "errors"

// ErrInvalidConfig is returned for out-of-range schedule values
var ErrInvalidConfig = errors.New("invalid scheduler configuration")
