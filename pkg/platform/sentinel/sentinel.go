package sentinel

import "errors"

// ErrUnavailable marks an infrastructure failure: the backing database,
// Redis instance, or broker could not be reached. Stores wrap transport
// errors with it so callers can separate "the dependency is down" from
// domain outcomes and decide whether to fail open or surface the error.
//
// Validation failures never carry this sentinel; those use
// pkg/domain-errors codes.
var ErrUnavailable = errors.New("unavailable")
