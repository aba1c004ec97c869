package mqtt

import "errors"

// ErrReplyTimeout is returned when a supplier does not reply in time.
var ErrReplyTimeout = errors.New("timeout waiting for supplier reply")

// ErrRemote wraps an error reported by the remote supplier.
var ErrRemote = errors.New("remote supplier error")
