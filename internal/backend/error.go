package backend

import "errors"

// ErrInstanceClosed is returned when inference is requested on an
// instance that has been closed.
var ErrInstanceClosed = errors.New("backend: instance is closed")
