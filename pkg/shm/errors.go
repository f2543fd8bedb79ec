package shm

import "errors"

// ErrPointerData is returned when the element type carries Go pointers.
var ErrPointerData = errors.New("shm: element type contains pointers")

// ErrUnsupported is returned on platforms without shared anonymous mappings.
var ErrUnsupported = errors.New("shm: not supported on this platform")
