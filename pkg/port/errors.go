package port

import "errors"

// ErrDuplicateName is returned when a declaration reuses a port name.
var ErrDuplicateName = errors.New("duplicate port name")

// ErrPortNotFound is returned when a name has no declared port.
var ErrPortNotFound = errors.New("port not found")

// ErrPortCardinality is returned by Access.Single when the registry does
// not hold exactly one port.
var ErrPortCardinality = errors.New("registry does not hold exactly one port")

// ErrPartitionPrecondition is returned when a partitioned declaration has
// no block to split, a non-positive partition count, a block smaller than
// the partition count, or a block of the wrong element type.
var ErrPartitionPrecondition = errors.New("partition precondition failed")

// ErrUnknownBacking is returned when a backing selection has no factory in
// the port's table.
var ErrUnknownBacking = errors.New("no factory for backing selection")

// ErrAlreadyBound is returned when a selection or adoption arrives after
// the port's channel was constructed.
var ErrAlreadyBound = errors.New("port already bound")

// ErrAlreadyConnected is returned when a port is wired to a second peer.
var ErrAlreadyConnected = errors.New("port already connected")
