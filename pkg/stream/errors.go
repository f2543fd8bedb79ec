package stream

import "errors"

// ErrClosed is returned when pushing into a closed channel, or popping from
// a channel that is closed and drained.
var ErrClosed = errors.New("channel closed")

// ErrTypeMismatch is returned when a typed view or a connection disagrees
// with the element type a channel or port carries.
var ErrTypeMismatch = errors.New("element type mismatch")

// ErrBadView is returned when a block slice falls outside the block's range.
var ErrBadView = errors.New("view outside block range")
