package manifest

import "errors"

// ErrUnknownBuilder marks a kernel entry whose "uses" name has no
// registered builder.
var ErrUnknownBuilder = errors.New("unknown kernel builder")

// ErrBadEndpoint marks an edge endpoint that names no known kernel.
var ErrBadEndpoint = errors.New("bad edge endpoint")
