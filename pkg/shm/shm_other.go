//go:build !unix

package shm

// Segment is a stub on platforms without anonymous shared mappings.
type Segment struct{}

// Map reports ErrUnsupported; the heap backing is the portable path.
func Map[T any](n int) ([]T, *Segment, error) {
	return nil, nil, ErrUnsupported
}

// Size reports zero on unsupported platforms.
func (s *Segment) Size() int { return 0 }

// Close is a no-op on unsupported platforms.
func (s *Segment) Close() error { return nil }
