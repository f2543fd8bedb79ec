//go:build unix

// Package shm provides anonymous process-shared mappings for channels whose
// storage kind is shared but that have no borrowed block to live in. A
// mapping behaves like ordinary memory within the process and survives
// fork, which keeps the layout ready for multi-process runners.
package shm

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/aretw0/furrow/pkg/typetag"
)

// Segment is one live mapping. Close unmaps it; every view handed out by
// Map becomes invalid afterwards. Segments held by running channels are
// simply left mapped for the life of the process.
type Segment struct {
	data []byte
}

// Map allocates a shared anonymous mapping holding n elements of T and
// returns it as a typed slice over the mapped memory.
// Fails with ErrPointerData for element types carrying Go pointers: the
// runtime does not scan shared mappings, so pointers must never live there.
func Map[T any](n int) ([]T, *Segment, error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("shm: need at least one element, have %d", n)
	}
	tag := typetag.Of[T]()
	if !tag.PlainData() {
		return nil, nil, fmt.Errorf("%w: %s", ErrPointerData, tag)
	}

	var zero T
	size := int(unsafe.Sizeof(zero)) * n
	if size == 0 {
		size = 1
	}

	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED|unix.MAP_ANON)
	if err != nil {
		return nil, nil, fmt.Errorf("shm: mmap %d bytes: %w", size, err)
	}

	view := unsafe.Slice((*T)(unsafe.Pointer(&data[0])), n)
	return view, &Segment{data: data}, nil
}

// Size is the mapped length in bytes.
func (s *Segment) Size() int { return len(s.data) }

// Close unmaps the segment.
func (s *Segment) Close() error {
	if s.data == nil {
		return nil
	}
	err := unix.Munmap(s.data)
	s.data = nil
	if err != nil {
		return fmt.Errorf("shm: munmap: %w", err)
	}
	return nil
}
