package stream

import (
	"fmt"

	"github.com/aretw0/furrow/pkg/typetag"
)

// Block is a borrowed, pre-allocated run of elements handed to a registry
// at construction time. The registry never owns the memory: the caller
// guarantees the block outlives every channel built over it. Offsets and
// counts are always in elements, never bytes.
type Block struct {
	data  any // []T for the tagged element type
	tag   typetag.Tag
	elems int
}

// BlockOf wraps caller-owned storage as a block view.
func BlockOf[T any](buf []T) *Block {
	return &Block{data: buf, tag: typetag.Of[T](), elems: len(buf)}
}

// Tag identifies the block's element type.
func (b *Block) Tag() typetag.Tag { return b.tag }

// Elems is the total element count.
func (b *Block) Elems() int { return b.elems }

// Slice returns the sub-range [off, off+n) of the block's storage.
// The result is capped at n so appends cannot bleed into a neighboring
// partition. Fails with ErrBadView when the range falls outside the block
// and ErrTypeMismatch when T is not the block's element type.
func Slice[T any](b *Block, off, n int) ([]T, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil block", ErrBadView)
	}
	buf, ok := b.data.([]T)
	if !ok {
		return nil, fmt.Errorf("%w: block holds %s, want %s", ErrTypeMismatch, b.tag, typetag.Of[T]())
	}
	if off < 0 || n < 0 || off+n > len(buf) {
		return nil, fmt.Errorf("%w: [%d, %d) of %d elements", ErrBadView, off, off+n, len(buf))
	}
	return buf[off : off+n : off+n], nil
}
