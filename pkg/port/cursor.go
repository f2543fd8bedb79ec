package port

// Cursor is a restartable traversal over a registry's ports in declaration
// order:
//
//	c := reg.Cursor()
//	for c.Next() {
//		d := c.Descriptor()
//		...
//	}
//	c.Reset() // and walk again
//
// A cursor snapshots the declaration order at creation and is independent
// of every other cursor over the same registry. Cursors are
// construction-phase tools and are not synchronized against concurrent
// declaration.
type Cursor struct {
	reg   *Registry
	names []string
	pos   int
}

// Cursor returns a new traversal positioned before the first port.
func (r *Registry) Cursor() *Cursor {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return &Cursor{reg: r, names: names, pos: -1}
}

// Next advances the cursor and reports whether a port is available.
func (c *Cursor) Next() bool {
	if c.pos+1 >= len(c.names) {
		c.pos = len(c.names)
		return false
	}
	c.pos++
	return true
}

// Descriptor returns the port the cursor is on, nil before the first Next
// and after Next has reported false.
func (c *Cursor) Descriptor() *Descriptor {
	if c.pos < 0 || c.pos >= len(c.names) {
		return nil
	}
	return c.reg.ports[c.names[c.pos]]
}

// Reset rewinds the cursor to before the first port.
func (c *Cursor) Reset() { c.pos = -1 }
