package cconv

// Register describes a single physical register of an architecture, or a
// named sub-register view of one (EAX as the low 32 bits of RAX).
//
// Registers are created once when an architecture model is loaded and are
// immutable afterwards. The Parent field links a sub-register view to the
// register directly containing it; a top-level register points back to
// itself.
type Register struct {
	// Name is the canonical name of the register. Names are unique within
	// one architecture. An empty name marks a virtual or composite storage
	// slot reported by the platform that does not resolve to a real
	// register.
	Name string
	// Bits is the width of this view in bits.
	Bits uint
	// Offset is the byte offset of this view inside Parent.
	Offset uint
	// Parent is the register directly containing this view, or the register
	// itself if it is not a sub-register.
	Parent *Register
}

// NewRegister returns a top-level register of the given width. Its parent is
// itself.
func NewRegister(name string, bits uint) *Register {
	r := &Register{Name: name, Bits: bits}
	r.Parent = r
	return r
}

// NewSubRegister returns a named view of parent, bits wide, starting at byte
// offset off.
func NewSubRegister(name string, bits, off uint, parent *Register) *Register {
	return &Register{Name: name, Bits: bits, Offset: off, Parent: parent}
}

// IsSubRegister reports whether r is a view into a larger register.
func (r *Register) IsSubRegister() bool {
	return r.Parent != r
}

// Base returns the outermost register containing r. For a top-level register
// this is r itself.
func (r *Register) Base() *Register {
	for r.Parent != r {
		r = r.Parent
	}
	return r
}

// BaseOffset returns the byte offset of r within Base().
func (r *Register) BaseOffset() uint {
	off := uint(0)
	for r.Parent != r {
		off += r.Offset
		r = r.Parent
	}
	return off
}

// Size returns the width of r in bytes.
func (r *Register) Size() uint {
	return r.Bits / 8
}

func (r *Register) String() string {
	if r == nil {
		return "<no register>"
	}
	return r.Name
}
