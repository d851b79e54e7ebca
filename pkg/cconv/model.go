package cconv

import "errors"

// ParamKind is an abstract type descriptor for a slot of a synthetic
// parameter list. Synthetic lists are fabricated purely to ask the
// convention model where it would place them; they have no relation to any
// real function signature in the binary.
type ParamKind int

const (
	// IntWord is a 4-byte integer slot.
	IntWord ParamKind = iota
	// Pointer is a pointer-sized slot.
	Pointer
	// Double is an 8-byte IEEE floating point slot.
	Double
)

func (k ParamKind) String() string {
	switch k {
	case IntWord:
		return "int"
	case Pointer:
		return "pointer"
	case Double:
		return "double"
	}
	return "unknown"
}

// Storage is one storage location returned by a placement query: either a
// register (possibly a sub-register view) or a slot on the stack.
type Storage struct {
	// Register backs this location; nil for stack-backed storage.
	Register *Register
	// StackOffset is the byte offset from the stack pointer at call time.
	// Meaningful only when Register is nil.
	StackOffset int64
}

// InRegister reports whether s is register-backed.
func (s Storage) InRegister() bool {
	return s.Register != nil
}

// Model is the query surface the resolver needs from the analysis platform
// for a single architecture. It is deliberately opaque: the platform does
// not expose which registers carry integers or floats, or what the return
// register of a floating type is. That information has to be inferred by
// placing synthetic parameter lists and reconciling the results.
//
// A Model is an immutable snapshot for the duration of one extraction run.
// All queries are deterministic and free of side effects.
type Model interface {
	// Conventions returns the names of every calling convention the
	// architecture's compiler specification exposes.
	Conventions() []string

	// PotentialInputRegisters returns every register the named convention
	// might use to pass a parameter of some type, in the convention's
	// argument order. Entries may be nil for virtual or composite slots
	// that do not resolve to a named register; callers must tolerate them.
	PotentialInputRegisters(conv string) ([]*Register, error)

	// PlaceParameters computes where a hypothetical parameter list of the
	// given type pattern would be stored under the named convention's real
	// allocation rules. Following the platform's storage-location contract
	// the first element of the result describes the storage a value of the
	// first pattern entry would occupy as a *return* value; the remaining
	// elements describe parameter storage for the remaining entries.
	PlaceParameters(conv string, pattern []ParamKind) ([]Storage, error)
}

var (
	// ErrModelQuery indicates the convention model could not answer a
	// placement or register query, for example because the architecture has
	// no usable storage rule for the pattern. The failure is fatal for the
	// extraction run; retrying cannot change the outcome of a deterministic
	// query over a static model.
	ErrModelQuery = errors.New("convention model query failed")

	// ErrAmbiguousRegister indicates a register-backed placement could not
	// be mapped back to any entry of the convention's potential input
	// registers. This should not occur under a well-formed model and is
	// surfaced immediately instead of being swallowed.
	ErrAmbiguousRegister = errors.New("placement resolves to a register outside the potential input set")
)
