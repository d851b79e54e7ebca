package cconv

import (
	"github.com/pcodex/pcodex/pkg/logflags"
)

// Convention is the resolved register assignment of one named calling
// convention. Records are built once per extraction run and immutable
// afterwards; the two parameter lists are disjoint by register name.
type Convention struct {
	// Name is the convention's name, unique within one architecture.
	Name string
	// IntegerParams are the integer-class parameter registers in argument
	// order.
	IntegerParams []*Register
	// FloatParams are the floating point parameter registers in argument
	// order.
	FloatParams []*Register
	// IntegerReturn is the register carrying pointer-sized integer return
	// values.
	IntegerReturn *Register
	// FloatReturn is the register carrying double-precision return values,
	// or nil when floats return through IntegerReturn.
	FloatReturn *Register
}

// Resolve resolves every calling convention the model exposes and returns
// the table keyed by convention name. Conventions are processed
// independently; names are unique by construction in the source model.
//
// Resolution is all or nothing: any failure aborts the run and no partial
// table is returned, since a partially resolved convention is worse than a
// visible failure. The table is scoped to one extraction run; nothing is
// cached across runs.
func Resolve(m Model) (map[string]*Convention, error) {
	logger := logflags.CconvLogger()
	table := make(map[string]*Convention)
	for _, name := range m.Conventions() {
		conv, err := resolveConvention(m, name)
		if err != nil {
			return nil, err
		}
		logger.Debugf("resolved %s: %d integer, %d float parameter registers, return %s/%s",
			name, len(conv.IntegerParams), len(conv.FloatParams), conv.IntegerReturn, conv.FloatReturn)
		table[name] = conv
	}
	return table, nil
}

func resolveConvention(m Model, name string) (*Convention, error) {
	ints, err := IntegerParameters(m, name)
	if err != nil {
		return nil, err
	}
	floats, err := FloatParameters(m, name)
	if err != nil {
		return nil, err
	}
	intRet, err := IntegerReturn(m, name)
	if err != nil {
		return nil, err
	}
	fltRet, err := FloatReturn(m, name)
	if err != nil {
		return nil, err
	}
	return &Convention{
		Name:          name,
		IntegerParams: ints,
		FloatParams:   floats,
		IntegerReturn: intRet,
		FloatReturn:   fltRet,
	}, nil
}
