package archdef

import (
	"fmt"

	"github.com/pcodex/pcodex/pkg/cconv"
)

// Arch implements cconv.Model by simulating the compiler specification's
// storage allocation rules.

// Conventions returns the names of all calling conventions, in definition
// order.
func (a *Arch) Conventions() []string {
	names := make([]string, len(a.conventions))
	for i, cs := range a.conventions {
		names[i] = cs.Name
	}
	return names
}

// PotentialInputRegisters returns the convention's declared candidate
// argument registers in argument order.
func (a *Arch) PotentialInputRegisters(conv string) ([]*cconv.Register, error) {
	cs := a.convByName[conv]
	if cs == nil {
		return nil, fmt.Errorf("unknown calling convention %q in %s", conv, a.ID)
	}
	regs := make([]*cconv.Register, len(cs.PotentialInput))
	for i, name := range cs.PotentialInput {
		regs[i] = a.byName[name]
	}
	return regs, nil
}

// PlaceParameters allocates storage for a hypothetical parameter list under
// the convention's rules. The first pattern entry describes a returned
// value and the first result element its return storage; the remaining
// entries are parameters allocated from the convention's register
// sequences, overflowing to the stack. Allocation picks the sub-register
// view matching the value's size, the way the platform's own allocator
// does.
func (a *Arch) PlaceParameters(conv string, pattern []cconv.ParamKind) ([]cconv.Storage, error) {
	cs := a.convByName[conv]
	if cs == nil {
		return nil, fmt.Errorf("unknown calling convention %q in %s", conv, a.ID)
	}
	if len(pattern) == 0 {
		return nil, fmt.Errorf("empty type pattern for convention %q", conv)
	}

	ret, err := a.returnStorage(cs, pattern[0])
	if err != nil {
		return nil, err
	}
	out := make([]cconv.Storage, 0, len(pattern))
	out = append(out, ret)

	intNext, floatNext := 0, 0
	stackOff := int64(0)
	for _, kind := range pattern[1:] {
		size := a.kindSize(kind)
		seq, next := cs.IntegerSequence, &intNext
		if kind == cconv.Double && len(cs.FloatSequence) > 0 {
			seq, next = cs.FloatSequence, &floatNext
		}
		if *next < len(seq) {
			base := a.byName[seq[*next]]
			*next++
			out = append(out, cconv.Storage{Register: a.view(base, size)})
			continue
		}
		out = append(out, cconv.Storage{StackOffset: stackOff})
		slot := size
		if r := slot % a.PointerSize; r != 0 {
			slot += a.PointerSize - r
		}
		stackOff += int64(slot)
	}
	return out, nil
}

func (a *Arch) returnStorage(cs *ConventionSpec, kind cconv.ParamKind) (cconv.Storage, error) {
	name := cs.IntegerReturn
	if kind == cconv.Double && cs.FloatReturn != "" {
		name = cs.FloatReturn
	}
	base := a.byName[name]
	if base == nil {
		return cconv.Storage{}, fmt.Errorf("convention %q in %s has no return storage for a %s value", cs.Name, a.ID, kind)
	}
	return cconv.Storage{Register: a.view(base, a.kindSize(kind))}, nil
}

func (a *Arch) kindSize(kind cconv.ParamKind) uint {
	switch kind {
	case cconv.Pointer:
		return a.PointerSize
	case cconv.Double:
		return 8
	default:
		return 4
	}
}

// view returns the named view of base covering its low size bytes, or base
// itself when the architecture defines no narrower view. The search starts
// from the low-offset child and descends, so an AX view of RAX is found
// through EAX.
func (a *Arch) view(base *cconv.Register, size uint) *cconv.Register {
	if base.Bits <= size*8 {
		return base
	}
	for _, r := range a.registers {
		// A top-level register is its own parent and must not be taken
		// for a child of itself.
		if r != base && r.Parent == base && r.Offset == 0 {
			if r.Bits == size*8 {
				return r
			}
			if r.Bits > size*8 {
				return a.view(r, size)
			}
		}
	}
	return base
}
