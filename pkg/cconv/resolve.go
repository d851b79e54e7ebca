package cconv

import "fmt"

// integerProbeWidth is the number of integer slots in the synthetic
// parameter list used to discover integer parameter registers. The platform
// offers no direct "all integer argument registers" query, so the resolver
// places a fabricated all-integer list and watches where its elements land.
// Ten slots is an empirical upper bound on the number of integer argument
// registers of the modeled architectures, not a guarantee of completeness.
const integerProbeWidth = 10

// placedInto reports whether the probe placement placed landed in the
// potential input register pot. A placement may come back as a narrower
// sub-register view (EDI when the convention passes arguments in RDI), so
// the comparison is made between the placement's parent register and pot.
// A top-level placement is its own parent and matches pot directly.
func placedInto(placed, pot *Register) bool {
	if placed == nil || pot == nil || pot.Name == "" {
		return false
	}
	return placed.Parent.Name == pot.Name
}

// sameName reports whether two registers are the exact same named view.
//
// Unlike placedInto this does not collapse a sub-register onto its parent:
// float classification keeps whatever view the convention declares distinct
// from its wider parent form. The two comparisons are intentionally
// different and must stay that way; callers depend on a float entry that
// merely aliases an integer register surviving the exclusion below.
func sameName(a, b *Register) bool {
	return a != nil && b != nil && a.Name == b.Name
}

// IntegerParameters returns the named convention's integer-class parameter
// registers, in the convention's declared argument order.
//
// The entry emitted is the potential input register, not the register the
// probe resolved to: the convention's true parameter register (the 64-bit
// form) is preserved rather than whatever width the placement happened to
// pick. Aliased potential entries are not deduplicated; the first matching
// entry wins and the declared order is kept as is, because downstream
// consumers expect the convention-declared list.
func IntegerParameters(m Model, conv string) ([]*Register, error) {
	pattern := make([]ParamKind, integerProbeWidth)
	for i := range pattern {
		pattern[i] = IntWord
	}
	placed, err := m.PlaceParameters(conv, pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: convention %q: integer list placement: %v", ErrModelQuery, conv, err)
	}
	potential, err := m.PotentialInputRegisters(conv)
	if err != nil {
		return nil, fmt.Errorf("%w: convention %q: potential input registers: %v", ErrModelQuery, conv, err)
	}

	var candidates []*Register
	for i, loc := range placed {
		if !loc.InRegister() {
			continue
		}
		candidates = append(candidates, loc.Register)
		if i == 0 {
			// The first element describes the return location, which
			// legitimately resolves outside the potential input set.
			continue
		}
		matched := false
		for _, pot := range potential {
			if placedInto(loc.Register, pot) {
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("%w: convention %q: register %s", ErrAmbiguousRegister, conv, loc.Register)
		}
	}

	var params []*Register
	for _, pot := range potential {
		for _, c := range candidates {
			if placedInto(c, pot) {
				params = append(params, pot)
				break
			}
		}
	}
	return params, nil
}

// FloatParameters returns the named convention's floating point parameter
// registers, in the convention's declared argument order: every potential
// input register that was not classified as an integer parameter register.
// Virtual and composite slots without a register name are skipped.
//
// Exclusion compares exact register names, not parent registers (see
// sameName), so a float entry is never collapsed onto a wider parent the
// way integer placements are.
func FloatParameters(m Model, conv string) ([]*Register, error) {
	potential, err := m.PotentialInputRegisters(conv)
	if err != nil {
		return nil, fmt.Errorf("%w: convention %q: potential input registers: %v", ErrModelQuery, conv, err)
	}
	ints, err := IntegerParameters(m, conv)
	if err != nil {
		return nil, err
	}

	var floats []*Register
	for _, pot := range potential {
		if pot == nil || pot.Name == "" {
			continue
		}
		excluded := false
		for _, ir := range ints {
			if sameName(pot, ir) {
				excluded = true
				break
			}
		}
		if !excluded {
			floats = append(floats, pot)
		}
	}
	return floats, nil
}

// IntegerReturn returns the register a pointer-sized return value occupies
// under the named convention.
//
// There is no direct return-register query either: the resolver places a
// synthetic list consisting of one pointer and reads the first element of
// the result, which by the placement contract describes the return
// location. A convention whose return value spans several registers is
// reported by its first register only; composed returns are not
// representable through this query.
func IntegerReturn(m Model, conv string) (*Register, error) {
	placed, err := m.PlaceParameters(conv, []ParamKind{Pointer})
	if err != nil {
		return nil, fmt.Errorf("%w: convention %q: pointer placement: %v", ErrModelQuery, conv, err)
	}
	if len(placed) == 0 || !placed[0].InRegister() {
		return nil, fmt.Errorf("%w: convention %q: no return register for a pointer value", ErrModelQuery, conv)
	}
	return placed[0].Register, nil
}

// FloatReturn returns the register a double-precision return value occupies
// under the named convention, or nil when the convention has no float
// return path distinct from the integer one. The nil result is deliberate
// and not an error: under such a convention floats and integers return
// through the same register.
//
// The double placement picks its register by value size, so a sub-register
// view of the actual return register may be reported. As with IntegerReturn
// only the first storage location is observed; a floating value returned
// across a register pair is misrepresented by its first half.
func FloatReturn(m Model, conv string) (*Register, error) {
	placed, err := m.PlaceParameters(conv, []ParamKind{Double})
	if err != nil {
		return nil, fmt.Errorf("%w: convention %q: double placement: %v", ErrModelQuery, conv, err)
	}
	if len(placed) == 0 || !placed[0].InRegister() {
		return nil, fmt.Errorf("%w: convention %q: no return register for a double value", ErrModelQuery, conv)
	}
	intRet, err := IntegerReturn(m, conv)
	if err != nil {
		return nil, err
	}
	fltRet := placed[0].Register
	if fltRet.String() == intRet.String() {
		return nil, nil
	}
	return fltRet, nil
}
