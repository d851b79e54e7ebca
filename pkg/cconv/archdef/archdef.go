// Package archdef describes architectures and their compiler
// specifications: the register set, with its sub-register structure, the
// data type sizes, and the storage allocation rules of every named calling
// convention. An Arch answers the placement queries the convention resolver
// needs, either from the built-in catalog or assembled from a
// platform-exported program dump.
package archdef

import (
	"fmt"
	"sort"

	"github.com/pcodex/pcodex/pkg/cconv"
)

// TypeSizes holds the size in bytes of the primitive C data types under an
// architecture's compiler specification.
type TypeSizes struct {
	Char       uint `json:"char_size"`
	Short      uint `json:"short_size"`
	Integer    uint `json:"integer_size"`
	Long       uint `json:"long_size"`
	LongLong   uint `json:"long_long_size"`
	Float      uint `json:"float_size"`
	Double     uint `json:"double_size"`
	LongDouble uint `json:"long_double_size"`
	Pointer    uint `json:"pointer_size"`
}

// ConventionSpec is the allocation rule set of one named calling
// convention.
type ConventionSpec struct {
	Name string
	// PotentialInput lists, in argument order, every register the
	// convention might use to pass a parameter of some type.
	PotentialInput []string
	// IntegerSequence and FloatSequence are the allocation orders for
	// integer/pointer and floating point parameters. Parameters that do not
	// fit go to the stack. A convention without float registers allocates
	// doubles from the integer sequence.
	IntegerSequence []string
	FloatSequence   []string
	// IntegerReturn and FloatReturn name the registers backing return
	// values. FloatReturn may be empty when floating values return like
	// integers.
	IntegerReturn string
	FloatReturn   string
	// Unaffected and KilledByCall are the registers a call leaves untouched
	// and the ones it may clobber beyond the return registers.
	Unaffected   []string
	KilledByCall []string
}

// Arch is the description of one architecture: its identity, register set
// and calling conventions. An Arch is built once and read-only afterwards;
// it implements cconv.Model.
type Arch struct {
	// ID is the language id of the architecture, e.g. "x86:LE:64:default".
	ID string
	// PointerSize is the size of a pointer in bytes.
	PointerSize uint
	// StackPointer is the name of the stack pointer register.
	StackPointer string
	// Types holds the primitive data type sizes.
	Types TypeSizes

	registers   []*cconv.Register
	byName      map[string]*cconv.Register
	conventions []*ConventionSpec
	convByName  map[string]*ConventionSpec
}

// New returns an empty architecture description.
func New(id string, pointerSize uint, stackPointer string, types TypeSizes) *Arch {
	return &Arch{
		ID:           id,
		PointerSize:  pointerSize,
		StackPointer: stackPointer,
		Types:        types,
		byName:       make(map[string]*cconv.Register),
		convByName:   make(map[string]*ConventionSpec),
	}
}

// AddRegister adds a top-level register.
func (a *Arch) AddRegister(name string, bits uint) (*cconv.Register, error) {
	if _, ok := a.byName[name]; ok {
		return nil, fmt.Errorf("duplicate register %s in %s", name, a.ID)
	}
	r := cconv.NewRegister(name, bits)
	a.registers = append(a.registers, r)
	a.byName[name] = r
	return r, nil
}

// AddSubRegister adds a named view of the register called parent, bits wide
// at byte offset off.
func (a *Arch) AddSubRegister(name string, bits, off uint, parent string) (*cconv.Register, error) {
	if _, ok := a.byName[name]; ok {
		return nil, fmt.Errorf("duplicate register %s in %s", name, a.ID)
	}
	p, ok := a.byName[parent]
	if !ok {
		return nil, fmt.Errorf("unknown parent register %s for %s in %s", parent, name, a.ID)
	}
	r := cconv.NewSubRegister(name, bits, off, p)
	a.registers = append(a.registers, r)
	a.byName[name] = r
	return r, nil
}

// AddConvention adds a calling convention. Every register it names
// must already exist.
func (a *Arch) AddConvention(cs *ConventionSpec) error {
	if _, ok := a.convByName[cs.Name]; ok {
		return fmt.Errorf("duplicate calling convention %s in %s", cs.Name, a.ID)
	}
	for _, names := range [][]string{cs.PotentialInput, cs.IntegerSequence, cs.FloatSequence, {cs.IntegerReturn}, cs.Unaffected, cs.KilledByCall} {
		for _, name := range names {
			if _, ok := a.byName[name]; !ok {
				return fmt.Errorf("convention %s of %s names unknown register %s", cs.Name, a.ID, name)
			}
		}
	}
	if cs.FloatReturn != "" {
		if _, ok := a.byName[cs.FloatReturn]; !ok {
			return fmt.Errorf("convention %s of %s names unknown register %s", cs.Name, a.ID, cs.FloatReturn)
		}
	}
	a.conventions = append(a.conventions, cs)
	a.convByName[cs.Name] = cs
	return nil
}

// Register returns the register with the given name, or nil.
func (a *Arch) Register(name string) *cconv.Register {
	return a.byName[name]
}

// Registers returns all registers in definition order.
func (a *Arch) Registers() []*cconv.Register {
	return a.registers
}

// Convention returns the definition of the named convention, or nil.
func (a *Arch) Convention(name string) *ConventionSpec {
	return a.convByName[name]
}

var catalog = map[string]*Arch{}
var catalogAliases = map[string]string{}

func register(a *Arch, aliases ...string) *Arch {
	catalog[a.ID] = a
	for _, alias := range aliases {
		catalogAliases[alias] = a.ID
	}
	return a
}

// Lookup returns the built-in architecture with the given language id or
// alias ("amd64" for "x86:LE:64:default").
func Lookup(id string) (*Arch, error) {
	if full, ok := catalogAliases[id]; ok {
		id = full
	}
	a, ok := catalog[id]
	if !ok {
		return nil, fmt.Errorf("unknown architecture %q (known: %s)", id, knownList())
	}
	return a, nil
}

// List returns the language ids of all built-in architectures.
func List() []string {
	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func knownList() string {
	s := ""
	for i, id := range List() {
		if i > 0 {
			s += ", "
		}
		s += id
	}
	return s
}

// The must helpers panic on a malformed built-in table. Catalog entries are
// package data; a bad one is a programming error, not a runtime condition.

func (a *Arch) mustAddRegister(name string, bits uint) *cconv.Register {
	r, err := a.AddRegister(name, bits)
	if err != nil {
		panic(err)
	}
	return r
}

func (a *Arch) mustAddSubRegister(name string, bits, off uint, parent string) *cconv.Register {
	r, err := a.AddSubRegister(name, bits, off, parent)
	if err != nil {
		panic(err)
	}
	return r
}

func (a *Arch) mustAddConvention(cs *ConventionSpec) {
	if err := a.AddConvention(cs); err != nil {
		panic(err)
	}
}
