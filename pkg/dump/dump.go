// Package dump reads program dumps: JSON files exported by the analysis
// platform, describing a disassembled binary's architecture, register set,
// calling conventions, external symbols and image layout. A loaded dump
// yields the same architecture model the built-in catalog provides, so the
// rest of the pipeline does not care where a model came from.
package dump

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pcodex/pcodex/pkg/cconv/archdef"
	"github.com/pcodex/pcodex/pkg/logflags"
)

// Program is a loaded program dump.
type Program struct {
	Arch        *archdef.Arch
	ImageBase   string
	EntryPoints []string
	Externals   []External
	Thunks      []Thunk
}

// External describes an external (imported) function as the platform
// reported it. Parameter and return locations are carried through
// untouched; this tool does not recompute them.
type External struct {
	Name              string     `json:"name"`
	CallingConvention string     `json:"calling_convention"`
	Parameters        []Location `json:"parameters"`
	Return            *Location  `json:"return_location"`
	NoReturn          bool       `json:"no_return"`
	HasVarArgs        bool       `json:"has_var_args"`
	Addresses         []string   `json:"addresses"`
}

// Location is a platform-reported storage location of a parameter or
// return value: a register name or a stack offset.
type Location struct {
	Register    string `json:"register,omitempty"`
	StackOffset int64  `json:"stack_offset,omitempty"`
	Size        uint   `json:"size"`
}

// Thunk is a local stub that jumps to an external function. Its address
// belongs with the external it forwards to.
type Thunk struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// file formats mirror the exporter script's output.

type fileFormat struct {
	CPUArchitecture string             `json:"cpu_architecture"`
	PointerSize     uint               `json:"pointer_size"`
	StackPointer    string             `json:"stack_pointer"`
	ImageBase       string             `json:"image_base"`
	EntryPoints     []string           `json:"entry_points"`
	Types           archdef.TypeSizes  `json:"datatype_properties"`
	Registers       []registerFormat   `json:"registers"`
	Conventions     []conventionFormat `json:"calling_conventions"`
	Externals       []External         `json:"external_functions"`
	Thunks          []Thunk            `json:"thunks"`
}

type registerFormat struct {
	Name string `json:"name"`
	Size uint   `json:"size"` // bytes
	LSB  uint   `json:"lsb"`  // byte offset inside Base
	Base string `json:"base"` // empty or the register's own name for a top-level register
}

type conventionFormat struct {
	Name            string   `json:"name"`
	PotentialInput  []string `json:"potential_input"`
	IntegerSequence []string `json:"integer_sequence"`
	FloatSequence   []string `json:"float_sequence"`
	IntegerReturn   string   `json:"integer_return"`
	FloatReturn     string   `json:"float_return"`
	Unaffected      []string `json:"unaffected"`
	KilledByCall    []string `json:"killed_by_call"`
}

// Load reads a program dump from path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open program dump: %v", err)
	}
	defer f.Close()
	p, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return p, nil
}

// Read decodes a program dump.
func Read(r io.Reader) (*Program, error) {
	logger := logflags.DumpLogger()

	var ff fileFormat
	dec := json.NewDecoder(r)
	if err := dec.Decode(&ff); err != nil {
		return nil, fmt.Errorf("malformed program dump: %v", err)
	}
	if ff.CPUArchitecture == "" {
		return nil, fmt.Errorf("program dump has no cpu_architecture")
	}
	if ff.PointerSize == 0 {
		return nil, fmt.Errorf("program dump has no pointer_size")
	}

	arch := archdef.New(ff.CPUArchitecture, ff.PointerSize, ff.StackPointer, ff.Types)
	if err := loadRegisters(arch, ff.Registers); err != nil {
		return nil, err
	}
	for i := range ff.Conventions {
		cf := &ff.Conventions[i]
		err := arch.AddConvention(&archdef.ConventionSpec{
			Name:            cf.Name,
			PotentialInput:  cf.PotentialInput,
			IntegerSequence: cf.IntegerSequence,
			FloatSequence:   cf.FloatSequence,
			IntegerReturn:   cf.IntegerReturn,
			FloatReturn:     cf.FloatReturn,
			Unaffected:      cf.Unaffected,
			KilledByCall:    cf.KilledByCall,
		})
		if err != nil {
			return nil, err
		}
	}
	logger.Debugf("loaded %s: %d registers, %d conventions, %d externals",
		ff.CPUArchitecture, len(ff.Registers), len(ff.Conventions), len(ff.Externals))

	return &Program{
		Arch:        arch,
		ImageBase:   ff.ImageBase,
		EntryPoints: ff.EntryPoints,
		Externals:   ff.Externals,
		Thunks:      ff.Thunks,
	}, nil
}

// loadRegisters adds dump registers to arch. Sub-registers may be listed
// before their base, so unresolved entries are retried until a pass stops
// making progress.
func loadRegisters(arch *archdef.Arch, regs []registerFormat) error {
	pending := make([]registerFormat, 0, len(regs))
	for _, rf := range regs {
		if rf.Name == "" {
			return fmt.Errorf("program dump contains a register without a name")
		}
		if rf.Base == "" || rf.Base == rf.Name {
			if _, err := arch.AddRegister(rf.Name, rf.Size*8); err != nil {
				return err
			}
			continue
		}
		pending = append(pending, rf)
	}
	for len(pending) > 0 {
		next := pending[:0]
		for _, rf := range pending {
			if arch.Register(rf.Base) == nil {
				next = append(next, rf)
				continue
			}
			if _, err := arch.AddSubRegister(rf.Name, rf.Size*8, rf.LSB, rf.Base); err != nil {
				return err
			}
		}
		if len(next) == len(pending) {
			return fmt.Errorf("register %s references unknown base register %s", next[0].Name, next[0].Base)
		}
		pending = next
	}
	return nil
}
