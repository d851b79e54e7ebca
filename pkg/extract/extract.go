// Package extract assembles the extraction document: the JSON description
// of a binary's architecture, register properties, data type sizes and
// resolved calling conventions that downstream analysis tools consume.
package extract

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pcodex/pcodex/pkg/cconv"
	"github.com/pcodex/pcodex/pkg/cconv/archdef"
	"github.com/pcodex/pcodex/pkg/dump"
	"github.com/pcodex/pcodex/pkg/logflags"
)

// Document is the extraction result. Field presence is part of the format:
// an absent float return register serializes as an explicit null, never as
// an omitted field, because consumers distinguish "no float return" from
// "not computed".
type Document struct {
	CPUArchitecture      string                       `json:"cpu_architecture"`
	ImageBase            string                       `json:"image_base"`
	EntryPoints          []string                     `json:"entry_points"`
	StackPointerRegister RegisterSlot                 `json:"stack_pointer_register"`
	RegisterProperties   []RegisterProperty           `json:"register_properties"`
	DatatypeProperties   archdef.TypeSizes            `json:"datatype_properties"`
	CallingConventions   map[string]*ConventionRecord `json:"calling_conventions"`
	ExternalFunctions    map[string]*ExternalFunction `json:"external_functions"`
}

// RegisterProperty describes one register of the architecture by its
// position inside its base register.
type RegisterProperty struct {
	Register     string `json:"register"`
	BaseRegister string `json:"base_register"`
	LSB          uint   `json:"lsb"`
	Size         uint   `json:"size"`
}

// RegisterSlot names a register and its size in bytes.
type RegisterSlot struct {
	Name string `json:"name"`
	Size uint   `json:"size"`
}

// ConventionRecord is the serialized form of a resolved calling convention.
type ConventionRecord struct {
	Name                     string         `json:"name"`
	IntegerParameterRegister []RegisterSlot `json:"integer_parameter_register"`
	FloatParameterRegister   []RegisterSlot `json:"float_parameter_register"`
	IntegerReturnRegister    *RegisterSlot  `json:"integer_return_register"`
	FloatReturnRegister      *RegisterSlot  `json:"float_return_register"`
	UnaffectedRegister       []string       `json:"unaffected_register"`
	KilledByCallRegister     []string       `json:"killed_by_call_register"`
}

// ExternalFunction is an external symbol entry of the document.
type ExternalFunction struct {
	Name              string          `json:"name"`
	CallingConvention string          `json:"calling_convention"`
	Parameters        []dump.Location `json:"parameters"`
	Return            *dump.Location  `json:"return_location"`
	NoReturn          bool            `json:"no_return"`
	HasVarArgs        bool            `json:"has_var_args"`
	Addresses         []string        `json:"addresses"`
}

// Run builds the extraction document for a loaded program. Convention
// resolution is all or nothing: any failure aborts the run instead of
// emitting a partial document.
func Run(p *dump.Program) (*Document, error) {
	logger := logflags.ExtractLogger()
	arch := p.Arch

	table, err := cconv.Resolve(arch)
	if err != nil {
		return nil, err
	}
	conventions := make(map[string]*ConventionRecord, len(table))
	for name, conv := range table {
		conventions[name] = newConventionRecord(conv, arch.Convention(name))
	}
	logger.Debugf("resolved %d calling conventions for %s", len(conventions), arch.ID)

	externals, err := collectExternals(p)
	if err != nil {
		return nil, err
	}

	registers := make([]RegisterProperty, 0, len(arch.Registers()))
	for _, r := range arch.Registers() {
		registers = append(registers, RegisterProperty{
			Register:     r.Name,
			BaseRegister: r.Base().Name,
			LSB:          r.BaseOffset(),
			Size:         r.Size(),
		})
	}

	imageBase := p.ImageBase
	if imageBase == "" {
		imageBase = "0x0"
	}
	entryPoints := p.EntryPoints
	if entryPoints == nil {
		entryPoints = []string{}
	}

	doc := &Document{
		CPUArchitecture:      arch.ID,
		ImageBase:            imageBase,
		EntryPoints:          entryPoints,
		RegisterProperties:   registers,
		DatatypeProperties:   arch.Types,
		CallingConventions:   conventions,
		ExternalFunctions:    externals,
		StackPointerRegister: RegisterSlot{Name: arch.StackPointer, Size: arch.PointerSize},
	}
	if sp := arch.Register(arch.StackPointer); sp != nil {
		doc.StackPointerRegister = RegisterSlot{Name: sp.Name, Size: sp.Size()}
	}
	return doc, nil
}

// collectExternals keys externals by name and merges thunk addresses into
// the entry they forward to. External functions are assumed to be
// distinguishable by name; a duplicate is a hard error, not something to
// mangle around silently.
func collectExternals(p *dump.Program) (map[string]*ExternalFunction, error) {
	externals := make(map[string]*ExternalFunction, len(p.Externals))
	for i := range p.Externals {
		ext := &p.Externals[i]
		if _, ok := externals[ext.Name]; ok {
			return nil, fmt.Errorf("duplicate external symbol name %q", ext.Name)
		}
		externals[ext.Name] = &ExternalFunction{
			Name:              ext.Name,
			CallingConvention: ext.CallingConvention,
			Parameters:        ext.Parameters,
			Return:            ext.Return,
			NoReturn:          ext.NoReturn,
			HasVarArgs:        ext.HasVarArgs,
			Addresses:         ext.Addresses,
		}
	}
	for _, thunk := range p.Thunks {
		ext, ok := externals[thunk.Name]
		if !ok {
			continue
		}
		ext.Addresses = append(ext.Addresses, thunk.Address)
	}
	return externals, nil
}

func newConventionRecord(conv *cconv.Convention, spec *archdef.ConventionSpec) *ConventionRecord {
	rec := &ConventionRecord{
		Name:                     conv.Name,
		IntegerParameterRegister: registerSlots(conv.IntegerParams),
		FloatParameterRegister:   registerSlots(conv.FloatParams),
		IntegerReturnRegister:    registerSlot(conv.IntegerReturn),
		FloatReturnRegister:      registerSlot(conv.FloatReturn),
		UnaffectedRegister:       []string{},
		KilledByCallRegister:     []string{},
	}
	if spec != nil {
		if spec.Unaffected != nil {
			rec.UnaffectedRegister = spec.Unaffected
		}
		if spec.KilledByCall != nil {
			rec.KilledByCallRegister = spec.KilledByCall
		}
	}
	return rec
}

func registerSlots(regs []*cconv.Register) []RegisterSlot {
	slots := make([]RegisterSlot, len(regs))
	for i, r := range regs {
		slots[i] = RegisterSlot{Name: r.Name, Size: r.Size()}
	}
	return slots
}

func registerSlot(r *cconv.Register) *RegisterSlot {
	if r == nil {
		return nil
	}
	return &RegisterSlot{Name: r.Name, Size: r.Size()}
}

// WriteJSON serializes the document. Null fields stay explicit; nothing is
// omitted.
func WriteJSON(w io.Writer, doc *Document, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(doc)
}
