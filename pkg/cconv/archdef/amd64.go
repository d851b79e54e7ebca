package archdef

import "fmt"

// AMD64 is the System V flavor of x86-64, AMD64Win the Microsoft one. The
// two share a register file and differ in their compiler specification.
var (
	AMD64    = register(newAMD64(), "amd64", "x86_64")
	AMD64Win = register(newAMD64Win(), "amd64-win")
)

var amd64GPRs = []struct{ q, d, w, b string }{
	{"RAX", "EAX", "AX", "AL"},
	{"RBX", "EBX", "BX", "BL"},
	{"RCX", "ECX", "CX", "CL"},
	{"RDX", "EDX", "DX", "DL"},
	{"RSI", "ESI", "SI", "SIL"},
	{"RDI", "EDI", "DI", "DIL"},
	{"RBP", "EBP", "BP", "BPL"},
	{"RSP", "ESP", "SP", "SPL"},
	{"R8", "R8D", "R8W", "R8B"},
	{"R9", "R9D", "R9W", "R9B"},
	{"R10", "R10D", "R10W", "R10B"},
	{"R11", "R11D", "R11W", "R11B"},
	{"R12", "R12D", "R12W", "R12B"},
	{"R13", "R13D", "R13W", "R13B"},
	{"R14", "R14D", "R14W", "R14B"},
	{"R15", "R15D", "R15W", "R15B"},
}

func newAMD64Registers(a *Arch) {
	for _, gpr := range amd64GPRs {
		a.mustAddRegister(gpr.q, 64)
		a.mustAddSubRegister(gpr.d, 32, 0, gpr.q)
		a.mustAddSubRegister(gpr.w, 16, 0, gpr.d)
		a.mustAddSubRegister(gpr.b, 8, 0, gpr.w)
	}
	a.mustAddRegister("RIP", 64)
	for i := 0; i < 16; i++ {
		xmm := fmt.Sprintf("XMM%d", i)
		a.mustAddRegister(xmm, 128)
		// low quadword and doubleword views, the allocator's choice for
		// double and float values
		a.mustAddSubRegister(xmm+"_Qa", 64, 0, xmm)
		a.mustAddSubRegister(xmm+"_Da", 32, 0, xmm+"_Qa")
	}
}

func newAMD64() *Arch {
	a := New("x86:LE:64:default", 8, "RSP", TypeSizes{
		Char: 1, Short: 2, Integer: 4, Long: 8, LongLong: 8,
		Float: 4, Double: 8, LongDouble: 16, Pointer: 8,
	})
	newAMD64Registers(a)

	// The compiler specification names its default x86-64 model __stdcall
	// even though it describes the System V rules.
	a.mustAddConvention(&ConventionSpec{
		Name: "__stdcall",
		PotentialInput: []string{
			"RDI", "RSI", "RDX", "RCX", "R8", "R9",
			"XMM0", "XMM1", "XMM2", "XMM3", "XMM4", "XMM5", "XMM6", "XMM7",
		},
		IntegerSequence: []string{"RDI", "RSI", "RDX", "RCX", "R8", "R9"},
		FloatSequence:   []string{"XMM0", "XMM1", "XMM2", "XMM3", "XMM4", "XMM5", "XMM6", "XMM7"},
		IntegerReturn:   "RAX",
		FloatReturn:     "XMM0",
		Unaffected:      []string{"RBX", "RSP", "RBP", "R12", "R13", "R14", "R15"},
		KilledByCall:    []string{"RAX", "RCX", "RDX", "RSI", "RDI", "R8", "R9", "R10", "R11"},
	})
	a.mustAddConvention(&ConventionSpec{
		Name:            "syscall",
		PotentialInput:  []string{"RDI", "RSI", "RDX", "R10", "R8", "R9"},
		IntegerSequence: []string{"RDI", "RSI", "RDX", "R10", "R8", "R9"},
		IntegerReturn:   "RAX",
		Unaffected:      []string{"RBX", "RSP", "RBP", "RDI", "RSI", "RDX", "R8", "R9", "R10", "R12", "R13", "R14", "R15"},
		KilledByCall:    []string{"RAX", "RCX", "R11"},
	})
	return a
}

func newAMD64Win() *Arch {
	a := New("x86:LE:64:windows", 8, "RSP", TypeSizes{
		Char: 1, Short: 2, Integer: 4, Long: 4, LongLong: 8,
		Float: 4, Double: 8, LongDouble: 8, Pointer: 8,
	})
	newAMD64Registers(a)

	a.mustAddConvention(&ConventionSpec{
		Name: "__fastcall",
		PotentialInput: []string{
			"RCX", "RDX", "R8", "R9",
			"XMM0", "XMM1", "XMM2", "XMM3",
		},
		IntegerSequence: []string{"RCX", "RDX", "R8", "R9"},
		FloatSequence:   []string{"XMM0", "XMM1", "XMM2", "XMM3"},
		IntegerReturn:   "RAX",
		FloatReturn:     "XMM0",
		Unaffected:      []string{"RBX", "RSP", "RBP", "RSI", "RDI", "R12", "R13", "R14", "R15"},
		KilledByCall:    []string{"RAX", "RCX", "RDX", "R8", "R9", "R10", "R11"},
	})
	return a
}
