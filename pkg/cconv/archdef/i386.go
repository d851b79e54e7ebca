package archdef

import "fmt"

// I386 is 32-bit x86. Its default conventions pass everything on the stack,
// which makes it the degenerate case of the resolver: both parameter
// register lists come out empty.
var I386 = register(newI386(), "386", "i386", "x86")

func newI386() *Arch {
	a := New("x86:LE:32:default", 4, "ESP", TypeSizes{
		Char: 1, Short: 2, Integer: 4, Long: 4, LongLong: 8,
		Float: 4, Double: 8, LongDouble: 12, Pointer: 4,
	})
	for _, gpr := range []struct{ d, w, b string }{
		{"EAX", "AX", "AL"},
		{"EBX", "BX", "BL"},
		{"ECX", "CX", "CL"},
		{"EDX", "DX", "DL"},
	} {
		a.mustAddRegister(gpr.d, 32)
		a.mustAddSubRegister(gpr.w, 16, 0, gpr.d)
		a.mustAddSubRegister(gpr.b, 8, 0, gpr.w)
	}
	for _, name := range []string{"ESI", "EDI", "EBP", "ESP", "EIP"} {
		a.mustAddRegister(name, 32)
	}
	for i := 0; i < 8; i++ {
		a.mustAddRegister(fmt.Sprintf("ST%d", i), 80)
	}

	stack := &ConventionSpec{
		Name:          "__cdecl",
		IntegerReturn: "EAX",
		FloatReturn:   "ST0",
		Unaffected:    []string{"EBX", "ESI", "EDI", "EBP", "ESP"},
		KilledByCall:  []string{"EAX", "ECX", "EDX"},
	}
	a.mustAddConvention(stack)
	stdcall := *stack
	stdcall.Name = "__stdcall"
	a.mustAddConvention(&stdcall)
	a.mustAddConvention(&ConventionSpec{
		Name:            "__fastcall",
		PotentialInput:  []string{"ECX", "EDX"},
		IntegerSequence: []string{"ECX", "EDX"},
		IntegerReturn:   "EAX",
		FloatReturn:     "ST0",
		Unaffected:      []string{"EBX", "ESI", "EDI", "EBP", "ESP"},
		KilledByCall:    []string{"EAX", "ECX", "EDX"},
	})
	return a
}
