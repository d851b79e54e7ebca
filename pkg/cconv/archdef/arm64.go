package archdef

import "fmt"

// ARM64 is the AArch64 AAPCS64 description.
var ARM64 = register(newARM64(), "arm64", "aarch64")

func newARM64() *Arch {
	a := New("AARCH64:LE:64:v8A", 8, "sp", TypeSizes{
		Char: 1, Short: 2, Integer: 4, Long: 8, LongLong: 8,
		Float: 4, Double: 8, LongDouble: 16, Pointer: 8,
	})
	for i := 0; i <= 30; i++ {
		x := fmt.Sprintf("x%d", i)
		a.mustAddRegister(x, 64)
		a.mustAddSubRegister(fmt.Sprintf("w%d", i), 32, 0, x)
	}
	a.mustAddRegister("sp", 64)
	a.mustAddRegister("pc", 64)
	for i := 0; i < 32; i++ {
		q := fmt.Sprintf("q%d", i)
		a.mustAddRegister(q, 128)
		a.mustAddSubRegister(fmt.Sprintf("d%d", i), 64, 0, q)
		a.mustAddSubRegister(fmt.Sprintf("s%d", i), 32, 0, fmt.Sprintf("d%d", i))
	}

	a.mustAddConvention(&ConventionSpec{
		Name: "__cdecl",
		PotentialInput: []string{
			"x0", "x1", "x2", "x3", "x4", "x5", "x6", "x7",
			"q0", "q1", "q2", "q3", "q4", "q5", "q6", "q7",
		},
		IntegerSequence: []string{"x0", "x1", "x2", "x3", "x4", "x5", "x6", "x7"},
		FloatSequence:   []string{"q0", "q1", "q2", "q3", "q4", "q5", "q6", "q7"},
		IntegerReturn:   "x0",
		FloatReturn:     "q0",
		Unaffected: []string{
			"x19", "x20", "x21", "x22", "x23", "x24", "x25", "x26", "x27", "x28",
			"x29", "sp",
		},
		KilledByCall: []string{
			"x0", "x1", "x2", "x3", "x4", "x5", "x6", "x7",
			"x8", "x9", "x10", "x11", "x12", "x13", "x14", "x15", "x16", "x17",
		},
	})
	return a
}
