package cpu

import "fmt"

// Registers is the 6502 register file.
type Registers struct {
	// Accumulator
	A Byte

	// Index Register X
	X Byte

	// Index Register Y
	Y Byte

	// Program Counter
	PC ProgramCounter

	// Stack Pointer, an offset into the stack page. Pushes decrement it.
	SP Byte

	// Processor Status
	P Status
}

// Reset puts the registers in their power-up state. The accumulator is left
// untouched.
func (r *Registers) Reset() {
	r.PC = 0
	r.SP = 0xFF
	r.P = 0
	r.X = 0
	r.Y = 0
}

func (r Registers) String() string {
	return fmt.Sprintf("PC:%04X A:%02X X:%02X Y:%02X SP:%02X P:%s",
		uint16(r.PC), uint8(r.A), uint8(r.X), uint8(r.Y), uint8(r.SP), r.P)
}
