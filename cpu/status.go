package cpu

import "fmt"

// Processor status register flags.
const (
	C Status = 1 << iota // Carry
	Z                    // Zero
	I                    // Interrupt disable
	D                    // Decimal mode
	B                    // Break
	U                    // Unused
	V                    // Overflow
	N                    // Negative
)

// Status is the packed processor status register. The packed byte is the
// only storage; the boolean accessors are views over it.
type Status uint8

// LoadStatus unpacks a status byte, as pulled from the stack.
func LoadStatus(b byte) Status { return Status(b) }

// Dump packs the register into a byte for the stack.
func (p Status) Dump() byte { return byte(p) }

// Has reports whether every bit of flag is set.
func (p Status) Has(flag Status) bool { return p&flag == flag }

// Set sets or clears flag.
func (p *Status) Set(flag Status, on bool) {
	if on {
		*p |= flag
	} else {
		*p &^= flag
	}
}

// SetZ sets Z iff v is zero.
func (p *Status) SetZ(v Byte) { p.Set(Z, v == 0) }

// SetN sets N iff bit 7 of v is set.
func (p *Status) SetN(v Byte) { p.Set(N, v&0x80 != 0) }

// SetZN applies both derived flag rules for a result value.
func (p *Status) SetZN(v Byte) {
	p.SetZ(v)
	p.SetN(v)
}

// Carry reports whether the carry flag is set.
func (p Status) Carry() bool { return p.Has(C) }

// Zero reports whether the zero flag is set.
func (p Status) Zero() bool { return p.Has(Z) }

// InterruptDisable reports whether the interrupt disable flag is set.
func (p Status) InterruptDisable() bool { return p.Has(I) }

// Decimal reports whether the decimal flag is set.
func (p Status) Decimal() bool { return p.Has(D) }

// Break reports whether the break flag is set.
func (p Status) Break() bool { return p.Has(B) }

// Unused reports whether the unused flag is set.
func (p Status) Unused() bool { return p.Has(U) }

// Overflow reports whether the overflow flag is set.
func (p Status) Overflow() bool { return p.Has(V) }

// Negative reports whether the negative flag is set.
func (p Status) Negative() bool { return p.Has(N) }

// String renders the byte followed by the set flags, e.g. "24(··U··I··)".
func (p Status) String() string {
	s := []rune("········")
	for i, c := range "NVUBDIZC" {
		if p&(1<<(7-uint(i))) != 0 {
			s[i] = c
		}
	}
	return fmt.Sprintf("%02X(%s)", uint8(p), string(s))
}
