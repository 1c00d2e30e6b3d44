package cpu

// Byte is an 8-bit value. Arithmetic wraps modulo 256.
type Byte uint8

// Word is a 16-bit value. Arithmetic wraps modulo 65536.
type Word uint16

// Address is a location in the 16-bit address space.
type Address = Word

// ProgramCounter is the address of the next instruction.
type ProgramCounter = Word

// Inc returns b+1.
func (b Byte) Inc() Byte { return b + 1 }

// Dec returns b-1.
func (b Byte) Dec() Byte { return b - 1 }

// Bit reports whether bit n is set.
func (b Byte) Bit(n uint) bool { return b&(1<<n) != 0 }

// Bool reports whether b is nonzero.
func (b Byte) Bool() bool { return b != 0 }

// Word zero-extends b.
func (b Byte) Word() Word { return Word(b) }

// NewWord builds a word from its low and high bytes.
func NewWord(lo, hi Byte) Word {
	return Word(hi)<<8 | Word(lo)
}

// Low returns the low byte.
func (w Word) Low() Byte { return Byte(w) }

// High returns the high byte.
func (w Word) High() Byte { return Byte(w >> 8) }

// Inc returns w+1.
func (w Word) Inc() Word { return w + 1 }

// Dec returns w-1.
func (w Word) Dec() Word { return w - 1 }

// Offset adds a signed displacement, wrapping at both ends.
func (w Word) Offset(delta int) Word {
	return Word(int(w) + delta)
}

// SamePage reports whether w and o share the same high byte.
func (w Word) SamePage(o Word) bool {
	return w&0xFF00 == o&0xFF00
}
