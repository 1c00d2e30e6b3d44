package cpu

// Operand is the result of address resolution.
type Operand struct {
	Mode AddressingMode

	// Address is the effective address. It is zero, and must not be
	// dereferenced, for Implied and Accumulator modes.
	Address Address

	// Offset is the signed branch displacement; Relative reports whether
	// it was resolved.
	Offset   int8
	Relative bool

	// PageCrossed is set when indexing moved the address to another page.
	PageCrossed bool

	// Cycles is the extra cost of the resolution (page-cross penalty).
	Cycles int
}

// Resolve computes the operand of in. pc points at the first byte after the
// opcode. Resolve only reads memory.
func (c *CPU) Resolve(pc ProgramCounter, in Instruction) Operand {
	op := Operand{Mode: in.Mode}

	switch in.Mode {
	case Immediate:
		op.Address = pc

	case ZeroPage:
		op.Address = c.read(pc).Word()

	case ZeroPageX:
		// No carry into the high byte.
		op.Address = (c.read(pc) + c.X).Word()

	case ZeroPageY:
		op.Address = (c.read(pc) + c.Y).Word()

	case Absolute:
		op.Address = c.readWord(pc)

	case AbsoluteX:
		c.index(&op, in, c.readWord(pc), c.X)

	case AbsoluteY:
		c.index(&op, in, c.readWord(pc), c.Y)

	case Indirect:
		op.Address = c.readWordBug(c.readWord(pc))

	case IndexedIndirect:
		op.Address = c.readZeroPageWord(c.read(pc) + c.X)

	case IndirectIndexed:
		c.index(&op, in, c.readZeroPageWord(c.read(pc)), c.Y)

	case Relative:
		op.Offset = c.relative.Offset(c.read(pc))
		op.Relative = true
		op.Address = pc.Offset(int(op.Offset))
	}

	return op
}

func (c *CPU) index(op *Operand, in Instruction, base Address, idx Byte) {
	op.Address = base + idx.Word()
	op.PageCrossed = !base.SamePage(op.Address)
	if op.PageCrossed && in.PageCross {
		op.Cycles = 1
	}
}

// readWordBug reads a pointer the way JMP ($xxFF) does on hardware: the high
// byte is fetched from the start of the same page.
func (c *CPU) readWordBug(ptr Address) Word {
	hi := ptr&0xFF00 | ptr.Low().Inc().Word()
	return NewWord(c.read(ptr), c.read(hi))
}

// readZeroPageWord reads a pointer held in page zero; the high byte wraps
// from 0xFF to 0x00.
func (c *CPU) readZeroPageWord(zp Byte) Word {
	return NewWord(c.read(zp.Word()), c.read(zp.Inc().Word()))
}
