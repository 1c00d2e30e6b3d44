package cpu

import "fmt"

// ops is indexed by mnemonic.
var ops [mnemonics]func(*CPU, Operand)

func init() {
	ops = [mnemonics]func(*CPU, Operand){
		(*CPU).adc,
		(*CPU).and,
		(*CPU).asl,
		(*CPU).bcc,
		(*CPU).bcs,
		(*CPU).beq,
		(*CPU).bit,
		(*CPU).bmi,
		(*CPU).bne,
		(*CPU).bpl,
		(*CPU).brk,
		(*CPU).bvc,
		(*CPU).bvs,
		(*CPU).clc,
		(*CPU).cld,
		(*CPU).cli,
		(*CPU).clv,
		(*CPU).cmp,
		(*CPU).cpx,
		(*CPU).cpy,
		(*CPU).dec,
		(*CPU).dex,
		(*CPU).dey,
		(*CPU).eor,
		(*CPU).inc,
		(*CPU).inx,
		(*CPU).iny,
		(*CPU).jmp,
		(*CPU).jsr,
		(*CPU).lda,
		(*CPU).ldx,
		(*CPU).ldy,
		(*CPU).lsr,
		(*CPU).nop,
		(*CPU).ora,
		(*CPU).pha,
		(*CPU).php,
		(*CPU).pla,
		(*CPU).plp,
		(*CPU).rol,
		(*CPU).ror,
		(*CPU).rti,
		(*CPU).rts,
		(*CPU).sbc,
		(*CPU).sec,
		(*CPU).sed,
		(*CPU).sei,
		(*CPU).sta,
		(*CPU).stx,
		(*CPU).sty,
		(*CPU).tax,
		(*CPU).tay,
		(*CPU).tsx,
		(*CPU).txa,
		(*CPU).txs,
		(*CPU).tya,
	}
}

// Execute applies in to the CPU state. PC must already point past the
// instruction.
func (c *CPU) Execute(in Instruction, op Operand) {
	ops[in.Mnemonic](c, op)
}

// modify performs a read-modify-write on the accumulator or on memory,
// depending on the addressing mode.
func (c *CPU) modify(op Operand, fn func(Byte) Byte) {
	if op.Mode == Accumulator {
		c.A = fn(c.A)
		return
	}
	c.write(op.Address, fn(c.read(op.Address)))
}

func (c *CPU) addWithCarry(m Byte) {
	a := c.A
	sum := uint16(a) + uint16(m)
	if c.P.Carry() {
		sum++
	}
	r := Byte(sum)

	c.P.Set(C, sum > 0xFF)
	c.P.Set(V, (a^r)&(m^r)&0x80 != 0)
	c.A = r
	c.P.SetZN(r)
}

func (c *CPU) compare(reg, m Byte) {
	c.P.Set(C, reg >= m)
	c.P.Set(Z, reg == m)
	c.P.SetN(reg - m)
}

func (c *CPU) branch(op Operand, taken bool) {
	if !op.Relative {
		panic(fmt.Sprintf("cpu: branch at %04X executed without a relative operand", uint16(c.PC)))
	}
	if !taken {
		return
	}
	target := c.PC.Offset(int(op.Offset))
	c.Cycles++
	if !target.SamePage(c.PC) {
		c.Cycles++
	}
	c.PC = target
}

// ADC - Add with Carry. Decimal mode is ignored, as on the 2A03.
func (c *CPU) adc(op Operand) {
	c.addWithCarry(c.read(op.Address))
}

// AND - Logical AND
func (c *CPU) and(op Operand) {
	c.A &= c.read(op.Address)
	c.P.SetZN(c.A)
}

// ASL - Arithmetic Shift Left
func (c *CPU) asl(op Operand) {
	c.modify(op, func(v Byte) Byte {
		c.P.Set(C, v&0x80 != 0)
		v <<= 1
		c.P.SetZN(v)
		return v
	})
}

// BCC - Branch if Carry Clear
func (c *CPU) bcc(op Operand) { c.branch(op, !c.P.Carry()) }

// BCS - Branch if Carry Set
func (c *CPU) bcs(op Operand) { c.branch(op, c.P.Carry()) }

// BEQ - Branch if Equal
func (c *CPU) beq(op Operand) { c.branch(op, c.P.Zero()) }

// BIT - Bit Test
func (c *CPU) bit(op Operand) {
	m := c.read(op.Address)
	c.P.SetZ(c.A & m)
	c.P.Set(N, m&0x80 != 0)
	c.P.Set(V, m&0x40 != 0)
}

// BMI - Branch if Minus
func (c *CPU) bmi(op Operand) { c.branch(op, c.P.Negative()) }

// BNE - Branch if Not Equal
func (c *CPU) bne(op Operand) { c.branch(op, !c.P.Zero()) }

// BPL - Branch if Positive
func (c *CPU) bpl(op Operand) { c.branch(op, !c.P.Negative()) }

// BRK - Force Interrupt. The break flag is only ever visible in the copy
// of the status pushed to the stack.
func (c *CPU) brk(op Operand) {
	c.P.Set(B, true)
	c.pushWord(c.PC)
	c.P.Set(I, true)
	c.push(Byte(c.P.Dump()))
	c.P.Set(B, false)
	c.PC = c.readWord(IRQVector)
}

// BVC - Branch if Overflow Clear
func (c *CPU) bvc(op Operand) { c.branch(op, !c.P.Overflow()) }

// BVS - Branch if Overflow Set
func (c *CPU) bvs(op Operand) { c.branch(op, c.P.Overflow()) }

func (c *CPU) clc(op Operand) { c.P.Set(C, false) }
func (c *CPU) cld(op Operand) { c.P.Set(D, false) }
func (c *CPU) cli(op Operand) { c.P.Set(I, false) }
func (c *CPU) clv(op Operand) { c.P.Set(V, false) }

// CMP - Compare
func (c *CPU) cmp(op Operand) { c.compare(c.A, c.read(op.Address)) }

// CPX - Compare X Register
func (c *CPU) cpx(op Operand) { c.compare(c.X, c.read(op.Address)) }

// CPY - Compare Y Register
func (c *CPU) cpy(op Operand) { c.compare(c.Y, c.read(op.Address)) }

// DEC - Decrement Memory
func (c *CPU) dec(op Operand) {
	c.modify(op, func(v Byte) Byte {
		v = v.Dec()
		c.P.SetZN(v)
		return v
	})
}

func (c *CPU) dex(op Operand) {
	c.X = c.X.Dec()
	c.P.SetZN(c.X)
}

func (c *CPU) dey(op Operand) {
	c.Y = c.Y.Dec()
	c.P.SetZN(c.Y)
}

// EOR - Exclusive OR
func (c *CPU) eor(op Operand) {
	c.A ^= c.read(op.Address)
	c.P.SetZN(c.A)
}

// INC - Increment Memory
func (c *CPU) inc(op Operand) {
	c.modify(op, func(v Byte) Byte {
		v = v.Inc()
		c.P.SetZN(v)
		return v
	})
}

func (c *CPU) inx(op Operand) {
	c.X = c.X.Inc()
	c.P.SetZN(c.X)
}

func (c *CPU) iny(op Operand) {
	c.Y = c.Y.Inc()
	c.P.SetZN(c.Y)
}

// JMP - Jump
func (c *CPU) jmp(op Operand) {
	c.PC = op.Address
}

// JSR - Jump to Subroutine. The pushed address is the last byte of the
// JSR instruction; RTS adds one.
func (c *CPU) jsr(op Operand) {
	c.pushWord(c.PC.Dec())
	c.PC = op.Address
}

// LDA - Load Accumulator
func (c *CPU) lda(op Operand) {
	c.A = c.read(op.Address)
	c.P.SetZN(c.A)
}

// LDX - Load X Register
func (c *CPU) ldx(op Operand) {
	c.X = c.read(op.Address)
	c.P.SetZN(c.X)
}

// LDY - Load Y Register
func (c *CPU) ldy(op Operand) {
	c.Y = c.read(op.Address)
	c.P.SetZN(c.Y)
}

// LSR - Logical Shift Right
func (c *CPU) lsr(op Operand) {
	c.modify(op, func(v Byte) Byte {
		c.P.Set(C, v&0x01 != 0)
		v >>= 1
		c.P.SetZN(v)
		return v
	})
}

func (c *CPU) nop(op Operand) {}

// ORA - Logical Inclusive OR
func (c *CPU) ora(op Operand) {
	c.A |= c.read(op.Address)
	c.P.SetZN(c.A)
}

// PHA - Push Accumulator
func (c *CPU) pha(op Operand) { c.push(c.A) }

// PHP - Push Processor Status
func (c *CPU) php(op Operand) { c.push(Byte(c.P.Dump())) }

// PLA - Pull Accumulator
func (c *CPU) pla(op Operand) {
	c.A = c.pull()
	c.P.SetZN(c.A)
}

// PLP - Pull Processor Status
func (c *CPU) plp(op Operand) {
	c.P = LoadStatus(byte(c.pull()))
}

// ROL - Rotate Left
func (c *CPU) rol(op Operand) {
	c.modify(op, func(v Byte) Byte {
		var in Byte
		if c.P.Carry() {
			in = 0x01
		}
		c.P.Set(C, v&0x80 != 0)
		v = v<<1 | in
		c.P.SetZN(v)
		return v
	})
}

// ROR - Rotate Right
func (c *CPU) ror(op Operand) {
	c.modify(op, func(v Byte) Byte {
		var in Byte
		if c.P.Carry() {
			in = 0x80
		}
		c.P.Set(C, v&0x01 != 0)
		v = v>>1 | in
		c.P.SetZN(v)
		return v
	})
}

// RTI - Return from Interrupt
func (c *CPU) rti(op Operand) {
	c.P = LoadStatus(byte(c.pull()))
	c.PC = c.pullWord()
}

// RTS - Return from Subroutine
func (c *CPU) rts(op Operand) {
	c.PC = c.pullWord().Inc()
}

// SBC - Subtract with Carry
func (c *CPU) sbc(op Operand) {
	c.addWithCarry(^c.read(op.Address))
}

func (c *CPU) sec(op Operand) { c.P.Set(C, true) }
func (c *CPU) sed(op Operand) { c.P.Set(D, true) }
func (c *CPU) sei(op Operand) { c.P.Set(I, true) }

func (c *CPU) sta(op Operand) { c.write(op.Address, c.A) }
func (c *CPU) stx(op Operand) { c.write(op.Address, c.X) }
func (c *CPU) sty(op Operand) { c.write(op.Address, c.Y) }

func (c *CPU) tax(op Operand) {
	c.X = c.A
	c.P.SetZN(c.X)
}

func (c *CPU) tay(op Operand) {
	c.Y = c.A
	c.P.SetZN(c.Y)
}

func (c *CPU) tsx(op Operand) {
	c.X = c.SP
	c.P.SetZN(c.X)
}

func (c *CPU) txa(op Operand) {
	c.A = c.X
	c.P.SetZN(c.A)
}

// TXS - Transfer X to Stack Pointer. Flags are not affected.
func (c *CPU) txs(op Operand) {
	c.SP = c.X
}

func (c *CPU) tya(op Operand) {
	c.A = c.Y
	c.P.SetZN(c.A)
}
