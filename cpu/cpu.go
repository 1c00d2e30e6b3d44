package cpu

import "github.com/meadori/vibe6502/memory"

// Bus defines the interface for the CPU to interact with the bus.
type Bus interface {
	Read(addr uint16) byte
	Write(addr uint16, data byte)
}

// Interrupt vectors
const (
	NMIVector   Address = 0xFFFA
	ResetVector Address = 0xFFFC
	IRQVector   Address = 0xFFFE
)

// RelativeEncoding selects how branch operands are interpreted.
type RelativeEncoding uint8

const (
	// BiasedRelative stores the displacement plus 128: 0x80 is "no jump",
	// 0x88 is +8 and 0x7F is -1.
	BiasedRelative RelativeEncoding = iota

	// SignedRelative stores the displacement in two's complement, as
	// assembled 6502 code does.
	SignedRelative
)

// Offset decodes a branch operand byte into a signed displacement.
func (e RelativeEncoding) Offset(b Byte) int8 {
	if e == SignedRelative {
		return int8(b)
	}
	return int8(int(b) - 128)
}

// Option configures a CPU.
type Option func(*CPU)

// WithRelativeEncoding selects the branch operand encoding.
func WithRelativeEncoding(e RelativeEncoding) Option {
	return func(c *CPU) {
		c.relative = e
	}
}

// CPU represents the 6502 CPU. It is not safe for concurrent use.
type CPU struct {
	Registers

	// Cycles is the running total of cycles spent, including page-cross
	// and taken-branch penalties.
	Cycles uint64

	bus      Bus
	relative RelativeEncoding
}

// New creates a CPU attached to bus, in its power-up state.
func New(bus Bus, opts ...Option) *CPU {
	c := &CPU{bus: bus}
	for _, opt := range opts {
		opt(c)
	}
	c.Reset()
	return c
}

// Encoding reports the branch operand encoding in use.
func (c *CPU) Encoding() RelativeEncoding {
	return c.relative
}

// Reset resets the CPU to its power-up state.
func (c *CPU) Reset() {
	c.Registers.Reset()
	c.Cycles = 0
}

// Clock fetches, decodes and executes exactly one instruction. An undefined
// opcode yields a *DecodeError and leaves every register untouched.
func (c *CPU) Clock() error {
	pc := c.PC
	opcode := c.read(pc)

	in, ok := Lookup(opcode)
	if !ok {
		return &DecodeError{Opcode: opcode, PC: pc}
	}

	op := c.Resolve(pc.Inc(), in)
	c.PC = pc.Offset(in.Size)
	c.Cycles += uint64(in.Cycles + op.Cycles)
	c.Execute(in, op)
	return nil
}

func (c *CPU) read(addr Address) Byte {
	return Byte(c.bus.Read(uint16(addr)))
}

func (c *CPU) write(addr Address, data Byte) {
	c.bus.Write(uint16(addr), byte(data))
}

func (c *CPU) readWord(addr Address) Word {
	return NewWord(c.read(addr), c.read(addr.Inc()))
}

func stackAddress(sp Byte) Address {
	return Address(memory.StackAddress) + sp.Word()
}

// push writes at the stack pointer, then moves it down.
func (c *CPU) push(data Byte) {
	c.write(stackAddress(c.SP), data)
	c.SP--
}

// pull moves the stack pointer up, then reads.
func (c *CPU) pull() Byte {
	c.SP++
	return c.read(stackAddress(c.SP))
}

// pushWord pushes the high byte first so the low byte ends up at the lower
// address.
func (c *CPU) pushWord(w Word) {
	c.push(w.High())
	c.push(w.Low())
}

func (c *CPU) pullWord() Word {
	lo := c.pull()
	hi := c.pull()
	return NewWord(lo, hi)
}
