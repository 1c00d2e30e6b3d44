// Package disasm turns memory back into 6502 assembly and formats
// nestest-style execution traces.
package disasm

import (
	"fmt"
	"strings"

	"github.com/meadori/vibe6502/cpu"
)

// Reader is the read half of cpu.Bus.
type Reader interface {
	Read(addr uint16) byte
}

// Line is one decoded instruction.
type Line struct {
	PC    uint16
	Bytes []byte

	// Instruction is only meaningful when Known is set; unknown opcodes
	// decode as a single data byte.
	Instruction cpu.Instruction
	Known       bool

	// Target is the branch destination for relative instructions.
	Target uint16
}

// Decode reads the instruction at pc.
func Decode(r Reader, pc uint16, enc cpu.RelativeEncoding) Line {
	opcode := r.Read(pc)
	in, ok := cpu.Lookup(cpu.Byte(opcode))
	if !ok {
		return Line{PC: pc, Bytes: []byte{opcode}}
	}

	l := Line{PC: pc, Instruction: in, Known: true}
	n := 1 + in.Mode.OperandBytes()
	for i := 0; i < n; i++ {
		l.Bytes = append(l.Bytes, r.Read(pc+uint16(i)))
	}
	if in.Mode == cpu.Relative {
		off := enc.Offset(cpu.Byte(l.Bytes[1]))
		l.Target = uint16(cpu.Word(pc + uint16(in.Size)).Offset(int(off)))
	}
	return l
}

// Range decodes count consecutive instructions starting at pc.
func Range(r Reader, pc uint16, count int, enc cpu.RelativeEncoding) []Line {
	lines := make([]Line, 0, count)
	for i := 0; i < count; i++ {
		l := Decode(r, pc, enc)
		lines = append(lines, l)
		pc += uint16(l.Size())
	}
	return lines
}

// Size is the number of bytes the line advances PC by.
func (l Line) Size() int {
	if !l.Known {
		return 1
	}
	return l.Instruction.Size
}

// Hex renders the raw bytes, e.g. "A2 00".
func (l Line) Hex() string {
	parts := make([]string, len(l.Bytes))
	for i, b := range l.Bytes {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

// Text renders the instruction in assembler syntax.
func (l Line) Text() string {
	if !l.Known {
		return fmt.Sprintf(".byte $%02X", l.Bytes[0])
	}

	name := l.Instruction.Mnemonic.String()
	var b1 byte
	var word uint16
	if len(l.Bytes) > 1 {
		b1 = l.Bytes[1]
		word = uint16(b1)
	}
	if len(l.Bytes) > 2 {
		word |= uint16(l.Bytes[2]) << 8
	}

	switch l.Instruction.Mode {
	case cpu.Implied:
		return name
	case cpu.Accumulator:
		return name + " A"
	case cpu.Immediate:
		return fmt.Sprintf("%s #$%02X", name, b1)
	case cpu.ZeroPage:
		return fmt.Sprintf("%s $%02X", name, b1)
	case cpu.ZeroPageX:
		return fmt.Sprintf("%s $%02X,X", name, b1)
	case cpu.ZeroPageY:
		return fmt.Sprintf("%s $%02X,Y", name, b1)
	case cpu.Relative:
		return fmt.Sprintf("%s $%04X", name, l.Target)
	case cpu.Absolute:
		return fmt.Sprintf("%s $%04X", name, word)
	case cpu.AbsoluteX:
		return fmt.Sprintf("%s $%04X,X", name, word)
	case cpu.AbsoluteY:
		return fmt.Sprintf("%s $%04X,Y", name, word)
	case cpu.Indirect:
		return fmt.Sprintf("%s ($%04X)", name, word)
	case cpu.IndexedIndirect:
		return fmt.Sprintf("%s ($%02X,X)", name, b1)
	case cpu.IndirectIndexed:
		return fmt.Sprintf("%s ($%02X),Y", name, b1)
	}
	return name + " ???"
}

func (l Line) String() string {
	return fmt.Sprintf("%04X  %-8s  %s", l.PC, l.Hex(), l.Text())
}

// Trace formats the instruction about to execute together with the
// register state before it runs:
//
//	C000  4C F5 C5  JMP $C5F5                        A:00 X:00 Y:00 P:24 SP:FD CYC:7
func Trace(r Reader, regs cpu.Registers, cycles uint64, enc cpu.RelativeEncoding) string {
	l := Decode(r, uint16(regs.PC), enc)
	return fmt.Sprintf("%04X  %-8s  %-32s A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d",
		l.PC, l.Hex(), l.Text(),
		regs.A, regs.X, regs.Y, regs.P.Dump(), regs.SP,
		cycles,
	)
}
