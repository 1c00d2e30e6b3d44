// Package machine assembles RAM, an optional cartridge and the CPU into a
// runnable system that can be driven from several goroutines.
package machine

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/meadori/vibe6502/cartridge"
	"github.com/meadori/vibe6502/cpu"
	"github.com/meadori/vibe6502/disasm"
	"github.com/meadori/vibe6502/mapper"
	"github.com/meadori/vibe6502/memory"
)

// ErrTrap is wrapped by *TrapError.
var ErrTrap = errors.New("trapped")

// TrapError reports an instruction that jumped or branched to itself, the
// way test ROMs signal success or failure.
type TrapError struct {
	PC uint16
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("trapped at %04X", e.PC)
}

func (e *TrapError) Unwrap() error { return ErrTrap }

// Option configures a Machine.
type Option func(*Machine)

// WithCPUOptions passes options through to cpu.New.
func WithCPUOptions(opts ...cpu.Option) Option {
	return func(m *Machine) {
		m.cpuOpts = append(m.cpuOpts, opts...)
	}
}

// WithEntryPoint makes Reset start at addr instead of the reset vector.
func WithEntryPoint(addr uint16) Option {
	return func(m *Machine) {
		m.entry = &addr
	}
}

// WithTrace writes a trace line for every instruction before it executes.
func WithTrace(w io.Writer) Option {
	return func(m *Machine) {
		m.trace = w
	}
}

// Machine is a 6502 with 64 KiB of RAM and an optional cartridge mapped
// over 0x8000-0xFFFF. All methods are safe for concurrent use.
type Machine struct {
	mu sync.Mutex

	ram    *memory.RAM
	cpu    *cpu.CPU
	cart   *cartridge.Cartridge
	mapper mapper.Mapper

	cpuOpts []cpu.Option
	entry   *uint16
	trace   io.Writer

	steps       uint64
	paused      bool
	halted      error
	breakpoints map[uint16]struct{}
	wake        chan struct{}
}

// New creates a Machine in its power-on state.
func New(opts ...Option) *Machine {
	m := &Machine{
		ram:         memory.New(),
		breakpoints: make(map[uint16]struct{}),
		wake:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cpu = cpu.New(bus{m}, m.cpuOpts...)
	m.reset()
	return m
}

// bus is the view of the machine the CPU sees. It runs with m.mu held.
type bus struct {
	m *Machine
}

// Read reads a byte from the bus.
func (b bus) Read(addr uint16) byte {
	if b.m.mapper != nil {
		if data, ok := b.m.mapper.CPUMapRead(addr); ok {
			return data
		}
	}
	return b.m.ram.Read(addr)
}

// Write writes a byte to the bus.
func (b bus) Write(addr uint16, data byte) {
	if b.m.mapper != nil && b.m.mapper.CPUMapWrite(addr, data) {
		return
	}
	b.m.ram.Write(addr, data)
}

// Load copies program into RAM at addr.
func (m *Machine) Load(addr uint16, program []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ram.Load(addr, program)
}

// InsertCartridge maps cart over the upper half of the address space and
// resets the machine through the cartridge's reset vector.
func (m *Machine) InsertCartridge(cart *cartridge.Cartridge) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cart = cart
	m.mapper = cart.Mapper
	if cart.Trainer != nil {
		m.ram.Load(cartridge.TrainerAddress, cart.Trainer)
	}
	m.reset()
}

// Reset resets the CPU and sets PC from the entry point or the reset
// vector. Memory is kept.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

func (m *Machine) reset() {
	m.cpu.Reset()
	if m.entry != nil {
		m.cpu.PC = cpu.ProgramCounter(*m.entry)
	} else {
		b := bus{m}
		m.cpu.PC = cpu.NewWord(cpu.Byte(b.Read(uint16(cpu.ResetVector))), cpu.Byte(b.Read(uint16(cpu.ResetVector)+1)))
	}
	m.steps = 0
	m.halted = nil
}

// Read reads a byte as the CPU would see it.
func (m *Machine) Read(addr uint16) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bus{m}.Read(addr)
}

// Write writes a byte as the CPU would.
func (m *Machine) Write(addr uint16, data byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bus{m}.Write(addr, data)
}

// GetMemoryBlock returns size bytes starting at addr as the CPU sees them.
func (m *Machine) GetMemoryBlock(addr uint16, size int) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if size > memory.Size {
		size = memory.Size
	}
	b := bus{m}
	out := make([]byte, size)
	for i := range out {
		out[i] = b.Read(addr + uint16(i))
	}
	return out
}

// Registers returns a copy of the register file.
func (m *Machine) Registers() cpu.Registers {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpu.Registers
}

// SetRegisters replaces the register file and clears a halt.
func (m *Machine) SetRegisters(r cpu.Registers) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cpu.Registers = r
	m.halted = nil
}

// SetPC moves the program counter and clears a halt.
func (m *Machine) SetPC(pc uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cpu.PC = cpu.ProgramCounter(pc)
	m.halted = nil
}

// GetCPUState returns the registers, cycle count and step count.
func (m *Machine) GetCPUState() (cpu.State, uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cpu.SaveState(), m.steps
}

// Disassemble decodes count instructions starting at addr.
func (m *Machine) Disassemble(addr uint16, count int) []disasm.Line {
	m.mu.Lock()
	defer m.mu.Unlock()
	return disasm.Range(bus{m}, addr, count, m.cpu.Encoding())
}

// Halted returns the error that stopped the machine, if any.
func (m *Machine) Halted() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.halted
}

// SetBreakpoint pauses execution before the instruction at addr.
func (m *Machine) SetBreakpoint(addr uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breakpoints[addr] = struct{}{}
}

// ClearBreakpoint removes a breakpoint. It reports whether one was set.
func (m *Machine) ClearBreakpoint(addr uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.breakpoints[addr]
	delete(m.breakpoints, addr)
	return ok
}

// Breakpoints returns the breakpoint addresses in ascending order.
func (m *Machine) Breakpoints() []uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uint16, 0, len(m.breakpoints))
	for addr := range m.breakpoints {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
