package machine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/meadori/vibe6502/disasm"
)

// Step executes one instruction. A decode failure or a trap halts the
// machine and pauses the run loop; landing on a breakpoint only pauses it.
func (m *Machine) Step() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step()
}

func (m *Machine) step() error {
	pc := uint16(m.cpu.PC)
	if m.trace != nil {
		fmt.Fprintln(m.trace, disasm.Trace(bus{m}, m.cpu.Registers, m.cpu.Cycles, m.cpu.Encoding()))
	}

	if err := m.cpu.Clock(); err != nil {
		m.halt(fmt.Errorf("step %d: %w", m.steps, err))
		return m.halted
	}
	m.steps++

	if uint16(m.cpu.PC) == pc {
		m.halt(&TrapError{PC: pc})
		return m.halted
	}
	if _, ok := m.breakpoints[uint16(m.cpu.PC)]; ok {
		log.Printf("breakpoint at %04X", uint16(m.cpu.PC))
		m.paused = true
	}
	return nil
}

func (m *Machine) halt(err error) {
	m.halted = err
	m.paused = true
	log.Printf("machine halted: %v", err)
}

// RunFor executes up to n instructions, stopping early on a halt or a
// breakpoint. It returns the number of instructions executed. A
// non-positive n runs until the machine stops by itself.
func (m *Machine) RunFor(n int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.paused = false
	done := 0
	for n <= 0 || done < n {
		err := m.step()
		if err != nil {
			var trap *TrapError
			if errors.As(err, &trap) {
				done++
			}
			return done, err
		}
		done++
		if m.paused {
			break
		}
	}
	return done, nil
}

// SetPaused suspends or resumes Run. Resuming clears a halt so execution
// can continue after the state was fixed up.
func (m *Machine) SetPaused(paused bool) {
	m.mu.Lock()
	m.paused = paused
	if !paused {
		m.halted = nil
	}
	m.mu.Unlock()
	m.signal()
}

// Paused reports whether Run is suspended.
func (m *Machine) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *Machine) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// Run executes instructions until ctx is cancelled. While paused it blocks
// until SetPaused(false) is called.
func (m *Machine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		m.mu.Lock()
		if m.paused {
			m.mu.Unlock()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-m.wake:
			}
			continue
		}
		m.step()
		m.mu.Unlock()
	}
}
