package machine

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/meadori/vibe6502/cartridge"
	"github.com/meadori/vibe6502/cpu"
	"github.com/meadori/vibe6502/memory"
)

type State struct {
	RAM       [memory.Size]byte
	Steps     uint64
	CPU       cpu.State
	Cartridge *cartridge.State
}

// WriteState encodes the machine state to w.
func (m *Machine) WriteState(w io.Writer) error {
	m.mu.Lock()
	s := State{
		RAM:   m.ram.Snapshot(),
		Steps: m.steps,
		CPU:   m.cpu.SaveState(),
	}
	if m.cart != nil {
		cs := m.cart.SaveState()
		s.Cartridge = &cs
	}
	m.mu.Unlock()

	return gob.NewEncoder(w).Encode(s)
}

// ReadState restores a state written by WriteState. A state that carries
// cartridge banking can only be restored with the same cartridge inserted.
func (m *Machine) ReadState(r io.Reader) error {
	var s State
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s.Cartridge != nil {
		if m.cart == nil {
			return fmt.Errorf("state needs a cartridge with mapper %d", s.Cartridge.MapperID)
		}
		if err := m.cart.LoadState(*s.Cartridge); err != nil {
			return err
		}
	}
	m.ram.Restore(s.RAM)
	m.steps = s.Steps
	m.cpu.LoadState(s.CPU)
	m.halted = nil
	return nil
}

// SaveState saves the entire emulator state to a file.
func (m *Machine) SaveState(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := m.WriteState(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadState loads the emulator state from a file.
func (m *Machine) LoadState(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return m.ReadState(file)
}
