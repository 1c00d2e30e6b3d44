package cartridge

import "fmt"

// State holds the mutable part of a cartridge. ROM contents are not saved;
// the same image must be loaded before restoring.
type State struct {
	MapperID    byte
	MapperState []byte
}

func (c *Cartridge) SaveState() State {
	return State{
		MapperID:    c.MapperID,
		MapperState: c.Mapper.Save(),
	}
}

func (c *Cartridge) LoadState(s State) error {
	if s.MapperID != c.MapperID {
		return fmt.Errorf("state is for mapper %d, cartridge uses %d", s.MapperID, c.MapperID)
	}
	return c.Mapper.Load(s.MapperState)
}
