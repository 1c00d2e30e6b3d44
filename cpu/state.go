package cpu

// State is a serializable copy of the CPU.
type State struct {
	PC                uint16
	SP, A, X, Y, P    byte
	Cycles            uint64
	SignedBranchBytes bool
}

func (c *CPU) SaveState() State {
	return State{
		PC:                uint16(c.PC),
		SP:                byte(c.SP),
		A:                 byte(c.A),
		X:                 byte(c.X),
		Y:                 byte(c.Y),
		P:                 c.P.Dump(),
		Cycles:            c.Cycles,
		SignedBranchBytes: c.relative == SignedRelative,
	}
}

func (c *CPU) LoadState(s State) {
	c.PC, c.SP, c.A, c.X, c.Y = Word(s.PC), Byte(s.SP), Byte(s.A), Byte(s.X), Byte(s.Y)
	c.P = LoadStatus(s.P)
	c.Cycles = s.Cycles
	c.relative = BiasedRelative
	if s.SignedBranchBytes {
		c.relative = SignedRelative
	}
}
