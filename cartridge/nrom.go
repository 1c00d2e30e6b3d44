package cartridge

// NROM (Mapper 0) is the simplest mapper: 16 KiB of PRG mirrored into both
// halves of 0x8000-0xFFFF, or 32 KiB mapped straight through.
type nrom struct {
	prgROM   []byte
	prgBanks int
}

func newNROM(cart *Cartridge) *nrom {
	return &nrom{
		prgROM:   cart.PRGROM,
		prgBanks: len(cart.PRGROM) / prgBankSize,
	}
}

// CPUMapRead implements the Mapper interface for CPU reads.
func (n *nrom) CPUMapRead(addr uint16) (byte, bool) {
	if addr < 0x8000 {
		return 0, false
	}
	mapped := addr - 0x8000
	if n.prgBanks == 1 {
		mapped &= 0x3FFF
	}
	return n.prgROM[mapped], true
}

// CPUMapWrite swallows writes to ROM.
func (n *nrom) CPUMapWrite(addr uint16, data byte) bool {
	return addr >= 0x8000
}

func (n *nrom) Save() []byte        { return nil }
func (n *nrom) Load(b []byte) error { return nil }
