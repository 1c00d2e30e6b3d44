package cartridge

import "fmt"

// uxrom represents Mapper 2 (UxROM).
// It features a switchable 16KB PRG ROM bank at $8000-$BFFF
// and a fixed 16KB PRG ROM bank at $C000-$FFFF (the last bank).
type uxrom struct {
	prgROM        []byte
	prgBanks      int
	prgBankSelect int
}

func newUxROM(cart *Cartridge) *uxrom {
	return &uxrom{
		prgROM:   cart.PRGROM,
		prgBanks: len(cart.PRGROM) / prgBankSize,
	}
}

// CPUMapRead implements the Mapper interface for CPU reads.
func (u *uxrom) CPUMapRead(addr uint16) (byte, bool) {
	switch {
	case addr >= 0x8000 && addr <= 0xBFFF:
		bank := u.prgBankSelect % u.prgBanks
		return u.prgROM[bank*prgBankSize+int(addr-0x8000)], true
	case addr >= 0xC000:
		bank := u.prgBanks - 1
		return u.prgROM[bank*prgBankSize+int(addr-0xC000)], true
	}
	return 0, false
}

// CPUMapWrite implements the Mapper interface for CPU writes. Any write to
// $8000-$FFFF selects the low bank.
func (u *uxrom) CPUMapWrite(addr uint16, data byte) bool {
	if addr < 0x8000 {
		return false
	}
	u.prgBankSelect = int(data)
	return true
}

func (u *uxrom) Save() []byte { return []byte{byte(u.prgBankSelect)} }

func (u *uxrom) Load(b []byte) error {
	if len(b) != 1 {
		return fmt.Errorf("uxrom: bad state length %d", len(b))
	}
	u.prgBankSelect = int(b[0])
	return nil
}
