package mapper

// Mapper is the CPU side of a cartridge board: it decides which PRG bytes
// appear in the upper half of the address space.
type Mapper interface {
	// CPUMapRead returns the byte at addr and whether the mapper handles it.
	CPUMapRead(addr uint16) (byte, bool)

	// CPUMapWrite reports whether the mapper consumed the write. ROM
	// boards consume writes to register space without storing them.
	CPUMapWrite(addr uint16, data byte) bool

	// Save and Load serialize the bank registers.
	Save() []byte
	Load(b []byte) error
}
