package memory

// Well known locations in the 6502 address space.
const (
	// StackAddress is the base of the stack page (0x0100-0x01FF).
	StackAddress uint16 = 0x0100

	// ProgramAddress is the conventional load address for raw programs.
	ProgramAddress uint16 = 0x0500
)

// Size of the addressable space.
const Size = 0x10000

// RAM is a flat 64 KiB address space. Locations that were never written
// read as zero.
type RAM struct {
	data [Size]byte
}

// New creates a zeroed RAM.
func New() *RAM {
	return &RAM{}
}

// Read reads a byte from RAM.
func (r *RAM) Read(addr uint16) byte {
	return r.data[addr]
}

// Write writes a byte to RAM.
func (r *RAM) Write(addr uint16, data byte) {
	r.data[addr] = data
}

// Load copies program into RAM starting at addr. Bytes that would run past
// 0xFFFF wrap around to the zero page.
func (r *RAM) Load(addr uint16, program []byte) {
	for i, b := range program {
		r.data[addr+uint16(i)] = b
	}
}

// Block returns a copy of size bytes starting at addr, wrapping at the end
// of the address space.
func (r *RAM) Block(addr uint16, size int) []byte {
	if size > Size {
		size = Size
	}
	out := make([]byte, size)
	for i := range out {
		out[i] = r.data[addr+uint16(i)]
	}
	return out
}

// Clear zeroes the whole address space.
func (r *RAM) Clear() {
	r.data = [Size]byte{}
}

// Snapshot returns a copy of the full address space.
func (r *RAM) Snapshot() [Size]byte {
	return r.data
}

// Restore replaces the full address space.
func (r *RAM) Restore(data [Size]byte) {
	r.data = data
}
