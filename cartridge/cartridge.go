package cartridge

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/meadori/vibe6502/mapper"
)

const (
	prgBankSize = 16384
	chrBankSize = 8192
	headerSize  = 16
	trainerSize = 512
)

var signature = []byte{'N', 'E', 'S', 0x1A}

// Mirroring types
const (
	MirrorHorizontal byte = 0
	MirrorVertical   byte = 1
	MirrorFourScreen byte = 2
)

var (
	// ErrInvalidHeader is returned for images without the iNES signature.
	ErrInvalidHeader = errors.New("invalid NES ROM format: missing iNES signature")

	// ErrUnsupportedMapper is returned for boards whose banking is not
	// emulated.
	ErrUnsupportedMapper = errors.New("unsupported mapper")
)

// Cartridge represents an NES cartridge.
type Cartridge struct {
	PRGROM   []byte
	CHRROM   []byte
	MapperID byte
	Mapper   mapper.Mapper
	Mirror   byte
	// Trainer is loaded at TrainerAddress when present.
	Trainer []byte
}

// TrainerAddress is where a 512-byte trainer is mapped.
const TrainerAddress uint16 = 0x7000

// New creates a new Cartridge instance from a .nes file.
func New(path string) (*Cartridge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes an iNES image. Short PRG or CHR sections are zero padded
// to the size the header announces. Data without the iNES signature yields
// ErrInvalidHeader.
func Parse(data []byte) (*Cartridge, error) {
	if !bytes.HasPrefix(data, signature) {
		return nil, ErrInvalidHeader
	}
	if len(data) < headerSize {
		return nil, fmt.Errorf("file is too small to be a valid NES ROM (%d bytes)", len(data))
	}

	prgSize := int(data[4]) * prgBankSize
	chrSize := int(data[5]) * chrBankSize
	if prgSize == 0 {
		return nil, fmt.Errorf("ROM declares no PRG banks")
	}

	c := &Cartridge{
		PRGROM:   make([]byte, prgSize),
		CHRROM:   make([]byte, chrSize),
		MapperID: (data[6] >> 4) | (data[7] & 0xF0),
	}

	switch {
	case data[6]&0x08 != 0:
		c.Mirror = MirrorFourScreen
	case data[6]&0x01 != 0:
		c.Mirror = MirrorVertical
	default:
		c.Mirror = MirrorHorizontal
	}

	offset := headerSize
	if data[6]&0x04 != 0 {
		c.Trainer = make([]byte, trainerSize)
		copy(c.Trainer, section(data, offset, trainerSize))
		offset += trainerSize
	}
	copy(c.PRGROM, section(data, offset, prgSize))
	copy(c.CHRROM, section(data, offset+prgSize, chrSize))

	m, err := NewMapper(c)
	if err != nil {
		return nil, err
	}
	c.Mapper = m
	return c, nil
}

// section returns up to size bytes of data starting at off.
func section(data []byte, off, size int) []byte {
	if off >= len(data) {
		return nil
	}
	end := off + size
	if end > len(data) {
		end = len(data)
	}
	return data[off:end]
}

// NewMapper creates a Mapper instance based on the cartridge's mapper ID.
func NewMapper(cart *Cartridge) (mapper.Mapper, error) {
	switch cart.MapperID {
	case 0:
		return newNROM(cart), nil
	case 2:
		return newUxROM(cart), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMapper, cart.MapperID)
	}
}

// ResetVector returns the address stored at 0xFFFC/0xFFFD as seen through
// the mapper.
func (c *Cartridge) ResetVector() uint16 {
	lo, _ := c.Mapper.CPUMapRead(0xFFFC)
	hi, _ := c.Mapper.CPUMapRead(0xFFFD)
	return uint16(hi)<<8 | uint16(lo)
}
