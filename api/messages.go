// Package api defines the debugger service spoken between a running
// machine and its clients. Messages are protobuf well-known types so the
// service needs no generated code.
package api

import (
	"fmt"
	"math"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
)

// CPUState is the register snapshot returned by GetCPUState and Step.
type CPUState struct {
	A, X, Y, SP, P uint8
	PC             uint16
	Cycles         uint64
	Steps          uint64
	Paused         bool

	// Halted holds the reason the machine stopped, empty while runnable.
	Halted string
}

// Struct encodes s. Counters above 2^53 lose precision.
func (s CPUState) Struct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"a":      structpb.NewNumberValue(float64(s.A)),
		"x":      structpb.NewNumberValue(float64(s.X)),
		"y":      structpb.NewNumberValue(float64(s.Y)),
		"sp":     structpb.NewNumberValue(float64(s.SP)),
		"p":      structpb.NewNumberValue(float64(s.P)),
		"pc":     structpb.NewNumberValue(float64(s.PC)),
		"cycles": structpb.NewNumberValue(float64(s.Cycles)),
		"steps":  structpb.NewNumberValue(float64(s.Steps)),
		"paused": structpb.NewBoolValue(s.Paused),
		"halted": structpb.NewStringValue(s.Halted),
	}}
}

// CPUStateFromStruct decodes a state produced by CPUState.Struct.
func CPUStateFromStruct(st *structpb.Struct) (CPUState, error) {
	var s CPUState
	var err error
	u8 := func(name string) uint8 {
		var v uint64
		if err == nil {
			v, err = Uint(st, name, math.MaxUint8)
		}
		return uint8(v)
	}
	s.A, s.X, s.Y, s.SP, s.P = u8("a"), u8("x"), u8("y"), u8("sp"), u8("p")
	if err != nil {
		return s, err
	}
	pc, err := Uint(st, "pc", math.MaxUint16)
	if err != nil {
		return s, err
	}
	s.PC = uint16(pc)
	if s.Cycles, err = Uint(st, "cycles", math.MaxUint64); err != nil {
		return s, err
	}
	if s.Steps, err = Uint(st, "steps", math.MaxUint64); err != nil {
		return s, err
	}
	s.Paused = st.GetFields()["paused"].GetBoolValue()
	s.Halted = st.GetFields()["halted"].GetStringValue()
	return s, nil
}

func (s CPUState) String() string {
	var flags strings.Builder
	for i, name := range "NV-BDIZC" {
		if s.P&(0x80>>i) != 0 {
			flags.WriteRune(name)
		} else {
			flags.WriteByte('.')
		}
	}
	return fmt.Sprintf("PC:%04X A:%02X X:%02X Y:%02X SP:%02X P:%02X [%s] CYC:%d",
		s.PC, s.A, s.X, s.Y, s.SP, s.P, flags.String(), s.Cycles)
}

// Uint reads a non-negative integer field no larger than max.
func Uint(st *structpb.Struct, name string, max uint64) (uint64, error) {
	v, ok := st.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("missing field %q", name)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("field %q is not a number", name)
	}
	f := n.NumberValue
	if f < 0 || f != math.Trunc(f) || f > float64(max) {
		return 0, fmt.Errorf("field %q: %v out of range 0..%d", name, f, max)
	}
	return uint64(f), nil
}

// MemoryRequest addresses a range of memory.
type MemoryRequest struct {
	Address uint16
	Size    int
}

func (r MemoryRequest) Struct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"address": structpb.NewNumberValue(float64(r.Address)),
		"size":    structpb.NewNumberValue(float64(r.Size)),
	}}
}

// MaxBlock is the largest range a single request can cover.
const MaxBlock = 0x10000

func MemoryRequestFromStruct(st *structpb.Struct) (MemoryRequest, error) {
	addr, err := Uint(st, "address", math.MaxUint16)
	if err != nil {
		return MemoryRequest{}, err
	}
	size, err := Uint(st, "size", MaxBlock)
	if err != nil {
		return MemoryRequest{}, err
	}
	return MemoryRequest{Address: uint16(addr), Size: int(size)}, nil
}

// WriteRequest stores Data starting at Address.
type WriteRequest struct {
	Address uint16
	Data    []byte
}

func (r WriteRequest) Struct() *structpb.Struct {
	data := make([]*structpb.Value, len(r.Data))
	for i, b := range r.Data {
		data[i] = structpb.NewNumberValue(float64(b))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"address": structpb.NewNumberValue(float64(r.Address)),
		"data":    structpb.NewListValue(&structpb.ListValue{Values: data}),
	}}
}

func WriteRequestFromStruct(st *structpb.Struct) (WriteRequest, error) {
	addr, err := Uint(st, "address", math.MaxUint16)
	if err != nil {
		return WriteRequest{}, err
	}
	list := st.GetFields()["data"].GetListValue()
	if list == nil {
		return WriteRequest{}, fmt.Errorf("missing field %q", "data")
	}
	if len(list.Values) > MaxBlock {
		return WriteRequest{}, fmt.Errorf("write of %d bytes exceeds %d", len(list.Values), MaxBlock)
	}
	r := WriteRequest{Address: uint16(addr), Data: make([]byte, len(list.Values))}
	for i, v := range list.Values {
		f := v.GetNumberValue()
		if f < 0 || f > math.MaxUint8 || f != math.Trunc(f) {
			return WriteRequest{}, fmt.Errorf("data[%d]: %v is not a byte", i, f)
		}
		r.Data[i] = byte(f)
	}
	return r, nil
}

// ListingLine is one disassembled instruction.
type ListingLine struct {
	Address uint16
	Size    int
	Text    string
}

// Next is the address of the instruction that follows l.
func (l ListingLine) Next() uint16 { return l.Address + uint16(l.Size) }

// Listing is a disassembly, one instruction per entry.
func Listing(lines []ListingLine) *structpb.ListValue {
	values := make([]*structpb.Value, len(lines))
	for i, l := range lines {
		values[i] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"address": structpb.NewNumberValue(float64(l.Address)),
			"size":    structpb.NewNumberValue(float64(l.Size)),
			"text":    structpb.NewStringValue(l.Text),
		}})
	}
	return &structpb.ListValue{Values: values}
}

// ListingLines is the inverse of Listing.
func ListingLines(l *structpb.ListValue) ([]ListingLine, error) {
	out := make([]ListingLine, 0, len(l.GetValues()))
	for i, v := range l.GetValues() {
		st := v.GetStructValue()
		if st == nil {
			return nil, fmt.Errorf("line %d is not a struct", i)
		}
		addr, err := Uint(st, "address", math.MaxUint16)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		size, err := Uint(st, "size", 3)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		out = append(out, ListingLine{
			Address: uint16(addr),
			Size:    int(size),
			Text:    st.GetFields()["text"].GetStringValue(),
		})
	}
	return out, nil
}
