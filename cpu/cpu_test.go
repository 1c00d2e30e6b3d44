package cpu

import (
	"errors"
	"testing"
)

type mockBus struct {
	ram [65536]byte
}

func (b *mockBus) Read(addr uint16) byte {
	return b.ram[addr]
}

func (b *mockBus) Write(addr uint16, data byte) {
	b.ram[addr] = data
}

func (b *mockBus) load(addr uint16, program ...byte) {
	copy(b.ram[addr:], program)
}

func executeOneInstruction(t *testing.T, c *CPU) {
	t.Helper()
	if err := c.Clock(); err != nil {
		t.Fatalf("Clock: %v", err)
	}
}

func setupCPU(t *testing.T, opts ...Option) (*CPU, *mockBus) {
	t.Helper()
	bus := &mockBus{}
	c := New(bus, opts...)
	c.PC = 0x8000
	return c, bus
}

func TestReset(t *testing.T) {
	c, _ := setupCPU(t)
	c.A, c.X, c.Y, c.SP = 1, 2, 3, 4
	c.P = LoadStatus(0xFF)
	c.Cycles = 99

	c.Reset()

	if c.PC != 0 || c.SP != 0xFF || c.P.Dump() != 0 || c.X != 0 || c.Y != 0 {
		t.Errorf("Reset left %s", c.Registers)
	}
	if c.A != 1 {
		t.Errorf("Reset changed A to %02X", c.A)
	}
	if c.Cycles != 0 {
		t.Errorf("Reset left %d cycles", c.Cycles)
	}
}

func TestLoadStore(t *testing.T) {
	c, bus := setupCPU(t)

	// LDA IMM
	bus.load(0x8000, 0xA9, 0x42)
	executeOneInstruction(t, c)
	if c.A != 0x42 {
		t.Error("LDA IMM failed")
	}
	if c.PC != 0x8002 {
		t.Errorf("PC = %04X, want 8002", c.PC)
	}

	// STA ABS
	bus.load(0x8002, 0x8D, 0x10, 0x01)
	executeOneInstruction(t, c)
	if bus.ram[0x0110] != 0x42 {
		t.Error("STA ABS failed")
	}
	if c.PC != 0x8005 {
		t.Errorf("PC = %04X, want 8005", c.PC)
	}

	// LDX #$00 sets Z
	bus.load(0x8005, 0xA2, 0x00)
	executeOneInstruction(t, c)
	if c.X != 0 || !c.P.Zero() || c.P.Negative() {
		t.Errorf("LDX #$00: %s", c.Registers)
	}

	// LDY $10,X reads through zero page
	c.X = 0x01
	bus.ram[0x0011] = 0x90
	bus.load(0x8007, 0xB4, 0x10)
	executeOneInstruction(t, c)
	if c.Y != 0x90 || c.P.Zero() || !c.P.Negative() {
		t.Errorf("LDY $10,X: %s", c.Registers)
	}

	// STX $20,Y and STY $30
	c.Y = 0x02
	bus.load(0x8009, 0x96, 0x20, 0x84, 0x30)
	executeOneInstruction(t, c)
	executeOneInstruction(t, c)
	if bus.ram[0x0022] != 0x01 || bus.ram[0x0030] != 0x02 {
		t.Errorf("STX/STY wrote %02X/%02X", bus.ram[0x0022], bus.ram[0x0030])
	}
}

func TestStoreIndirect(t *testing.T) {
	c, bus := setupCPU(t)
	c.A, c.X, c.Y = 0x5A, 0x04, 0x10
	bus.ram[0x24], bus.ram[0x25] = 0x00, 0x03 // (0x20,X) -> 0x0300
	bus.ram[0x40], bus.ram[0x41] = 0xF8, 0x03 // (0x40),Y -> 0x0408

	bus.load(0x8000, 0x81, 0x20, 0x91, 0x40)
	executeOneInstruction(t, c)
	executeOneInstruction(t, c)

	if bus.ram[0x0300] != 0x5A {
		t.Errorf("STA (zp,X) wrote %02X", bus.ram[0x0300])
	}
	if bus.ram[0x0408] != 0x5A {
		t.Errorf("STA (zp),Y wrote %02X", bus.ram[0x0408])
	}
}

func TestIndirectPointerWrapsInPageZero(t *testing.T) {
	c, bus := setupCPU(t)
	c.A, c.Y = 0x01, 0x01
	bus.ram[0xFF], bus.ram[0x00], bus.ram[0x100] = 0x34, 0x12, 0x99
	bus.ram[0x1235] = 0x02
	bus.ram[0x9935] = 0x01

	bus.load(0x8000, 0xD1, 0xFF) // CMP ($FF),Y
	executeOneInstruction(t, c)

	if c.P.Carry() || c.P.Zero() || !c.P.Negative() {
		t.Errorf("CMP 01 vs 02: P = %s, want C=0 Z=0 N=1", c.P)
	}
}

func TestAND(t *testing.T) {
	tests := []struct {
		a, m, want byte
		z, n       bool
	}{
		{0x8F, 0x8F, 0x8F, false, true},
		{0x70, 0x8F, 0x00, true, false},
		{0b10101010, 0b00001111, 0b00001010, false, false},
	}
	for _, tt := range tests {
		c, bus := setupCPU(t)
		c.A = Byte(tt.a)
		bus.load(0x8000, 0x29, tt.m)
		executeOneInstruction(t, c)
		if c.A != Byte(tt.want) || c.P.Zero() != tt.z || c.P.Negative() != tt.n {
			t.Errorf("%02X AND %02X: %s", tt.a, tt.m, c.Registers)
		}
	}
}

func TestORAEOR(t *testing.T) {
	c, bus := setupCPU(t)
	c.A = 0b01110000
	bus.load(0x8000, 0x09, 0b00001111)
	executeOneInstruction(t, c)
	if c.A != 0b01111111 || c.P.Zero() || c.P.Negative() {
		t.Errorf("ORA: %s", c.Registers)
	}

	bus.load(0x8002, 0x09, 0x80)
	executeOneInstruction(t, c)
	if c.A != 0xFF || !c.P.Negative() {
		t.Errorf("ORA negative: %s", c.Registers)
	}

	bus.load(0x8004, 0x49, 0xFF)
	executeOneInstruction(t, c)
	if c.A != 0x00 || !c.P.Zero() || c.P.Negative() {
		t.Errorf("EOR: %s", c.Registers)
	}
}

func TestADC(t *testing.T) {
	tests := []struct {
		a, m    byte
		carryIn bool
		want    byte
		c, v    bool
	}{
		{10, 5, false, 15, false, false},
		{0x01, 0x01, true, 0x03, false, false},
		{0x50, 0x10, false, 0x60, false, false},
		{0x50, 0x50, false, 0xA0, false, true},
		{0xD0, 0x90, false, 0x60, true, true},
		{0xFF, 0x01, false, 0x00, true, false},
		{0x7F, 0x00, true, 0x80, false, true},
	}
	for _, tt := range tests {
		c, bus := setupCPU(t)
		c.A = Byte(tt.a)
		c.P.Set(C, tt.carryIn)
		bus.load(0x8000, 0x69, tt.m)
		executeOneInstruction(t, c)
		if c.A != Byte(tt.want) || c.P.Carry() != tt.c || c.P.Overflow() != tt.v {
			t.Errorf("%02X + %02X (C=%v): got %s, want A=%02X C=%v V=%v",
				tt.a, tt.m, tt.carryIn, c.Registers, tt.want, tt.c, tt.v)
		}
		if c.P.Zero() != (tt.want == 0) || c.P.Negative() != (tt.want&0x80 != 0) {
			t.Errorf("%02X + %02X: Z/N wrong: %s", tt.a, tt.m, c.P)
		}
	}
}

func TestADCIgnoresDecimal(t *testing.T) {
	c, bus := setupCPU(t)
	c.A = 0x09
	c.P.Set(D, true)
	bus.load(0x8000, 0x69, 0x01)
	executeOneInstruction(t, c)
	if c.A != 0x0A {
		t.Errorf("ADC in decimal mode = %02X, want 0A", c.A)
	}
}

func TestSBC(t *testing.T) {
	tests := []struct {
		a, m    byte
		carryIn bool
		want    byte
		c, v    bool
	}{
		{15, 5, true, 10, true, false},
		{0x05, 0x03, false, 0x01, true, false},
		{0x50, 0xF0, true, 0x60, false, false},
		{0x50, 0xB0, true, 0xA0, false, true},
		{0xD0, 0x70, true, 0x60, true, true},
		{0x00, 0x01, true, 0xFF, false, false},
	}
	for _, tt := range tests {
		c, bus := setupCPU(t)
		c.A = Byte(tt.a)
		c.P.Set(C, tt.carryIn)
		bus.load(0x8000, 0xE9, tt.m)
		executeOneInstruction(t, c)
		if c.A != Byte(tt.want) || c.P.Carry() != tt.c || c.P.Overflow() != tt.v {
			t.Errorf("%02X - %02X (C=%v): got %s, want A=%02X C=%v V=%v",
				tt.a, tt.m, tt.carryIn, c.Registers, tt.want, tt.c, tt.v)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		opcode  byte
		reg, m  byte
		c, z, n bool
	}{
		{0xC9, 0x01, 0x01, true, true, false},
		{0xC9, 0x01, 0x02, false, false, true},
		{0xC9, 0x02, 0x01, true, false, false},
		{0xE0, 0x10, 0x01, true, false, false},
		{0xE0, 0x10, 0x10, true, true, false},
		{0xE0, 0x01, 0x10, false, false, true},
		{0xC0, 0x80, 0x00, true, false, true},
		{0xC0, 0x00, 0x00, true, true, false},
	}
	for _, tt := range tests {
		c, bus := setupCPU(t)
		c.A, c.X, c.Y = Byte(tt.reg), Byte(tt.reg), Byte(tt.reg)
		bus.load(0x8000, tt.opcode, tt.m)
		executeOneInstruction(t, c)
		if c.P.Carry() != tt.c || c.P.Zero() != tt.z || c.P.Negative() != tt.n {
			t.Errorf("%02X %02X vs %02X: %s", tt.opcode, tt.reg, tt.m, c.P)
		}
		if c.A != Byte(tt.reg) {
			t.Errorf("compare modified A")
		}
	}
}

func TestBIT(t *testing.T) {
	c, bus := setupCPU(t)
	c.A = 0x01
	bus.ram[0x0010] = 0xC0
	bus.load(0x8000, 0x24, 0x10)
	executeOneInstruction(t, c)
	if !c.P.Zero() || !c.P.Negative() || !c.P.Overflow() {
		t.Errorf("BIT: %s", c.P)
	}
	if c.A != 0x01 {
		t.Error("BIT modified A")
	}

	bus.ram[0x1234] = 0x01
	bus.load(0x8002, 0x2C, 0x34, 0x12)
	executeOneInstruction(t, c)
	if c.P.Zero() || c.P.Negative() || c.P.Overflow() {
		t.Errorf("BIT abs: %s", c.P)
	}
}

func TestIncDec(t *testing.T) {
	c, bus := setupCPU(t)

	// INC
	bus.ram[0x10] = 0x41
	bus.load(0x8000, 0xE6, 0x10)
	executeOneInstruction(t, c)
	if bus.ram[0x10] != 0x42 {
		t.Error("INC failed")
	}

	// INC wraps to zero
	bus.ram[0xFF] = 0xFF
	bus.load(0x8002, 0xE6, 0xFF)
	executeOneInstruction(t, c)
	if bus.ram[0xFF] != 0x00 || !c.P.Zero() || c.P.Negative() {
		t.Errorf("INC $FF: %02X %s", bus.ram[0xFF], c.P)
	}

	// DEC wraps to 0xFF
	bus.load(0x8004, 0xC6, 0xFF)
	executeOneInstruction(t, c)
	if bus.ram[0xFF] != 0xFF || c.P.Zero() || !c.P.Negative() {
		t.Errorf("DEC $FF: %02X %s", bus.ram[0xFF], c.P)
	}

	// DEC abs,X
	c.X = 0x01
	bus.ram[0x1235] = 0x0A
	bus.load(0x8006, 0xDE, 0x34, 0x12)
	executeOneInstruction(t, c)
	if bus.ram[0x1235] != 0x09 {
		t.Errorf("DEC abs,X = %02X, want 09", bus.ram[0x1235])
	}

	// INX
	c.X = 0x10
	bus.load(0x8009, 0xE8)
	executeOneInstruction(t, c)
	if c.X != 0x11 {
		t.Error("INX failed")
	}

	// INY to 0x80
	c.Y = 0x7F
	bus.load(0x800A, 0xC8)
	executeOneInstruction(t, c)
	if c.Y != 0x80 || !c.P.Negative() {
		t.Errorf("INY: %s", c.Registers)
	}

	// DEX to zero
	c.X = 0x01
	bus.load(0x800B, 0xCA)
	executeOneInstruction(t, c)
	if c.X != 0x00 || !c.P.Zero() {
		t.Errorf("DEX: %s", c.Registers)
	}

	// DEY wraps
	c.Y = 0x00
	bus.load(0x800C, 0x88)
	executeOneInstruction(t, c)
	if c.Y != 0xFF || !c.P.Negative() {
		t.Errorf("DEY: %s", c.Registers)
	}
}

func TestShiftRotate(t *testing.T) {
	c, bus := setupCPU(t)

	// ASL
	c.A = 0b01010101
	bus.load(0x8000, 0x0A)
	executeOneInstruction(t, c)
	if c.A != 0b10101010 {
		t.Error("ASL failed")
	}
	if c.P.Carry() {
		t.Error("ASL carry failed")
	}

	// LSR
	bus.load(0x8001, 0x4A)
	executeOneInstruction(t, c)
	if c.A != 0b01010101 {
		t.Error("LSR failed")
	}
	if c.P.Carry() {
		t.Error("LSR carry failed")
	}
}

func TestLSRAccumulator(t *testing.T) {
	c, bus := setupCPU(t)
	c.A = 0b01010101
	bus.ram[0x0000] = 0xEE
	bus.load(0x8000, 0x4A, 0x4A)

	executeOneInstruction(t, c)
	if c.A != 0b00101010 || !c.P.Carry() || c.P.Zero() || c.P.Negative() {
		t.Errorf("LSR A: %s", c.Registers)
	}
	if bus.ram[0x0000] != 0xEE {
		t.Error("accumulator mode touched memory")
	}

	c.A = 0b00000001
	executeOneInstruction(t, c)
	if c.A != 0 || !c.P.Carry() || !c.P.Zero() || c.P.Negative() {
		t.Errorf("LSR A to zero: %s", c.Registers)
	}
}

func TestShiftMemory(t *testing.T) {
	c, bus := setupCPU(t)
	c.A = 0x33
	bus.ram[0x0010] = 0x81
	bus.load(0x8000, 0x06, 0x10) // ASL $10
	executeOneInstruction(t, c)
	if bus.ram[0x0010] != 0x02 || !c.P.Carry() {
		t.Errorf("ASL $10 = %02X %s", bus.ram[0x0010], c.P)
	}
	if c.A != 0x33 {
		t.Error("memory shift touched A")
	}

	bus.load(0x8002, 0x46, 0x10) // LSR $10
	executeOneInstruction(t, c)
	if bus.ram[0x0010] != 0x01 || c.P.Carry() {
		t.Errorf("LSR $10 = %02X %s", bus.ram[0x0010], c.P)
	}

	c.P.Set(C, true)
	bus.load(0x8004, 0x26, 0x10) // ROL $10
	executeOneInstruction(t, c)
	if bus.ram[0x0010] != 0x03 || c.P.Carry() {
		t.Errorf("ROL $10 = %02X %s", bus.ram[0x0010], c.P)
	}

	bus.load(0x8006, 0x66, 0x10) // ROR $10
	executeOneInstruction(t, c)
	if bus.ram[0x0010] != 0x01 || !c.P.Carry() {
		t.Errorf("ROR $10 = %02X %s", bus.ram[0x0010], c.P)
	}
}

func TestROL(t *testing.T) {
	c, bus := setupCPU(t)
	c.A = 0b01010101
	bus.load(0x8000, 0x2A, 0x2A)
	executeOneInstruction(t, c)
	if c.A != 0b10101010 || c.P.Carry() || c.P.Zero() || !c.P.Negative() {
		t.Errorf("ROL A: %s", c.Registers)
	}

	c.A = 0b10000000
	c.P.Set(C, false)
	executeOneInstruction(t, c)
	if c.A != 0 || !c.P.Carry() || !c.P.Zero() || c.P.Negative() {
		t.Errorf("ROL A to zero: %s", c.Registers)
	}
}

func TestROR(t *testing.T) {
	c, bus := setupCPU(t)
	c.A = 0b01010101
	bus.load(0x8000, 0x6A, 0x6A)
	executeOneInstruction(t, c)
	if c.A != 0b00101010 || !c.P.Carry() || c.P.Zero() || c.P.Negative() {
		t.Errorf("ROR A: %s", c.Registers)
	}

	c.A = 0b01010101
	executeOneInstruction(t, c)
	if c.A != 0b10101010 || !c.P.Carry() || !c.P.Negative() {
		t.Errorf("ROR A with carry: %s", c.Registers)
	}
}

func TestBranch(t *testing.T) {
	c, bus := setupCPU(t)

	// BEQ +8 (not taken)
	bus.load(0x8000, 0xF0, 0x88)
	executeOneInstruction(t, c)
	if c.PC != 0x8002 {
		t.Error("BEQ (not taken) failed")
	}

	// BEQ +8 (taken)
	c.P.Set(Z, true)
	bus.load(0x8002, 0xF0, 0x88)
	executeOneInstruction(t, c)
	if c.PC != 0x800C {
		t.Errorf("BEQ (taken) PC = %04X, want 800C", c.PC)
	}

	// BEQ -2 (taken) loops on itself
	bus.load(0x800C, 0xF0, 0x7E)
	executeOneInstruction(t, c)
	if c.PC != 0x800C {
		t.Errorf("BEQ -2 PC = %04X, want 800C", c.PC)
	}
}

func TestBranchFromZero(t *testing.T) {
	tests := []struct {
		name   string
		opcode byte
		flag   Status
		set    bool
		taken  bool
	}{
		{"BCC clear", 0x90, C, false, true},
		{"BCC set", 0x90, C, true, false},
		{"BCS set", 0xB0, C, true, true},
		{"BCS clear", 0xB0, C, false, false},
		{"BEQ set", 0xF0, Z, true, true},
		{"BEQ clear", 0xF0, Z, false, false},
		{"BNE clear", 0xD0, Z, false, true},
		{"BNE set", 0xD0, Z, true, false},
		{"BPL clear", 0x10, N, false, true},
		{"BPL set", 0x10, N, true, false},
		{"BMI set", 0x30, N, true, true},
		{"BMI clear", 0x30, N, false, false},
		{"BVC clear", 0x50, V, false, true},
		{"BVC set", 0x50, V, true, false},
		{"BVS set", 0x70, V, true, true},
		{"BVS clear", 0x70, V, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := &mockBus{}
			c := New(bus)
			bus.load(0x0000, tt.opcode, 8+128)
			c.P.Set(tt.flag, tt.set)
			executeOneInstruction(t, c)

			want := ProgramCounter(2)
			if tt.taken {
				want = 10
			}
			if c.PC != want {
				t.Errorf("PC = %04X, want %04X", c.PC, want)
			}
		})
	}
}

func TestBranchSigned(t *testing.T) {
	c, bus := setupCPU(t, WithRelativeEncoding(SignedRelative))
	bus.load(0x8000, 0xD0, 0xFE) // BNE -2
	executeOneInstruction(t, c)
	if c.PC != 0x8000 {
		t.Errorf("BNE -2 PC = %04X, want 8000", c.PC)
	}

	bus.load(0x8000, 0xD0, 0x10) // BNE +16
	executeOneInstruction(t, c)
	if c.PC != 0x8012 {
		t.Errorf("BNE +16 PC = %04X, want 8012", c.PC)
	}
}

func TestBranchCycles(t *testing.T) {
	c, bus := setupCPU(t, WithRelativeEncoding(SignedRelative))
	bus.load(0x8000, 0xD0, 0x02)
	executeOneInstruction(t, c)
	if c.Cycles != 3 {
		t.Errorf("taken branch cost %d cycles, want 3", c.Cycles)
	}

	c.Cycles = 0
	c.PC = 0x80F0
	bus.load(0x80F0, 0xD0, 0x20)
	executeOneInstruction(t, c)
	if c.Cycles != 4 {
		t.Errorf("page crossing branch cost %d cycles, want 4", c.Cycles)
	}

	c.Cycles = 0
	c.P.Set(Z, true)
	bus.load(0x8112, 0xD0, 0x20)
	executeOneInstruction(t, c)
	if c.Cycles != 2 {
		t.Errorf("untaken branch cost %d cycles, want 2", c.Cycles)
	}
}

func TestPageCrossCycles(t *testing.T) {
	c, bus := setupCPU(t)
	c.X = 0x01
	bus.ram[0x8100] = 0x99
	bus.load(0x8000, 0xBD, 0xFF, 0x80) // LDA $80FF,X
	executeOneInstruction(t, c)
	if c.A != 0x99 {
		t.Errorf("LDA abs,X = %02X", c.A)
	}
	if c.Cycles != 5 {
		t.Errorf("cycles = %d, want 5", c.Cycles)
	}
}

func TestBranchWithoutRelativeOperandPanics(t *testing.T) {
	c, _ := setupCPU(t)
	in, _ := Encode(BEQ, Relative)

	defer func() {
		if recover() == nil {
			t.Error("branch without relative operand did not panic")
		}
	}()
	c.Execute(in, Operand{Mode: Relative})
}

func TestFlagInstructions(t *testing.T) {
	c, bus := setupCPU(t)
	bus.load(0x8000, 0x38, 0xF8, 0x78) // SEC SED SEI
	for i := 0; i < 3; i++ {
		executeOneInstruction(t, c)
	}
	if c.P.Dump() != byte(C|D|I) {
		t.Errorf("after SEC/SED/SEI: %s", c.P)
	}

	c.P.Set(V, true)
	bus.load(0x8003, 0x18, 0xD8, 0x58, 0xB8) // CLC CLD CLI CLV
	for i := 0; i < 4; i++ {
		executeOneInstruction(t, c)
	}
	if c.P.Dump() != 0 {
		t.Errorf("after CLC/CLD/CLI/CLV: %s", c.P)
	}
	if c.PC != 0x8007 {
		t.Errorf("PC = %04X, want 8007", c.PC)
	}
}

func TestTransfers(t *testing.T) {
	c, bus := setupCPU(t)
	c.A = 0x80
	bus.load(0x8000, 0xAA, 0xA8) // TAX TAY
	executeOneInstruction(t, c)
	executeOneInstruction(t, c)
	if c.X != 0x80 || c.Y != 0x80 || !c.P.Negative() {
		t.Errorf("TAX/TAY: %s", c.Registers)
	}

	c.X = 0x00
	c.P = 0
	bus.load(0x8002, 0x9A) // TXS
	executeOneInstruction(t, c)
	if c.SP != 0x00 || c.P.Zero() {
		t.Errorf("TXS: %s", c.Registers)
	}

	bus.load(0x8003, 0xBA) // TSX
	c.X = 0x55
	executeOneInstruction(t, c)
	if c.X != 0x00 || !c.P.Zero() {
		t.Errorf("TSX: %s", c.Registers)
	}

	c.X, c.Y = 0x01, 0x02
	bus.load(0x8004, 0x8A) // TXA
	executeOneInstruction(t, c)
	if c.A != 0x01 || c.P.Zero() {
		t.Errorf("TXA: %s", c.Registers)
	}
	bus.load(0x8005, 0x98) // TYA
	executeOneInstruction(t, c)
	if c.A != 0x02 {
		t.Errorf("TYA: %s", c.Registers)
	}
}

func TestNOP(t *testing.T) {
	c, bus := setupCPU(t)
	bus.load(0x8000, 0xEA)
	before := c.Registers
	executeOneInstruction(t, c)
	before.PC = 0x8001
	if c.Registers != before {
		t.Errorf("NOP changed state: %s", c.Registers)
	}
}

func TestJMP(t *testing.T) {
	c, bus := setupCPU(t)
	c.PC = 0x0500
	bus.load(0x0500, 0x4C, 0x00, 0x02)
	executeOneInstruction(t, c)
	if c.PC != 0x0200 {
		t.Errorf("JMP abs PC = %04X", c.PC)
	}
	if c.SP != 0xFF {
		t.Error("JMP touched the stack")
	}

	bus.load(0x0200, 0x6C, 0xFF, 0x10) // JMP ($10FF)
	bus.ram[0x10FF] = 0x34
	bus.ram[0x1000] = 0x12
	bus.ram[0x1100] = 0x56
	executeOneInstruction(t, c)
	if c.PC != 0x1234 {
		t.Errorf("JMP ($10FF) PC = %04X, want 1234", c.PC)
	}
}

func TestJSRRTS(t *testing.T) {
	c, bus := setupCPU(t)
	c.PC = 0x0500
	bus.load(0x0500, 0x20, 0x00, 0x02) // JSR $0200
	bus.load(0x0200, 0x60)             // RTS

	executeOneInstruction(t, c)
	if c.PC != 0x0200 {
		t.Errorf("JSR PC = %04X, want 0200", c.PC)
	}
	if c.SP != 0xFD {
		t.Errorf("JSR SP = %02X, want FD", c.SP)
	}
	pushed := NewWord(Byte(bus.ram[0x01FE]), Byte(bus.ram[0x01FF]))
	if pushed != 0x0502 {
		t.Errorf("JSR pushed %04X, want 0502", pushed)
	}

	executeOneInstruction(t, c)
	if c.PC != 0x0503 {
		t.Errorf("RTS PC = %04X, want 0503", c.PC)
	}
	if c.SP != 0xFF {
		t.Errorf("RTS SP = %02X, want FF", c.SP)
	}
}

func TestBRK(t *testing.T) {
	bus := &mockBus{}
	c := New(bus)
	bus.load(0x0000, 0x00, 0x00)
	bus.ram[0xFFFE] = 0x03
	bus.ram[0xFFFF] = 0xFF

	executeOneInstruction(t, c)

	if c.PC != 0xFF03 {
		t.Errorf("PC = %04X, want FF03", c.PC)
	}
	ret := NewWord(Byte(bus.ram[0x01FE]), Byte(bus.ram[0x01FF]))
	if ret != 0x0002 {
		t.Errorf("stacked PC = %04X, want 0002", ret)
	}
	if bus.ram[0x01FD] != 0x14 {
		t.Errorf("stacked status = %02X, want 14", bus.ram[0x01FD])
	}
	if !LoadStatus(bus.ram[0x01FD]).Break() {
		t.Error("stacked status does not have B set")
	}
	if !c.P.InterruptDisable() {
		t.Error("interrupt disable not set")
	}
	if c.P.Break() {
		t.Error("break flag left set in the live register")
	}
	if c.SP != 0xFC {
		t.Errorf("SP = %02X, want FC", c.SP)
	}
}

func TestBRKRTI(t *testing.T) {
	bus := &mockBus{}
	c := New(bus)
	c.P.Set(C, true)
	bus.load(0x0000, 0x00, 0x00)
	bus.ram[0xFFFE], bus.ram[0xFFFF] = 0x00, 0x90
	bus.load(0x9000, 0x40) // RTI

	executeOneInstruction(t, c)
	executeOneInstruction(t, c)

	if c.PC != 0x0002 {
		t.Errorf("RTI PC = %04X, want 0002", c.PC)
	}
	if c.SP != 0xFF {
		t.Errorf("RTI SP = %02X, want FF", c.SP)
	}
	if c.P.Dump() != byte(C|I|B) {
		t.Errorf("RTI status = %s, want %02X", c.P, byte(C|I|B))
	}
}

func TestPHAPLA(t *testing.T) {
	for _, v := range []byte{0x02, 0x80, 0x00} {
		c, bus := setupCPU(t)
		c.A = Byte(v)
		bus.load(0x8000, 0x48, 0x68) // PHA PLA

		executeOneInstruction(t, c)
		if c.SP != 0xFE || bus.ram[0x01FF] != v {
			t.Errorf("PHA %02X: SP=%02X stack=%02X", v, c.SP, bus.ram[0x01FF])
		}

		c.A = 0xFF - Byte(v)
		executeOneInstruction(t, c)
		if c.A != Byte(v) || c.SP != 0xFF {
			t.Errorf("PLA: %s", c.Registers)
		}
		if c.P.Zero() != (v == 0) || c.P.Negative() != (v&0x80 != 0) {
			t.Errorf("PLA %02X flags: %s", v, c.P)
		}
	}
}

func TestPHPPLP(t *testing.T) {
	c, bus := setupCPU(t)
	c.P = LoadStatus(0xFF)
	bus.load(0x8000, 0x08, 0x28) // PHP PLP

	executeOneInstruction(t, c)
	if bus.ram[0x01FF] != 0xFF {
		t.Errorf("PHP pushed %02X, want FF", bus.ram[0x01FF])
	}

	c.P = 0
	executeOneInstruction(t, c)
	if c.P.Dump() != 0xFF {
		t.Errorf("PLP restored %s", c.P)
	}
}

func TestStackWraps(t *testing.T) {
	c, bus := setupCPU(t)
	c.SP = 0x00
	c.A = 0x42
	bus.load(0x8000, 0x48, 0x48) // PHA PHA
	executeOneInstruction(t, c)
	executeOneInstruction(t, c)
	if bus.ram[0x0100] != 0x42 || bus.ram[0x01FF] != 0x42 {
		t.Error("stack did not wrap within page one")
	}
	if c.SP != 0xFE {
		t.Errorf("SP = %02X, want FE", c.SP)
	}
}

func TestUnknownOpcode(t *testing.T) {
	c, bus := setupCPU(t)
	bus.load(0x8000, 0x02)
	before := c.Registers

	err := c.Clock()
	if !errors.Is(err, ErrUnknownOpcode) {
		t.Fatalf("Clock = %v, want ErrUnknownOpcode", err)
	}
	var de *DecodeError
	if !errors.As(err, &de) || de.Opcode != 0x02 || de.PC != 0x8000 {
		t.Errorf("DecodeError = %+v", de)
	}
	if c.Registers != before {
		t.Errorf("registers changed on decode error: %s", c.Registers)
	}
}

func TestSaveLoadState(t *testing.T) {
	c, _ := setupCPU(t, WithRelativeEncoding(SignedRelative))
	c.A, c.X, c.Y, c.SP = 1, 2, 3, 0x80
	c.P = LoadStatus(0xA5)
	c.Cycles = 1234

	s := c.SaveState()
	d := New(&mockBus{})
	d.LoadState(s)

	if d.Registers != c.Registers || d.Cycles != c.Cycles {
		t.Errorf("LoadState = %s, want %s", d.Registers, c.Registers)
	}
	if d.Encoding() != SignedRelative {
		t.Error("relative encoding not restored")
	}
}
