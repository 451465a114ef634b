package cpu

import (
	"errors"
	"testing"
)

func TestDisassemble(t *testing.T) {
	tests := []struct {
		pc   uint16
		code []uint8
		want string
		n    int
	}{
		{0x0100, []uint8{0x00}, "NOP", 1},
		{0x0100, []uint8{0x3E, 0x42}, "LD A,$42", 2},
		{0x0100, []uint8{0xC3, 0x50, 0x01}, "JP $0150", 3},
		{0x0100, []uint8{0x31, 0xFE, 0xFF}, "LD SP,$FFFE", 3},
		{0x0100, []uint8{0x18, 0xFE}, "JR $0100", 2},
		{0x0100, []uint8{0x20, 0x05}, "JR NZ,$0107", 2},
		{0x0100, []uint8{0xCB, 0x7C}, "BIT 7,H", 2},
		{0x0100, []uint8{0xE0, 0x44}, "LDH ($FF44),A", 2},
		{0x0100, []uint8{0xF0, 0x0F}, "LDH A,($FF0F)", 2},
		{0x0100, []uint8{0xF8, 0xFE}, "LD HL,SP+-2", 2},
		{0x0100, []uint8{0xE8, 0x02}, "ADD SP,2", 2},
		{0x0100, []uint8{0xEA, 0x00, 0xC0}, "LD ($C000),A", 3},
		{0x0100, []uint8{0xEF}, "RST $28", 1},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			mem := make(map[uint16]uint8)
			for i, b := range tt.code {
				mem[tt.pc+uint16(i)] = b //nolint:gosec // G115: short test programs
			}
			read := func(addr uint16) uint8 { return mem[addr] }

			line, err := Disassemble(read, tt.pc)
			if err != nil {
				t.Fatalf("Disassemble() error = %v", err)
			}
			if line.Text != tt.want {
				t.Errorf("Text = %q, want %q", line.Text, tt.want)
			}
			if len(line.Bytes) != tt.n {
				t.Errorf("len(Bytes) = %d, want %d", len(line.Bytes), tt.n)
			}
		})
	}
}

func TestDisassembleInvalid(t *testing.T) {
	read := func(uint16) uint8 { return 0xFD }

	line, err := Disassemble(read, 0x0200)
	if !errors.Is(err, ErrInvalidOpcode) {
		t.Fatalf("Disassemble() error = %v, want ErrInvalidOpcode", err)
	}
	if line.Text != "DB $FD" || len(line.Bytes) != 1 {
		t.Errorf("line = %+v, want one DB byte", line)
	}
}

func TestLineString(t *testing.T) {
	line := Line{Addr: 0x0150, Bytes: []uint8{0xC3, 0x50, 0x01}, Text: "JP $0150"}

	want := "0150  C3 50 01  JP $0150"
	if got := line.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
