package cpu

import (
	"errors"
	"testing"
)

var unassigned = []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

func TestDecodeNop(t *testing.T) {
	inst, err := Decode(0x00, false)
	if err != nil {
		t.Fatalf("Decode(0x00) error = %v", err)
	}
	if inst != (Nop{}) {
		t.Errorf("Decode(0x00) = %#v, want Nop{}", inst)
	}
}

func TestDecodeBit7H(t *testing.T) {
	inst, err := Decode(0x7C, true)
	if err != nil {
		t.Fatalf("Decode(CB 0x7C) error = %v", err)
	}
	want := TestBit{Index: 7, Src: RegH}
	if inst != want {
		t.Errorf("Decode(CB 0x7C) = %#v, want %#v", inst, want)
	}
	if inst.String() != "BIT 7,H" {
		t.Errorf("String() = %q, want %q", inst.String(), "BIT 7,H")
	}
}

func TestDecodeUnassigned(t *testing.T) {
	invalid := map[uint8]bool{Prefix: true}
	for _, op := range unassigned {
		invalid[op] = true
	}

	for op := 0; op < 256; op++ {
		opcode := uint8(op)
		_, err := Decode(opcode, false)
		if invalid[opcode] {
			if !errors.Is(err, ErrInvalidOpcode) {
				t.Errorf("Decode(0x%02X) error = %v, want ErrInvalidOpcode", opcode, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Decode(0x%02X) error = %v", opcode, err)
		}

		if _, err := Decode(opcode, true); err != nil {
			t.Errorf("Decode(CB 0x%02X) error = %v", opcode, err)
		}
	}
}

func TestDecodeSamples(t *testing.T) {
	tests := []struct {
		opcode  uint8
		escaped bool
		want    Instruction
		text    string
		length  int
	}{
		{0x01, false, Load16{Dst: PairBC}, "LD BC,n16", 3},
		{0x08, false, StoreSP{}, "LD (a16),SP", 3},
		{0x22, false, Load{Dst: MemHLI, Src: RegA}, "LD (HL+),A", 1},
		{0x36, false, Load{Dst: MemHL, Src: Imm8}, "LD (HL),n8", 2},
		{0x41, false, Load{Dst: RegB, Src: RegC}, "LD B,C", 1},
		{0x76, false, Halt{}, "HALT", 1},
		{0x86, false, ALU{Op: OpAdd, Src: MemHL}, "ADD A,(HL)", 1},
		{0x9F, false, ALU{Op: OpSbc, Src: RegA}, "SBC A,A", 1},
		{0xC0, false, Return{Cond: NotZero}, "RET NZ", 1},
		{0xCD, false, Call{Cond: Always}, "CALL a16", 3},
		{0xDA, false, Jump{Cond: Carry}, "JP C,a16", 3},
		{0xE0, false, Load{Dst: MemHigh, Src: RegA}, "LDH (a8),A", 2},
		{0xEA, false, Load{Dst: MemAbs, Src: RegA}, "LD (a16),A", 3},
		{0xF1, false, Pop{Dst: PairAF}, "POP AF", 1},
		{0xF8, false, LoadHLSP{}, "LD HL,SP+e8", 2},
		{0xFE, false, ALU{Op: OpCp, Src: Imm8}, "CP n8", 2},
		{0xFF, false, Restart{Vector: 0x38}, "RST $38", 1},
		{0x10, false, Stop{}, "STOP", 2},
		{0x37, true, Shift{Op: OpSwap, Dst: RegA}, "SWAP A", 2},
		{0x86, true, ResetBit{Index: 0, Dst: MemHL}, "RES 0,(HL)", 2},
		{0xFF, true, SetBit{Index: 7, Dst: RegA}, "SET 7,A", 2},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			inst, err := Decode(tt.opcode, tt.escaped)
			if err != nil {
				t.Fatalf("Decode(0x%02X, %v) error = %v", tt.opcode, tt.escaped, err)
			}
			if inst != tt.want {
				t.Errorf("Decode(0x%02X, %v) = %#v, want %#v", tt.opcode, tt.escaped, inst, tt.want)
			}
			if inst.String() != tt.text {
				t.Errorf("String() = %q, want %q", inst.String(), tt.text)
			}
			if inst.Length() != tt.length {
				t.Errorf("Length() = %d, want %d", inst.Length(), tt.length)
			}
		})
	}
}

// branchCond returns the condition of a conditional control-flow instruction.
func branchCond(inst Instruction) (Cond, bool) {
	switch i := inst.(type) {
	case Jump:
		return i.Cond, true
	case JumpRelative:
		return i.Cond, true
	case Call:
		return i.Cond, true
	case Return:
		return i.Cond, true
	}
	return Always, false
}

// runOnce executes program at 0x0200 with the given flags and returns the
// step duration.
func runOnce(t *testing.T, flags uint8, program ...uint8) int {
	t.Helper()

	cpu, mem := setupCPU()
	cpu.Registers.PC = 0x0200
	cpu.Registers.SP = 0xD000
	cpu.Registers.SetBC(0xC100)
	cpu.Registers.SetDE(0xC200)
	cpu.Registers.SetHL(0xC300)
	cpu.Registers.F = flags
	mem.load(0x0200, program...)

	cycles := step(t, cpu)
	if mem.ticks != cycles {
		t.Errorf("program % X: bus saw %d ticks, step returned %d", program, mem.ticks, cycles)
	}
	return cycles
}

func TestOpcodeTimings(t *testing.T) {
	for op := 0; op < 256; op++ {
		opcode := uint8(op)
		if opcode == Prefix {
			continue
		}

		want, ok := OpcodeTiming(opcode, false)
		inst, err := Decode(opcode, false)
		if ok != (err == nil) {
			t.Errorf("opcode 0x%02X: timing ok = %v, decode error = %v", opcode, ok, err)
			continue
		}
		if !ok {
			continue
		}

		for _, flags := range []uint8{0x00, 0xF0} {
			expected := want.NotTaken
			if cond, branch := branchCond(inst); branch && cond.Holds(flags) {
				expected = want.Taken
			}

			if got := runOnce(t, flags, opcode, 0x00, 0x00); got != expected {
				t.Errorf("%v (0x%02X) with F=%02X: %d ticks, want %d", inst, opcode, flags, got, expected)
			}
		}
	}
}

func TestEscapedOpcodeTimings(t *testing.T) {
	for op := 0; op < 256; op++ {
		opcode := uint8(op)
		want, ok := OpcodeTiming(opcode, true)
		if !ok {
			t.Fatalf("no timing for CB 0x%02X", opcode)
		}

		if got := runOnce(t, 0x00, Prefix, opcode); got != want.NotTaken {
			inst, _ := Decode(opcode, true)
			t.Errorf("%v (CB 0x%02X): %d ticks, want %d", inst, opcode, got, want.NotTaken)
		}
	}
}

func TestTakenBranchesCostMore(t *testing.T) {
	for _, opcode := range []uint8{0x20, 0xC0, 0xC2, 0xC4} {
		timing, _ := OpcodeTiming(opcode, false)
		if timing.Taken <= timing.NotTaken {
			t.Errorf("opcode 0x%02X: taken %d <= not taken %d", opcode, timing.Taken, timing.NotTaken)
		}
	}
}
