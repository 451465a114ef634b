package cpu

import (
	"errors"
	"fmt"
)

// Prefix is the escape byte that selects the secondary opcode table.
const Prefix uint8 = 0xCB

// ErrInvalidOpcode is returned when an unassigned opcode is decoded.
var ErrInvalidOpcode = errors.New("invalid opcode")

// InvalidOpcodeError describes an unassigned opcode and where it was found.
type InvalidOpcodeError struct {
	Opcode  uint8
	Escaped bool
	PC      uint16
}

func (e *InvalidOpcodeError) Error() string {
	if e.Escaped {
		return fmt.Sprintf("invalid opcode 0xCB 0x%02X at 0x%04X", e.Opcode, e.PC)
	}
	return fmt.Sprintf("invalid opcode 0x%02X at 0x%04X", e.Opcode, e.PC)
}

func (e *InvalidOpcodeError) Unwrap() error {
	return ErrInvalidOpcode
}

var (
	mainTable = buildMainTable()
	cbTable   = buildCBTable()
)

// Decode maps an opcode to its instruction. When escaped is true the opcode is
// the byte following the 0xCB prefix. The returned error has PC unset.
func Decode(opcode uint8, escaped bool) (Instruction, error) {
	var inst Instruction
	if escaped {
		inst = cbTable[opcode]
	} else {
		inst = mainTable[opcode]
	}
	if inst == nil {
		return nil, &InvalidOpcodeError{Opcode: opcode, Escaped: escaped}
	}
	return inst, nil
}

// operand8 returns the operand encoded in a 3-bit register field.
func operand8(bits uint8) Operand {
	return Operand(bits & 7)
}

var (
	pairsSP   = [4]Pair{PairBC, PairDE, PairHL, PairSP}
	pairsAF   = [4]Pair{PairBC, PairDE, PairHL, PairAF}
	condCodes = [4]Cond{NotZero, Zero, NotCarry, Carry}
)

//nolint:funlen // One statement per opcode group.
func buildMainTable() [256]Instruction {
	var t [256]Instruction

	for op := 0x40; op < 0x80; op++ {
		t[op] = Load{Dst: operand8(uint8(op) >> 3), Src: operand8(uint8(op))}
	}
	t[0x76] = Halt{}

	for op := 0x80; op < 0xC0; op++ {
		t[op] = ALU{Op: ALUOp((op >> 3) & 7), Src: operand8(uint8(op))}
	}

	for k := 0; k < 8; k++ {
		r := operand8(uint8(k))
		t[0x04+k<<3] = Inc{Dst: r}
		t[0x05+k<<3] = Dec{Dst: r}
		t[0x06+k<<3] = Load{Dst: r, Src: Imm8}
		t[0xC6+k<<3] = ALU{Op: ALUOp(k), Src: Imm8}
		t[0xC7+k<<3] = Restart{Vector: uint16(k) << 3}
	}

	for p := 0; p < 4; p++ {
		t[0x01+p<<4] = Load16{Dst: pairsSP[p]}
		t[0x03+p<<4] = Inc16{Pair: pairsSP[p]}
		t[0x09+p<<4] = AddHL{Src: pairsSP[p]}
		t[0x0B+p<<4] = Dec16{Pair: pairsSP[p]}
		t[0xC1+p<<4] = Pop{Dst: pairsAF[p]}
		t[0xC5+p<<4] = Push{Src: pairsAF[p]}
	}

	for k, cond := range condCodes {
		t[0x20+k<<3] = JumpRelative{Cond: cond}
		t[0xC0+k<<3] = Return{Cond: cond}
		t[0xC2+k<<3] = Jump{Cond: cond}
		t[0xC4+k<<3] = Call{Cond: cond}
	}

	indirect := [4]Operand{MemBC, MemDE, MemHLI, MemHLD}
	for p, mem := range indirect {
		t[0x02+p<<4] = Load{Dst: mem, Src: RegA}
		t[0x0A+p<<4] = Load{Dst: RegA, Src: mem}
	}

	t[0x00] = Nop{}
	t[0x07] = RotateA{Op: OpRLC}
	t[0x08] = StoreSP{}
	t[0x0F] = RotateA{Op: OpRRC}
	t[0x10] = Stop{}
	t[0x17] = RotateA{Op: OpRL}
	t[0x18] = JumpRelative{Cond: Always}
	t[0x1F] = RotateA{Op: OpRR}
	t[0x27] = DecimalAdjust{}
	t[0x2F] = Complement{}
	t[0x37] = SetCarry{}
	t[0x3F] = ComplementCarry{}
	t[0xC3] = Jump{Cond: Always}
	t[0xC9] = Return{Cond: Always}
	t[0xCD] = Call{Cond: Always}
	t[0xD9] = ReturnInterrupt{}
	t[0xE0] = Load{Dst: MemHigh, Src: RegA}
	t[0xE2] = Load{Dst: MemHighC, Src: RegA}
	t[0xE8] = AddSP{}
	t[0xE9] = JumpHL{}
	t[0xEA] = Load{Dst: MemAbs, Src: RegA}
	t[0xF0] = Load{Dst: RegA, Src: MemHigh}
	t[0xF2] = Load{Dst: RegA, Src: MemHighC}
	t[0xF3] = DisableInterrupts{}
	t[0xF8] = LoadHLSP{}
	t[0xF9] = LoadSPHL{}
	t[0xFA] = Load{Dst: RegA, Src: MemAbs}
	t[0xFB] = EnableInterrupts{}

	// 0xCB is the prefix. D3 DB DD E3 E4 EB EC ED F4 FC FD are unassigned.
	return t
}

func buildCBTable() [256]Instruction {
	var t [256]Instruction
	for op := 0; op < 256; op++ {
		r := operand8(uint8(op))
		y := uint8(op>>3) & 7
		switch op >> 6 {
		case 0:
			t[op] = Shift{Op: ShiftOp(y), Dst: r}
		case 1:
			t[op] = TestBit{Index: y, Src: r}
		case 2:
			t[op] = ResetBit{Index: y, Dst: r}
		case 3:
			t[op] = SetBit{Index: y, Dst: r}
		}
	}
	return t
}

// Timing is the documented duration of an opcode in T-cycles. Taken equals
// NotTaken for instructions without a condition.
type Timing struct {
	NotTaken int
	Taken    int
}

// M-cycle counts for the main table. Zero marks the prefix and unassigned
// opcodes. Conditional opcodes list the not-taken duration.
var mainCycles = [256]uint8{
	//   0  1  2  3  4  5  6  7  8  9  A  B  C  D  E  F
	1, 3, 2, 2, 1, 1, 2, 1, 5, 2, 2, 2, 1, 1, 2, 1, // 0x
	1, 3, 2, 2, 1, 1, 2, 1, 3, 2, 2, 2, 1, 1, 2, 1, // 1x
	2, 3, 2, 2, 1, 1, 2, 1, 2, 2, 2, 2, 1, 1, 2, 1, // 2x
	2, 3, 2, 2, 3, 3, 3, 1, 2, 2, 2, 2, 1, 1, 2, 1, // 3x
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1, // 4x
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1, // 5x
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1, // 6x
	2, 2, 2, 2, 2, 2, 1, 2, 1, 1, 1, 1, 1, 1, 2, 1, // 7x
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1, // 8x
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1, // 9x
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1, // Ax
	1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1, // Bx
	2, 3, 3, 4, 3, 4, 2, 4, 2, 4, 3, 0, 3, 6, 2, 4, // Cx
	2, 3, 3, 0, 3, 4, 2, 4, 2, 4, 3, 0, 3, 0, 2, 4, // Dx
	3, 3, 2, 0, 0, 4, 2, 4, 4, 1, 4, 0, 0, 0, 2, 4, // Ex
	3, 3, 2, 1, 0, 4, 2, 4, 3, 2, 4, 1, 0, 0, 2, 4, // Fx
}

// takenCycles overrides mainCycles for conditional opcodes whose branch is taken.
var takenCycles = map[uint8]uint8{
	0x20: 3, 0x28: 3, 0x30: 3, 0x38: 3, // JR cc
	0xC0: 5, 0xC8: 5, 0xD0: 5, 0xD8: 5, // RET cc
	0xC2: 4, 0xCA: 4, 0xD2: 4, 0xDA: 4, // JP cc
	0xC4: 6, 0xCC: 6, 0xD4: 6, 0xDC: 6, // CALL cc
}

// OpcodeTiming returns the reference duration of an opcode, prefix fetch
// included for escaped opcodes. ok is false for unassigned opcodes.
func OpcodeTiming(opcode uint8, escaped bool) (t Timing, ok bool) {
	if escaped {
		m := 2
		if opcode&7 == 6 { // (HL)
			m = 4
			if opcode>>6 == 1 { // BIT only reads
				m = 3
			}
		}
		return Timing{NotTaken: m * 4, Taken: m * 4}, true
	}

	m := int(mainCycles[opcode])
	if m == 0 {
		return Timing{}, false
	}
	t = Timing{NotTaken: m * 4, Taken: m * 4}
	if taken, found := takenCycles[opcode]; found {
		t.Taken = int(taken) * 4
	}
	return t, true
}
