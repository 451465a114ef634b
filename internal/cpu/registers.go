package cpu

import "fmt"

// Flags represents CPU flag register bits.
const (
	FlagZ uint8 = 0b10000000 // Zero flag (bit 7)
	FlagN uint8 = 0b01000000 // Subtraction flag (bit 6)
	FlagH uint8 = 0b00100000 // Half-carry flag (bit 5)
	FlagC uint8 = 0b00010000 // Carry flag (bit 4)
)

// flagMask covers the bits of F that exist in hardware.
const flagMask uint8 = 0xF0

// Registers represents the SM83 CPU registers.
type Registers struct {
	A  uint8  // Accumulator
	F  uint8  // Flags (only upper 4 bits used)
	B  uint8  // General purpose
	C  uint8  // General purpose
	D  uint8  // General purpose
	E  uint8  // General purpose
	H  uint8  // General purpose (high byte of HL pointer)
	L  uint8  // General purpose (low byte of HL pointer)
	SP uint16 // Stack pointer
	PC uint16 // Program counter
}

// NewRegisters returns the power-on register file: everything zero, execution
// starting at 0x0000 where the boot image is mapped.
func NewRegisters() *Registers {
	return &Registers{}
}

// PostBoot returns the register values the DMG boot image leaves behind.
// It is used when a cartridge is started without running a boot image.
func PostBoot() *Registers {
	return &Registers{
		A:  0x01,
		F:  0xB0,
		B:  0x00,
		C:  0x13,
		D:  0x00,
		E:  0xD8,
		H:  0x01,
		L:  0x4D,
		SP: 0xFFFE,
		PC: 0x0100,
	}
}

// AF, BC, DE and HL read a register pair, high register first. The low
// nibble of F always reads zero.
func (r *Registers) AF() uint16 { return join(r.A, r.F&flagMask) }
func (r *Registers) BC() uint16 { return join(r.B, r.C) }
func (r *Registers) DE() uint16 { return join(r.D, r.E) }
func (r *Registers) HL() uint16 { return join(r.H, r.L) }

// SetAF writes A and F. The low nibble of F is dropped.
func (r *Registers) SetAF(value uint16) {
	r.A, r.F = split(value)
	r.F &= flagMask
}

func (r *Registers) SetBC(value uint16) { r.B, r.C = split(value) }
func (r *Registers) SetDE(value uint16) { r.D, r.E = split(value) }
func (r *Registers) SetHL(value uint16) { r.H, r.L = split(value) }

// Pair returns the value of a 16-bit register pair.
func (r *Registers) Pair(p Pair) uint16 {
	switch p {
	case PairBC:
		return r.BC()
	case PairDE:
		return r.DE()
	case PairHL:
		return r.HL()
	case PairSP:
		return r.SP
	case PairAF:
		return r.AF()
	}
	return 0
}

// SetPair writes a 16-bit register pair.
func (r *Registers) SetPair(p Pair, value uint16) {
	switch p {
	case PairBC:
		r.SetBC(value)
	case PairDE:
		r.SetDE(value)
	case PairHL:
		r.SetHL(value)
	case PairSP:
		r.SP = value
	case PairAF:
		r.SetAF(value)
	}
}

// reg8 returns a pointer to the register named by o, or nil when o is not a
// plain register operand.
func (r *Registers) reg8(o Operand) *uint8 {
	switch o {
	case RegA:
		return &r.A
	case RegB:
		return &r.B
	case RegC:
		return &r.C
	case RegD:
		return &r.D
	case RegE:
		return &r.E
	case RegH:
		return &r.H
	case RegL:
		return &r.L
	}
	return nil
}

// SetFlag sets the given flag bits.
func (r *Registers) SetFlag(flag uint8) {
	r.F |= flag
}

// ClearFlag clears the given flag bits.
func (r *Registers) ClearFlag(flag uint8) {
	r.F &^= flag
}

// SetFlagTo sets or clears flag according to on.
func (r *Registers) SetFlagTo(flag uint8, on bool) {
	if on {
		r.F |= flag
		return
	}
	r.F &^= flag
}

// setFlags replaces all four flags at once.
func (r *Registers) setFlags(z, n, h, c bool) {
	r.F = 0
	r.SetFlagTo(FlagZ, z)
	r.SetFlagTo(FlagN, n)
	r.SetFlagTo(FlagH, h)
	r.SetFlagTo(FlagC, c)
}

// Flag getters.
func (r *Registers) ZeroFlag() bool      { return r.F&FlagZ != 0 }
func (r *Registers) SubtractFlag() bool  { return r.F&FlagN != 0 }
func (r *Registers) HalfCarryFlag() bool { return r.F&FlagH != 0 }
func (r *Registers) CarryFlag() bool     { return r.F&FlagC != 0 }

// carryBit returns the carry flag as 0 or 1.
func (r *Registers) carryBit() uint8 {
	if r.CarryFlag() {
		return 1
	}
	return 0
}

// String formats the register file on one line.
func (r *Registers) String() string {
	return fmt.Sprintf("AF=%04X BC=%04X DE=%04X HL=%04X SP=%04X PC=%04X",
		r.AF(), r.BC(), r.DE(), r.HL(), r.SP, r.PC)
}

func join(hi, lo uint8) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}

// split breaks a word into its high and low bytes.
func split(value uint16) (hi, lo uint8) {
	return uint8(value >> 8), uint8(value) //nolint:gosec // G115: Intentional byte extraction from 16-bit value
}
