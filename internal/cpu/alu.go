package cpu

// alu applies an accumulator operation. CP leaves A untouched.
func (c *CPU) alu(op ALUOp, value uint8) {
	r := c.Registers
	switch op {
	case OpAdd:
		r.A = c.add8(r.A, value, 0)
	case OpAdc:
		r.A = c.add8(r.A, value, r.carryBit())
	case OpSub:
		r.A = c.sub8(r.A, value, 0)
	case OpSbc:
		r.A = c.sub8(r.A, value, r.carryBit())
	case OpAnd:
		r.A &= value
		r.setFlags(r.A == 0, false, true, false)
	case OpXor:
		r.A ^= value
		r.setFlags(r.A == 0, false, false, false)
	case OpOr:
		r.A |= value
		r.setFlags(r.A == 0, false, false, false)
	case OpCp:
		c.sub8(r.A, value, 0)
	}
}

// add8 performs 8-bit addition with an incoming carry of 0 or 1 and sets all
// four flags from the original operands.
func (c *CPU) add8(a, b, carry uint8) uint8 {
	result := a + b + carry
	c.Registers.setFlags(
		result == 0,
		false,
		(a&0x0F)+(b&0x0F)+carry > 0x0F,
		uint16(a)+uint16(b)+uint16(carry) > 0xFF,
	)
	return result
}

// sub8 performs 8-bit subtraction with an incoming borrow of 0 or 1.
func (c *CPU) sub8(a, b, carry uint8) uint8 {
	result := a - b - carry
	c.Registers.setFlags(
		result == 0,
		true,
		(a&0x0F) < (b&0x0F)+carry,
		uint16(a) < uint16(b)+uint16(carry),
	)
	return result
}

// add16 performs 16-bit addition for ADD HL, rr. Z is not affected.
func (c *CPU) add16(a, b uint16) uint16 {
	result := a + b

	c.Registers.ClearFlag(FlagN)
	c.Registers.SetFlagTo(FlagH, (a&0x0FFF)+(b&0x0FFF) > 0x0FFF)
	c.Registers.SetFlagTo(FlagC, uint32(a)+uint32(b) > 0xFFFF)

	return result
}

// addSigned adds a signed byte to a word for ADD SP,e8 and LD HL,SP+e8.
// H and C come from the unsigned addition of the low byte; Z and N clear.
func (c *CPU) addSigned(a uint16, offset uint8) uint16 {
	result := a + uint16(int8(offset)) //nolint:gosec // G115: sign extension is the point
	c.Registers.setFlags(
		false,
		false,
		(a&0x000F)+uint16(offset&0x0F) > 0x000F,
		(a&0x00FF)+uint16(offset) > 0x00FF,
	)
	return result
}

// inc8 increments an 8-bit value and sets flags.
func (c *CPU) inc8(value uint8) uint8 {
	result := value + 1

	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.ClearFlag(FlagN)
	c.Registers.SetFlagTo(FlagH, (value&0x0F) == 0x0F)
	// Carry flag not affected

	return result
}

// dec8 decrements an 8-bit value and sets flags.
func (c *CPU) dec8(value uint8) uint8 {
	result := value - 1

	c.Registers.SetFlagTo(FlagZ, result == 0)
	c.Registers.SetFlag(FlagN)
	c.Registers.SetFlagTo(FlagH, (value&0x0F) == 0)
	// Carry flag not affected

	return result
}

// shift runs one of the rotate/shift family. C takes the bit shifted out,
// N and H clear, Z reflects the result.
func (c *CPU) shift(op ShiftOp, value uint8) uint8 {
	var result uint8
	var carry bool

	switch op {
	case OpRLC:
		carry = value&0x80 != 0
		result = value<<1 | value>>7
	case OpRRC:
		carry = value&0x01 != 0
		result = value>>1 | value<<7
	case OpRL:
		carry = value&0x80 != 0
		result = value<<1 | c.Registers.carryBit()
	case OpRR:
		carry = value&0x01 != 0
		result = value>>1 | c.Registers.carryBit()<<7
	case OpSLA:
		carry = value&0x80 != 0
		result = value << 1
	case OpSRA:
		carry = value&0x01 != 0
		result = value>>1 | value&0x80
	case OpSwap:
		result = value<<4 | value>>4
	case OpSRL:
		carry = value&0x01 != 0
		result = value >> 1
	}

	c.Registers.setFlags(result == 0, false, false, carry)
	return result
}

// bit tests a bit. Carry flag is not affected.
func (c *CPU) bit(value uint8, index uint8) {
	c.Registers.SetFlagTo(FlagZ, value&(1<<index) == 0)
	c.Registers.ClearFlag(FlagN)
	c.Registers.SetFlag(FlagH)
}

// daa adjusts A to packed BCD after an addition or subtraction. N selects
// the direction; H and C from the previous operation pick the correction.
func (c *CPU) daa() {
	r := c.Registers
	value := r.A
	subtract := r.SubtractFlag()

	var offset uint8
	if r.HalfCarryFlag() || (!subtract && value&0x0F > 0x09) {
		offset |= 0x06
	}
	if r.CarryFlag() || (!subtract && value > 0x99) {
		offset |= 0x60
		r.SetFlag(FlagC)
	}

	if subtract {
		value -= offset
	} else {
		value += offset
	}

	r.A = value
	r.SetFlagTo(FlagZ, value == 0)
	r.ClearFlag(FlagH)
}
