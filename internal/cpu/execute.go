package cpu

// Each instruction variant executes itself. The opcode fetch has already been
// charged; these methods charge everything after it.

func (Nop) execute(*CPU) {}

func (Halt) execute(c *CPU) {
	// With IME clear and an interrupt already pending the CPU does not halt,
	// and the next opcode fetch fails to advance PC.
	if !c.IME && c.bus.Interrupts().Interrupted() {
		c.haltBug = true
		c.log.WithField("pc", c.Registers.PC).Debug("halt bug triggered")
		return
	}
	c.halted = true
}

func (Stop) execute(c *CPU) {
	c.Registers.PC++ // padding byte, not read
	c.halted = true
	c.log.WithField("pc", c.Registers.PC).Debug("cpu stopped")
}

func (DisableInterrupts) execute(c *CPU) {
	c.IME = false
	c.imePending = false
}

func (EnableInterrupts) execute(c *CPU) {
	if !c.IME {
		c.imePending = true
	}
}

func (i ALU) execute(c *CPU) {
	c.alu(i.Op, c.load8(i.Src))
}

func (DecimalAdjust) execute(c *CPU) {
	c.daa()
}

func (Complement) execute(c *CPU) {
	c.Registers.A = ^c.Registers.A
	c.Registers.SetFlag(FlagN)
	c.Registers.SetFlag(FlagH)
}

func (SetCarry) execute(c *CPU) {
	c.Registers.ClearFlag(FlagN)
	c.Registers.ClearFlag(FlagH)
	c.Registers.SetFlag(FlagC)
}

func (ComplementCarry) execute(c *CPU) {
	c.Registers.ClearFlag(FlagN)
	c.Registers.ClearFlag(FlagH)
	c.Registers.SetFlagTo(FlagC, !c.Registers.CarryFlag())
}

func (i RotateA) execute(c *CPU) {
	c.Registers.A = c.shift(i.Op, c.Registers.A)
	c.Registers.ClearFlag(FlagZ) // accumulator forms always clear Z
}

func (i Inc) execute(c *CPU) {
	c.store8(i.Dst, c.inc8(c.load8(i.Dst)))
}

func (i Dec) execute(c *CPU) {
	c.store8(i.Dst, c.dec8(c.load8(i.Dst)))
}

func (i Inc16) execute(c *CPU) {
	c.cycle()
	c.Registers.SetPair(i.Pair, c.Registers.Pair(i.Pair)+1)
}

func (i Dec16) execute(c *CPU) {
	c.cycle()
	c.Registers.SetPair(i.Pair, c.Registers.Pair(i.Pair)-1)
}

func (i AddHL) execute(c *CPU) {
	c.cycle()
	c.Registers.SetHL(c.add16(c.Registers.HL(), c.Registers.Pair(i.Src)))
}

func (AddSP) execute(c *CPU) {
	offset := c.fetch()
	c.cycle()
	c.cycle()
	c.Registers.SP = c.addSigned(c.Registers.SP, offset)
}

func (LoadHLSP) execute(c *CPU) {
	offset := c.fetch()
	c.cycle()
	c.Registers.SetHL(c.addSigned(c.Registers.SP, offset))
}

func (i Shift) execute(c *CPU) {
	c.store8(i.Dst, c.shift(i.Op, c.load8(i.Dst)))
}

func (i TestBit) execute(c *CPU) {
	c.bit(c.load8(i.Src), i.Index)
}

func (i ResetBit) execute(c *CPU) {
	c.store8(i.Dst, c.load8(i.Dst)&^(1<<i.Index))
}

func (i SetBit) execute(c *CPU) {
	c.store8(i.Dst, c.load8(i.Dst)|1<<i.Index)
}

func (i Jump) execute(c *CPU) {
	addr := c.fetchWord()
	if i.Cond.Holds(c.Registers.F) {
		c.cycle()
		c.Registers.PC = addr
	}
}

func (JumpHL) execute(c *CPU) {
	c.Registers.PC = c.Registers.HL()
}

func (i JumpRelative) execute(c *CPU) {
	offset := int8(c.fetch()) //nolint:gosec // G115: relative offsets are signed
	if i.Cond.Holds(c.Registers.F) {
		c.cycle()
		c.Registers.PC += uint16(offset) //nolint:gosec // G115: wraps modulo 65536
	}
}

func (i Call) execute(c *CPU) {
	addr := c.fetchWord()
	if i.Cond.Holds(c.Registers.F) {
		c.cycle()
		c.push(c.Registers.PC)
		c.Registers.PC = addr
	}
}

func (i Return) execute(c *CPU) {
	if i.Cond != Always {
		c.cycle() // condition check
	}
	if i.Cond.Holds(c.Registers.F) {
		addr := c.pop()
		c.cycle()
		c.Registers.PC = addr
	}
}

func (ReturnInterrupt) execute(c *CPU) {
	addr := c.pop()
	c.cycle()
	c.Registers.PC = addr
	c.IME = true
	c.imePending = false
}

func (i Restart) execute(c *CPU) {
	c.cycle()
	c.push(c.Registers.PC)
	c.Registers.PC = i.Vector
}

func (i Load) execute(c *CPU) {
	c.store8(i.Dst, c.load8(i.Src))
}

func (i Load16) execute(c *CPU) {
	c.Registers.SetPair(i.Dst, c.fetchWord())
}

func (StoreSP) execute(c *CPU) {
	addr := c.fetchWord()
	hi, lo := split(c.Registers.SP)
	c.write(addr, lo)
	c.write(addr+1, hi)
}

func (LoadSPHL) execute(c *CPU) {
	c.cycle()
	c.Registers.SP = c.Registers.HL()
}

func (i Push) execute(c *CPU) {
	c.cycle()
	c.push(c.Registers.Pair(i.Src))
}

func (i Pop) execute(c *CPU) {
	c.Registers.SetPair(i.Dst, c.pop())
}
