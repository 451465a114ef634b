// Package cpu implements the Sharp SM83 CPU emulation for the Game Boy.
//
// The CPU is clocked per M-cycle: every bus access, and every internal cycle
// an instruction spends, advances the bus by 4 ticks before it happens. A
// timer interrupt raised halfway through an instruction is therefore visible
// to the interrupt check at the end of the same Step.
package cpu

import (
	"github.com/richardwooding/dmgcore/internal/interrupts"
	"github.com/richardwooding/dmgcore/internal/logging"
	"github.com/sirupsen/logrus"
)

// ticksPerCycle is the number of clock ticks in one M-cycle.
const ticksPerCycle = 4

// Bus is the memory and peripheral interface the CPU drives.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	// Tick advances the peripherals by the given number of clock ticks.
	Tick(ticks int)
	Interrupts() *interrupts.Controller
}

// CPU represents the Sharp SM83 CPU.
type CPU struct {
	Registers *Registers
	bus       Bus
	log       logrus.FieldLogger

	// Interrupt master enable flag
	IME bool
	// EI takes effect after the next instruction
	imePending bool

	halted  bool
	haltBug bool // next opcode fetch does not advance PC

	ticks  int    // ticks spent in the current step
	Cycles uint64 // total ticks since creation
}

// New creates a CPU in its power-on state attached to bus. A nil logger
// discards output.
func New(bus Bus, log logrus.FieldLogger) *CPU {
	return &CPU{
		Registers: NewRegisters(),
		bus:       bus,
		log:       logging.OrDiscard(log),
	}
}

// Halted reports whether the CPU is waiting for an interrupt.
func (c *CPU) Halted() bool {
	return c.halted
}

// Step runs one instruction, or one idle cycle while halted, then services at
// most one interrupt. It returns the ticks spent, always a multiple of 4.
// Leaving HALT costs one extra 4-tick cycle before the next fetch, or
// before dispatch when IME is set, so a wake never takes less than 8 ticks.
// An error means an unassigned opcode was fetched and is not recoverable.
func (c *CPU) Step() (int, error) {
	c.ticks = 0

	if c.imePending {
		c.imePending = false
		c.IME = true
	}

	switch {
	case !c.halted:
		if err := c.executeNext(); err != nil {
			return c.ticks, err
		}
	case c.bus.Interrupts().Interrupted():
		c.halted = false
		c.cycle()
		c.log.Debug("cpu woke from halt")
		if !c.IME {
			if err := c.executeNext(); err != nil {
				return c.ticks, err
			}
		}
	default:
		c.cycle()
	}

	c.serviceInterrupt()

	c.Cycles += uint64(c.ticks) //nolint:gosec // G115: ticks is never negative
	return c.ticks, nil
}

// executeNext fetches, decodes and executes the instruction at PC.
func (c *CPU) executeNext() error {
	pc := c.Registers.PC
	opcode := c.fetchOpcode()

	escaped := opcode == Prefix
	if escaped {
		opcode = c.fetch()
	}

	inst, err := Decode(opcode, escaped)
	if err != nil {
		return &InvalidOpcodeError{Opcode: opcode, Escaped: escaped, PC: pc}
	}

	inst.execute(c)
	return nil
}

// serviceInterrupt dispatches the highest-priority pending interrupt when
// IME is set. Dispatch takes five M-cycles.
func (c *CPU) serviceInterrupt() {
	if !c.IME {
		return
	}
	ic := c.bus.Interrupts()
	src, ok := ic.Next()
	if !ok {
		return
	}

	c.IME = false
	c.halted = false
	ic.Acknowledge(src)

	c.cycle()
	c.cycle()
	c.push(c.Registers.PC)
	c.cycle()
	c.Registers.PC = src.Vector()

	c.log.WithField("source", src.String()).Trace("interrupt dispatched")
}

// cycle spends one internal M-cycle.
func (c *CPU) cycle() {
	c.bus.Tick(ticksPerCycle)
	c.ticks += ticksPerCycle
}

// read performs a bus read, advancing the clock first.
func (c *CPU) read(addr uint16) uint8 {
	c.cycle()
	return c.bus.Read(addr)
}

// write performs a bus write, advancing the clock first.
func (c *CPU) write(addr uint16, value uint8) {
	c.cycle()
	c.bus.Write(addr, value)
}

// fetchOpcode reads the opcode at PC. After the halt bug triggers, PC is
// left in place once so the byte is read twice.
func (c *CPU) fetchOpcode() uint8 {
	value := c.read(c.Registers.PC)
	if c.haltBug {
		c.haltBug = false
		return value
	}
	c.Registers.PC++
	return value
}

// fetch fetches the next byte from memory and increments PC.
func (c *CPU) fetch() uint8 {
	value := c.read(c.Registers.PC)
	c.Registers.PC++
	return value
}

// fetchWord fetches the next word (16-bit, little-endian) and increments PC.
func (c *CPU) fetchWord() uint16 {
	lo := c.fetch()
	return join(c.fetch(), lo)
}

// push writes the high byte at SP-1 then the low byte at SP-2.
func (c *CPU) push(value uint16) {
	hi, lo := split(value)
	c.Registers.SP--
	c.write(c.Registers.SP, hi)
	c.Registers.SP--
	c.write(c.Registers.SP, lo)
}

// pop is the inverse of push.
func (c *CPU) pop() uint16 {
	lo := c.read(c.Registers.SP)
	c.Registers.SP++
	hi := c.read(c.Registers.SP)
	c.Registers.SP++
	return join(hi, lo)
}

// load8 reads an 8-bit operand, performing any immediate fetch or memory
// access it implies.
func (c *CPU) load8(o Operand) uint8 {
	if reg := c.Registers.reg8(o); reg != nil {
		return *reg
	}
	if o == Imm8 {
		return c.fetch()
	}
	return c.read(c.address(o))
}

// store8 writes an 8-bit operand.
func (c *CPU) store8(o Operand, value uint8) {
	if reg := c.Registers.reg8(o); reg != nil {
		*reg = value
		return
	}
	c.write(c.address(o), value)
}

// address resolves a memory operand, applying the HL post-increment and
// post-decrement forms.
func (c *CPU) address(o Operand) uint16 {
	r := c.Registers
	switch o {
	case MemHL:
		return r.HL()
	case MemBC:
		return r.BC()
	case MemDE:
		return r.DE()
	case MemHLI:
		hl := r.HL()
		r.SetHL(hl + 1)
		return hl
	case MemHLD:
		hl := r.HL()
		r.SetHL(hl - 1)
		return hl
	case MemAbs:
		return c.fetchWord()
	case MemHigh:
		return 0xFF00 | uint16(c.fetch())
	case MemHighC:
		return 0xFF00 | uint16(r.C)
	}
	return 0
}
