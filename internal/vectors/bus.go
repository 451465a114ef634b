package vectors

import "github.com/richardwooding/dmgcore/internal/interrupts"

// flatBus is 64 KiB of RAM that records the access made in each M-cycle.
// IF and IE are backed by the interrupt controller so the CPU sees them.
type flatBus struct {
	mem        [0x10000]uint8
	interrupts *interrupts.Controller
	cycles     []BusCycle
}

func newFlatBus() *flatBus {
	return &flatBus{interrupts: interrupts.New()}
}

// poke stores a byte without recording it.
func (b *flatBus) poke(addr uint16, value uint8) {
	switch addr {
	case interrupts.IF:
		b.interrupts.WriteFlag(value)
	case interrupts.IE:
		b.interrupts.WriteEnable(value)
	default:
		b.mem[addr] = value
	}
}

// peek loads a byte without recording it.
func (b *flatBus) peek(addr uint16) uint8 {
	switch addr {
	case interrupts.IF:
		return b.interrupts.ReadFlag()
	case interrupts.IE:
		return b.interrupts.ReadEnable()
	}
	return b.mem[addr]
}

func (b *flatBus) Read(addr uint16) uint8 {
	value := b.peek(addr)
	b.record(BusCycle{Address: addr, Data: value, Event: Read})
	return value
}

func (b *flatBus) Write(addr uint16, value uint8) {
	b.poke(addr, value)
	b.record(BusCycle{Address: addr, Data: value, Event: Write})
}

// record fills the slot opened by the preceding Tick.
func (b *flatBus) record(c BusCycle) {
	if n := len(b.cycles); n > 0 && b.cycles[n-1].Event == Internal {
		b.cycles[n-1] = c
		return
	}
	b.cycles = append(b.cycles, c)
}

// Tick opens one slot per M-cycle.
func (b *flatBus) Tick(ticks int) {
	for i := 0; i < ticks/4; i++ {
		b.cycles = append(b.cycles, BusCycle{Event: Internal})
	}
}

func (b *flatBus) Interrupts() *interrupts.Controller {
	return b.interrupts
}
