// Package timer implements the DMG divider and interval timer.
//
// The timer system consists of:
//   - DIV: Divider register (upper 8 bits of a free-running 16-bit counter)
//   - TIMA: Timer counter (increments at a configurable rate)
//   - TMA: Timer modulo (value reloaded into TIMA after an overflow)
//   - TAC: Timer control (enable and clock select)
//
// TIMA is clocked by the falling edge of (selected DIV bit AND enable). An
// overflow does not reload immediately: TIMA reads 0x00 for four ticks and
// the reload and interrupt happen on the fourth.
package timer

// InterruptCallback is the function type for timer interrupt requests.
type InterruptCallback func()

// Register addresses.
const (
	DIV  = 0xFF04
	TIMA = 0xFF05
	TMA  = 0xFF06
	TAC  = 0xFF07
)

// TAC register bits.
const (
	tacEnableBit = 0x04 // Bit 2: Timer enable
	tacClockMask = 0x03 // Bits 1-0: Clock select
)

// overflowDelay is the number of ticks between TIMA wrapping and the reload.
const overflowDelay = 4

// clockBits maps TAC clock select to the DIV counter bit that drives TIMA.
var clockBits = [4]uint{9, 3, 5, 7}

// Timer represents the DMG timer system.
type Timer struct {
	divider uint16 // Internal 16-bit counter (DIV is upper 8 bits)
	counter uint8  // TIMA
	modulo  uint8  // TMA
	control uint8  // TAC, lower 3 bits

	edge bool // AND-gate output seen on the previous tick

	overflowing   bool  // TIMA wrapped and the reload is pending
	overflowTicks uint8 // ticks elapsed since the wrap
	reloadValue   uint8 // TMA latched when TIMA wrapped
	reloaded      bool  // a reload happened during the latest Update

	requestInterrupt InterruptCallback
}

// New creates a new Timer with the given interrupt callback.
func New(requestInterrupt InterruptCallback) *Timer {
	return &Timer{
		requestInterrupt: requestInterrupt,
	}
}

// Read reads a timer register.
func (t *Timer) Read(addr uint16) uint8 {
	switch addr {
	case DIV:
		return uint8(t.divider >> 8) //nolint:gosec // DIV is upper 8 bits
	case TIMA:
		return t.counter
	case TMA:
		return t.modulo
	case TAC:
		return t.control | 0xF8 // Upper 5 bits read as 1
	}
	return 0xFF
}

// Write writes to a timer register.
func (t *Timer) Write(addr uint16, value uint8) {
	switch addr {
	case DIV:
		t.WriteDivider()
	case TIMA:
		t.WriteCounter(value)
	case TMA:
		t.WriteModulo(value)
	case TAC:
		t.WriteControl(value)
	}
}

// WriteDivider resets the divider. Any value written has the same effect.
func (t *Timer) WriteDivider() {
	t.divider = 0
	t.updateEdge()
}

// WriteCounter writes TIMA. A write inside the overflow window cancels the
// pending reload and interrupt. A write in the same M-cycle as the reload is
// lost to the reload.
func (t *Timer) WriteCounter(value uint8) {
	if t.reloaded {
		return
	}
	t.overflowing = false
	t.overflowTicks = 0
	t.counter = value
}

// WriteModulo writes TMA. A reload already pending keeps the value latched
// when TIMA wrapped.
func (t *Timer) WriteModulo(value uint8) {
	t.modulo = value
}

// WriteControl writes TAC. Disabling the timer or switching the clock can
// produce a falling edge, which increments TIMA immediately.
func (t *Timer) WriteControl(value uint8) {
	t.control = value & 0x07
	t.updateEdge()
}

// Update advances the timer by the given number of ticks. The CPU calls it
// once per M-cycle with 4 ticks.
func (t *Timer) Update(ticks int) {
	t.reloaded = false
	for i := 0; i < ticks; i++ {
		t.Tick()
	}
}

// Tick advances the timer by a single tick.
func (t *Timer) Tick() {
	t.divider++

	if t.overflowing {
		t.overflowTicks++
		if t.overflowTicks == overflowDelay {
			t.overflowing = false
			t.overflowTicks = 0
			t.counter = t.reloadValue
			t.reloaded = true
			if t.requestInterrupt != nil {
				t.requestInterrupt()
			}
		}
	}

	t.updateEdge()
}

// signal returns the AND of the selected divider bit and the enable bit.
func (t *Timer) signal() bool {
	if t.control&tacEnableBit == 0 {
		return false
	}
	return t.divider&(1<<clockBits[t.control&tacClockMask]) != 0
}

// updateEdge increments TIMA on a 1 -> 0 transition of the AND gate.
func (t *Timer) updateEdge() {
	s := t.signal()
	if t.edge && !s {
		t.increment()
	}
	t.edge = s
}

// increment advances TIMA, entering the overflow window on wrap.
func (t *Timer) increment() {
	if t.counter == 0xFF {
		t.counter = 0
		t.overflowing = true
		t.overflowTicks = 0
		t.reloadValue = t.modulo
		return
	}
	t.counter++
}

// Divider returns the full 16-bit internal counter.
func (t *Timer) Divider() uint16 {
	return t.divider
}

// Overflowing reports whether a reload is pending.
func (t *Timer) Overflowing() bool {
	return t.overflowing
}

// Reset resets the timer to initial state.
func (t *Timer) Reset() {
	t.divider = 0
	t.counter = 0
	t.modulo = 0
	t.control = 0
	t.edge = false
	t.overflowing = false
	t.overflowTicks = 0
	t.reloadValue = 0
	t.reloaded = false
}
