// Package interrupts implements the interrupt flag (IF) and interrupt
// enable (IE) registers shared by the CPU and the peripherals.
//
// Both registers cover the same five sources. Only the low five bits take
// part in interrupt dispatch; the upper three bits are stored and read back
// verbatim.
package interrupts

// Source identifies one of the five interrupt sources.
type Source uint8

// Interrupt sources in priority order (highest first).
const (
	VBlank Source = iota
	LCDStat
	Timer
	Serial
	Joypad
)

// Register addresses.
const (
	IF = 0xFF0F
	IE = 0xFFFF
)

// Mask covers the bits that correspond to a source.
const Mask uint8 = 0x1F

var sourceNames = [...]string{"vblank", "lcd-stat", "timer", "serial", "joypad"}

// String returns the source name.
func (s Source) String() string {
	if int(s) < len(sourceNames) {
		return sourceNames[s]
	}
	return "unknown"
}

// Bit returns the register bit for the source.
func (s Source) Bit() uint8 {
	return 1 << s
}

// Vector returns the fixed handler address for the source.
func (s Source) Vector() uint16 {
	return 0x0040 + uint16(s)*8
}

// Flags is one of the two 5-bit interrupt registers.
type Flags uint8

// Has reports whether the bit for src is set.
func (f Flags) Has(src Source) bool {
	return uint8(f)&src.Bit() != 0
}

// Set sets the bit for src.
func (f *Flags) Set(src Source) {
	*f |= Flags(src.Bit())
}

// Clear clears the bit for src.
func (f *Flags) Clear(src Source) {
	*f &^= Flags(src.Bit())
}

// Controller holds the pending (IF) and enabled (IE) interrupt sets.
type Controller struct {
	Pending Flags // IF
	Enabled Flags // IE
}

// New creates a controller with nothing pending or enabled.
func New() *Controller {
	return &Controller{}
}

// Request marks src as pending.
func (c *Controller) Request(src Source) {
	c.Pending.Set(src)
}

// Acknowledge clears the pending bit for src.
func (c *Controller) Acknowledge(src Source) {
	c.Pending.Clear(src)
}

// Interrupted reports whether any enabled source is pending. The master
// enable flag is not consulted, so this is also the HALT wake-up condition.
func (c *Controller) Interrupted() bool {
	return uint8(c.Pending)&uint8(c.Enabled)&Mask != 0
}

// Next returns the highest-priority source that is both pending and enabled.
func (c *Controller) Next() (Source, bool) {
	active := uint8(c.Pending) & uint8(c.Enabled) & Mask
	if active == 0 {
		return 0, false
	}
	for src := VBlank; src <= Joypad; src++ {
		if active&src.Bit() != 0 {
			return src, true
		}
	}
	return 0, false
}

// ReadFlag returns the IF register.
func (c *Controller) ReadFlag() uint8 {
	return uint8(c.Pending)
}

// WriteFlag replaces the IF register.
func (c *Controller) WriteFlag(value uint8) {
	c.Pending = Flags(value)
}

// ReadEnable returns the IE register.
func (c *Controller) ReadEnable() uint8 {
	return uint8(c.Enabled)
}

// WriteEnable replaces the IE register.
func (c *Controller) WriteEnable(value uint8) {
	c.Enabled = Flags(value)
}
