// Package memory implements the DMG memory bus and address space mapping.
package memory

import (
	"errors"
	"fmt"
	"io"

	"github.com/richardwooding/dmgcore/internal/cartridge"
	"github.com/richardwooding/dmgcore/internal/input"
	"github.com/richardwooding/dmgcore/internal/interrupts"
	"github.com/richardwooding/dmgcore/internal/logging"
	"github.com/richardwooding/dmgcore/internal/ppu"
	"github.com/richardwooding/dmgcore/internal/serial"
	"github.com/richardwooding/dmgcore/internal/timer"
	"github.com/sirupsen/logrus"
)

// BootSize is the size of the boot ROM image.
const BootSize = 0x100

// Special I/O addresses handled by the bus itself.
const (
	LY          = 0xFF44
	BootDisable = 0xFF50
)

// lyAtBoot satisfies the boot ROM's wait for line 144.
const lyAtBoot = 0x90

// ErrInvalidBootROM indicates the boot image is not exactly BootSize bytes.
var ErrInvalidBootROM = errors.New("invalid boot ROM")

// Bus represents the DMG memory bus. It owns every peripheral the CPU can
// reach.
type Bus struct {
	boot        [BootSize]uint8
	hasBoot     bool
	bootEnabled bool

	cart       *cartridge.Static
	ppu        *ppu.PPU
	joypad     *input.Joypad
	serial     *serial.Port
	timer      *timer.Timer
	interrupts *interrupts.Controller

	wram [0x2000]uint8 // C000-DFFF, mirrored at E000-FDFF
	io   [0x80]uint8   // FF00-FF7F
	hram [0x7F]uint8   // FF80-FFFE

	serialOut io.Writer
	log       logrus.FieldLogger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for bus diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(b *Bus) {
		b.log = log
	}
}

// WithSerialOutput sets where completed serial transfers are written.
func WithSerialOutput(w io.Writer) Option {
	return func(b *Bus) {
		b.serialOut = w
	}
}

// NewBus creates a bus from a boot image and a cartridge image. A nil boot
// image starts with the cartridge mapped at 0x0000. Nil is the only
// exemption: any other boot image, including an empty one, must be exactly
// BootSize bytes.
func NewBus(boot, rom []byte, opts ...Option) (*Bus, error) {
	b := &Bus{}
	for _, opt := range opts {
		opt(b)
	}
	b.log = logging.OrDiscard(b.log)

	if boot != nil {
		if len(boot) != BootSize {
			return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidBootROM, len(boot), BootSize)
		}
		copy(b.boot[:], boot)
		b.hasBoot = true
		b.bootEnabled = true
	}

	b.interrupts = interrupts.New()
	b.cart = cartridge.New(rom)
	b.ppu = ppu.New()
	b.joypad = input.New(b.interrupts)
	b.serial = serial.New(b.interrupts, b.serialOut, b.log.WithField("component", "serial"))
	b.timer = timer.New(func() {
		b.interrupts.Request(interrupts.Timer)
	})
	b.io[LY-0xFF00] = lyAtBoot

	if b.cart.Truncated() {
		b.log.WithField("size", b.cart.Size()).Warn("cartridge larger than 32 KiB, only banks 0 and 1 are mapped")
	}

	return b, nil
}

// Read reads a byte from the memory bus.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	// Boot ROM overlays the cartridge until disabled
	case addr < BootSize && b.bootEnabled:
		return b.boot[addr]

	// ROM bank 0 and 1, external RAM
	case addr < 0x8000, addr >= 0xA000 && addr < 0xC000:
		return b.cart.Read(addr)

	// VRAM (8000-9FFF)
	case addr < 0xA000:
		return b.ppu.ReadVRAM(addr - 0x8000)

	// Work RAM (C000-DFFF)
	case addr < 0xE000:
		return b.wram[addr-0xC000]

	// Echo RAM (E000-FDFF)
	case addr < 0xFE00:
		return b.wram[addr-0xE000]

	// OAM (FE00-FE9F)
	case addr < 0xFEA0:
		return b.ppu.ReadOAM(addr - 0xFE00)

	// Not usable (FEA0-FEFF)
	case addr < 0xFF00:
		return 0x00

	// I/O registers (FF00-FF7F)
	case addr < 0xFF80:
		return b.readIO(addr)

	// High RAM (FF80-FFFE)
	case addr < 0xFFFF:
		return b.hram[addr-0xFF80]

	// Interrupt enable (FFFF)
	default:
		return b.interrupts.ReadEnable()
	}
}

// Write writes a byte to the memory bus.
func (b *Bus) Write(addr uint16, value uint8) {
	switch {
	// ROM (0000-7FFF), external RAM (A000-BFFF)
	case addr < 0x8000, addr >= 0xA000 && addr < 0xC000:
		if !b.cart.Write(addr, value) {
			b.log.WithFields(logrus.Fields{
				"addr":  fmt.Sprintf("0x%04X", addr),
				"value": fmt.Sprintf("0x%02X", value),
			}).Trace("ignored ROM write")
		}

	case addr < 0xA000:
		b.ppu.WriteVRAM(addr-0x8000, value)

	case addr < 0xE000:
		b.wram[addr-0xC000] = value

	case addr < 0xFE00:
		b.wram[addr-0xE000] = value

	case addr < 0xFEA0:
		b.ppu.WriteOAM(addr-0xFE00, value)

	case addr < 0xFF00:
		// Not usable

	case addr < 0xFF80:
		b.writeIO(addr, value)

	case addr < 0xFFFF:
		b.hram[addr-0xFF80] = value

	default:
		b.interrupts.WriteEnable(value)
	}
}

// readIO reads from I/O registers.
func (b *Bus) readIO(addr uint16) uint8 {
	switch addr {
	case input.Register:
		return b.joypad.Read()
	case serial.SB, serial.SC:
		return b.serial.Read(addr)
	case timer.DIV, timer.TIMA, timer.TMA, timer.TAC:
		return b.timer.Read(addr)
	case interrupts.IF:
		return b.interrupts.ReadFlag()
	}
	return b.io[addr-0xFF00]
}

// writeIO writes to I/O registers.
func (b *Bus) writeIO(addr uint16, value uint8) {
	switch addr {
	case input.Register:
		b.joypad.Write(value)
	case serial.SB, serial.SC:
		b.serial.Write(addr, value)
	case timer.DIV, timer.TIMA, timer.TMA, timer.TAC:
		b.timer.Write(addr, value)
	case interrupts.IF:
		b.interrupts.WriteFlag(value)
	case BootDisable:
		b.io[addr-0xFF00] = value
		if b.bootEnabled {
			b.DisableBoot()
		}
	default:
		b.io[addr-0xFF00] = value
	}
}

// Tick advances the timer by the given number of clock ticks.
func (b *Bus) Tick(ticks int) {
	b.timer.Update(ticks)
}

// Interrupts returns the interrupt controller.
func (b *Bus) Interrupts() *interrupts.Controller {
	return b.interrupts
}

// DisableBoot unmaps the boot ROM for the rest of execution.
func (b *Bus) DisableBoot() {
	b.bootEnabled = false
	b.log.Debug("boot ROM disabled")
}

// BootEnabled reports whether the boot ROM is mapped at 0x0000.
func (b *Bus) BootEnabled() bool {
	return b.bootEnabled
}

// Timer returns the timer.
func (b *Bus) Timer() *timer.Timer {
	return b.timer
}

// Serial returns the serial port.
func (b *Bus) Serial() *serial.Port {
	return b.serial
}

// Joypad returns the joypad.
func (b *Bus) Joypad() *input.Joypad {
	return b.joypad
}

// Cartridge returns the mapped cartridge.
func (b *Bus) Cartridge() *cartridge.Static {
	return b.cart
}

// Reset returns every peripheral to its power-on state and maps the boot ROM
// again if one was supplied. The cartridge image is kept.
func (b *Bus) Reset() {
	clear(b.wram[:])
	clear(b.io[:])
	clear(b.hram[:])
	b.io[LY-0xFF00] = lyAtBoot

	b.cart.ResetRAM()
	b.ppu.Reset()
	b.joypad.Reset()
	b.serial.Reset()
	b.timer.Reset()
	b.interrupts.WriteFlag(0)
	b.interrupts.WriteEnable(0)

	b.bootEnabled = b.hasBoot
}
