// Package cartridge maps a cartridge image into the 0x0000-0x7FFF ROM window
// and the 0xA000-0xBFFF external RAM window.
//
// There is no bank controller: bank 0 is fixed at 0x0000 and bank 1 at
// 0x4000. Images shorter than 32 KiB are padded with 0xFF.
package cartridge

const (
	// BankSize is the size of one ROM bank.
	BankSize = 0x4000
	// ROMSize is the mapped ROM window, two banks.
	ROMSize = 2 * BankSize
	// RAMSize is the always-present external RAM.
	RAMSize = 0x2000
)

// Static is a two-bank cartridge with 8 KiB of external RAM.
type Static struct {
	rom   [ROMSize]uint8
	ram   [RAMSize]uint8
	image []byte
}

// New maps the first two banks of image.
func New(image []byte) *Static {
	c := &Static{image: image}
	n := copy(c.rom[:], image)
	for i := n; i < ROMSize; i++ {
		c.rom[i] = 0xFF
	}
	return c
}

// Read reads from ROM (0x0000-0x7FFF) or external RAM (0xA000-0xBFFF).
// Other addresses read 0xFF.
func (c *Static) Read(addr uint16) uint8 {
	switch {
	case addr < ROMSize:
		return c.rom[addr]
	case addr >= 0xA000 && addr < 0xC000:
		return c.ram[addr-0xA000]
	}
	return 0xFF
}

// Write stores to external RAM. It reports false for ROM and other
// addresses, which are not writable.
func (c *Static) Write(addr uint16, value uint8) bool {
	if addr >= 0xA000 && addr < 0xC000 {
		c.ram[addr-0xA000] = value
		return true
	}
	return false
}

// Header parses the header of the original image.
func (c *Static) Header() (*Header, error) {
	return ParseHeader(c.image)
}

// Size returns the length of the original image.
func (c *Static) Size() int {
	return len(c.image)
}

// Truncated reports whether the image has banks beyond the two mapped ones.
func (c *Static) Truncated() bool {
	return len(c.image) > ROMSize
}

// ResetRAM clears external RAM.
func (c *Static) ResetRAM() {
	clear(c.ram[:])
}
