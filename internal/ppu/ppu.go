// Package ppu holds the video memory of the Picture Processing Unit.
//
// Nothing is rendered. VRAM and OAM are plain byte stores so programs that
// upload tiles and sprites keep running; the LCD registers live in the bus's
// I/O array.
package ppu

const (
	// VRAMSize is the size of VRAM in bytes (8KB).
	VRAMSize = 0x2000
	// OAMSize is the size of OAM in bytes (160 bytes).
	OAMSize = 0xA0
)

// PPU stores VRAM (0x8000-0x9FFF) and OAM (0xFE00-0xFE9F).
type PPU struct {
	vram [VRAMSize]uint8
	oam  [OAMSize]uint8
}

// New creates a PPU with cleared video memory.
func New() *PPU {
	return &PPU{}
}

// ReadVRAM reads from VRAM. addr is relative to 0x8000.
func (p *PPU) ReadVRAM(addr uint16) uint8 {
	if addr >= VRAMSize {
		return 0xFF
	}
	return p.vram[addr]
}

// WriteVRAM writes to VRAM. addr is relative to 0x8000.
func (p *PPU) WriteVRAM(addr uint16, value uint8) {
	if addr < VRAMSize {
		p.vram[addr] = value
	}
}

// ReadOAM reads from OAM. addr is relative to 0xFE00.
func (p *PPU) ReadOAM(addr uint16) uint8 {
	if addr >= OAMSize {
		return 0xFF
	}
	return p.oam[addr]
}

// WriteOAM writes to OAM. addr is relative to 0xFE00.
func (p *PPU) WriteOAM(addr uint16, value uint8) {
	if addr < OAMSize {
		p.oam[addr] = value
	}
}

// Reset clears VRAM and OAM.
func (p *PPU) Reset() {
	clear(p.vram[:])
	clear(p.oam[:])
}
