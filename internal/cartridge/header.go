package cartridge

import (
	"errors"
	"fmt"
	"strings"
)

// Header is the cartridge header at 0x0100-0x014F. It is only read for
// reporting; the static mapping never consults it.
type Header struct {
	Title           string
	CGBFlag         uint8
	SGBFlag         uint8
	Type            Type
	ROMSize         uint8
	RAMSize         uint8
	Destination     uint8
	OldLicensee     uint8
	Version         uint8
	HeaderChecksum  uint8
	GlobalChecksum  uint16
	ChecksumValid   bool // header checksum matches bytes 0x0134-0x014C
	computedCheck   uint8
}

// Type is the cartridge type byte at 0x0147.
type Type uint8

var typeNames = map[Type]string{
	0x00: "ROM ONLY",
	0x01: "MBC1",
	0x02: "MBC1+RAM",
	0x03: "MBC1+RAM+BATTERY",
	0x05: "MBC2",
	0x06: "MBC2+BATTERY",
	0x08: "ROM+RAM",
	0x09: "ROM+RAM+BATTERY",
	0x0B: "MMM01",
	0x0C: "MMM01+RAM",
	0x0D: "MMM01+RAM+BATTERY",
	0x0F: "MBC3+TIMER+BATTERY",
	0x10: "MBC3+TIMER+RAM+BATTERY",
	0x11: "MBC3",
	0x12: "MBC3+RAM",
	0x13: "MBC3+RAM+BATTERY",
	0x19: "MBC5",
	0x1A: "MBC5+RAM",
	0x1B: "MBC5+RAM+BATTERY",
	0x1C: "MBC5+RUMBLE",
	0x1D: "MBC5+RUMBLE+RAM",
	0x1E: "MBC5+RUMBLE+RAM+BATTERY",
	0x20: "MBC6",
	0x22: "MBC7+SENSOR+RUMBLE+RAM+BATTERY",
	0xFC: "POCKET CAMERA",
	0xFD: "BANDAI TAMA5",
	0xFE: "HuC3",
	0xFF: "HuC1+RAM+BATTERY",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN (0x%02X)", uint8(t))
}

// Banked reports whether the type relies on a bank controller. Only the first
// two banks of such cartridges are reachable here.
func (t Type) Banked() bool {
	return t != 0x00 && t != 0x08 && t != 0x09
}

// ErrInvalidROMSize indicates the ROM data is too small to contain a valid header.
var ErrInvalidROMSize = errors.New("ROM too small: must be at least 336 bytes (0x0150)")

// ParseHeader parses the cartridge header from ROM data. A bad header
// checksum is reported through ChecksumValid, not as an error.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < 0x0150 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidROMSize, len(rom))
	}

	h := &Header{
		Title:          strings.TrimRight(string(rom[0x0134:0x0144]), "\x00"),
		CGBFlag:        rom[0x0143],
		SGBFlag:        rom[0x0146],
		Type:           Type(rom[0x0147]),
		ROMSize:        rom[0x0148],
		RAMSize:        rom[0x0149],
		Destination:    rom[0x014A],
		OldLicensee:    rom[0x014B],
		Version:        rom[0x014C],
		HeaderChecksum: rom[0x014D],
		GlobalChecksum: uint16(rom[0x014E])<<8 | uint16(rom[0x014F]),
	}

	// Formula: checksum = 0; for each byte: checksum = checksum - byte - 1.
	for addr := 0x0134; addr <= 0x014C; addr++ {
		h.computedCheck = h.computedCheck - rom[addr] - 1
	}
	h.ChecksumValid = h.computedCheck == h.HeaderChecksum

	// CGB titles are 15 bytes; the last byte is the flag.
	if h.CGBFlag&0x80 != 0 {
		h.Title = strings.TrimRight(string(rom[0x0134:0x0143]), "\x00")
	}

	return h, nil
}

// ROMBanks returns the number of 16 KiB ROM banks declared by the header.
func (h *Header) ROMBanks() int {
	if h.ROMSize <= 0x08 {
		return 2 << h.ROMSize
	}
	return 0
}

// RAMBytes returns the external RAM size declared by the header.
func (h *Header) RAMBytes() int {
	switch h.RAMSize {
	case 0x01:
		return 2 * 1024
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	}
	return 0
}

// String renders the header as aligned key/value lines.
func (h *Header) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title:     %s\n", h.Title)
	fmt.Fprintf(&b, "Type:      %s\n", h.Type)
	fmt.Fprintf(&b, "ROM:       %d KiB (%d banks)\n", h.ROMBanks()*16, h.ROMBanks())
	fmt.Fprintf(&b, "RAM:       %d KiB\n", h.RAMBytes()/1024)
	fmt.Fprintf(&b, "CGB flag:  0x%02X\n", h.CGBFlag)
	fmt.Fprintf(&b, "SGB flag:  0x%02X\n", h.SGBFlag)
	fmt.Fprintf(&b, "Version:   %d\n", h.Version)
	if h.ChecksumValid {
		fmt.Fprintf(&b, "Checksum:  0x%02X (ok)\n", h.HeaderChecksum)
	} else {
		fmt.Fprintf(&b, "Checksum:  0x%02X (want 0x%02X)\n", h.HeaderChecksum, h.computedCheck)
	}
	return b.String()
}
