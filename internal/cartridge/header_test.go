package cartridge

import (
	"errors"
	"strings"
	"testing"
)

// buildROM returns a 32 KiB image with a title, type and valid header checksum.
func buildROM(title string, cartType uint8) []byte {
	rom := make([]byte, ROMSize)
	rom[0x0100] = 0x00 // NOP
	rom[0x0101] = 0xC3 // JP $0150
	rom[0x0102] = 0x50
	rom[0x0103] = 0x01
	copy(rom[0x0134:], title)
	rom[0x0147] = cartType
	rom[0x014A] = 0x01
	rom[0x014B] = 0x33

	checksum := byte(0)
	for addr := 0x0134; addr <= 0x014C; addr++ {
		checksum = checksum - rom[addr] - 1
	}
	rom[0x014D] = checksum
	return rom
}

func TestParseHeader(t *testing.T) {
	rom := buildROM("TETRIS", 0x00)

	header, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}

	if header.Title != "TETRIS" {
		t.Errorf("Title = %q, want %q", header.Title, "TETRIS")
	}
	if header.Type != 0x00 {
		t.Errorf("Type = 0x%02X, want 0x00", uint8(header.Type))
	}
	if header.Destination != 0x01 {
		t.Errorf("Destination = 0x%02X, want 0x01", header.Destination)
	}
	if !header.ChecksumValid {
		t.Error("ChecksumValid = false, want true")
	}
}

func TestParseHeaderTooSmall(t *testing.T) {
	_, err := ParseHeader(make([]byte, 0x0100))
	if !errors.Is(err, ErrInvalidROMSize) {
		t.Errorf("ParseHeader() error = %v, want error wrapping %v", err, ErrInvalidROMSize)
	}
}

func TestHeaderChecksumMismatch(t *testing.T) {
	rom := buildROM("TEST", 0x00)
	rom[0x014D]++

	header, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v, a bad checksum is not fatal", err)
	}
	if header.ChecksumValid {
		t.Error("ChecksumValid = true, want false")
	}
	if !strings.Contains(header.String(), "want 0x") {
		t.Errorf("String() does not report the expected checksum:\n%s", header.String())
	}
}

func TestCGBTitle(t *testing.T) {
	rom := buildROM("POKEMON CRYSTAL", 0x10)
	rom[0x0143] = 0xC0

	header, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	if header.Title != "POKEMON CRYSTAL" {
		t.Errorf("Title = %q, want %q", header.Title, "POKEMON CRYSTAL")
	}
}

func TestROMBanks(t *testing.T) {
	tests := []struct {
		romSize byte
		want    int
	}{
		{0x00, 2},
		{0x01, 4},
		{0x05, 64},
		{0x08, 512},
		{0x09, 0},
		{0xFF, 0},
	}

	for _, tt := range tests {
		h := &Header{ROMSize: tt.romSize}
		if got := h.ROMBanks(); got != tt.want {
			t.Errorf("ROMBanks() with ROMSize=0x%02X = %d, want %d", tt.romSize, got, tt.want)
		}
	}
}

func TestRAMBytes(t *testing.T) {
	tests := []struct {
		ramSize byte
		want    int
	}{
		{0x00, 0},
		{0x01, 2048},
		{0x02, 8192},
		{0x03, 32768},
		{0x04, 131072},
		{0x05, 65536},
		{0x06, 0},
	}

	for _, tt := range tests {
		h := &Header{RAMSize: tt.ramSize}
		if got := h.RAMBytes(); got != tt.want {
			t.Errorf("RAMBytes() with RAMSize=0x%02X = %d, want %d", tt.ramSize, got, tt.want)
		}
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		cartType Type
		want     string
	}{
		{0x00, "ROM ONLY"},
		{0x01, "MBC1"},
		{0x03, "MBC1+RAM+BATTERY"},
		{0x13, "MBC3+RAM+BATTERY"},
		{0x19, "MBC5"},
		{0xAB, "UNKNOWN (0xAB)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.cartType.String(); got != tt.want {
				t.Errorf("Type(0x%02X).String() = %q, want %q", uint8(tt.cartType), got, tt.want)
			}
		})
	}
}

func TestTypeBanked(t *testing.T) {
	for _, typ := range []Type{0x00, 0x08, 0x09} {
		if typ.Banked() {
			t.Errorf("Type(0x%02X).Banked() = true, want false", uint8(typ))
		}
	}
	for _, typ := range []Type{0x01, 0x05, 0x13, 0x19} {
		if !typ.Banked() {
			t.Errorf("Type(0x%02X).Banked() = false, want true", uint8(typ))
		}
	}
}
