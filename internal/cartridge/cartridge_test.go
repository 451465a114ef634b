package cartridge

import "testing"

func TestStaticMapsTwoBanks(t *testing.T) {
	image := make([]byte, 4*BankSize)
	for bank := 0; bank < 4; bank++ {
		image[bank*BankSize] = uint8(bank + 1)
	}

	c := New(image)

	if got := c.Read(0x0000); got != 0x01 {
		t.Errorf("Read(0x0000) = %02X, want 01", got)
	}
	if got := c.Read(0x4000); got != 0x02 {
		t.Errorf("Read(0x4000) = %02X, want 02", got)
	}
	if !c.Truncated() {
		t.Error("Truncated() = false for a four-bank image")
	}
	if c.Size() != len(image) {
		t.Errorf("Size() = %d, want %d", c.Size(), len(image))
	}
}

func TestStaticPadsShortImage(t *testing.T) {
	c := New([]byte{0x3E, 0x42})

	if got := c.Read(0x0001); got != 0x42 {
		t.Errorf("Read(0x0001) = %02X, want 42", got)
	}
	for _, addr := range []uint16{0x0002, 0x3FFF, 0x4000, 0x7FFF} {
		if got := c.Read(addr); got != 0xFF {
			t.Errorf("Read(0x%04X) = %02X, want FF", addr, got)
		}
	}
	if c.Truncated() {
		t.Error("Truncated() = true for a short image")
	}
}

func TestStaticIgnoresROMWrites(t *testing.T) {
	c := New(buildROM("TEST", 0x00))

	for _, addr := range []uint16{0x0000, 0x2000, 0x4000, 0x7FFF} {
		before := c.Read(addr)
		if c.Write(addr, 0x5A) {
			t.Errorf("Write(0x%04X) accepted a ROM write", addr)
		}
		if got := c.Read(addr); got != before {
			t.Errorf("Read(0x%04X) = %02X after write, want %02X", addr, got, before)
		}
	}
}

func TestStaticExternalRAM(t *testing.T) {
	c := New(nil)

	if !c.Write(0xA000, 0x11) || !c.Write(0xBFFF, 0x22) {
		t.Fatal("Write() rejected external RAM")
	}
	if got := c.Read(0xA000); got != 0x11 {
		t.Errorf("Read(0xA000) = %02X, want 11", got)
	}
	if got := c.Read(0xBFFF); got != 0x22 {
		t.Errorf("Read(0xBFFF) = %02X, want 22", got)
	}

	c.ResetRAM()
	if got := c.Read(0xA000); got != 0x00 {
		t.Errorf("Read(0xA000) after ResetRAM = %02X, want 00", got)
	}
}

func TestStaticHeader(t *testing.T) {
	c := New(buildROM("DMGCORE", 0x01))

	h, err := c.Header()
	if err != nil {
		t.Fatalf("Header() error = %v", err)
	}
	if h.Title != "DMGCORE" || h.Type != 0x01 {
		t.Errorf("Header() = %q/%s, want DMGCORE/MBC1", h.Title, h.Type)
	}

	if _, err := New(nil).Header(); err == nil {
		t.Error("Header() on an empty image returned no error")
	}
}
