package input

import (
	"testing"

	"github.com/richardwooding/dmgcore/internal/interrupts"
)

func TestJoypadReadNothingPressed(t *testing.T) {
	j := New(nil)

	if got := j.Read(); got != 0xFF {
		t.Errorf("Read() = 0x%02X, want 0xFF", got)
	}
}

func TestJoypadRead(t *testing.T) {
	tests := []struct {
		name    string
		sel     uint8
		pressed Button
		want    uint8
	}{
		{"action A", 0xDF, A, 0xDE},
		{"action A B Start", 0xDF, A | B | Start, 0xD4},
		{"direction up", 0xEF, Up, 0xEB},
		{"direction down right", 0xEF, Down | Right, 0xE6},
		{"action group ignores directions", 0xDF, Up | Left, 0xDF},
		{"direction group ignores actions", 0xEF, A | Select, 0xEF},
		{"nothing selected", 0xFF, A | Up, 0xFF},
		{"both selected", 0xCF, A | Up, 0xCA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := New(nil)
			j.Write(tt.sel)
			j.Press(tt.pressed)
			if got := j.Read(); got != tt.want {
				t.Errorf("Read() = 0x%02X, want 0x%02X", got, tt.want)
			}
		})
	}
}

func TestOppositeDirections(t *testing.T) {
	j := New(nil)

	j.Press(Up)
	j.Press(Down)
	if j.Pressed() != Up {
		t.Errorf("Pressed() = %08b, want only Up", j.Pressed())
	}

	j.Release(Up)
	j.Press(Down)
	if j.Pressed() != Down {
		t.Errorf("Pressed() = %08b, want only Down", j.Pressed())
	}

	j.Press(Right)
	j.Press(Left)
	if j.Pressed() != Down|Right {
		t.Errorf("Pressed() = %08b, want Down|Right", j.Pressed())
	}
}

func TestJoypadInterrupt(t *testing.T) {
	ic := interrupts.New()
	j := New(ic)

	j.Press(Start)
	if !ic.Pending.Has(interrupts.Joypad) {
		t.Fatal("joypad interrupt not requested on press")
	}

	ic.Acknowledge(interrupts.Joypad)
	j.Press(Start)
	if ic.Pending.Has(interrupts.Joypad) {
		t.Error("interrupt requested for a button already held")
	}

	j.Release(Start)
	if ic.Pending.Has(interrupts.Joypad) {
		t.Error("interrupt requested on release")
	}
}

func TestParseButton(t *testing.T) {
	for name, want := range map[string]Button{"A": A, "start": Start, "Left": Left} {
		got, err := ParseButton(name)
		if err != nil || got != want {
			t.Errorf("ParseButton(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	if _, err := ParseButton("turbo"); err == nil {
		t.Error("ParseButton(turbo) returned no error")
	}
}

func TestReset(t *testing.T) {
	j := New(nil)
	j.Write(0xCF)
	j.Press(A | Up)

	j.Reset()

	if j.Pressed() != 0 || j.Read() != 0xFF {
		t.Errorf("after Reset: Pressed() = %08b, Read() = 0x%02X", j.Pressed(), j.Read())
	}
}
