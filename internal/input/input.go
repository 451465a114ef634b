// Package input implements the P1/JOYP register.
//
// No host input is wired in. Buttons stay released unless a caller presses
// them through the API, which is how tests and scripted runs drive it.
package input

import (
	"fmt"
	"strings"

	"github.com/richardwooding/dmgcore/internal/interrupts"
)

// Register is the P1/JOYP address.
const Register = 0xFF00

// Button is a set of buttons. The low nibble holds the direction pad and the
// high nibble the action buttons, each in P1 bit order.
type Button uint8

// Buttons.
const (
	Right Button = 1 << iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

var buttonNames = map[string]Button{
	"right": Right, "left": Left, "up": Up, "down": Down,
	"a": A, "b": B, "select": Select, "start": Start,
}

// ParseButton resolves a button name, case-insensitively.
func ParseButton(name string) (Button, error) {
	if b, ok := buttonNames[strings.ToLower(name)]; ok {
		return b, nil
	}
	return 0, fmt.Errorf("unknown button %q", name)
}

// Joypad holds the selection lines and the pressed set.
type Joypad struct {
	selectAction    bool // P15 low
	selectDirection bool // P14 low
	pressed         Button

	interrupts *interrupts.Controller
}

// New creates a joypad with nothing selected or pressed. ic may be nil.
func New(ic *interrupts.Controller) *Joypad {
	return &Joypad{interrupts: ic}
}

// Read returns P1. Bits 7-6 read 1; a pressed button in a selected group
// pulls its line low.
func (j *Joypad) Read() uint8 {
	result := uint8(0xC0)
	if !j.selectAction {
		result |= 0x20
	}
	if !j.selectDirection {
		result |= 0x10
	}

	var low uint8
	if j.selectDirection {
		low |= uint8(j.pressed) & 0x0F
	}
	if j.selectAction {
		low |= uint8(j.pressed) >> 4
	}
	return result | (^low & 0x0F)
}

// Write updates the selection lines. Only bits 5-4 are writable.
func (j *Joypad) Write(value uint8) {
	j.selectAction = value&0x20 == 0
	j.selectDirection = value&0x10 == 0
}

// Press marks buttons as held and requests the joypad interrupt for any
// that were not held already. Opposite directions cannot be held together;
// the one already held wins.
func (j *Joypad) Press(b Button) {
	if j.pressed&Up != 0 {
		b &^= Down
	}
	if j.pressed&Down != 0 {
		b &^= Up
	}
	if j.pressed&Left != 0 {
		b &^= Right
	}
	if j.pressed&Right != 0 {
		b &^= Left
	}

	newly := b &^ j.pressed
	j.pressed |= b
	if newly != 0 && j.interrupts != nil {
		j.interrupts.Request(interrupts.Joypad)
	}
}

// Release marks buttons as released.
func (j *Joypad) Release(b Button) {
	j.pressed &^= b
}

// Pressed returns the held set.
func (j *Joypad) Pressed() Button {
	return j.pressed
}

// Reset releases everything and deselects both groups.
func (j *Joypad) Reset() {
	j.selectAction = false
	j.selectDirection = false
	j.pressed = 0
}
