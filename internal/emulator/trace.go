package emulator

import (
	"fmt"

	"github.com/richardwooding/dmgcore/internal/interrupts"
	"github.com/richardwooding/dmgcore/internal/timer"
)

// writeTrace emits one line of CPU state in the format used by common
// Game Boy trace comparison tools, followed by the four bytes at PC.
func (e *Emulator) writeTrace() error {
	r := e.CPU.Registers
	_, err := fmt.Fprintf(e.cfg.Trace,
		"A: %02X F: %02X B: %02X C: %02X D: %02X E: %02X H: %02X L: %02X SP: %04X PC: 00:%04X (%02X %02X %02X %02X)",
		r.A, r.F, r.B, r.C, r.D, r.E, r.H, r.L, r.SP, r.PC,
		e.Memory.Read(r.PC), e.Memory.Read(r.PC+1), e.Memory.Read(r.PC+2), e.Memory.Read(r.PC+3),
	)
	if err == nil && e.cfg.TraceTimer {
		_, err = fmt.Fprintf(e.cfg.Trace, ". tima: %08b. if: %08b",
			e.Memory.Read(timer.TIMA), e.Memory.Read(interrupts.IF))
	}
	if err == nil {
		_, err = fmt.Fprintln(e.cfg.Trace)
	}
	return err
}
