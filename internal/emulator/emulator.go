// Package emulator ties the CPU to the memory bus and drives it.
package emulator

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/richardwooding/dmgcore/internal/cpu"
	"github.com/richardwooding/dmgcore/internal/logging"
	"github.com/richardwooding/dmgcore/internal/memory"
	"github.com/sirupsen/logrus"
)

var (
	// ErrTimeout indicates the operation timed out.
	ErrTimeout = errors.New("timeout waiting for serial output")

	// ErrCycleLimit indicates a run stopped at its tick budget.
	ErrCycleLimit = errors.New("cycle limit reached")
)

// batchTicks is how far RunUntilOutput runs between output checks.
const batchTicks = 40000

// Config configures an Emulator.
type Config struct {
	// Logger receives diagnostics. Nil discards them.
	Logger logrus.FieldLogger
	// SerialOutput receives every byte sent over the link port.
	SerialOutput io.Writer
	// SkipBoot starts at 0x0100 with the register values the boot ROM
	// leaves behind. It is implied when no boot image is given.
	SkipBoot bool
	// Trace, when set, receives one line of register state after every
	// step once the boot ROM has been unmapped.
	Trace io.Writer
	// TraceTimer appends TIMA and IF to each trace line.
	TraceTimer bool
}

// Emulator represents a DMG instance.
type Emulator struct {
	CPU    *cpu.CPU
	Memory *memory.Bus

	cfg    Config
	log    logrus.FieldLogger
	booted bool
}

// New creates an emulator from a boot image and a cartridge image. boot may
// be nil, in which case execution starts at the cartridge entry point.
func New(boot, rom []byte, cfg Config) (*Emulator, error) {
	cfg.Logger = logging.OrDiscard(cfg.Logger)
	if boot == nil {
		cfg.SkipBoot = true
	}
	if cfg.SkipBoot {
		boot = nil
	}

	bus, err := memory.NewBus(boot, rom,
		memory.WithLogger(cfg.Logger.WithField("component", "bus")),
		memory.WithSerialOutput(cfg.SerialOutput),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory bus: %w", err)
	}

	e := &Emulator{
		Memory: bus,
		cfg:    cfg,
		log:    cfg.Logger,
	}
	e.powerOn()
	return e, nil
}

func (e *Emulator) powerOn() {
	e.CPU = cpu.New(e.Memory, e.log.WithField("component", "cpu"))
	e.booted = !e.Memory.BootEnabled()
	if e.booted {
		e.CPU.Registers = cpu.PostBoot()
	}
}

// Step executes one CPU step and returns the ticks it took.
func (e *Emulator) Step() (int, error) {
	ticks, err := e.CPU.Step()
	if err != nil {
		return ticks, fmt.Errorf("cpu step: %w", err)
	}
	if !e.booted && !e.Memory.BootEnabled() {
		e.booted = true
		e.log.WithField("cycles", e.CPU.Cycles).Info("boot completed")
	}
	if e.booted && e.cfg.Trace != nil {
		if err := e.writeTrace(); err != nil {
			return ticks, fmt.Errorf("write trace: %w", err)
		}
	}
	return ticks, nil
}

// RunCycles runs the emulator for at least the given number of ticks.
func (e *Emulator) RunCycles(ticks uint64) error {
	target := e.CPU.Cycles + ticks
	for e.CPU.Cycles < target {
		if _, err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

// RunUntil steps until PC equals pc at an instruction boundary. A maxTicks of
// zero means no limit.
func (e *Emulator) RunUntil(pc uint16, maxTicks uint64) error {
	start := e.CPU.Cycles
	for e.CPU.Registers.PC != pc {
		if maxTicks != 0 && e.CPU.Cycles-start >= maxTicks {
			return fmt.Errorf("%w: PC=0x%04X after %d ticks", ErrCycleLimit, e.CPU.Registers.PC, e.CPU.Cycles-start)
		}
		if _, err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

// RunUntilOutput runs the emulator until the serial output reports "Passed"
// or "Failed", or until no new output arrives for timeout.
// Returns the serial output and any error.
func (e *Emulator) RunUntilOutput(timeout time.Duration) (string, error) {
	serial := e.Memory.Serial()
	startTime := time.Now()
	lastOutputLen := 0

	for {
		if time.Since(startTime) > timeout {
			if len(serial.Output()) > 0 {
				return e.SerialOutput(), fmt.Errorf("%w: output incomplete", ErrTimeout)
			}
			return "", ErrTimeout
		}

		if err := e.RunCycles(batchTicks); err != nil {
			return e.SerialOutput(), err
		}

		// Reset the timeout on new output
		if n := len(serial.Output()); n > lastOutputLen {
			lastOutputLen = n
			startTime = time.Now()
		}

		if serial.Contains("Passed") || serial.Contains("Failed") {
			return e.SerialOutput(), nil
		}
	}
}

// SerialOutput returns the accumulated serial output.
func (e *Emulator) SerialOutput() string {
	return string(e.Memory.Serial().Output())
}

// Digest hashes the CPU state and the writable address space. Two runs of
// the same images for the same number of steps produce the same digest.
func (e *Emulator) Digest() uint64 {
	h := xxhash.New()
	r := e.CPU.Registers

	var state [16]byte
	state[0], state[1] = r.A, r.F
	state[2], state[3] = r.B, r.C
	state[4], state[5] = r.D, r.E
	state[6], state[7] = r.H, r.L
	binary.LittleEndian.PutUint16(state[8:], r.SP)
	binary.LittleEndian.PutUint16(state[10:], r.PC)
	if e.CPU.IME {
		state[12] = 1
	}
	if e.CPU.Halted() {
		state[13] = 1
	}
	_, _ = h.Write(state[:])

	var cycles [8]byte
	binary.LittleEndian.PutUint64(cycles[:], e.CPU.Cycles)
	_, _ = h.Write(cycles[:])

	mem := make([]byte, 0, 0x8000)
	for addr := 0x8000; addr <= 0xFFFF; addr++ {
		mem = append(mem, e.Memory.Read(uint16(addr))) //nolint:gosec // G115: addr <= 0xFFFF
	}
	_, _ = h.Write(mem)

	return h.Sum64()
}

// Reset returns the emulator to power-on, keeping the loaded images.
func (e *Emulator) Reset() {
	e.Memory.Reset()
	e.powerOn()
}
