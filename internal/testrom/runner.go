// Package testrom runs test ROMs that report their result over the serial
// port, in the style of Blargg's cpu_instrs and instr_timing suites.
package testrom

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/richardwooding/dmgcore/internal/emulator"
	"github.com/richardwooding/dmgcore/internal/logging"
	"github.com/richardwooding/dmgcore/internal/romfile"
	"github.com/sirupsen/logrus"
)

// Options configures a run.
type Options struct {
	// BootPath is an optional boot image. Without one the ROM starts at 0x0100.
	BootPath string
	Timeout  time.Duration
	// Echo receives serial output as it is produced.
	Echo   io.Writer
	Logger logrus.FieldLogger
}

// Status is the verdict of a run.
type Status int

// Run verdicts.
const (
	Unknown Status = iota // output ended without a verdict
	Passed
	Failed
	TimedOut
	Errored
)

var statusNames = [...]string{"UNKNOWN", "PASSED", "FAILED", "TIMEOUT", "ERROR"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result is the outcome of one test ROM.
type Result struct {
	Status   Status
	Output   string
	Cycles   uint64
	Duration time.Duration
	Error    error
}

// Run loads a test ROM, runs it until it reports a verdict over the serial
// port or stays silent for opts.Timeout, and classifies the output.
func Run(romPath string, opts Options) *Result {
	result := &Result{Status: Errored}

	data, err := romfile.Load(romPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to read ROM: %w", err)
		return result
	}

	var boot []byte
	if opts.BootPath != "" {
		if boot, err = romfile.Load(opts.BootPath); err != nil {
			result.Error = fmt.Errorf("failed to read boot ROM: %w", err)
			return result
		}
	}

	emu, err := emulator.New(boot, data, emulator.Config{
		Logger:       opts.Logger,
		SerialOutput: opts.Echo,
	})
	if err != nil {
		result.Error = fmt.Errorf("failed to create emulator: %w", err)
		return result
	}

	start := time.Now()
	result.Output, err = emu.RunUntilOutput(opts.Timeout)
	result.Duration = time.Since(start)
	result.Cycles = emu.CPU.Cycles

	switch {
	case errors.Is(err, emulator.ErrTimeout):
		result.Status = TimedOut
		result.Error = err
	case err != nil:
		result.Error = err
	default:
		result.Status = classify(result.Output)
	}

	logging.OrDiscard(opts.Logger).WithFields(logrus.Fields{
		"rom":      romPath,
		"status":   result.Status,
		"ticks":    result.Cycles,
		"duration": result.Duration.Round(time.Millisecond),
	}).Info("test rom finished")

	return result
}

// classify reads the verdict from serial output. "Failed" wins when both
// words appear, since suites print "Passed" for earlier subtests.
func classify(output string) Status {
	switch {
	case strings.Contains(output, "Failed"):
		return Failed
	case strings.Contains(output, "Passed"):
		return Passed
	}
	return Unknown
}

func (r *Result) String() string {
	if r.Status == Errored {
		return fmt.Sprintf("ERROR: %v", r.Error)
	}
	return r.Status.String()
}

// IsSuccess reports whether the ROM passed.
func (r *Result) IsSuccess() bool {
	return r.Status == Passed
}
