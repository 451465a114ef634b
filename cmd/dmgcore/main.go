// Package main provides the dmgcore CLI application.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/richardwooding/dmgcore/internal/cartridge"
	"github.com/richardwooding/dmgcore/internal/cpu"
	"github.com/richardwooding/dmgcore/internal/emulator"
	"github.com/richardwooding/dmgcore/internal/input"
	"github.com/richardwooding/dmgcore/internal/logging"
	"github.com/richardwooding/dmgcore/internal/romfile"
	"github.com/richardwooding/dmgcore/internal/testrom"
	"github.com/richardwooding/dmgcore/internal/vectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

var (
	// ErrTestFailed indicates a test ROM failed.
	ErrTestFailed = errors.New("test failed")

	// ErrVectorsFailed indicates at least one vector case did not match.
	ErrVectorsFailed = errors.New("vector cases failed")

	// ErrInvalidAddress indicates an address flag that is not a 16-bit value.
	ErrInvalidAddress = errors.New("invalid address")
)

// Globals are the flags shared by every command.
type Globals struct {
	LogLevel  string `help:"Log level (trace, debug, info, warn, error)." default:"warn" env:"DMGCORE_LOG_LEVEL"`
	LogFormat string `help:"Log format." enum:"text,json" default:"text" env:"DMGCORE_LOG_FORMAT"`

	stdout io.Writer
	logger *logrus.Logger
}

// AfterApply builds the logger once flags are parsed.
func (g *Globals) AfterApply() error {
	l, err := logging.New(logging.Options{
		Level:  g.LogLevel,
		Format: g.LogFormat,
		Output: os.Stderr,
		Color:  term.IsTerminal(int(os.Stderr.Fd())), //nolint:gosec // G115: fd fits in int
	})
	if err != nil {
		return err
	}
	g.logger = l
	if g.stdout == nil {
		g.stdout = os.Stdout
	}
	return nil
}

// CLI represents the command-line interface structure.
type CLI struct {
	Globals

	Run     RunCmd     `cmd:"" help:"Run a ROM headless."`
	Test    TestCmd    `cmd:"" help:"Run a test ROM and report results."`
	Info    InfoCmd    `cmd:"" help:"Display cartridge information."`
	Vectors VectorsCmd `cmd:"" help:"Check the CPU against single-step test vectors."`
	Disasm  DisasmCmd  `cmd:"" help:"Disassemble ROM contents."`
}

// address is a 16-bit flag value written in hex ("0x0150", "$150") or decimal.
type address uint16

func (a *address) UnmarshalText(text []byte) error {
	s := string(text)
	base := 10
	switch {
	case len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X"):
		s, base = s[2:], 16
	case len(s) > 1 && s[0] == '$':
		s, base = s[1:], 16
	}
	v, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, text)
	}
	*a = address(v)
	return nil
}

func loadBoot(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	boot, err := romfile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read boot ROM: %w", err)
	}
	return boot, nil
}

// RunCmd runs a ROM without a display.
type RunCmd struct {
	ROM        string   `arg:"" type:"existingfile" help:"Path to ROM file."`
	Boot       string   `type:"existingfile" help:"Boot ROM image (256 bytes). Without it execution starts at 0x0100."`
	Until      string   `help:"Stop when PC reaches this address (hex or decimal)."`
	MaxCycles  uint64   `help:"Tick budget; 0 means unlimited when --until is set." default:"70224000"`
	Press      []string `help:"Buttons held down for the whole run (a, b, select, start, up, down, left, right)."`
	Serial     bool     `help:"Echo serial output to stdout."`
	Digest     bool     `help:"Print a state digest when the run ends."`
	Trace      string   `type:"path" help:"Write a per-instruction register trace to this file once the boot ROM is unmapped."`
	TraceTimer bool     `help:"Append TIMA and IF to each trace line."`
}

// Run executes the run command.
func (c *RunCmd) Run(g *Globals) error {
	data, err := romfile.Load(c.ROM)
	if err != nil {
		return fmt.Errorf("failed to read ROM: %w", err)
	}
	boot, err := loadBoot(c.Boot)
	if err != nil {
		return err
	}

	cfg := emulator.Config{Logger: g.logger, TraceTimer: c.TraceTimer}
	if c.Serial {
		cfg.SerialOutput = g.stdout
	}
	if c.Trace != "" {
		f, err := os.Create(c.Trace)
		if err != nil {
			return fmt.Errorf("failed to create trace file: %w", err)
		}
		defer f.Close()
		w := bufio.NewWriter(f)
		defer w.Flush()
		cfg.Trace = w
	}
	emu, err := emulator.New(boot, data, cfg)
	if err != nil {
		return fmt.Errorf("failed to create emulator: %w", err)
	}

	for _, name := range c.Press {
		b, err := input.ParseButton(name)
		if err != nil {
			return err
		}
		emu.Memory.Joypad().Press(b)
	}

	start := time.Now()
	if c.Until != "" {
		var pc address
		if err := pc.UnmarshalText([]byte(c.Until)); err != nil {
			return err
		}
		err = emu.RunUntil(uint16(pc), c.MaxCycles)
	} else {
		err = emu.RunCycles(c.MaxCycles)
	}
	g.logger.WithFields(logrus.Fields{
		"ticks":   emu.CPU.Cycles,
		"pc":      fmt.Sprintf("0x%04X", emu.CPU.Registers.PC),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("run finished")
	if err != nil {
		return err
	}

	if c.Digest {
		fmt.Fprintf(g.stdout, "%016x\n", emu.Digest())
	}
	return nil
}

// TestCmd runs a test ROM and reports results.
type TestCmd struct {
	ROM     string `arg:"" type:"existingfile" help:"Path to test ROM file."`
	Boot    string `type:"existingfile" help:"Boot ROM image to run first."`
	Timeout int    `default:"30" help:"Timeout in seconds."`
	Verbose bool   `short:"v" help:"Show detailed output."`
}

// Run executes the test command.
func (c *TestCmd) Run(g *Globals) error {
	fmt.Fprintf(g.stdout, "Running test ROM: %s\n", c.ROM)

	timeout := time.Duration(c.Timeout) * time.Second
	result := testrom.Run(c.ROM, testrom.Options{
		BootPath: c.Boot,
		Timeout:  timeout,
		Logger:   g.logger,
	})

	fmt.Fprintf(g.stdout, "Result: %s\n", result.String())

	if c.Verbose || !result.IsSuccess() {
		fmt.Fprintf(g.stdout, "\nOutput:\n%s\n", result.Output)
	}

	if !result.IsSuccess() {
		return ErrTestFailed
	}

	return nil
}

// InfoCmd displays cartridge header information.
type InfoCmd struct {
	ROM string `arg:"" type:"existingfile" help:"Path to ROM file."`
}

// Run executes the info command.
func (c *InfoCmd) Run(g *Globals) error {
	data, err := romfile.Load(c.ROM)
	if err != nil {
		return fmt.Errorf("failed to read ROM: %w", err)
	}

	cart := cartridge.New(data)
	header, err := cart.Header()
	if err != nil {
		return fmt.Errorf("failed to parse header: %w", err)
	}

	fmt.Fprintf(g.stdout, "ROM Information:\n%s", header)
	fmt.Fprintf(g.stdout, "Image:     %d bytes\n", cart.Size())
	if header.Type.Banked() {
		fmt.Fprintf(g.stdout, "Warning: %s needs a bank controller; only the first two banks are mapped\n", header.Type)
	}
	if cart.Truncated() {
		fmt.Fprintf(g.stdout, "Warning: image is larger than 32 KiB and was truncated\n")
	}
	return nil
}

// VectorsCmd runs single-step vector files.
type VectorsCmd struct {
	Paths   []string `arg:"" type:"existingpath" help:"Vector files or directories of them."`
	Verbose bool     `short:"v" help:"List every case, not only failures."`
}

// Run executes the vectors command.
func (c *VectorsCmd) Run(g *Globals) error {
	files, err := vectors.Collect(c.Paths)
	if err != nil {
		return err
	}

	var passed, failed int
	for _, file := range files {
		results, err := vectors.RunFile(file, g.logger)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Passed() {
				passed++
				if c.Verbose {
					fmt.Fprintf(g.stdout, "PASS %s\n", r.Name)
				}
				continue
			}
			failed++
			fmt.Fprintf(g.stdout, "FAIL %s\n", r)
		}
	}

	fmt.Fprintf(g.stdout, "%d passed, %d failed in %d files\n", passed, failed, len(files))
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrVectorsFailed, failed, passed+failed)
	}
	return nil
}

// DisasmCmd disassembles a range of a ROM image.
type DisasmCmd struct {
	ROM   string  `arg:"" type:"existingfile" help:"Path to ROM file."`
	Start address `help:"First address." default:"0x0100"`
	Count int     `help:"Number of instructions." default:"32"`
}

// Run executes the disasm command.
func (c *DisasmCmd) Run(g *Globals) error {
	data, err := romfile.Load(c.ROM)
	if err != nil {
		return fmt.Errorf("failed to read ROM: %w", err)
	}
	cart := cartridge.New(data)

	pc := uint16(c.Start)
	for range c.Count {
		line, err := cpu.Disassemble(cart.Read, pc)
		if err != nil && !errors.Is(err, cpu.ErrInvalidOpcode) {
			return err
		}
		fmt.Fprintln(g.stdout, line)
		pc += uint16(len(line.Bytes)) //nolint:gosec // G115: at most 3
	}
	return nil
}

func newParser(cli *CLI, opts ...kong.Option) (*kong.Kong, error) {
	opts = append([]kong.Option{
		kong.Name("dmgcore"),
		kong.Description("A headless Game Boy (DMG) CPU core and test harness."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
	}, opts...)
	return kong.New(cli, opts...)
}

func main() {
	cli := &CLI{}
	parser, err := newParser(cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
