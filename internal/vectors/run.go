package vectors

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/richardwooding/dmgcore/internal/cpu"
	"github.com/richardwooding/dmgcore/internal/romfile"
	"github.com/sirupsen/logrus"
)

// Result is the outcome of one case.
type Result struct {
	Name       string
	Mismatches []string
	Err        error
}

// Passed reports whether the case matched exactly.
func (r Result) Passed() bool {
	return r.Err == nil && len(r.Mismatches) == 0
}

func (r Result) String() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s: %v", r.Name, r.Err)
	case len(r.Mismatches) > 0:
		return fmt.Sprintf("%s: %s", r.Name, strings.Join(r.Mismatches, "; "))
	}
	return r.Name + ": ok"
}

// Run executes one step from the case's initial state and compares the
// outcome with its final state and cycle list.
func Run(c Case, log logrus.FieldLogger) Result {
	bus := newFlatBus()
	for _, entry := range c.Initial.RAM {
		bus.poke(entry.Address, entry.Value)
	}
	if c.Initial.IE != nil {
		bus.interrupts.WriteEnable(*c.Initial.IE)
	}

	core := cpu.New(bus, log)
	in := c.Initial
	r := core.Registers
	r.A, r.B, r.C, r.D, r.E, r.H, r.L = in.A, in.B, in.C, in.D, in.E, in.H, in.L
	r.F = in.F & 0xF0
	r.PC, r.SP = in.PC, in.SP
	core.IME = in.IME != 0

	result := Result{Name: c.Name}
	ticks, err := core.Step()
	if err != nil {
		result.Err = err
		return result
	}

	m := &result.Mismatches
	want := c.Final
	check8 := func(name string, got, want uint8) {
		if got != want {
			*m = append(*m, fmt.Sprintf("%s = 0x%02X, want 0x%02X", name, got, want))
		}
	}
	check16 := func(name string, got, want uint16) {
		if got != want {
			*m = append(*m, fmt.Sprintf("%s = 0x%04X, want 0x%04X", name, got, want))
		}
	}

	check8("A", r.A, want.A)
	check8("F", r.F, want.F)
	check8("B", r.B, want.B)
	check8("C", r.C, want.C)
	check8("D", r.D, want.D)
	check8("E", r.E, want.E)
	check8("H", r.H, want.H)
	check8("L", r.L, want.L)
	check16("PC", r.PC, want.PC)
	check16("SP", r.SP, want.SP)

	var ime uint8
	if core.IME {
		ime = 1
	}
	check8("IME", ime, want.IME)
	if want.IE != nil {
		check8("IE", bus.interrupts.ReadEnable(), *want.IE)
	}
	for _, entry := range want.RAM {
		check8(fmt.Sprintf("RAM[0x%04X]", entry.Address), bus.peek(entry.Address), entry.Value)
	}

	if ticks != len(c.Cycles)*4 {
		*m = append(*m, fmt.Sprintf("ticks = %d, want %d", ticks, len(c.Cycles)*4))
	}
	for i := 0; i < len(c.Cycles) && i < len(bus.cycles); i++ {
		if bus.cycles[i] != c.Cycles[i] {
			*m = append(*m, fmt.Sprintf("cycle %d = %s, want %s", i, bus.cycles[i], c.Cycles[i]))
		}
	}

	return result
}

// RunFile parses and runs every case in a vector file. Compressed files are
// unpacked by extension.
func RunFile(path string, log logrus.FieldLogger) ([]Result, error) {
	data, err := romfile.Load(path)
	if err != nil {
		return nil, err
	}
	cases, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	results := make([]Result, 0, len(cases))
	for _, c := range cases {
		results = append(results, Run(c, log))
	}
	return results, nil
}

// Collect expands directories into the vector files they contain, in lexical
// order. Plain files are returned as given.
func Collect(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		err := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if path == p || isVectorFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func isVectorFile(path string) bool {
	name := strings.ToLower(path)
	for _, ext := range []string{".json", ".json.gz", ".json.xz"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
