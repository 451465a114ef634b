package cpu

import (
	"fmt"
	"strings"
)

// Line is one disassembled instruction.
type Line struct {
	Addr  uint16
	Bytes []uint8
	Text  string
}

func (l Line) String() string {
	hex := make([]string, len(l.Bytes))
	for i, b := range l.Bytes {
		hex[i] = fmt.Sprintf("%02X", b)
	}
	return fmt.Sprintf("%04X  %-9s %s", l.Addr, strings.Join(hex, " "), l.Text)
}

// Disassemble decodes the instruction at pc using read for memory access.
// It never executes anything. Unassigned opcodes return an error wrapping
// ErrInvalidOpcode together with a one-byte Line so callers can skip past it.
func Disassemble(read func(uint16) uint8, pc uint16) (Line, error) {
	opcode := read(pc)
	escaped := opcode == Prefix
	if escaped {
		opcode = read(pc + 1)
	}

	inst, err := Decode(opcode, escaped)
	if err != nil {
		line := Line{Addr: pc, Bytes: []uint8{read(pc)}, Text: fmt.Sprintf("DB $%02X", read(pc))}
		return line, &InvalidOpcodeError{Opcode: opcode, Escaped: escaped, PC: pc}
	}

	n := inst.Length()
	raw := make([]uint8, n)
	for i := range raw {
		raw[i] = read(pc + uint16(i)) //nolint:gosec // G115: i < 3
	}

	return Line{Addr: pc, Bytes: raw, Text: substitute(inst.String(), raw, pc)}, nil
}

// substitute replaces the immediate placeholders in a mnemonic with the
// operand bytes that follow the opcode.
func substitute(text string, raw []uint8, pc uint16) string {
	if len(raw) < 2 {
		return text
	}
	n8 := raw[len(raw)-1]
	var n16 uint16
	if len(raw) >= 3 {
		n16 = uint16(raw[2])<<8 | uint16(raw[1])
	}

	switch {
	case strings.Contains(text, "n16"):
		return strings.Replace(text, "n16", fmt.Sprintf("$%04X", n16), 1)
	case strings.Contains(text, "a16"):
		return strings.Replace(text, "a16", fmt.Sprintf("$%04X", n16), 1)
	case strings.Contains(text, "SP+e8"):
		return strings.Replace(text, "e8", fmt.Sprintf("%d", int8(n8)), 1) //nolint:gosec // G115: signed offset
	case strings.HasPrefix(text, "JR"):
		target := pc + uint16(len(raw)) + uint16(int8(n8)) //nolint:gosec // G115: relative target wraps
		return strings.Replace(text, "e8", fmt.Sprintf("$%04X", target), 1)
	case strings.Contains(text, "e8"):
		return strings.Replace(text, "e8", fmt.Sprintf("%d", int8(n8)), 1) //nolint:gosec // G115: signed offset
	case strings.Contains(text, "(a8)"):
		return strings.Replace(text, "(a8)", fmt.Sprintf("($FF%02X)", n8), 1)
	case strings.Contains(text, "n8"):
		return strings.Replace(text, "n8", fmt.Sprintf("$%02X", n8), 1)
	}
	return text
}
