package cpu

import "fmt"

// Operand selects the source or destination of an 8-bit operation. The first
// eight values follow the opcode encoding (B C D E H L (HL) A).
type Operand uint8

// 8-bit operands.
const (
	RegB Operand = iota
	RegC
	RegD
	RegE
	RegH
	RegL
	MemHL // (HL)
	RegA

	Imm8     // n8
	MemBC    // (BC)
	MemDE    // (DE)
	MemHLI   // (HL+)
	MemHLD   // (HL-)
	MemAbs   // (a16)
	MemHigh  // (0xFF00 + a8)
	MemHighC // (0xFF00 + C)
)

var operandNames = [...]string{
	"B", "C", "D", "E", "H", "L", "(HL)", "A",
	"n8", "(BC)", "(DE)", "(HL+)", "(HL-)", "(a16)", "(a8)", "(C)",
}

func (o Operand) String() string {
	if int(o) < len(operandNames) {
		return operandNames[o]
	}
	return fmt.Sprintf("Operand(%d)", uint8(o))
}

// width returns the number of immediate bytes the operand consumes.
func (o Operand) width() int {
	switch o {
	case Imm8, MemHigh:
		return 1
	case MemAbs:
		return 2
	}
	return 0
}

// Pair selects a 16-bit register pair.
type Pair uint8

// 16-bit register pairs.
const (
	PairBC Pair = iota
	PairDE
	PairHL
	PairSP
	PairAF
)

var pairNames = [...]string{"BC", "DE", "HL", "SP", "AF"}

func (p Pair) String() string {
	if int(p) < len(pairNames) {
		return pairNames[p]
	}
	return fmt.Sprintf("Pair(%d)", uint8(p))
}

// Cond is a branch condition.
type Cond uint8

// Branch conditions.
const (
	Always Cond = iota
	NotZero
	Zero
	NotCarry
	Carry
)

var condNames = [...]string{"", "NZ", "Z", "NC", "C"}

func (c Cond) String() string {
	if int(c) < len(condNames) {
		return condNames[c]
	}
	return fmt.Sprintf("Cond(%d)", uint8(c))
}

// Holds reports whether the condition is met by the flags in f.
func (c Cond) Holds(f uint8) bool {
	switch c {
	case NotZero:
		return f&FlagZ == 0
	case Zero:
		return f&FlagZ != 0
	case NotCarry:
		return f&FlagC == 0
	case Carry:
		return f&FlagC != 0
	}
	return true
}

// ALUOp is an 8-bit accumulator operation, in opcode encoding order.
type ALUOp uint8

// Accumulator operations.
const (
	OpAdd ALUOp = iota
	OpAdc
	OpSub
	OpSbc
	OpAnd
	OpXor
	OpOr
	OpCp
)

var aluNames = [...]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

// ShiftOp is a rotate or shift operation, in escaped opcode encoding order.
type ShiftOp uint8

// Rotate and shift operations.
const (
	OpRLC ShiftOp = iota
	OpRRC
	OpRL
	OpRR
	OpSLA
	OpSRA
	OpSwap
	OpSRL
)

var shiftNames = [...]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

func (s ShiftOp) String() string {
	if int(s) < len(shiftNames) {
		return shiftNames[s]
	}
	return fmt.Sprintf("ShiftOp(%d)", uint8(s))
}

// Instruction is a decoded opcode. The set of implementations is closed; every
// variant is a plain value type with no behaviour beyond formatting.
type Instruction interface {
	fmt.Stringer

	// Length is the encoded size in bytes, including the 0xCB prefix.
	Length() int

	execute(c *CPU)
}

// Control instructions.
type (
	// Nop does nothing.
	Nop struct{}
	// Halt suspends execution until an interrupt is pending.
	Halt struct{}
	// Stop parks the CPU like Halt. It carries one padding byte.
	Stop struct{}
	// DisableInterrupts clears IME immediately.
	DisableInterrupts struct{}
	// EnableInterrupts sets IME after the following instruction.
	EnableInterrupts struct{}
)

// Accumulator and flag instructions.
type (
	// ALU combines A with Src.
	ALU struct {
		Op  ALUOp
		Src Operand
	}
	// DecimalAdjust corrects A after a BCD add or subtract.
	DecimalAdjust struct{}
	// Complement inverts A.
	Complement struct{}
	// SetCarry sets the carry flag.
	SetCarry struct{}
	// ComplementCarry inverts the carry flag.
	ComplementCarry struct{}
	// RotateA is one of RLCA, RRCA, RLA, RRA. Unlike the escaped forms it
	// always clears Z.
	RotateA struct{ Op ShiftOp }
)

// Increment and decrement.
type (
	Inc   struct{ Dst Operand }
	Dec   struct{ Dst Operand }
	Inc16 struct{ Pair Pair }
	Dec16 struct{ Pair Pair }
)

// 16-bit arithmetic.
type (
	// AddHL adds a pair to HL.
	AddHL struct{ Src Pair }
	// AddSP adds a signed immediate to SP.
	AddSP struct{}
	// LoadHLSP loads SP plus a signed immediate into HL.
	LoadHLSP struct{}
)

// Escaped (0xCB) instructions.
type (
	Shift struct {
		Op  ShiftOp
		Dst Operand
	}
	TestBit struct {
		Index uint8
		Src   Operand
	}
	ResetBit struct {
		Index uint8
		Dst   Operand
	}
	SetBit struct {
		Index uint8
		Dst   Operand
	}
)

// Control flow.
type (
	Jump            struct{ Cond Cond }
	JumpHL          struct{}
	JumpRelative    struct{ Cond Cond }
	Call            struct{ Cond Cond }
	Return          struct{ Cond Cond }
	ReturnInterrupt struct{}
	Restart         struct{ Vector uint16 }
)

// Loads and stack.
type (
	// Load copies an 8-bit value from Src to Dst.
	Load struct {
		Dst Operand
		Src Operand
	}
	// Load16 loads an immediate word into a pair.
	Load16 struct{ Dst Pair }
	// StoreSP writes SP to an absolute address.
	StoreSP struct{}
	// LoadSPHL copies HL into SP.
	LoadSPHL struct{}
	Push     struct{ Src Pair }
	Pop      struct{ Dst Pair }
)

func (Nop) Length() int               { return 1 }
func (Halt) Length() int              { return 1 }
func (Stop) Length() int              { return 2 }
func (DisableInterrupts) Length() int { return 1 }
func (EnableInterrupts) Length() int  { return 1 }
func (i ALU) Length() int             { return 1 + i.Src.width() }
func (DecimalAdjust) Length() int     { return 1 }
func (Complement) Length() int        { return 1 }
func (SetCarry) Length() int          { return 1 }
func (ComplementCarry) Length() int   { return 1 }
func (RotateA) Length() int           { return 1 }
func (Inc) Length() int               { return 1 }
func (Dec) Length() int               { return 1 }
func (Inc16) Length() int             { return 1 }
func (Dec16) Length() int             { return 1 }
func (AddHL) Length() int             { return 1 }
func (AddSP) Length() int             { return 2 }
func (LoadHLSP) Length() int          { return 2 }
func (Shift) Length() int             { return 2 }
func (TestBit) Length() int           { return 2 }
func (ResetBit) Length() int          { return 2 }
func (SetBit) Length() int            { return 2 }
func (Jump) Length() int              { return 3 }
func (JumpHL) Length() int            { return 1 }
func (JumpRelative) Length() int      { return 2 }
func (Call) Length() int              { return 3 }
func (Return) Length() int            { return 1 }
func (ReturnInterrupt) Length() int   { return 1 }
func (Restart) Length() int           { return 1 }
func (i Load) Length() int            { return 1 + i.Dst.width() + i.Src.width() }
func (Load16) Length() int            { return 3 }
func (StoreSP) Length() int           { return 3 }
func (LoadSPHL) Length() int          { return 1 }
func (Push) Length() int              { return 1 }
func (Pop) Length() int               { return 1 }

// Mnemonics use n8, n16, e8, a8 and a16 as immediate placeholders; the
// disassembler substitutes the actual operand bytes.

func (Nop) String() string               { return "NOP" }
func (Halt) String() string              { return "HALT" }
func (Stop) String() string              { return "STOP" }
func (DisableInterrupts) String() string { return "DI" }
func (EnableInterrupts) String() string  { return "EI" }
func (i ALU) String() string             { return aluNames[i.Op&7] + i.Src.String() }
func (DecimalAdjust) String() string     { return "DAA" }
func (Complement) String() string        { return "CPL" }
func (SetCarry) String() string          { return "SCF" }
func (ComplementCarry) String() string   { return "CCF" }
func (i RotateA) String() string         { return i.Op.String() + "A" }
func (i Inc) String() string             { return "INC " + i.Dst.String() }
func (i Dec) String() string             { return "DEC " + i.Dst.String() }
func (i Inc16) String() string           { return "INC " + i.Pair.String() }
func (i Dec16) String() string           { return "DEC " + i.Pair.String() }
func (i AddHL) String() string           { return "ADD HL," + i.Src.String() }
func (AddSP) String() string             { return "ADD SP,e8" }
func (LoadHLSP) String() string          { return "LD HL,SP+e8" }
func (i Shift) String() string           { return i.Op.String() + " " + i.Dst.String() }
func (i TestBit) String() string         { return fmt.Sprintf("BIT %d,%s", i.Index, i.Src) }
func (i ResetBit) String() string        { return fmt.Sprintf("RES %d,%s", i.Index, i.Dst) }
func (i SetBit) String() string          { return fmt.Sprintf("SET %d,%s", i.Index, i.Dst) }
func (i Jump) String() string            { return branch("JP", i.Cond, "a16") }
func (JumpHL) String() string            { return "JP HL" }
func (i JumpRelative) String() string    { return branch("JR", i.Cond, "e8") }
func (i Call) String() string            { return branch("CALL", i.Cond, "a16") }
func (ReturnInterrupt) String() string   { return "RETI" }
func (i Restart) String() string         { return fmt.Sprintf("RST $%02X", i.Vector) }
func (i Load16) String() string          { return "LD " + i.Dst.String() + ",n16" }
func (StoreSP) String() string           { return "LD (a16),SP" }
func (LoadSPHL) String() string          { return "LD SP,HL" }
func (i Push) String() string            { return "PUSH " + i.Src.String() }
func (i Pop) String() string             { return "POP " + i.Dst.String() }

func (i Return) String() string {
	if i.Cond == Always {
		return "RET"
	}
	return "RET " + i.Cond.String()
}

func (i Load) String() string {
	if i.Dst == MemHigh || i.Src == MemHigh {
		return "LDH " + i.Dst.String() + "," + i.Src.String()
	}
	return "LD " + i.Dst.String() + "," + i.Src.String()
}

func branch(name string, cond Cond, target string) string {
	if cond == Always {
		return name + " " + target
	}
	return name + " " + cond.String() + "," + target
}
