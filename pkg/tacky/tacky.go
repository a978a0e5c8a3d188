// Package tacky is the three-address IR ("TACKY") that sits between the
// C-AST and the abstract assembly: every compound expression is flattened
// into a sequence of instructions, each with at most one operator and one
// freshly named temporary destination.
package tacky

import "fmt"

// Program is the root of the IR: one function.
type Program struct {
	Function Function
}

// Function is a flat instruction list; control flow never branches
// within it (there is none in this subset), so it always ends in a
// ReturnInstruction.
type Function struct {
	Name         string
	Instructions []Instruction
}

// Instruction is implemented by every TACKY instruction.
type Instruction interface{ isInstruction() }

// ReturnInstruction ends the function, handing Value back to the caller.
type ReturnInstruction struct {
	Value Value
}

func (ReturnInstruction) isInstruction() {}

// UnaryInstruction applies Operator to Src and stores the result in Dst,
// which is always a freshly generated Variable.
type UnaryInstruction struct {
	Operator UnaryOperator
	Src      Value
	Dst      Value
}

func (UnaryInstruction) isInstruction() {}

// Value is implemented by the two kinds of TACKY operand.
type Value interface{ isValue() }

// Constant is an integer literal carried through unchanged from the AST.
type Constant struct {
	Value uint32
}

func (Constant) isValue() {}

// Variable is a compiler-generated temporary, named "tmp<n>".
type Variable struct {
	Name string
}

func (Variable) isValue() {}

// UnaryOperator mirrors cast.UnaryOperator one-to-one.
type UnaryOperator int

const (
	Complement UnaryOperator = iota
	Negate
)

func (op UnaryOperator) String() string {
	switch op {
	case Complement:
		return "Complement"
	case Negate:
		return "Negate"
	default:
		return fmt.Sprintf("UnaryOperator(%d)", int(op))
	}
}
