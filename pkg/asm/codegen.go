package asm

import (
	"fmt"

	"github.com/hmny-labs/tinycc/pkg/tacky"
)

// ----------------------------------------------------------------------------
// Code Generator

// Generator takes a tacky.Program and produces its abstract asm.Program
// counterpart: a direct per-instruction translation followed by two fixup
// passes that turn virtual operands into real ones.
//
// The translation can be done without any additional data structure but
// the program itself. The pseudo-to-stack pass carries a stack-slot
// table; the Mov legalization pass keeps no state and always uses %r10d
// as its scratch register.
type Generator struct {
	program *tacky.Program
}

// NewGenerator initializes and returns a Generator for the given program.
func NewGenerator(p *tacky.Program) *Generator {
	return &Generator{program: p}
}

// Generate runs the translation and both fixup passes in order, returning
// a Program no instruction of which references a Pseudo operand or a
// Mov between two Stack operands.
func (g *Generator) Generate() (*Program, error) {
	fn, err := g.genFunction(g.program.Function)
	if err != nil {
		return nil, err
	}

	program := &Program{Function: fn}
	assignStackSlots(program)
	legalizeMovs(program)
	return program, nil
}

func (g *Generator) genFunction(fn tacky.Function) (Function, error) {
	instructions := make([]Instruction, 0, len(fn.Instructions)*2)

	for _, inst := range fn.Instructions {
		switch tInst := inst.(type) {
		case tacky.ReturnInstruction:
			instructions = append(instructions,
				Mov{Src: genOperand(tInst.Value), Dst: Register{Name: AX}},
				Ret{},
			)

		case tacky.UnaryInstruction:
			op, err := genUnaryOperator(tInst.Operator)
			if err != nil {
				return Function{}, err
			}
			dst := genOperand(tInst.Dst)
			instructions = append(instructions,
				Mov{Src: genOperand(tInst.Src), Dst: dst},
				Unary{Operator: op, Operand: dst},
			)

		default:
			return Function{}, fmt.Errorf("asm: unrecognized instruction %T", inst)
		}
	}

	return Function{Name: fn.Name, Instructions: instructions}, nil
}

func genOperand(v tacky.Value) Operand {
	switch val := v.(type) {
	case tacky.Constant:
		return Imm{Value: val.Value}
	case tacky.Variable:
		return Pseudo{Name: val.Name}
	default:
		panic(fmt.Sprintf("asm: unrecognized tacky value %T", v))
	}
}

func genUnaryOperator(op tacky.UnaryOperator) (UnaryOperator, error) {
	switch op {
	case tacky.Complement:
		return Not, nil
	case tacky.Negate:
		return Neg, nil
	default:
		return 0, fmt.Errorf("asm: unrecognized unary operator %v", op)
	}
}

// ----------------------------------------------------------------------------
// Pass A: pseudo-register to stack-slot assignment

// assignStackSlots rewrites every Pseudo operand in program to a Stack
// operand and prepends an AllocateStack sized to the number of distinct
// variables it saw, in the order it first saw them.
func assignStackSlots(program *Program) {
	slots := map[string]uint32{}
	rewritten := rewritePseudoOperands(program.Function.Instructions, slots)

	withPrologue := make([]Instruction, 0, len(rewritten)+1)
	withPrologue = append(withPrologue, AllocateStack{Size: uint32(len(slots))})
	withPrologue = append(withPrologue, rewritten...)
	program.Function.Instructions = withPrologue
}

// rewritePseudoOperands returns a new instruction slice with every Pseudo
// operand replaced by a Stack operand, assigning slots to names in slots
// as they're first encountered. It adds new names to slots but never
// modifies instructions itself: once no Pseudo operand remains, calling it
// again is a no-op, since resolving a non-Pseudo operand just returns it
// unchanged.
func rewritePseudoOperands(instructions []Instruction, slots map[string]uint32) []Instruction {
	out := make([]Instruction, len(instructions))
	for i, inst := range instructions {
		switch tInst := inst.(type) {
		case Mov:
			out[i] = Mov{Src: resolvePseudo(tInst.Src, slots), Dst: resolvePseudo(tInst.Dst, slots)}
		case Unary:
			out[i] = Unary{Operator: tInst.Operator, Operand: resolvePseudo(tInst.Operand, slots)}
		default:
			out[i] = inst
		}
	}
	return out
}

func resolvePseudo(op Operand, slots map[string]uint32) Operand {
	p, ok := op.(Pseudo)
	if !ok {
		return op
	}
	idx, seen := slots[p.Name]
	if !seen {
		idx = uint32(len(slots))
		slots[p.Name] = idx
	}
	return Stack{Index: idx}
}

// ----------------------------------------------------------------------------
// Pass B: Mov legalization

// legalizeMovs rewrites every Mov whose source and destination are both
// Stack operands into a Stack-to-register Mov followed by a
// register-to-Stack Mov, routed through %r10d, since x86-64 has no
// memory-to-memory move. It's idempotent: after one pass no Mov has two
// Stack operands left, so a second pass leaves the list untouched.
func legalizeMovs(program *Program) {
	instructions := program.Function.Instructions
	out := make([]Instruction, 0, len(instructions))

	for _, inst := range instructions {
		mov, ok := inst.(Mov)
		if !ok {
			out = append(out, inst)
			continue
		}

		src, srcIsStack := mov.Src.(Stack)
		dst, dstIsStack := mov.Dst.(Stack)
		if srcIsStack && dstIsStack {
			out = append(out,
				Mov{Src: src, Dst: Register{Name: R10}},
				Mov{Src: Register{Name: R10}, Dst: dst},
			)
			continue
		}

		out = append(out, mov)
	}

	program.Function.Instructions = out
}
