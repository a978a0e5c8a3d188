package tacky

import (
	"fmt"

	"github.com/hmny-labs/tinycc/pkg/cast"
)

// Lowerer converts a cast.Program into its TACKY counterpart. Unlike the
// asm generator below it, lowering never needs a second pass: the
// instruction list it produces is already in its final form.
type Lowerer struct {
	program *cast.Program
}

// NewLowerer wraps the given cast.Program for lowering.
func NewLowerer(p *cast.Program) *Lowerer {
	return &Lowerer{program: p}
}

// Lower walks the C-AST in DFS order, flattening every expression it
// meets into the instruction list it returns.
func (l *Lowerer) Lower() (*Program, error) {
	fn, err := l.lowerFunction(l.program.Function)
	if err != nil {
		return nil, err
	}
	return &Program{Function: fn}, nil
}

func (l *Lowerer) lowerFunction(fn cast.Function) (Function, error) {
	ret, ok := fn.Body.(cast.ReturnStatement)
	if !ok {
		return Function{}, fmt.Errorf("tacky: unsupported statement %T", fn.Body)
	}

	instructions, value, err := lowerExpression(ret.Expression, nil)
	if err != nil {
		return Function{}, err
	}
	instructions = append(instructions, ReturnInstruction{Value: value})

	return Function{Name: fn.Name, Instructions: instructions}, nil
}

// lowerExpression recursively flattens expr, appending any instructions
// it needs to instructions, and returns the Value the expression
// evaluates to. Temporaries are named "tmp<k>" where k is the number of
// instructions already emitted at the point the temporary is created, the
// same naming scheme the reference implementation this IR is modeled on
// uses, which keeps temp names strictly increasing and unique.
func lowerExpression(expr cast.Expression, instructions []Instruction) ([]Instruction, Value, error) {
	switch e := expr.(type) {
	case cast.ConstantExpression:
		return instructions, Constant{Value: e.Value}, nil

	case cast.UnaryExpression:
		instructions, src, err := lowerExpression(e.Operand, instructions)
		if err != nil {
			return nil, nil, err
		}

		op, err := lowerUnaryOperator(e.Operator)
		if err != nil {
			return nil, nil, err
		}

		dst := Variable{Name: fmt.Sprintf("tmp%d", len(instructions))}
		instructions = append(instructions, UnaryInstruction{Operator: op, Src: src, Dst: dst})
		return instructions, dst, nil

	default:
		return nil, nil, fmt.Errorf("tacky: unsupported expression %T", expr)
	}
}

func lowerUnaryOperator(op cast.UnaryOperator) (UnaryOperator, error) {
	switch op {
	case cast.Complement:
		return Complement, nil
	case cast.Negate:
		return Negate, nil
	default:
		return 0, fmt.Errorf("tacky: unsupported unary operator %v", op)
	}
}
