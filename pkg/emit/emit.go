// Package emit renders an abstract asm.Program as GNU/AT&T textual
// assembly for the x86-64 System V ABI, ready to hand to an external
// assembler.
package emit

import (
	"fmt"
	"strings"

	"github.com/hmny-labs/tinycc/pkg/asm"
)

// Program renders the whole program, including the function prologue and
// epilogue and the trailing .note.GNU-stack section gcc/ld expect on a
// modern Linux toolchain.
func Program(program *asm.Program) string {
	var b strings.Builder
	function(&b, program.Function)
	b.WriteString("\n\t.section .note.GNU-stack,\"\",@progbits\n")
	return b.String()
}

func function(b *strings.Builder, fn asm.Function) {
	fmt.Fprintf(b, "\t.globl %s\n", fn.Name)
	fmt.Fprintf(b, "%s:\n", fn.Name)
	b.WriteString("\tpushq\t%rbp\n")
	b.WriteString("\tmovq\t%rsp, %rbp\n")

	for _, inst := range fn.Instructions {
		instruction(b, inst)
	}
}

func instruction(b *strings.Builder, inst asm.Instruction) {
	switch tInst := inst.(type) {
	case asm.AllocateStack:
		// A zero-size allocation reserves nothing; emitting "subq $0,
		// %rsp" would be a correct but pointless no-op instruction, so
		// it's skipped rather than written out.
		if tInst.Size == 0 {
			return
		}
		fmt.Fprintf(b, "\tsubq\t$%d, %%rsp\n", tInst.Size*4)

	case asm.Mov:
		fmt.Fprintf(b, "\tmovl\t%s, %s\n", operand(tInst.Src), operand(tInst.Dst))

	case asm.Unary:
		fmt.Fprintf(b, "\t%s\t%s\n", unaryMnemonic(tInst.Operator), operand(tInst.Operand))

	case asm.Ret:
		b.WriteString("\tmovq\t%rbp, %rsp\n")
		b.WriteString("\tpopq\t%rbp\n")
		b.WriteString("\tret\n")

	default:
		panic(fmt.Sprintf("emit: unrecognized instruction %T", inst))
	}
}

func unaryMnemonic(op asm.UnaryOperator) string {
	switch op {
	case asm.Neg:
		return "negl"
	case asm.Not:
		return "notl"
	default:
		panic(fmt.Sprintf("emit: unrecognized unary operator %v", op))
	}
}

func operand(op asm.Operand) string {
	switch tOp := op.(type) {
	case asm.Imm:
		return fmt.Sprintf("$%d", tOp.Value)

	case asm.Register:
		switch tOp.Name {
		case asm.AX:
			return "%eax"
		case asm.R10:
			return "%r10d"
		default:
			panic(fmt.Sprintf("emit: unrecognized register %v", tOp.Name))
		}

	case asm.Stack:
		return fmt.Sprintf("-%d(%%rbp)", (tOp.Index+1)*4)

	default:
		panic(fmt.Sprintf("emit: unrecognized operand %T", op))
	}
}
