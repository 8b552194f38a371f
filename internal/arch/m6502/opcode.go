package m6502

import (
	"github.com/retroenv/branchtrace/internal/trace"
	"github.com/retroenv/retrogolib/arch/cpu/m6502"
)

var _ trace.Instruction = Opcode{}

// Opcode adapts a 6502 opcode to the tracer's static instruction descriptor.
type Opcode struct {
	op m6502.Opcode
}

// IsBranch returns true for instructions that redirect control flow based on
// a runtime condition. JSR is a call that always takes its target and thus
// carries no binary outcome.
func (o Opcode) IsBranch() bool {
	name := o.op.Instruction.Name
	if name == m6502.JsrName {
		return false
	}
	_, ok := m6502.BranchingInstructions[name]
	return ok
}

// HasFallThrough returns true if execution can continue at the directly
// following instruction, the not-taken continuation of a branch. This rules
// out unconditional control transfers like JMP.
func (o Opcode) HasFallThrough() bool {
	_, ok := m6502.NotExecutingFollowingOpcodeInstructions[o.op.Instruction.Name]
	return !ok
}
