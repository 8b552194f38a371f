package m6502

import (
	"testing"

	"github.com/retroenv/retrogolib/arch/cpu/m6502"
	"github.com/retroenv/retrogolib/assert"
)

func TestOpcodeClassification(t *testing.T) {
	tests := []struct {
		name      string
		opcode    byte
		qualifies bool
	}{
		{"bcc", 0x90, true},
		{"bcs", 0xb0, true},
		{"beq", 0xf0, true},
		{"bmi", 0x30, true},
		{"bne", 0xd0, true},
		{"bpl", 0x10, true},
		{"bvc", 0x50, true},
		{"bvs", 0x70, true},
		{"jmp absolute", 0x4c, false},
		{"jmp indirect", 0x6c, false},
		{"jsr", 0x20, false},
		{"rts", 0x60, false},
		{"brk", 0x00, false},
		{"lda immediate", 0xa9, false},
		{"nop", 0xea, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := Opcode{op: m6502.Opcodes[tt.opcode]}
			assert.Equal(t, tt.qualifies, op.IsBranch() && op.HasFallThrough())
		})
	}
}
