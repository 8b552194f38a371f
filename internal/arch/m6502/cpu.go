package m6502

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/m6502"
)

const (
	stackBase           = 0x0100
	initialStackPointer = 0xfd

	statusCarry    = 0x01
	statusZero     = 0x02
	statusIrq      = 0x04
	statusDecimal  = 0x08
	statusBreak    = 0x10
	statusUnused   = 0x20
	statusOverflow = 0x40
	statusNegative = 0x80
)

// flags contains the processor status flags. The decimal flag is tracked
// but arithmetic follows the NES variant of the 6502 and stays binary.
type flags struct {
	c, z, i, d, v, n bool
}

// execute runs the official instruction at pc and advances the program
// counter. It returns true when the program halted on BRK or a top level
// RTS.
//
//nolint:funlen,cyclop // one case per instruction
func (e *Engine) execute(opcode m6502.Opcode, pc uint16) (bool, error) {
	ins := opcode.Instruction
	if ins.Unofficial {
		return false, fmt.Errorf("unofficial instruction %s", ins.Name)
	}

	mode := opcode.Addressing
	next := pc + 1 + operandLength(mode)

	switch ins.Name {
	// loads and stores
	case m6502.LdaName:
		e.a = e.setNZ(e.loadValue(mode, pc))
	case m6502.LdxName:
		e.x = e.setNZ(e.loadValue(mode, pc))
	case m6502.LdyName:
		e.y = e.setNZ(e.loadValue(mode, pc))
	case m6502.StaName:
		e.mem[e.operandAddress(mode, pc)] = e.a
	case m6502.StxName:
		e.mem[e.operandAddress(mode, pc)] = e.x
	case m6502.StyName:
		e.mem[e.operandAddress(mode, pc)] = e.y

	// register transfers
	case m6502.TaxName:
		e.x = e.setNZ(e.a)
	case m6502.TayName:
		e.y = e.setNZ(e.a)
	case m6502.TxaName:
		e.a = e.setNZ(e.x)
	case m6502.TyaName:
		e.a = e.setNZ(e.y)
	case m6502.TsxName:
		e.x = e.setNZ(e.sp)
	case m6502.TxsName:
		e.sp = e.x

	// stack operations
	case m6502.PhaName:
		e.push(e.a)
	case m6502.PlaName:
		e.a = e.setNZ(e.pop())
	case m6502.PhpName:
		e.push(e.statusByte() | statusBreak)
	case m6502.PlpName:
		e.setStatusByte(e.pop())

	// arithmetic and logic
	case m6502.AdcName:
		e.adc(e.loadValue(mode, pc))
	case m6502.SbcName:
		e.adc(^e.loadValue(mode, pc))
	case m6502.AndName:
		e.a = e.setNZ(e.a & e.loadValue(mode, pc))
	case m6502.OraName:
		e.a = e.setNZ(e.a | e.loadValue(mode, pc))
	case m6502.EorName:
		e.a = e.setNZ(e.a ^ e.loadValue(mode, pc))
	case m6502.CmpName:
		e.compare(e.a, e.loadValue(mode, pc))
	case m6502.CpxName:
		e.compare(e.x, e.loadValue(mode, pc))
	case m6502.CpyName:
		e.compare(e.y, e.loadValue(mode, pc))
	case m6502.BitName:
		value := e.loadValue(mode, pc)
		e.flags.z = e.a&value == 0
		e.flags.v = value&statusOverflow != 0
		e.flags.n = value&statusNegative != 0

	// increments and decrements
	case m6502.IncName:
		e.modifyValue(mode, pc, func(v byte) byte { return v + 1 })
	case m6502.DecName:
		e.modifyValue(mode, pc, func(v byte) byte { return v - 1 })
	case m6502.InxName:
		e.x = e.setNZ(e.x + 1)
	case m6502.InyName:
		e.y = e.setNZ(e.y + 1)
	case m6502.DexName:
		e.x = e.setNZ(e.x - 1)
	case m6502.DeyName:
		e.y = e.setNZ(e.y - 1)

	// shifts and rotates
	case m6502.AslName:
		e.modifyValue(mode, pc, func(v byte) byte {
			e.flags.c = v&0x80 != 0
			return v << 1
		})
	case m6502.LsrName:
		e.modifyValue(mode, pc, func(v byte) byte {
			e.flags.c = v&0x01 != 0
			return v >> 1
		})
	case m6502.RolName:
		e.modifyValue(mode, pc, func(v byte) byte {
			carry := byte(0)
			if e.flags.c {
				carry = 1
			}
			e.flags.c = v&0x80 != 0
			return v<<1 | carry
		})
	case m6502.RorName:
		e.modifyValue(mode, pc, func(v byte) byte {
			carry := byte(0)
			if e.flags.c {
				carry = 0x80
			}
			e.flags.c = v&0x01 != 0
			return v>>1 | carry
		})

	// flag changes
	case m6502.ClcName:
		e.flags.c = false
	case m6502.SecName:
		e.flags.c = true
	case m6502.CliName:
		e.flags.i = false
	case m6502.SeiName:
		e.flags.i = true
	case m6502.ClvName:
		e.flags.v = false
	case m6502.CldName:
		e.flags.d = false
	case m6502.SedName:
		e.flags.d = true

	case m6502.NopName:

	// control flow
	case m6502.JmpName:
		if mode == m6502.IndirectAddressing {
			e.pc = e.readWord(e.readWord(pc + 1))
		} else {
			e.pc = e.readWord(pc + 1)
		}
		return false, nil
	case m6502.JsrName:
		returnAddress := next - 1
		e.push(byte(returnAddress >> 8))
		e.push(byte(returnAddress))
		e.callDepth++
		e.pc = e.readWord(pc + 1)
		return false, nil
	case m6502.RtsName:
		if e.callDepth == 0 {
			return true, nil // return from top level ends the program
		}
		e.callDepth--
		lo := e.pop()
		hi := e.pop()
		e.pc = (uint16(hi)<<8 | uint16(lo)) + 1
		return false, nil
	case m6502.BrkName:
		return true, nil
	case m6502.BccName, m6502.BcsName, m6502.BeqName, m6502.BmiName,
		m6502.BneName, m6502.BplName, m6502.BvcName, m6502.BvsName:
		if e.branchTaken(ins.Name) {
			e.pc = relativeTarget(pc, e.mem[pc+1])
		} else {
			e.pc = next
		}
		return false, nil
	case m6502.RtiName:
		return false, fmt.Errorf("%s outside of an interrupt handler", ins.Name)

	default:
		return false, fmt.Errorf("unsupported instruction %s", ins.Name)
	}

	e.pc = next
	return false, nil
}

// branchTaken evaluates the branch condition against the current flags.
func (e *Engine) branchTaken(name string) bool {
	switch name {
	case m6502.BccName:
		return !e.flags.c
	case m6502.BcsName:
		return e.flags.c
	case m6502.BneName:
		return !e.flags.z
	case m6502.BeqName:
		return e.flags.z
	case m6502.BplName:
		return !e.flags.n
	case m6502.BmiName:
		return e.flags.n
	case m6502.BvcName:
		return !e.flags.v
	case m6502.BvsName:
		return e.flags.v
	default:
		return false
	}
}

// relativeTarget computes the branch target of a relative addressing
// instruction at pc, the signed offset is relative to the following
// instruction.
func relativeTarget(pc uint16, offset byte) uint16 {
	return uint16(int32(pc) + 2 + int32(int8(offset)))
}

// operandLength returns the number of operand bytes following the opcode.
func operandLength(mode m6502.AddressingMode) uint16 {
	switch mode {
	case m6502.ImpliedAddressing, m6502.AccumulatorAddressing:
		return 0
	case m6502.ImmediateAddressing, m6502.ZeroPageAddressing, m6502.ZeroPageXAddressing,
		m6502.ZeroPageYAddressing, m6502.RelativeAddressing, m6502.IndirectXAddressing,
		m6502.IndirectYAddressing:
		return 1
	default: // absolute, absolute indexed, indirect
		return 2
	}
}

// operandAddress resolves the effective memory address of the operand.
func (e *Engine) operandAddress(mode m6502.AddressingMode, pc uint16) uint16 {
	switch mode {
	case m6502.ZeroPageAddressing:
		return uint16(e.mem[pc+1])
	case m6502.ZeroPageXAddressing:
		return uint16(e.mem[pc+1] + e.x) // zero page indexing wraps
	case m6502.ZeroPageYAddressing:
		return uint16(e.mem[pc+1] + e.y)
	case m6502.AbsoluteAddressing:
		return e.readWord(pc + 1)
	case m6502.AbsoluteXAddressing:
		return e.readWord(pc+1) + uint16(e.x)
	case m6502.AbsoluteYAddressing:
		return e.readWord(pc+1) + uint16(e.y)
	case m6502.IndirectXAddressing:
		return e.readWordZeroPage(e.mem[pc+1] + e.x)
	case m6502.IndirectYAddressing:
		return e.readWordZeroPage(e.mem[pc+1]) + uint16(e.y)
	default:
		return 0
	}
}

// loadValue reads the operand value for the addressing mode.
func (e *Engine) loadValue(mode m6502.AddressingMode, pc uint16) byte {
	switch mode {
	case m6502.ImmediateAddressing:
		return e.mem[pc+1]
	case m6502.AccumulatorAddressing:
		return e.a
	default:
		return e.mem[e.operandAddress(mode, pc)]
	}
}

// modifyValue applies a read-modify-write operation to the accumulator or
// the operand memory location and updates the zero and negative flags.
func (e *Engine) modifyValue(mode m6502.AddressingMode, pc uint16, modify func(byte) byte) {
	if mode == m6502.AccumulatorAddressing {
		e.a = e.setNZ(modify(e.a))
		return
	}
	addr := e.operandAddress(mode, pc)
	e.mem[addr] = e.setNZ(modify(e.mem[addr]))
}

// adc adds the value and the carry to the accumulator, SBC reuses it with
// the inverted value.
func (e *Engine) adc(value byte) {
	carry := uint16(0)
	if e.flags.c {
		carry = 1
	}
	sum := uint16(e.a) + uint16(value) + carry
	result := byte(sum)
	e.flags.c = sum > 0xff
	e.flags.v = (e.a^result)&(value^result)&0x80 != 0
	e.a = e.setNZ(result)
}

func (e *Engine) compare(register, value byte) {
	e.flags.c = register >= value
	e.setNZ(register - value)
}

func (e *Engine) setNZ(value byte) byte {
	e.flags.z = value == 0
	e.flags.n = value&statusNegative != 0
	return value
}

func (e *Engine) push(value byte) {
	e.mem[stackBase+uint16(e.sp)] = value
	e.sp--
}

func (e *Engine) pop() byte {
	e.sp++
	return e.mem[stackBase+uint16(e.sp)]
}

func (e *Engine) readWord(address uint16) uint16 {
	return uint16(e.mem[address+1])<<8 | uint16(e.mem[address])
}

// readWordZeroPage reads a word from the zero page, the high byte address
// wraps within the page.
func (e *Engine) readWordZeroPage(address byte) uint16 {
	return uint16(e.mem[address+1])<<8 | uint16(e.mem[address])
}

func (e *Engine) statusByte() byte {
	var status byte = statusUnused
	if e.flags.c {
		status |= statusCarry
	}
	if e.flags.z {
		status |= statusZero
	}
	if e.flags.i {
		status |= statusIrq
	}
	if e.flags.d {
		status |= statusDecimal
	}
	if e.flags.v {
		status |= statusOverflow
	}
	if e.flags.n {
		status |= statusNegative
	}
	return status
}

func (e *Engine) setStatusByte(status byte) {
	e.flags.c = status&statusCarry != 0
	e.flags.z = status&statusZero != 0
	e.flags.i = status&statusIrq != 0
	e.flags.d = status&statusDecimal != 0
	e.flags.v = status&statusOverflow != 0
	e.flags.n = status&statusNegative != 0
}
