// Package m6502 provides a 6502 execution engine that drives the branch
// instrumentation walk and reports branch executions to the tracer.
package m6502

import (
	"context"
	"errors"
	"fmt"

	"github.com/retroenv/branchtrace/internal/trace"
	"github.com/retroenv/retrogolib/arch/cpu/m6502"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

const (
	memorySize           = 0x10000
	contextCheckInterval = 4096
)

// instrumenter classifies newly discovered instructions, the minimal
// interface needed from the tracer.
type instrumenter interface {
	Instrument(ins trace.Instruction) trace.BranchFunc
}

// Engine interprets a raw 6502 program image. Instructions are discovered
// incrementally: the first execution of an address runs the one-time
// classification for it, every following execution reuses the registered
// hook. The engine runs a single execution context, matching the
// single-threaded recording model.
type Engine struct {
	logger *log.Logger

	mem      [memorySize]byte
	base     uint16
	maxSteps uint64

	a, x, y, sp byte
	pc          uint16
	flags       flags
	callDepth   int

	seen  set.Set[uint16]
	hooks map[uint16]trace.BranchFunc
}

// New creates an engine with the program image loaded at the base address.
func New(logger *log.Logger, program []byte, base uint16, maxSteps uint64) (*Engine, error) {
	if len(program) == 0 {
		return nil, errors.New("program image is empty")
	}
	if int(base)+len(program) > memorySize {
		return nil, fmt.Errorf("program image of %d bytes does not fit at base address %04x",
			len(program), base)
	}

	e := &Engine{
		logger:   logger,
		base:     base,
		maxSteps: maxSteps,
		seen:     set.New[uint16](),
		hooks:    map[uint16]trace.BranchFunc{},
	}
	copy(e.mem[base:], program)
	return e, nil
}

// Run executes the program from the base address until it halts on BRK or a
// top level RTS, the step budget is exhausted or the context is cancelled.
// Newly discovered instructions are handed to the tracer for classification,
// instrumented branches invoke their hook before executing. Returns the exit
// code of the program.
func (e *Engine) Run(ctx context.Context, tracer instrumenter) (int, error) {
	e.pc = e.base
	e.sp = initialStackPointer

	for steps := uint64(0); steps < e.maxSteps; steps++ {
		if steps%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}

		halted, err := e.step(tracer)
		if err != nil {
			return 0, err
		}
		if halted {
			e.logger.Debug("Program halted", log.Hex("address", e.pc))
			return 0, nil
		}
	}

	return 0, fmt.Errorf("step budget of %d instructions exhausted", e.maxSteps)
}

// step decodes and executes the instruction at the program counter.
func (e *Engine) step(tracer instrumenter) (bool, error) {
	pc := e.pc
	opcode := m6502.Opcodes[e.mem[pc]]
	if opcode.Instruction == nil {
		return false, fmt.Errorf("unknown opcode %02x at address %04x", e.mem[pc], pc)
	}

	if !e.seen.Contains(pc) {
		e.seen.Add(pc)
		if hook := tracer.Instrument(Opcode{op: opcode}); hook != nil {
			e.hooks[pc] = hook
		}
	}

	// instrumented instructions are conditional relative branches, the hook
	// fires before the instruction executes
	if hook, ok := e.hooks[pc]; ok {
		target := relativeTarget(pc, e.mem[pc+1])
		hook(uint64(pc), uint64(target), e.branchTaken(opcode.Instruction.Name))
	}

	halted, err := e.execute(opcode, pc)
	if err != nil {
		return false, fmt.Errorf("executing at address %04x: %w", pc, err)
	}
	return halted, nil
}
