package trace

// Instruction describes a static instruction as it is discovered during the
// instrumentation walk. Implementations adapt the instruction representation
// of a concrete execution engine.
type Instruction interface {
	// IsBranch returns true if executing the instruction can redirect
	// control flow based on a runtime condition. Calls and returns always
	// transfer to their target and are not branches in this sense.
	IsBranch() bool
	// HasFallThrough returns true if the instruction has a well-defined
	// not-taken continuation directly following it.
	HasFallThrough() bool
}

// BranchFunc is invoked immediately before each dynamic execution of an
// instrumented branch instruction, with the instruction address, the address
// it would jump to if taken and the runtime outcome.
type BranchFunc func(address, target uint64, taken bool)

// Instrument classifies a newly discovered instruction. An instruction
// qualifies for recording if it is a branch and has a fall-through path,
// the combination that makes the taken outcome binary. For a qualifying
// instruction the returned callback has to be invoked on every dynamic
// execution of it, a nil return means the instruction is skipped.
// Instrument is called once per static instruction, regardless of how often
// the instruction executes.
func (t *Tracer) Instrument(ins Instruction) BranchFunc {
	if !ins.IsBranch() || !ins.HasFallThrough() {
		return nil
	}
	t.instrumented++
	return t.recorder.Record
}
