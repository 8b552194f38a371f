package trace

// Event records one dynamic execution of an instrumented branch instruction.
// Events are immutable, their only identity is the position in the capture
// sequence.
type Event struct {
	// Address is the program counter location of the branch instruction.
	Address uint64

	// Target is the address the branch redirects control flow to when taken.
	// It is captured for in-process consumers but is not part of the
	// serialized trace format.
	Target uint64

	// Taken reports whether the branch redirected control flow to Target
	// instead of falling through.
	Taken bool
}
