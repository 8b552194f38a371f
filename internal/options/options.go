// Package options contains the program options.
package options

// Program contains the command line options of the tracer.
type Program struct {
	Input  string // target program image to execute
	Output string // trace output file, diagnostic stream if empty

	Base  uint64 // load and start address of the program image
	Steps uint64 // execution step budget

	Debug bool
	Quiet bool
}

// Tracer defines options to control the branch recording.
type Tracer struct {
	// Limit is the maximum number of branch events that are recorded,
	// further events are silently dropped. 0 means unbounded.
	Limit uint64
}
