// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/branchtrace/internal/options"
)

const addressSpaceSize = 0x10000

// ParseFlags parses command line flags and returns program and tracer options
func ParseFlags() (options.Program, options.Tracer, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	var traceOpts options.Tracer
	readOptionFlags(flags, &opts, &traceOpts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, traceOpts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, traceOpts, err
	}

	if err := validateOptions(opts); err != nil {
		return opts, traceOpts, err
	}

	opts.Input = args[0]

	return opts, traceOpts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: branchtrace [options] <program file to trace>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after file to trace, please pass the program file as last argument", arg),
			}
		}
	}
	return nil
}

// validateOptions normalizes and validates option values
func validateOptions(opts options.Program) error {
	if opts.Base >= addressSpaceSize {
		return fmt.Errorf("base address %x is outside the 16-bit address space", opts.Base)
	}
	if opts.Steps == 0 {
		return errors.New("step budget must be greater than 0")
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program, traceOpts *options.Tracer) {
	flags.StringVar(&opts.Output, "o", "BranchTrace.out", "name of the output trace file, written to the diagnostic stream if empty")
	flags.Uint64Var(&traceOpts.Limit, "l", 0, "maximum number of branch events to record, 0 for unbounded")
	flags.Uint64Var(&opts.Base, "base", 0x8000, "load and start address of the program image")
	flags.Uint64Var(&opts.Steps, "steps", 1_000_000, "maximum number of instructions to execute")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
