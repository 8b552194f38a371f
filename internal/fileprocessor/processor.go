// Package fileprocessor wires the program loader, the execution engine, the
// tracer and the output sink.
package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/branchtrace/internal/arch/m6502"
	"github.com/retroenv/branchtrace/internal/loader"
	"github.com/retroenv/branchtrace/internal/options"
	"github.com/retroenv/branchtrace/internal/trace"
	"github.com/retroenv/retrogolib/log"
)

// ProcessFile executes the target program and records its branch trace.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program,
	traceOpts options.Tracer) error {

	program, err := loader.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	engine, err := m6502.New(logger, program, uint16(opts.Base), opts.Steps)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	sink, closeSink, err := createSink(opts)
	if err != nil {
		return err
	}

	tracer := trace.New(logger, traceOpts, sink)

	exitCode, err := engine.Run(ctx, tracer)
	if err != nil {
		_ = closeSink()
		return fmt.Errorf("executing program: %w", err)
	}

	// a write failure at this point is fatal, the trace data is lost
	if err := tracer.Finalize(exitCode); err != nil {
		_ = closeSink()
		return fmt.Errorf("finalizing trace: %w", err)
	}

	if err := closeSink(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	return nil
}

// createSink opens the trace output destination. An empty output name
// redirects the trace to the diagnostic stream.
func createSink(opts options.Program) (io.Writer, func() error, error) {
	if opts.Output == "" {
		return os.Stderr, func() error { return nil }, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, file.Close, nil
}

// PrintBanner prints application version information and the result
// destination.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("branchtrace", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}

	if opts.Output != "" {
		logger.Info("Writing results", log.String("file", opts.Output))
	}
}
