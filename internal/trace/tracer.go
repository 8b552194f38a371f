// Package trace implements branch event classification, bounded in-memory
// recording and trace serialization.
package trace

import (
	"errors"
	"fmt"
	"io"

	"github.com/retroenv/branchtrace/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// ErrFinalized is returned when a trace is finalized more than once.
var ErrFinalized = errors.New("trace already finalized")

// Tracer is the recording context of one target program execution. It binds
// the classifier and the event recorder to an output sink. The sink and the
// capacity limit are fixed for the lifetime of the tracer.
type Tracer struct {
	logger *log.Logger
	sink   io.Writer

	recorder     *Recorder
	instrumented int // number of static branch instructions instrumented
	finalized    bool
}

// New creates a tracer that records branch events up to the configured
// limit and serializes them to the sink on finalization.
func New(logger *log.Logger, opts options.Tracer, sink io.Writer) *Tracer {
	return &Tracer{
		logger:   logger,
		sink:     sink,
		recorder: NewRecorder(opts.Limit),
	}
}

// Events returns the events recorded so far in capture order.
func (t *Tracer) Events() []Event {
	return t.recorder.Events()
}

// Finalize logs the capture summary to the diagnostic stream, writes the
// recorded trace to the output sink and releases the event buffer. It has
// to be called exactly once, after the target program ended, subsequent
// calls return ErrFinalized. A sink write failure is returned to the
// caller, the trace data can not be recovered at this point.
func (t *Tracer) Finalize(exitCode int) error {
	if t.finalized {
		return ErrFinalized
	}
	t.finalized = true

	t.logger.Info("Recorded branch trace",
		log.Int("instrumented", t.instrumented),
		log.Int("events", t.recorder.Len()),
		log.Int("exit_code", exitCode))

	err := t.recorder.WriteTrace(t.sink)
	t.recorder.Release()
	if err != nil {
		return fmt.Errorf("serializing trace: %w", err)
	}
	return nil
}
