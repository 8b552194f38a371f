package trace

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Recorder accumulates branch events in execution order up to a capacity
// limit. It is owned by a single execution context and is not safe for
// concurrent use.
type Recorder struct {
	events []Event
	limit  uint64
}

// NewRecorder creates a recorder with the given capacity limit.
// A limit of 0 means unbounded.
func NewRecorder(limit uint64) *Recorder {
	if limit == 0 {
		limit = math.MaxUint64
	}
	return &Recorder{
		limit: limit,
	}
}

// Record appends one branch event to the buffer. Capacity is checked before
// the append, the limit is a hard upper bound on the number of admitted
// events. Once it is reached further events are silently dropped, recording
// is fire and forget on the target program's hot path: no error, no drop
// counter, no backpressure.
func (r *Recorder) Record(address, target uint64, taken bool) {
	if uint64(len(r.events)) >= r.limit {
		return
	}

	r.events = append(r.events, Event{
		Address: address,
		Target:  target,
		Taken:   taken,
	})
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	return len(r.events)
}

// Events returns the recorded events in capture order.
func (r *Recorder) Events() []Event {
	return r.events
}

// WriteTrace serializes the recorded events to the writer in the
// line-oriented trace format: the event count followed by a taken flag line
// and an address line per event, all numbers in hexadecimal without prefix.
// The captured target address is not part of the format.
func (r *Recorder) WriteTrace(w io.Writer) error {
	buf := bufio.NewWriter(w)

	writeLine(buf, strconv.FormatUint(uint64(len(r.events)), 16))
	for _, event := range r.events {
		if event.Taken {
			writeLine(buf, "1")
		} else {
			writeLine(buf, "0")
		}
		writeLine(buf, strconv.FormatUint(event.Address, 16))
	}

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}
	return nil
}

// Release drops the event buffer.
func (r *Recorder) Release() {
	r.events = nil
}

// writeLine ignores write errors, bufio keeps the first error sticky and
// reports it on Flush.
func writeLine(buf *bufio.Writer, s string) {
	_, _ = buf.WriteString(s)
	_ = buf.WriteByte('\n')
}
