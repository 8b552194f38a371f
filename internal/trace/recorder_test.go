package trace

import (
	"bytes"
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestRecorderOrdering(t *testing.T) {
	r := NewRecorder(0)
	r.Record(0x1000, 0x1010, true)
	r.Record(0x2000, 0x2010, false)
	r.Record(0x3000, 0x3010, true)

	events := r.Events()
	assert.Equal(t, 3, len(events))
	assert.Equal(t, Event{Address: 0x1000, Target: 0x1010, Taken: true}, events[0])
	assert.Equal(t, Event{Address: 0x2000, Target: 0x2010, Taken: false}, events[1])
	assert.Equal(t, Event{Address: 0x3000, Target: 0x3010, Taken: true}, events[2])
}

func TestRecorderCapacityLimit(t *testing.T) {
	r := NewRecorder(2)
	r.Record(0x1000, 0x1010, true)
	r.Record(0x1000, 0x1010, false)
	r.Record(0x1000, 0x1010, true) // dropped, limit is a hard upper bound

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, false, r.Events()[1].Taken)
}

func TestRecorderUnboundedLimit(t *testing.T) {
	r := NewRecorder(0)
	for i := range 10_000 {
		r.Record(uint64(i), 0, i%2 == 0)
	}

	assert.Equal(t, 10_000, r.Len())
}

func TestWriteTrace(t *testing.T) {
	r := NewRecorder(0)
	r.Record(0x1000, 0x1005, true)
	r.Record(0x1000, 0x1005, false)
	r.Record(0x1000, 0x1005, true)

	var buf bytes.Buffer
	assert.NoError(t, r.WriteTrace(&buf))
	assert.Equal(t, "3\n1\n1000\n0\n1000\n1\n1000\n", buf.String())
}

func TestWriteTraceEmpty(t *testing.T) {
	r := NewRecorder(0)

	var buf bytes.Buffer
	assert.NoError(t, r.WriteTrace(&buf))
	assert.Equal(t, "0\n", buf.String())
}

func TestWriteTraceHexadecimalCount(t *testing.T) {
	r := NewRecorder(0)
	for range 10 {
		r.Record(0xabcd, 0, true)
	}

	var buf bytes.Buffer
	assert.NoError(t, r.WriteTrace(&buf))
	assert.Equal(t, byte('a'), buf.Bytes()[0])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteTraceSinkFailure(t *testing.T) {
	r := NewRecorder(0)
	r.Record(0x1000, 0x1005, true)

	assert.Error(t, r.WriteTrace(failingWriter{}))
}

func TestRecorderRelease(t *testing.T) {
	r := NewRecorder(0)
	r.Record(0x1000, 0x1005, true)
	r.Release()

	assert.Equal(t, 0, r.Len())
}
