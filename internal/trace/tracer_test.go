package trace

import (
	"bytes"
	"testing"

	"github.com/retroenv/branchtrace/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// testInstruction is a static instruction descriptor for classifier tests.
type testInstruction struct {
	branch      bool
	fallThrough bool
}

func (i testInstruction) IsBranch() bool {
	return i.branch
}

func (i testInstruction) HasFallThrough() bool {
	return i.fallThrough
}

func TestTracerInstrument(t *testing.T) {
	tests := []struct {
		name       string
		ins        testInstruction
		instrument bool
	}{
		{"conditional branch", testInstruction{branch: true, fallThrough: true}, true},
		{"unconditional jump", testInstruction{branch: true, fallThrough: false}, false},
		{"call", testInstruction{branch: false, fallThrough: true}, false},
		{"return", testInstruction{branch: false, fallThrough: false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer := New(log.NewTestLogger(t), options.Tracer{}, &bytes.Buffer{})

			hook := tracer.Instrument(tt.ins)
			assert.Equal(t, tt.instrument, hook != nil)
		})
	}
}

func TestTracerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	tracer := New(log.NewTestLogger(t), options.Tracer{}, &buf)

	hook := tracer.Instrument(testInstruction{branch: true, fallThrough: true})
	assert.NotNil(t, hook)

	hook(0x1000, 0x1005, true)
	hook(0x1000, 0x1005, false)
	hook(0x1000, 0x1005, true)

	assert.NoError(t, tracer.Finalize(0))
	assert.Equal(t, "3\n1\n1000\n0\n1000\n1\n1000\n", buf.String())
}

func TestTracerCapacityLimit(t *testing.T) {
	var buf bytes.Buffer
	tracer := New(log.NewTestLogger(t), options.Tracer{Limit: 1}, &buf)

	hook := tracer.Instrument(testInstruction{branch: true, fallThrough: true})
	hook(0x1000, 0x1005, true)
	hook(0x1000, 0x1005, false) // dropped

	assert.NoError(t, tracer.Finalize(0))
	assert.Equal(t, "1\n1\n1000\n", buf.String())
}

func TestTracerFinalizeOnce(t *testing.T) {
	var buf bytes.Buffer
	tracer := New(log.NewTestLogger(t), options.Tracer{}, &buf)

	hook := tracer.Instrument(testInstruction{branch: true, fallThrough: true})
	hook(0x1000, 0x1005, true)

	assert.NoError(t, tracer.Finalize(0))
	written := buf.String()

	// the buffer is released on the first call, a second call can not
	// double-count or serialize again
	assert.Error(t, tracer.Finalize(0))
	assert.Equal(t, written, buf.String())
	assert.Equal(t, 0, len(tracer.Events()))
}
