package obl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestModulator() (*modulator, *txQueue) {
	var mo modulator
	mo.reset(Baud45)
	var q txQueue
	q.reset()
	return &mo, &q
}

func Test_Modulate_EmptyQueue_ProducesNoTone(t *testing.T) {
	mo, q := newTestModulator()

	out := make([]int16, 500)
	n := mo.modulate(q, out, func(EventKind, int) {})

	assert.Equal(t, 0, n)
}

func Test_Modulate_ZeroLengthBuffer_NoOp(t *testing.T) {
	mo, q := newTestModulator()
	q.push(LETR)

	n := mo.modulate(q, nil, func(EventKind, int) {})

	assert.Equal(t, 0, n)
}

func Test_Modulate_DrainsQueueEventually(t *testing.T) {
	mo, q := newTestModulator()
	q.push(LETR)
	q.push(0x03) // 'A' in LETTERS

	var events []EventKind
	out := make([]int16, 100000)
	mo.modulate(q, out, func(k EventKind, _ int) { events = append(events, k) })

	assert.True(t, q.empty(), "queue should have drained within 100k samples at 45 baud")
	require.Contains(t, events, EventTXState)
}

func Test_Modulate_HoldThenIdle_EmitsStopEvent(t *testing.T) {
	mo, q := newTestModulator()
	q.push(LETR)

	var sawStop bool
	// Enough samples to clear the one codeword, ride the stop interval and
	// the full 200ms hold, and reach IDLE.
	out := make([]int16, SampleRate)
	mo.modulate(q, out, func(k EventKind, data int) {
		if k == EventTXState && TXStateData(data) == TXStateStop {
			sawStop = true
		}
	})

	assert.True(t, sawStop)
	assert.Equal(t, modIdle, mo.state)
}

func Test_Modulate_NeverPopsBelowZeroLength(t *testing.T) {
	// Property: modulate must never pop more codewords than were pushed,
	// regardless of how many samples it is asked to produce.
	rapid.Check(t, func(t *rapid.T) {
		mo, q := newTestModulator()

		n := rapid.IntRange(0, 50).Draw(t, "codewords")
		for i := 0; i < n; i++ {
			q.push(Baudot(i % 32))
		}

		out := make([]int16, rapid.IntRange(0, 20000).Draw(t, "samples"))
		mo.modulate(q, out, func(EventKind, int) {})

		assert.GreaterOrEqual(t, q.len(), 0)
	})
}

func Test_SetAmplitudeImbalance_Independent(t *testing.T) {
	mo, _ := newTestModulator()
	mo.setAmplitudeImbalance(1000, 2000)

	assert.NotEqual(t, mo.oneAmp, mo.zeroAmp, "one and zero amplitudes must not alias each other")
	assert.Equal(t, int16(1500), mo.amplitude())
}

func Test_SetBaud_RecomputesSamplesPerBit(t *testing.T) {
	mo, _ := newTestModulator()
	mo.setBaud(Baud50)
	assert.Equal(t, SampleRate/50, mo.samplesPerBit)
}
