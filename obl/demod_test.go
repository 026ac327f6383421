package obl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// modulateAll drains q through mo entirely, growing the output as needed,
// and returns the full sample stream produced.
func modulateAll(mo *modulator, q *txQueue) []int16 {
	var out []int16
	chunk := make([]int16, 4096)
	idleRuns := 0
	for idleRuns < 3 {
		for i := range chunk {
			chunk[i] = 0
		}
		n := mo.modulate(q, chunk, func(EventKind, int) {})
		out = append(out, chunk...)
		if n == 0 {
			idleRuns++
		} else {
			idleRuns = 0
		}
	}
	return out
}

func Test_DemodDSP_BitSampler_DecodesModulatedCharacter(t *testing.T) {
	mo, q := newTestModulator()
	mo.setBaud(Baud47) // matches the bit sampler's fixed sampling rate

	q.push(LETR)
	q.push(asciiToBaudot['H'].code)
	q.push(asciiToBaudot['I'].code)

	samples := modulateAll(mo, q)

	var dsp demodDSP
	var bits bitSampler
	bits.reset()

	var chars []byte
	var cases []ShiftState
	emit := func(kind EventKind, data int) {
		switch kind {
		case EventDemodChar:
			chars = append(chars, byte(data))
		case EventDemodCase:
			cases = append(cases, ShiftState(data))
		}
	}

	for _, s := range samples {
		metric, energy := dsp.step(s)
		bits.step(metric, energy, emit)
	}

	require.Contains(t, cases, Letters)
	assert.Equal(t, []byte("HI"), chars)
}

func Test_BitSampler_StartsInLetters(t *testing.T) {
	var b bitSampler
	b.reset()
	assert.Equal(t, Letters, b.shift)
	assert.Equal(t, demodWaitStart, b.phase)
}

func Test_BitSampler_WeakSignal_StaysAtWaitStart(t *testing.T) {
	var b bitSampler
	b.reset()

	var fired bool
	for i := 0; i < 1000; i++ {
		_, next := b.step(0, 0, func(EventKind, int) { fired = true })
		assert.Equal(t, demodWaitStart, next)
	}
	assert.False(t, fired)
}

func Test_DemodDSP_Reset_ClearsHistory(t *testing.T) {
	var d demodDSP
	for i := 0; i < 50; i++ {
		d.step(int16(1000))
	}
	d.reset()
	metric, energy := d.step(0)
	assert.Equal(t, int32(0), metric)
	assert.Equal(t, int32(0), energy)
}
