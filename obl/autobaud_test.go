package obl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Autobaud_Disabled_ReportsFallback(t *testing.T) {
	var ab autobaud
	ab.reset(false, Baud50)
	assert.Equal(t, Baud50, ab.estimate)

	ab.step(demodWaitStart, demodSample, 0, 0)
	assert.Equal(t, Baud50, ab.estimate, "a disabled estimator must never change its reported rate")
}

func Test_Autobaud_Enabled_StartsInvalid(t *testing.T) {
	var ab autobaud
	ab.reset(true, Baud45)
	assert.Equal(t, BaudInvalid, ab.estimate)
}

func Test_EdgeDistance_ExactMultipleIsZero(t *testing.T) {
	cell := SampleRate / int(Baud47)
	assert.Equal(t, 0, edgeDistance(2*cell, Baud47))
}

func Test_EdgeDistance_PicksNearestCell(t *testing.T) {
	cell := SampleRate / int(Baud45)
	assert.Equal(t, 5, edgeDistance(cell+5, Baud45))
}

func Test_Autobaud_ConvergesOnTransmittedRate(t *testing.T) {
	var ab autobaud
	ab.reset(true, Baud45)

	// Simulate several characters' worth of edges landing exactly on the
	// 47-baud cell boundary: three rounds is enough to fill the 3-frame
	// smoothing history.
	cell := SampleRate / int(Baud47)
	for i := 0; i < 3; i++ {
		ab.step(demodWaitStart, demodSample, 0, 0) // enter WAIT_ZEROX
		ab.edgeTime = cell
		ab.step(demodSample, demodSample, 100, 1) // zero crossing observed
		ab.step(demodSample, demodWaitStop, 0, 1)
		ab.step(demodWaitStop, demodWaitStart, 0, 1)
	}

	assert.Equal(t, Baud47, ab.estimate)
}

func Test_SetEnabled_Noop_WhenUnchanged(t *testing.T) {
	var ab autobaud
	ab.reset(true, Baud45)
	ab.estimate = Baud50 // pretend it already converged

	ab.setEnabled(true, Baud45)
	assert.Equal(t, Baud50, ab.estimate, "re-enabling an already-enabled estimator must not reset its estimate")
}
