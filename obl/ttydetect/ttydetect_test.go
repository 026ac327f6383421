package ttydetect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func toneSamples(freqHz float64, n int, amplitude float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amplitude * math.Sin(2*math.Pi*freqHz*float64(i)/SampleRate))
	}
	return out
}

func Test_Detector_SilenceNeverPresent(t *testing.T) {
	var d Detector
	d.Feed(make([]int16, WindowSize*presentAfter*2))
	assert.False(t, d.Present())
}

func Test_Detector_SustainedTonePresent(t *testing.T) {
	var d Detector
	d.Feed(toneSamples(toneLowHz, WindowSize*(presentAfter+4), 20000))
	assert.True(t, d.Present())
}

func Test_Detector_BriefToneNotPresent(t *testing.T) {
	var d Detector
	d.Feed(toneSamples(toneHighHz, WindowSize*4, 20000))
	assert.False(t, d.Present())
}

func Test_Detector_Reset_ClearsRun(t *testing.T) {
	var d Detector
	d.Feed(toneSamples(toneLowHz, WindowSize*(presentAfter+4), 20000))
	require_ := assert.New(t)
	require_.True(d.Present())

	d.Reset()
	require_.False(d.Present())
}

func Test_GoertzelPower_WeakSignalBelowThreshold(t *testing.T) {
	var window [WindowSize]int16
	for i := range window {
		window[i] = int16(100 * math.Sin(2*math.Pi*toneLowHz*float64(i)/SampleRate))
	}
	assert.Less(t, goertzelPower(window[:], coeffLow), float64(thresholdLow))
}
