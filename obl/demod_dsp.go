package obl

/*------------------------------------------------------------------
 *
 * Purpose:	The demodulator's analogue front end: a pair of narrowband
 *		resonators tuned to the mark/space tones, a boxcar
 *		smoother on their decision metric, and a matching energy
 *		reference (§4.4).
 *
 * Description:	Grounded on the teacher's demod_afsk.go two-filter
 *		mark/space design and dtmf.go's Goertzel-coefficient
 *		precompute-once style, adapted from a per-channel global
 *		array to per-instance value fields so each Modem owns its
 *		own filter history, matching §5's no-shared-mutable-state
 *		rule.
 *
 *---------------------------------------------------------------*/

import (
	"math"

	"github.com/openbaudot/obl/obl/internal/fixedpoint"
)

const (
	resonatorBeta = 0.95
	toneOneHz     = 1400.0 // mark
	toneZeroHz    = 1800.0 // space
	boxcarLen     = 20     // §4.4 / §9 OBL_LPF
)

// Resonator coefficients are fixed: the demodulator always listens for the
// nominal 1400/1800 Hz tones regardless of what frequencies the local
// modulator is configured to transmit (those can be detuned independently
// for testing, per §4.3).
var (
	dspC1 = fixedpoint.Q15(2.0 * math.Cos(2.0*math.Pi*toneOneHz/SampleRate) * resonatorBeta)
	dspC2 = fixedpoint.Q15(resonatorBeta * resonatorBeta)
	dspC3 = fixedpoint.Q15(2.0 * math.Cos(2.0*math.Pi*toneZeroHz/SampleRate) * resonatorBeta)
)

// demodDSP is the resonator pair plus smoother and energy-reference boxcar
// filters, stepped once per input sample.
type demodDSP struct {
	oneQ0  [2]int16
	zeroQ0 [2]int16

	metricHist [boxcarLen]int16
	metricPos  int
	metricSum  int32

	energyHist [boxcarLen]int16
	energyPos  int
	energySum  int32
}

func (d *demodDSP) reset() {
	*d = demodDSP{}
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

// step feeds one input sample through both resonators and returns the
// smoothed decision metric and the energy reference used to gate the bit
// sampler and drop-out detector.
func (d *demodDSP) step(sample int16) (metric, energy int32) {
	sample >>= 5

	one := sample + int16((int32(dspC1)*int32(d.oneQ0[0]))>>15) - int16((int32(dspC2)*int32(d.oneQ0[1]))>>15)
	d.oneQ0[1] = d.oneQ0[0]
	d.oneQ0[0] = one

	zero := sample + int16((int32(dspC3)*int32(d.zeroQ0[0]))>>15) - int16((int32(dspC2)*int32(d.zeroQ0[1]))>>15)
	d.zeroQ0[1] = d.zeroQ0[0]
	d.zeroQ0[0] = zero

	x := abs16(one) - abs16(zero)

	d.metricSum -= int32(d.metricHist[d.metricPos])
	d.metricSum += int32(x)
	d.metricHist[d.metricPos] = x
	d.metricPos = (d.metricPos + 1) % boxcarLen

	absSample := abs16(sample)
	d.energySum -= int32(d.energyHist[d.energyPos])
	d.energySum += int32(absSample)
	d.energyHist[d.energyPos] = absSample
	d.energyPos = (d.energyPos + 1) % boxcarLen

	return d.metricSum, d.energySum
}
