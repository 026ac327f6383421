// Package fixedpoint collects the small Q15/Q16 fixed-point primitives used
// by the modem: a wrapping phase accumulator and the Q15 multiply the
// modulator uses to rescale tone-generator products back to Q0 samples, plus
// the Q15 conversion the demodulator uses for its resonator coefficients.
// The demodulator's per-sample resonator rescaling is done inline in
// demod_dsp.go, not through MulQ15.
package fixedpoint

import "math"

// Phase is a Q16 angular phase accumulator covering one full period in
// [0, 65536). Advancing it with Add wraps naturally via unsigned overflow,
// which is the whole point of representing phase this way (§4.3, §9).
type Phase uint16

// Add advances the phase by delta, wrapping modulo 2^16.
func (p Phase) Add(delta uint16) Phase {
	return p + Phase(delta)
}

// LUTIndex returns the index into a 16384-entry sine table: the top 14 bits
// of the 16-bit phase.
func (p Phase) LUTIndex() uint16 {
	return uint16(p) >> 2
}

// FreqToQ16 converts an angular frequency in Hz, sampled at sampleRate, into
// a Q16 per-sample phase step suitable for accumulation by Phase.Add.
func FreqToQ16(freqHz float64, sampleRate int) uint16 {
	w := 2.0 * math.Pi * freqHz / float64(sampleRate)
	return uint16((65536.0 / (2.0 * math.Pi)) * w)
}

// MulQ15 multiplies a Q15 value by a 16-bit amplitude and rescales the
// product back down to a Q0 signed sample. The 32-bit intermediate avoids
// overflow of the multiply itself.
func MulQ15(amp int32, q15 int16) int16 {
	return int16((amp * int32(q15)) >> 15)
}

// Q15 precomputes a Q15 fixed-point representation of a float64 coefficient
// in (-2.0, 2.0), as used for the demodulator's resonator coefficients.
func Q15(v float64) int32 {
	return int32(v * 32768.0)
}
