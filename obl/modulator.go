package obl

/*------------------------------------------------------------------
 *
 * Purpose:	The FSK modulator state machine: drain the TX queue one
 *		codeword at a time, framing each with a start bit, five
 *		data bits and a configurable stop interval, and hold mark
 *		tone between characters (§4.3).
 *
 * Description:	Grounded on the teacher's gen_tone.go phase-accumulator
 *		tone generator (Q16 phase step, Q15 sine LUT lookup, no
 *		floating point in the per-sample path) and afsk.go's
 *		bit-to-tone framing, adapted from packet radio's flag/bit-
 *		stuffed HDLC framing to Baudot's fixed 5-bit start-stop
 *		framing.
 *
 *---------------------------------------------------------------*/

import "github.com/openbaudot/obl/obl/internal/fixedpoint"

type modState int

const (
	modIdle modState = iota
	modStart
	modBit
	modStop
	modHold
)

// holdSamples is how long the modulator holds mark tone after the queue
// drains before dropping to true idle (silence), per §4.3.
const holdMillis = 200
const holdSamples = holdMillis * SampleRate / 1000

// EventCallback receives modem lifecycle and decode events (§6).
type EventCallback func(kind EventKind, data int)

// modulator is the per-instance FSK transmit state machine. It owns its own
// phase accumulator and tone amplitudes so two Modems never share mutable
// state (§5).
type modulator struct {
	state modState

	baud          Baud
	samplesPerBit int
	stopBits      StopBits
	stopSamples   int

	codeword Baudot
	bitIndex int
	bit      int
	counter  int

	phase       fixedpoint.Phase
	oneFreqQ16  uint16
	zeroFreqQ16 uint16
	oneAmp      int32
	zeroAmp     int32
}

func (m *modulator) reset(baud Baud) {
	*m = modulator{
		baud:        baud,
		stopBits:    Stop1_5,
		oneFreqQ16:  fixedpoint.FreqToQ16(toneOneHz, SampleRate),
		zeroFreqQ16: fixedpoint.FreqToQ16(toneZeroHz, SampleRate),
		oneAmp:      16384,
		zeroAmp:     16384,
	}
	m.setBaud(baud)
}

func (m *modulator) setBaud(baud Baud) {
	invariant(baud.valid(), "setBaud: %d is not a supported rate", baud)
	m.baud = baud
	m.samplesPerBit = SampleRate / int(baud)
	m.setStopBits(m.stopBits)
}

func (m *modulator) setStopBits(s StopBits) {
	invariant(s.valid(), "setStopBits: %d is not a supported value", s)
	m.stopBits = s
	m.stopSamples = int(s) * m.samplesPerBit / 2
}

func (m *modulator) setFrequencies(oneHz, zeroHz float64) {
	m.oneFreqQ16 = fixedpoint.FreqToQ16(oneHz, SampleRate)
	m.zeroFreqQ16 = fixedpoint.FreqToQ16(zeroHz, SampleRate)
}

func (m *modulator) setAmplitude(amp int16) {
	m.oneAmp = int32(amp)
	m.zeroAmp = int32(amp)
}

func (m *modulator) setAmplitudeImbalance(oneAmp, zeroAmp int16) {
	m.oneAmp = int32(oneAmp)
	m.zeroAmp = int32(zeroAmp)
}

// amplitude reports the average of the two tone amplitudes, matching the
// single-value reading half of the asymmetric SetAmplitudeImbalance API
// (§9 Open Question 2).
func (m *modulator) amplitude() int16 {
	return int16((m.oneAmp + m.zeroAmp) / 2)
}

func (m *modulator) tone(bit int) int16 {
	amp := m.zeroAmp
	step := m.zeroFreqQ16
	if bit != 0 {
		amp = m.oneAmp
		step = m.oneFreqQ16
	}
	m.phase = m.phase.Add(step)
	return fixedpoint.MulQ15(amp, sinLUT[m.phase.LUTIndex()])
}

// modulate fills out with FSK samples drawn from queue, returning how many
// of them are non-silent (tone-bearing). Slots it doesn't write are left at
// whatever the caller's buffer already held -- silence is the caller's
// responsibility to provide, never an explicit write here (§4.3).
func (m *modulator) modulate(queue *txQueue, out []int16, emit EventCallback) int {
	nonIdle := 0

	for i := range out {
		switch m.state {
		case modIdle:
			if queue.empty() {
				continue
			}
			m.state = modStart
			m.counter = 0
			logger.Info("tx state", "state", TXStateStart)
			emit(EventTXState, int(TXStateStart))
			fallthrough

		case modStart:
			out[i] = m.tone(0)
			nonIdle++
			m.counter++
			if m.counter == m.samplesPerBit {
				cw, ok := queue.pop()
				invariant(ok, "modulate: queue emptied between START arming and first pop")
				m.codeword = cw
				m.bitIndex = 0
				m.bit = int(cw) & 1
				m.counter = 0
				m.state = modBit
			}

		case modBit:
			out[i] = m.tone(m.bit)
			nonIdle++
			m.counter++
			if m.counter == m.samplesPerBit {
				m.counter = 0
				m.bitIndex++
				if m.bitIndex < 5 {
					m.bit = int(m.codeword>>uint(m.bitIndex)) & 1
				} else {
					m.state = modStop
				}
			}

		case modStop:
			out[i] = m.tone(1)
			nonIdle++
			m.counter++
			if m.counter == m.stopSamples {
				m.counter = 0
				if queue.empty() {
					m.state = modHold
				} else {
					m.state = modStart
				}
			}

		case modHold:
			out[i] = m.tone(1)
			nonIdle++
			if !queue.empty() {
				m.counter = 0
				m.state = modStart
				continue
			}
			m.counter++
			if m.counter == holdSamples {
				m.counter = 0
				m.state = modIdle
				logger.Info("tx state", "state", TXStateStop)
				emit(EventTXState, int(TXStateStop))
			}
		}
	}

	return nonIdle
}
