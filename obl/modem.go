package obl

/*------------------------------------------------------------------
 *
 * Purpose:	Modem is the public surface of the package: a single
 *		aggregate value composing the TX queue, modulator,
 *		demodulator, autobaud estimator and half-duplex arbiter
 *		into the six logical sub-states described in §3.
 *
 * Description:	Grounded on the teacher's audio_s struct (one aggregate
 *		per channel, configured once via Options and then driven
 *		sample-buffer-at-a-time) and its textcolor.go-style
 *		package logger. A Modem is safe to use from exactly one
 *		goroutine at a time -- there is no internal locking,
 *		matching the single-threaded-per-instance concurrency
 *		model (§5).
 *
 *---------------------------------------------------------------*/

// Options configures a new Modem. The zero value is not valid; always
// build one with NewOptions.
type Options struct {
	Baud           Baud
	StopBits       StopBits
	CRLFFolding    bool
	AutobaudEnable bool
	OneFreqHz      float64
	ZeroFreqHz     float64
}

// NewOptions returns the modem's default configuration: 45 baud,
// 1.5 stop bits, CR-LF folding enabled, autobaud enabled, nominal
// 1400/1800 Hz tones.
func NewOptions() Options {
	return Options{
		Baud:           Baud45,
		StopBits:       Stop1_5,
		CRLFFolding:    true,
		AutobaudEnable: true,
		OneFreqHz:      toneOneHz,
		ZeroFreqHz:     toneZeroHz,
	}
}

// Modem is a realtime, bidirectional Baudot/FSK software modem instance.
type Modem struct {
	callback EventCallback

	queue    txQueue
	mod      modulator
	dsp      demodDSP
	bits     bitSampler
	autobaud autobaud
	arbiter  arbiter
}

// New constructs a Modem from opts and a callback that receives decode and
// lifecycle events. callback may be nil, in which case events are dropped.
func New(opts Options, callback EventCallback) *Modem {
	invariant(opts.Baud.valid(), "New: %d is not a supported baud rate", opts.Baud)
	invariant(opts.StopBits.valid(), "New: %d is not a supported stop-bit setting", opts.StopBits)

	initTables()

	m := &Modem{callback: callback}
	m.Reset(opts)
	return m
}

// Reset reinitializes every sub-state from opts, as if the Modem had just
// been constructed (§3, §9 Open Question 1: the TX queue's buffer, not just
// its head/tail/count, is unambiguously zeroed).
func (m *Modem) Reset(opts Options) {
	m.queue.reset()
	m.queue.crlf = opts.CRLFFolding

	m.mod.reset(opts.Baud)
	m.mod.setStopBits(opts.StopBits)
	if opts.OneFreqHz != 0 && opts.ZeroFreqHz != 0 {
		m.mod.setFrequencies(opts.OneFreqHz, opts.ZeroFreqHz)
	}

	m.dsp.reset()
	m.bits.reset()
	m.autobaud.reset(opts.AutobaudEnable, opts.Baud)
	m.arbiter.reset()
}

func (m *Modem) emit(kind EventKind, data int) {
	if m.callback != nil {
		m.callback(kind, data)
	}
}

// Enqueue accepts UTF-8 text for transmission, applying the shift and
// CR-LF folding policy of §4.2, and returns how many bytes were consumed.
// Consumption stops at the first zero byte, which is not counted; it stops
// short of that byte only if the TX queue is full. Enqueueing forces the
// half-duplex arbiter to MOD (§4.7).
func (m *Modem) Enqueue(text []byte) int {
	n := m.queue.enqueue(text)
	if n > 0 {
		m.arbiter.forceMod()
	}
	if n < len(text) && text[n] != 0 {
		logger.Warn("tx queue full, input truncated", "consumed", n, "requested", len(text))
	}
	return n
}

// TXQueueLen reports how many Baudot codewords are currently queued.
func (m *Modem) TXQueueLen() int { return m.queue.len() }

// SetBaud changes the modulator's bit rate. It takes effect on the next
// character framed; a character already in progress keeps its original
// timing.
func (m *Modem) SetBaud(baud Baud) { m.mod.setBaud(baud) }

// SetStopBits changes the modulator's stop-interval duration.
func (m *Modem) SetStopBits(s StopBits) { m.mod.setStopBits(s) }

// SetCRLFFolding toggles automatic CR-LF insertion on the TX queue.
func (m *Modem) SetCRLFFolding(enabled bool) { m.queue.crlf = enabled }

// SetTXFrequencies detunes the modulator's mark/zero tones; the demodulator
// always listens at the nominal 1400/1800 Hz regardless (§4.3, §4.4).
func (m *Modem) SetTXFrequencies(oneHz, zeroHz float64) { m.mod.setFrequencies(oneHz, zeroHz) }

// SetAmplitude sets both tone amplitudes to the same value.
func (m *Modem) SetAmplitude(amp int16) { m.mod.setAmplitude(amp) }

// SetAmplitudeImbalance sets the mark and space tone amplitudes
// independently. Unlike the original implementation, the two arguments are
// never aliased to the same underlying value (§9 Open Question 2).
func (m *Modem) SetAmplitudeImbalance(oneAmp, zeroAmp int16) {
	m.mod.setAmplitudeImbalance(oneAmp, zeroAmp)
}

// GetAmplitude reports the average of the configured mark/space amplitudes.
func (m *Modem) GetAmplitude() int16 { return m.mod.amplitude() }

// EnableAutobaud turns the autobaud estimator on or off. Disabling it seeds
// the reported estimate with the modulator's current baud rate.
func (m *Modem) EnableAutobaud(enabled bool) { m.autobaud.setEnabled(enabled, m.mod.baud) }

// EstimatedBaud reports the autobaud estimator's current best guess, or
// BaudInvalid if it hasn't settled on one yet.
func (m *Modem) EstimatedBaud() Baud { return m.autobaud.estimate }

// Modulate fills out with FSK audio samples drawn from the TX queue and
// returns how many of them carry tone (as opposed to being left untouched,
// i.e. silent). It also advances the half-duplex arbiter's TX-silence timer
// (§4.3, §4.7).
func (m *Modem) Modulate(out []int16) int {
	n := m.mod.modulate(&m.queue, out, m.emit)
	m.arbiter.afterModulate(n, len(out))
	return n
}

// Demodulate feeds buf through the demodulator and autobaud estimator,
// unless the half-duplex arbiter is still in MOD and the TX-silence timeout
// hasn't yet elapsed, in which case it is a no-op (§4.7).
func (m *Modem) Demodulate(buf []int16) {
	proceed, seedShift, timeoutFired := m.arbiter.demodGate(m.queue.shift)
	if !proceed {
		return
	}
	if timeoutFired {
		m.bits.shift = seedShift
		logger.Info("tx state", "state", TXStateTimeout)
		m.emit(EventTXState, int(TXStateTimeout))
	}

	for _, sample := range buf {
		metric, energy := m.dsp.step(sample)
		prev, next := m.bits.step(metric, energy, m.emit)
		m.autobaud.step(prev, next, metric, energy)
	}
}
