package obl

/*------------------------------------------------------------------
 *
 * Purpose:	The top-level half-duplex arbiter: decide whether the
 *		shared audio channel belongs to the modulator or the
 *		demodulator this instant (§4.7).
 *
 * Description:	Grounded on the teacher's ptt.go PTT/channel-busy
 *		arbitration (don't key the transmitter over a channel
 *		someone else is using; don't listen to your own sidetone),
 *		adapted from AX.25's carrier-sense-multiple-access rule to
 *		Baudot half-duplex's simpler fixed 200ms TX-silence
 *		timeout.
 *
 *---------------------------------------------------------------*/

type arbiterPhase int

const (
	arbiterReset arbiterPhase = iota
	arbiterMod
	arbiterDemod
)

// txTimeoutSamples is the 200ms silence window after which the arbiter
// hands the channel back to the demodulator (§4.7).
const txTimeoutSamples = 200 * SampleRate / 1000

type arbiter struct {
	phase   arbiterPhase
	txTimer int
}

func (a *arbiter) reset() {
	*a = arbiter{phase: arbiterReset}
}

// forceMod is called whenever text is enqueued: the arbiter always yields
// to an application that has something to say (§4.2, §4.7).
func (a *arbiter) forceMod() {
	a.phase = arbiterMod
	a.txTimer = 0
}

// afterModulate updates the TX-silence timer from the outcome of one
// Modulate call: producing any non-idle sample resets it, producing only
// silence advances it by the full sample count (§4.7).
func (a *arbiter) afterModulate(nonIdleSamples, totalSamples int) {
	if nonIdleSamples > 0 {
		a.txTimer = 0
		return
	}
	a.txTimer += totalSamples
}

// demodGate reports whether a Demodulate call should process its buffer
// this invocation. RESET always falls through to DEMOD immediately; MOD
// only releases the channel once the TX-silence timer exceeds 200ms, at
// which point the demodulator's shift state is seeded from the queue's
// remembered shift (Open Question resolved per §4.7) and timeoutFired
// signals the caller to emit EventTXState(TXStateTimeout).
func (a *arbiter) demodGate(txShift ShiftState) (proceed bool, seedShift ShiftState, timeoutFired bool) {
	switch a.phase {
	case arbiterReset:
		a.phase = arbiterDemod
		return true, 0, false

	case arbiterMod:
		if a.txTimer <= txTimeoutSamples {
			return false, 0, false
		}
		a.txTimer = 0
		a.phase = arbiterDemod
		seed := Letters
		if txShift == Figures {
			seed = Figures
		}
		return true, seed, true

	default: // arbiterDemod
		return true, 0, false
	}
}
