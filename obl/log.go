package obl

/*------------------------------------------------------------------
 *
 * Purpose:	Package-wide logger for the modem core.
 *
 * Description:	The core never decides where its log output goes; the
 *		embedding application does, exactly the way the teacher's
 *		text_color_set() lets a host choose a verbosity level once
 *		at start up. Here the host swaps in its own
 *		*log.Logger via SetLogger instead.
 *
 *---------------------------------------------------------------*/

import (
	"io"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(io.Discard, log.Options{
	Prefix: "obl",
})

// SetLogger installs l as the destination for diagnostic output emitted by
// every Modem instance in this process. The default logger discards output.
func SetLogger(l *log.Logger) {
	if l == nil {
		return
	}
	logger = l
}

// debugEnabled guards the per-sample-edge debug logging in the bit sampler
// so the hot demodulation loop never pays for key-value formatting it is
// just going to discard.
func debugEnabled() bool {
	return logger.GetLevel() <= log.DebugLevel
}
