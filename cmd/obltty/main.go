// Command obltty bridges a pseudo-terminal to a live Baudot/FSK audio
// channel, letting an unmodified legacy TTY application (or a human at a
// terminal emulator) talk over the modem as if it were a real textphone
// line.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/creack/pty"
	"github.com/gordonklaus/portaudio"
	"github.com/pkg/term"
	"github.com/spf13/pflag"

	"github.com/openbaudot/obl/obl"
)

func main() {
	var baud = pflag.IntP("baud", "b", 45, "Baud rate: 45, 47 or 50.")
	var serialPort = pflag.StringP("serial", "s", "", "Bridge to a real serial TTY device instead of creating a pseudo-terminal.")
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "obltty"})
	obl.SetLogger(logger)

	opts := obl.NewOptions()
	switch *baud {
	case 45:
		opts.Baud = obl.Baud45
	case 47:
		opts.Baud = obl.Baud47
	case 50:
		opts.Baud = obl.Baud50
	default:
		logger.Fatalf("unsupported baud rate %d (want 45, 47 or 50)", *baud)
	}

	device, err := openDevice(*serialPort, logger)
	if err != nil {
		logger.Fatal(err)
	}
	defer device.Close()

	audio, err := newDuplexAudio()
	if err != nil {
		logger.Fatal(err)
	}
	defer audio.close()

	m := obl.New(opts, func(kind obl.EventKind, data int) {
		switch kind {
		case obl.EventDemodChar:
			device.Write([]byte{byte(data)})
		case obl.EventTXState:
			logger.Debug("tx state", "state", obl.TXStateData(data))
		case obl.EventDemodAbort:
			logger.Debug("character aborted mid-frame")
		}
	})

	go pumpDeviceInput(device, m, logger)

	for {
		if err := audio.exchange(m); err != nil {
			logger.Fatal(err)
		}
	}
}

// device is anything that looks like a TTY endpoint: a pseudo-terminal
// master or a real serial port.
type device interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

func openDevice(serialPort string, logger *log.Logger) (device, error) {
	if serialPort != "" {
		t, err := term.Open(serialPort, term.RawMode)
		if err != nil {
			return nil, err
		}
		if err := t.SetSpeed(9600); err != nil {
			return nil, err
		}
		logger.Info("bridging to serial device", "port", serialPort)
		return t, nil
	}

	ptmx, pts, err := pty.Open()
	if err != nil {
		return nil, err
	}
	logger.Info("pseudo-terminal ready", "path", pts.Name())
	pts.Close()
	return ptmx, nil
}

func pumpDeviceInput(d device, m *obl.Modem, logger *log.Logger) {
	buf := make([]byte, 256)
	for {
		n, err := d.Read(buf)
		if n > 0 {
			consumed := 0
			text := append(append([]byte{}, buf[:n]...), 0)
			for consumed < n {
				c := m.Enqueue(text[consumed:])
				if c == 0 {
					break // queue full; drop and retry on the next read
				}
				consumed += c
			}
		}
		if err != nil {
			logger.Error("device read failed", "err", err)
			return
		}
	}
}

const duplexBufferSize = 1024

type duplexAudio struct {
	stream *portaudio.Stream
	in     [duplexBufferSize]int16
	out    [duplexBufferSize]int16
}

func newDuplexAudio() (*duplexAudio, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	d := &duplexAudio{}
	stream, err := portaudio.OpenDefaultStream(1, 1, float64(obl.SampleRate), duplexBufferSize, &d.in, &d.out)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	d.stream = stream
	return d, stream.Start()
}

func (d *duplexAudio) exchange(m *obl.Modem) error {
	for i := range d.out {
		d.out[i] = 0
	}
	m.Modulate(d.out[:])

	if err := d.stream.Write(); err != nil {
		return err
	}
	if err := d.stream.Read(); err != nil {
		return err
	}

	m.Demodulate(d.in[:])
	return nil
}

func (d *duplexAudio) close() error {
	err := d.stream.Stop()
	portaudio.Terminate()
	return err
}
