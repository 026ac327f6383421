// Command oblrx demodulates Baudot/FSK audio, either captured live from the
// default PortAudio input device or read from a raw 16-bit PCM file, and
// writes the decoded text to standard output.
package main

import (
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"

	"github.com/openbaudot/obl/obl"
)

func main() {
	var inFile = pflag.StringP("in", "i", "", "Read raw 16-bit PCM samples from this file instead of capturing live audio.")
	var noAutobaud = pflag.BoolP("no-autobaud", "n", false, "Disable the autobaud estimator.")
	var quiet = pflag.BoolP("quiet", "q", false, "Suppress progress logging.")
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "oblrx"})
	if *quiet {
		logger.SetLevel(log.ErrorLevel)
	}
	obl.SetLogger(logger)

	opts := obl.NewOptions()
	opts.AutobaudEnable = !*noAutobaud

	stdout := os.Stdout
	m := obl.New(opts, func(kind obl.EventKind, data int) {
		switch kind {
		case obl.EventDemodChar:
			stdout.Write([]byte{byte(data)})
		case obl.EventDemodAbort:
			logger.Debug("character aborted mid-frame")
		case obl.EventTXState:
			logger.Debug("tx state observed while receiving", "state", obl.TXStateData(data))
		}
	})

	if err := run(m, logger, *inFile); err != nil {
		logger.Fatal(err)
	}
}

type sampleSource interface {
	read(buf []int16) (int, error)
	close() error
}

func run(m *obl.Modem, logger *log.Logger, inFile string) error {
	source, err := newSource(inFile)
	if err != nil {
		return err
	}
	defer source.close()

	buf := make([]int16, 4096)
	for {
		n, readErr := source.read(buf)
		if n > 0 {
			m.Demodulate(buf[:n])
		}
		if errors.Is(readErr, io.EOF) {
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}

func newSource(path string) (sampleSource, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return &fileSource{f: f}, nil
	}
	return newPortaudioSource()
}

type fileSource struct {
	f *os.File
}

func (s *fileSource) read(buf []int16) (int, error) {
	raw := make([]byte, len(buf)*2)
	n, err := io.ReadFull(s.f, raw)
	samples := n / 2
	for i := 0; i < samples; i++ {
		buf[i] = int16(binary.LittleEndian.Uint16(raw[2*i : 2*i+2]))
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	return samples, err
}

func (s *fileSource) close() error { return s.f.Close() }

const portaudioBufferSize = 4096

type portaudioSource struct {
	stream *portaudio.Stream
	buf    [portaudioBufferSize]int16
}

func newPortaudioSource() (*portaudioSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	s := &portaudioSource{}
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(obl.SampleRate), portaudioBufferSize, &s.buf)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	s.stream = stream
	return s, stream.Start()
}

func (s *portaudioSource) read(buf []int16) (int, error) {
	if err := s.stream.Read(); err != nil {
		return 0, err
	}
	n := copy(buf, s.buf[:])
	return n, nil
}

func (s *portaudioSource) close() error {
	err := s.stream.Stop()
	portaudio.Terminate()
	return err
}
