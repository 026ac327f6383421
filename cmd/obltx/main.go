// Command obltx reads UTF-8 text from standard input and transmits it as
// Baudot/FSK audio, either to the default PortAudio output device or to a
// raw 16-bit PCM file.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"

	"github.com/openbaudot/obl/obl"
)

func main() {
	var baud = pflag.IntP("baud", "b", 45, "Baud rate: 45, 47 or 50.")
	var noCRLF = pflag.BoolP("no-crlf", "n", false, "Disable automatic CR-LF line folding.")
	var outFile = pflag.StringP("out", "o", "", "Write raw 16-bit PCM samples here instead of playing live audio.")
	var quiet = pflag.BoolP("quiet", "q", false, "Suppress progress logging.")
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "obltx"})
	if *quiet {
		logger.SetLevel(log.ErrorLevel)
	}
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
	opts.CRLFFolding = !*noCRLF

	m := obl.New(opts, func(kind obl.EventKind, data int) {
		if kind == obl.EventTXState {
			logger.Debug("tx state", "state", obl.TXStateData(data))
		}
	})

	if err := run(m, logger, *outFile); err != nil {
		logger.Fatal(err)
	}
}

type sampleSink interface {
	write(samples []int16) error
	close() error
}

func run(m *obl.Modem, logger *log.Logger, outFile string) error {
	sink, err := newSink(outFile)
	if err != nil {
		return fmt.Errorf("opening output: %w", err)
	}
	defer sink.close()

	reader := bufio.NewReader(os.Stdin)
	buf := make([]byte, 4096)
	chunk := make([]int16, 4096)

	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			consumed := 0
			for consumed < n {
				c := m.Enqueue(append(buf[consumed:n:n], 0))
				if c == 0 {
					if err := pump(m, sink, chunk); err != nil {
						return err
					}
					continue
				}
				consumed += c
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return readErr
		}
	}

	for m.TXQueueLen() > 0 {
		if err := pump(m, sink, chunk); err != nil {
			return err
		}
	}
	// Drain the trailing hold tone.
	for i := 0; i < 10; i++ {
		if err := pump(m, sink, chunk); err != nil {
			return err
		}
	}

	return nil
}

func pump(m *obl.Modem, sink sampleSink, chunk []int16) error {
	for i := range chunk {
		chunk[i] = 0
	}
	m.Modulate(chunk)
	return sink.write(chunk)
}

func newSink(path string) (sampleSink, error) {
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		return &fileSink{f: f}, nil
	}
	return newPortaudioSink()
}

type fileSink struct {
	f *os.File
}

func (s *fileSink) write(samples []int16) error {
	buf := make([]byte, len(samples)*2)
	for i, v := range samples {
		buf[2*i] = byte(v)
		buf[2*i+1] = byte(v >> 8)
	}
	_, err := s.f.Write(buf)
	return err
}

func (s *fileSink) close() error { return s.f.Close() }

const portaudioBufferSize = 4096

type portaudioSink struct {
	stream *portaudio.Stream
	buf    [portaudioBufferSize]int16
}

func newPortaudioSink() (*portaudioSink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	s := &portaudioSink{}
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(obl.SampleRate), portaudioBufferSize, &s.buf)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	s.stream = stream
	return s, stream.Start()
}

func (s *portaudioSink) write(samples []int16) error {
	invariant(len(samples) == portaudioBufferSize, "portaudioSink.write: chunk size must match the stream's buffer size")
	copy(s.buf[:], samples)
	return s.stream.Write()
}

func invariant(cond bool, msg string) {
	if !cond {
		panic(msg)
	}
}

func (s *portaudioSink) close() error {
	err := s.stream.Stop()
	portaudio.Terminate()
	return err
}
