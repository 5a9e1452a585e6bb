//go:build !tinygo

package serial

import (
	"bufio"
	"os"
	"time"

	"teensy3-go/errcode"

	"github.com/tarm/serial"
)

// Config holds host serial port settings.
type Config struct {
	Device      string // e.g. "/dev/ttyACM0", "COM3"
	Baud        int    // ignored by USB CDC, kept for UART bridges
	ReadTimeout time.Duration
}

func DefaultConfig(device string) Config {
	return Config{Device: device, Baud: 115200, ReadTimeout: 100 * time.Millisecond}
}

// HostPort is a Teensy's USB serial device opened from the host.
type HostPort struct {
	*Port
	raw *serial.Port
	r   *bufio.Reader
}

// OpenHost opens cfg.Device via tarm/serial.
func OpenHost(cfg Config) (*HostPort, error) {
	if cfg.Device == "" {
		return nil, errcode.New(errcode.InvalidParams, "open", "no device given")
	}
	raw, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, &errcode.E{C: errcode.Error, Op: "open", Msg: cfg.Device, Err: err}
	}
	r := bufio.NewReader(raw)
	return &HostPort{Port: New(&hostStream{w: raw, r: r}), raw: raw, r: r}, nil
}

// ReadLine returns one line without its terminator.
func (h *HostPort) ReadLine() (string, error) {
	s, err := h.r.ReadString('\n')
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
		if n > 1 && s[n-2] == '\r' {
			s = s[:n-2]
		}
	}
	return s, err
}

func (h *HostPort) Close() error { return h.raw.Close() }

type hostStream struct {
	w interface{ Write([]byte) (int, error) }
	r *bufio.Reader
}

func (s *hostStream) Write(p []byte) (int, error) { return s.w.Write(p) }
func (s *hostStream) ReadByte() (byte, error)     { return s.r.ReadByte() }

// Buffered waits up to the read timeout for data when none is buffered.
func (s *hostStream) Buffered() int {
	if s.r.Buffered() == 0 {
		_, _ = s.r.Peek(1)
	}
	return s.r.Buffered()
}

// Default is the firmware console; on host builds it is stdout with no input.
func Default() *Port { return New(stdoutStream{}) }

type stdoutStream struct{}

func (stdoutStream) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdoutStream) ReadByte() (byte, error)     { return 0, errcode.NoData }
func (stdoutStream) Buffered() int               { return 0 }
