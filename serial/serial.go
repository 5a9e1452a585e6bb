// Package serial wraps the USB CDC serial device with byte reads, decimal
// parsing and formatted printing.
package serial

import (
	"fmt"
	"io"

	"teensy3-go/errcode"
)

// Stream is satisfied by TinyGo's machine.Serial and by bufio-wrapped host ports.
type Stream interface {
	io.Writer
	io.ByteReader
	Buffered() int
}

type Port struct {
	s Stream
}

func New(s Stream) *Port { return &Port{s: s} }

// Readable reports whether a byte can be read without waiting.
func (p *Port) Readable() bool { return p.s.Buffered() > 0 }

// TryReadByte returns the next byte, or no_data when nothing is buffered.
func (p *Port) TryReadByte() (byte, error) {
	if !p.Readable() {
		return 0, errcode.NoData
	}
	b, err := p.s.ReadByte()
	if err != nil {
		return 0, &errcode.E{C: errcode.NoData, Op: "read_byte", Err: err}
	}
	return b, nil
}

// MustReadByte is TryReadByte that panics when nothing is buffered.
func (p *Port) MustReadByte() byte {
	b, err := p.TryReadByte()
	if err != nil {
		panic(err)
	}
	return b
}

const maxUint32 = 1<<32 - 1

// ReadIntUntil parses decimal digits up to delim. It fails on a non-digit,
// on overflow, or when the input runs dry before delim arrives.
func (p *Port) ReadIntUntil(delim byte) (uint32, error) {
	var v uint32
	for {
		b, err := p.TryReadByte()
		if err != nil {
			return 0, err
		}
		if b == delim {
			return v, nil
		}
		if b < '0' || b > '9' {
			return 0, errcode.New(errcode.InvalidPayload, "read_int", "expected a decimal digit")
		}
		d := uint32(b - '0')
		if v > (maxUint32-d)/10 {
			return 0, errcode.New(errcode.InvalidPayload, "read_int", "value overflows uint32")
		}
		v = v*10 + d
	}
}

func (p *Port) Write(b []byte) (int, error) { return p.s.Write(b) }

// WriteBytes writes all of b.
func (p *Port) WriteBytes(b []byte) error {
	n, err := p.s.Write(b)
	if err == nil && n < len(b) {
		err = io.ErrShortWrite
	}
	return err
}

func (p *Port) Print(a ...any) error {
	_, err := fmt.Fprint(p.s, a...)
	return err
}

// Println ends the line with CR LF, which serial terminals need to return
// the cursor. HostPort.ReadLine strips either ending.
func (p *Port) Println(a ...any) error {
	line := fmt.Sprintln(a...)
	_, err := io.WriteString(p.s, line[:len(line)-1]+"\r\n")
	return err
}

func (p *Port) Printf(format string, a ...any) error {
	_, err := fmt.Fprintf(p.s, format, a...)
	return err
}
