// Package pins hands out exclusive GPIO pin handles.
//
// The hardware has no notion of ownership: any code holding a pin number can
// drive it. A PinRow turns a pin number into a checked *Pin and makes a
// second acquisition of the same pin a detected error instead of two owners
// fighting over one line.
package pins

import (
	"strconv"
	"sync"
	"sync/atomic"

	"teensy3-go/board"
	"teensy3-go/errcode"
)

type Mode uint8

const (
	Input Mode = iota
	Output
	InputPullup
	InputPulldown
	OutputOpenDrain
)

func (m Mode) String() string {
	switch m {
	case Input:
		return "input"
	case Output:
		return "output"
	case InputPullup:
		return "input_pullup"
	case InputPulldown:
		return "input_pulldown"
	case OutputOpenDrain:
		return "output_open_drain"
	default:
		return "unknown"
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, bool) {
	for m := Input; m <= OutputOpenDrain; m++ {
		if m.String() == s {
			return m, true
		}
	}
	return 0, false
}

// Writable reports whether the mode permits driving the pin.
func (m Mode) Writable() bool { return m == Output || m == OutputOpenDrain }

// RawIO is the platform's unchecked pin surface.
type RawIO interface {
	SetPinMode(pin uint8, m Mode)
	DigitalWrite(pin uint8, high bool)
	DigitalRead(pin uint8) bool
	DelayMs(ms uint32)
}

// pullupSettleMs is how long a pulled-up input takes to reach its high level.
const pullupSettleMs = 1

// PinRow is the ownership ledger over one board's pins.
type PinRow struct {
	mu     sync.Mutex
	raw    RawIO
	n      int
	led    uint8
	used   [board.MaxPins]bool
	handle [board.MaxPins]*Pin
}

var constructed atomic.Bool

// NewOnce builds the process-wide row. It may succeed once per process;
// later calls fail with already_constructed.
func NewOnce(raw RawIO, p board.Profile) (*PinRow, error) {
	if !constructed.CompareAndSwap(false, true) {
		return nil, errcode.New(errcode.AlreadyConstructed, "pins.NewOnce", "pin row already constructed")
	}
	return New(raw, p), nil
}

// MustNewOnce is NewOnce that panics.
func MustNewOnce(raw RawIO, p board.Profile) *PinRow {
	r, err := NewOnce(raw, p)
	if err != nil {
		panic(err)
	}
	return r
}

// New builds an independent row with every pin free. It bypasses the
// construct-once guard; firmware should use NewOnce.
func New(raw RawIO, p board.Profile) *PinRow {
	n := p.NumPins
	if n > board.MaxPins {
		n = board.MaxPins
	}
	return &PinRow{raw: raw, n: n, led: p.LEDPin}
}

// NumPins is the number of addressable pins.
func (r *PinRow) NumPins() int { return r.n }

func (r *PinRow) bounds(op string, index uint8) error {
	if int(index) >= r.n {
		return errcode.New(errcode.IndexOutOfRange, op, "pin "+strconv.Itoa(int(index))+" of "+strconv.Itoa(r.n))
	}
	return nil
}

// IsUsed reports whether index is currently checked out.
func (r *PinRow) IsUsed(index uint8) (bool, error) {
	if err := r.bounds("is_used", index); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.used[index], nil
}

// Acquire reserves index and programs it for m. Outputs start low; a
// pulled-up input is given time to settle before the handle is returned.
func (r *PinRow) Acquire(index uint8, m Mode) (*Pin, error) {
	if err := r.bounds("acquire", index); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.used[index] {
		return nil, errcode.New(errcode.PinAlreadyReserved, "acquire", "pin "+strconv.Itoa(int(index))+" already reserved")
	}
	p := &Pin{row: r, index: index}
	p.program(m)
	if m == Output {
		r.raw.DigitalWrite(index, false)
	}
	r.used[index] = true
	r.handle[index] = p
	return p, nil
}

// MustAcquire is Acquire that panics.
func (r *PinRow) MustAcquire(index uint8, m Mode) *Pin {
	p, err := r.Acquire(index, m)
	if err != nil {
		panic(err)
	}
	return p
}

// AcquireLED reserves the on-board LED as an output, switched off.
func (r *PinRow) AcquireLED() (*Pin, error) {
	p, err := r.Acquire(r.led, Output)
	if err != nil {
		return nil, err
	}
	r.raw.DigitalWrite(r.led, false)
	return p, nil
}

// Release returns p to the row. Outputs are driven low first. Releasing a
// pin twice, or through a stale handle, fails with double_release.
func (r *PinRow) Release(p *Pin) error {
	if p == nil {
		return errcode.New(errcode.InvalidParams, "release", "nil pin")
	}
	if err := r.bounds("release", p.index); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.used[p.index] || r.handle[p.index] != p {
		return errcode.New(errcode.DoubleRelease, "release", "pin "+strconv.Itoa(int(p.index))+" is not held by this handle")
	}
	p.mu.Lock()
	if p.mode.Writable() {
		r.raw.DigitalWrite(p.index, false)
	}
	p.released = true
	p.mu.Unlock()
	r.used[p.index] = false
	r.handle[p.index] = nil
	return nil
}

// MustRelease is Release that panics.
func (r *PinRow) MustRelease(p *Pin) {
	if err := r.Release(p); err != nil {
		panic(err)
	}
}

// With acquires index, runs fn and releases the pin on every exit path,
// including a panic in fn.
func (r *PinRow) With(index uint8, m Mode, fn func(*Pin) error) (err error) {
	p, err := r.Acquire(index, m)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := r.Release(p); err == nil {
			err = rerr
		}
	}()
	return fn(p)
}
