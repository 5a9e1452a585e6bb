package pins

import (
	"sync"

	"teensy3-go/errcode"
)

// Pin is the single live handle for one physical pin. Obtain it from a
// PinRow; it stays valid until released.
type Pin struct {
	row      *PinRow
	index    uint8
	mu       sync.Mutex
	mode     Mode
	released bool
}

func (p *Pin) Index() uint8 { return p.index }

func (p *Pin) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// program sets direction and pull. Caller holds p.mu or owns p exclusively.
func (p *Pin) program(m Mode) {
	raw := p.row.raw
	raw.SetPinMode(p.index, m)
	p.mode = m
	if m == InputPullup {
		raw.DelayMs(pullupSettleMs)
	}
}

// SetMode reprograms the pin. Switching to Input also writes low once,
// which clears a pull-up left enabled by an earlier mode.
func (p *Pin) SetMode(m Mode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return errReleased("set_mode")
	}
	p.program(m)
	if m == Input {
		p.row.raw.DigitalWrite(p.index, false)
	}
	return nil
}

// Write drives the pin. Only Output and OutputOpenDrain pins may be written.
func (p *Pin) Write(high bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return errReleased("write")
	}
	switch {
	case p.mode == Input:
		return errcode.New(errcode.InvalidPinOperation, "write", "pin is input; use InputPullup for pulled-up reads")
	case !p.mode.Writable():
		return errcode.New(errcode.InvalidPinOperation, "write", "pin must be output to be written")
	}
	p.row.raw.DigitalWrite(p.index, high)
	return nil
}

// Set is Write that panics on misuse.
func (p *Pin) Set(high bool) {
	if err := p.Write(high); err != nil {
		panic(err)
	}
}

func (p *Pin) High() { p.Set(true) }
func (p *Pin) Low()  { p.Set(false) }

// Toggle inverts the sampled level.
func (p *Pin) Toggle() { p.Set(!p.Read()) }

// Read samples the pin level in any mode. A released handle reads low so a
// stale holder never observes the next owner's pin.
func (p *Pin) Read() bool {
	lvl, err := p.TryRead()
	return err == nil && lvl
}

// TryRead is Read that reports a released handle.
func (p *Pin) TryRead() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return false, errReleased("read")
	}
	return p.row.raw.DigitalRead(p.index), nil
}

// Released reports whether the handle has been returned to its row.
func (p *Pin) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

func errReleased(op string) error {
	return errcode.New(errcode.InvalidPinOperation, op, "pin has been released")
}
