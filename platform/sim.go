//go:build !teensy36

package platform

import (
	"sync"
	"time"

	"teensy3-go/board"
	"teensy3-go/pins"
)

type pull uint8

const (
	pullNone pull = iota
	pullUp
	pullDown
)

type simPin struct {
	mode    pins.Mode
	pull    pull
	latch   bool
	driven  bool // an external source drives the line
	ext     bool
	writes  []bool
	configs int
}

// Sim is an in-memory pin bank implementing pins.RawIO for host builds
// and tests. It follows Kinetis port behaviour: writing an input high
// enables its pull-up, writing it low disables the pull.
type Sim struct {
	mu     sync.Mutex
	pins   [board.MaxPins]simPin
	delays []uint32

	// Sleep, when set, makes DelayMs block for real.
	Sleep func(time.Duration)
}

func NewSim() *Sim { return &Sim{} }

func (s *Sim) SetPinMode(pin uint8, m pins.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &s.pins[pin]
	p.mode = m
	p.configs++
	switch m {
	case pins.InputPullup:
		p.pull = pullUp
	case pins.InputPulldown:
		p.pull = pullDown
	default:
		p.pull = pullNone
	}
}

func (s *Sim) DigitalWrite(pin uint8, high bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &s.pins[pin]
	p.writes = append(p.writes, high)
	if p.mode.Writable() {
		p.latch = high
		return
	}
	if high {
		p.pull = pullUp
	} else {
		p.pull = pullNone
	}
}

func (s *Sim) DigitalRead(pin uint8) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &s.pins[pin]
	switch p.mode {
	case pins.Output:
		return p.latch
	case pins.OutputOpenDrain:
		if !p.latch {
			return false
		}
	}
	if p.driven {
		return p.ext
	}
	return p.pull == pullUp
}

func (s *Sim) DelayMs(ms uint32) {
	s.mu.Lock()
	s.delays = append(s.delays, ms)
	sleep := s.Sleep
	s.mu.Unlock()
	if sleep != nil {
		sleep(time.Duration(ms) * time.Millisecond)
	}
}

// Drive applies an external level to pin, as a button or peer would.
func (s *Sim) Drive(pin uint8, high bool) {
	s.mu.Lock()
	s.pins[pin].driven, s.pins[pin].ext = true, high
	s.mu.Unlock()
}

// Float removes any external drive from pin.
func (s *Sim) Float(pin uint8) {
	s.mu.Lock()
	s.pins[pin].driven = false
	s.mu.Unlock()
}

// ModeOf returns the last programmed mode and how many times it was set.
func (s *Sim) ModeOf(pin uint8) (pins.Mode, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pins[pin].mode, s.pins[pin].configs
}

// PulledUp reports whether the pin's pull-up is enabled.
func (s *Sim) PulledUp(pin uint8) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pins[pin].pull == pullUp
}

// Writes returns a copy of every level written to pin.
func (s *Sim) Writes(pin uint8) []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.pins[pin].writes...)
}

// Delays returns every DelayMs argument seen so far.
func (s *Sim) Delays() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint32(nil), s.delays...)
}

// SimSPI is a loopback SPI controller. Respond, when set, computes the
// byte clocked back in for each byte sent.
type SimSPI struct {
	mu      sync.Mutex
	Respond func(b byte) byte
	on      bool
	ctar    []uint32
	sent    []byte
}

func NewSimSPI() *SimSPI { return &SimSPI{} }

func (s *SimSPI) Begin() {
	s.mu.Lock()
	s.on = true
	s.mu.Unlock()
}

func (s *SimSPI) End() {
	s.mu.Lock()
	s.on = false
	s.mu.Unlock()
}

func (s *SimSPI) Configure(ctar uint32) {
	s.mu.Lock()
	s.ctar = append(s.ctar, ctar)
	s.mu.Unlock()
}

func (s *SimSPI) Exchange(b byte) byte {
	s.mu.Lock()
	s.sent = append(s.sent, b)
	f := s.Respond
	s.mu.Unlock()
	if f == nil {
		return b
	}
	return f(b)
}

// Powered reports whether Begin has been called without a matching End.
func (s *SimSPI) Powered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

// CTARs returns every control word loaded.
func (s *SimSPI) CTARs() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint32(nil), s.ctar...)
}

// Sent returns every byte shifted out.
func (s *SimSPI) Sent() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.sent...)
}
