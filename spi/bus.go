package spi

import (
	"sync"

	"teensy3-go/errcode"
	"teensy3-go/x/mathx"

	"tinygo.org/x/drivers"
)

// Controller is the raw peripheral surface supplied by the platform.
type Controller interface {
	Begin()
	Configure(ctar uint32)
	Exchange(b byte) byte
	End()
}

// Bus serialises transactions on one controller. A transaction holds the
// bus from BeginTransaction until EndTransaction.
type Bus struct {
	mu     sync.Mutex // held for the duration of a transaction
	state  sync.Mutex // guards active and ctar
	c      Controller
	active bool
	ctar   uint32
}

var _ drivers.SPI = (*Bus)(nil)

func NewBus(c Controller) *Bus { return &Bus{c: c} }

// Begin powers up the peripheral.
func (b *Bus) Begin() { b.c.Begin() }

// BeginTransaction blocks until the bus is free, then loads s.CTAR().
func (b *Bus) BeginTransaction(s Settings) {
	b.mu.Lock()
	b.state.Lock()
	b.active = true
	b.ctar = s.CTAR()
	b.state.Unlock()
	b.c.Configure(s.CTAR())
}

// EndTransaction releases the bus. Calling it without a transaction panics,
// as unlocking an unlocked mutex would.
func (b *Bus) EndTransaction() {
	b.state.Lock()
	if !b.active {
		b.state.Unlock()
		panic("spi: EndTransaction without BeginTransaction")
	}
	b.active = false
	b.state.Unlock()
	b.mu.Unlock()
}

// Active reports whether a transaction is in progress and its CTAR.
func (b *Bus) Active() (bool, uint32) {
	b.state.Lock()
	defer b.state.Unlock()
	return b.active, b.ctar
}

func (b *Bus) check(op string) error {
	if ok, _ := b.Active(); !ok {
		return errcode.New(errcode.NotStarted, op, "no transaction in progress")
	}
	return nil
}

// Transfer exchanges one byte.
func (b *Bus) Transfer(w byte) (byte, error) {
	if err := b.check("transfer"); err != nil {
		return 0, err
	}
	return b.c.Exchange(w), nil
}

// TransferReplace sends buf and overwrites each byte with the one received.
func (b *Bus) TransferReplace(buf []byte) error {
	if err := b.check("transfer"); err != nil {
		return err
	}
	for i := range buf {
		buf[i] = b.c.Exchange(buf[i])
	}
	return nil
}

// Tx sends w and fills r. The shorter slice is padded: missing write bytes
// go out as zero, surplus read bytes are discarded.
func (b *Bus) Tx(w, r []byte) error {
	if err := b.check("tx"); err != nil {
		return err
	}
	n := mathx.Max(len(w), len(r))
	for i := 0; i < n; i++ {
		var out byte
		if i < len(w) {
			out = w[i]
		}
		in := b.c.Exchange(out)
		if i < len(r) {
			r[i] = in
		}
	}
	return nil
}

// Close powers the peripheral down.
func (b *Bus) Close() { b.c.End() }
