// Package board describes the Teensy 3.x variants: pin count, LED pin and
// the bus clock the SPI divisors are derived from.
package board

import (
	"sort"

	"teensy3-go/spi"
)

// MaxPins bounds NumPins for every supported variant.
const MaxPins = 64

// LEDPin is the on-board LED on every Teensy 3.x.
const LEDPin = 13

// Default SPI0 routing. SCK shares the LED pin.
const (
	SPI0SCK  = 13
	SPI0MOSI = 11
	SPI0MISO = 12
)

type Profile struct {
	Name    string
	NumPins int
	LEDPin  uint8
	BusHz   uint32
	CTAR    spi.Table
}

// Clock is the SPI clock source for this board.
func (p Profile) Clock() spi.Clock { return spi.Clock{BusHz: p.BusHz, Table: p.CTAR} }

// Settings encodes SPI settings against this board's bus clock.
func (p Profile) Settings(maxHz uint32, order spi.BitOrder, mode spi.Mode) spi.Settings {
	return spi.NewSettingsFor(p.Clock(), maxHz, order, mode)
}

var (
	// Teensy30 is the MK20DX128 at 48 MHz.
	Teensy30 = Profile{Name: "teensy30", NumPins: 34, LEDPin: LEDPin, BusHz: 48_000_000, CTAR: spi.KinetisTable}
	// Teensy32 covers the 3.1 and 3.2 (MK20DX256) at the stock 72 MHz core.
	Teensy32 = Profile{Name: "teensy32", NumPins: 34, LEDPin: LEDPin, BusHz: 36_000_000, CTAR: spi.KinetisTable}
	// Teensy35 is the MK64FX512 at 120 MHz.
	Teensy35 = Profile{Name: "teensy35", NumPins: 58, LEDPin: LEDPin, BusHz: 60_000_000, CTAR: spi.KinetisTable}
	// Teensy36 is the MK66FX1M0 at 180 MHz.
	Teensy36 = Profile{Name: "teensy36", NumPins: 58, LEDPin: LEDPin, BusHz: 60_000_000, CTAR: spi.KinetisTable}
)

var profiles = map[string]Profile{
	"teensy30": Teensy30,
	"teensy31": Teensy32,
	"teensy32": Teensy32,
	"teensy35": Teensy35,
	"teensy36": Teensy36,
}

// ByName looks a profile up; "teensy31" is an alias of "teensy32".
func ByName(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// Names lists the canonical profile names in order.
func Names() []string {
	out := make([]string, 0, len(profiles))
	for k, p := range profiles {
		if k == p.Name {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Default is the profile of the build target; see default_*.go.
func Default() Profile { return defaultProfile }
