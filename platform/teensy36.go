//go:build teensy36

package platform

import (
	"device/nxp"
	"machine"
	"time"

	"teensy3-go/pins"
)

// pinOf resolves a connector number. PinRow bounds-checks before any call.
func pinOf(n uint8) machine.Pin { return machine.Pin(mk66Connector[n].pin()) }

// Teensy drives the Kinetis ports through TinyGo's machine package.
type Teensy struct{}

func (Teensy) SetPinMode(pin uint8, m pins.Mode) {
	var mode machine.PinMode
	switch m {
	case pins.Output:
		mode = machine.PinOutput
	case pins.OutputOpenDrain:
		mode = machine.PinOutputOpenDrain
	case pins.InputPullup:
		mode = machine.PinInputPullUp
	case pins.InputPulldown:
		mode = machine.PinInputPullDown
	default:
		mode = machine.PinInput
	}
	pinOf(pin).Configure(machine.PinConfig{Mode: mode})
}

// DigitalWrite on an input pin toggles its pull-up, as the Teensyduino core does.
func (Teensy) DigitalWrite(pin uint8, high bool) {
	p := pinOf(pin)
	pcr := p.Control()
	if pcr.Get()&pcrMux != pcrMuxGPIO || !outputEnabled(p) {
		if high {
			pcr.SetBits(pcrPE | pcrPS)
		} else {
			pcr.ClearBits(pcrPE | pcrPS)
		}
		return
	}
	p.Set(high)
}

func (Teensy) DigitalRead(pin uint8) bool { return pinOf(pin).Get() }

func (Teensy) DelayMs(ms uint32) { time.Sleep(time.Duration(ms) * time.Millisecond) }

func outputEnabled(p machine.Pin) bool { return p.Fast().PDDR.Get() }

// PORTx_PCRn fields.
const (
	pcrPS      = 1 << 0
	pcrPE      = 1 << 1
	pcrDSE     = 1 << 6
	pcrMux     = 7 << 8
	pcrMuxGPIO = 1 << 8
	pcrMuxAlt2 = 2 << 8
)

// DSPI fields used by TeensySPI.
const (
	simSCGC6SPI0 = 1 << 12

	mcrMSTR   = 1 << 31
	mcrPCSIS  = 0x1F << 16
	mcrClrTXF = 1 << 11
	mcrClrRXF = 1 << 10
	mcrHALT   = 1 << 0

	srTCF  = 1 << 31
	srRFDF = 1 << 17
)

// Default SPI0 routing: SCK on 13 (PTC5), MOSI on 11 (PTC6), MISO on 12 (PTC7).
// SCK shares the LED pin, so the LED must stay unclaimed while SPI0 runs.
var (
	spiSCK  = pinOf(13)
	spiMOSI = pinOf(11)
	spiMISO = pinOf(12)
)

// TeensySPI is DSPI0 in master mode, one frame at a time.
type TeensySPI struct{}

func (TeensySPI) Begin() {
	nxp.SIM.SCGC6.SetBits(simSCGC6SPI0)
	nxp.SPI0.MCR.Set(mcrMSTR | mcrPCSIS | mcrHALT)
	spiSCK.Control().Set(pcrMuxAlt2 | pcrDSE)
	spiMOSI.Control().Set(pcrMuxAlt2 | pcrDSE)
	spiMISO.Control().Set(pcrMuxAlt2)
}

// Configure halts the module only when the CTAR actually changes.
func (TeensySPI) Configure(ctar uint32) {
	if nxp.SPI0.CTAR0.Get() == ctar {
		return
	}
	nxp.SPI0.MCR.Set(mcrMSTR | mcrPCSIS | mcrClrTXF | mcrClrRXF | mcrHALT)
	nxp.SPI0.CTAR0.Set(ctar)
	nxp.SPI0.CTAR1.Set(ctar | 0x78000000) // FMSZ(15) for 16-bit frames
	nxp.SPI0.MCR.Set(mcrMSTR | mcrPCSIS)
}

func (TeensySPI) Exchange(b byte) byte {
	nxp.SPI0.SR.Set(srTCF)
	nxp.SPI0.PUSHR.Set(uint32(b))
	for !nxp.SPI0.SR.HasBits(srTCF) {
	}
	for !nxp.SPI0.SR.HasBits(srRFDF) {
	}
	v := byte(nxp.SPI0.POPR.Get())
	nxp.SPI0.SR.Set(srRFDF)
	return v
}

func (TeensySPI) End() {
	nxp.SPI0.MCR.Set(mcrMSTR | mcrPCSIS | mcrHALT)
	spiSCK.Control().Set(pcrMuxGPIO)
	spiMOSI.Control().Set(pcrMuxGPIO)
	spiMISO.Control().Set(pcrMuxGPIO)
}

// Default returns the hardware surfaces.
func Default() Surfaces {
	return Surfaces{Pins: Teensy{}, SPI: TeensySPI{}}
}
