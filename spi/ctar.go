// Package spi encodes Kinetis DSPI clock and transfer attributes (CTAR)
// and runs byte transfers on a controller using a cached control word.
package spi

// BitOrder selects which end of a byte is shifted out first.
type BitOrder uint8

const (
	MSBFirst BitOrder = iota
	LSBFirst
)

func (o BitOrder) String() string {
	if o == LSBFirst {
		return "lsb"
	}
	return "msb"
}

// Mode is one of the four clock polarity/phase combinations.
// Mode 0: CPOL=0, CPHA=0 (clock idle low, sample on rising edge)
// Mode 1: CPOL=0, CPHA=1 (clock idle low, sample on falling edge)
// Mode 2: CPOL=1, CPHA=0 (clock idle high, sample on falling edge)
// Mode 3: CPOL=1, CPHA=1 (clock idle high, sample on rising edge)
type Mode uint8

const (
	Mode0 Mode = iota
	Mode1
	Mode2
	Mode3
)

// CTAR field layout.
const (
	ctarCPOL  = 0x04000000
	ctarCPHA  = 0x02000000
	ctarLSBFE = 0x01000000

	cssckMask = 0x0000F000
)

// FMSZ is the frame-size field; the hardware sends FMSZ+1 bits per frame.
func FMSZ(n uint32) uint32 { return (n & 15) << 27 }

// DBR doubles the SCK rate and shortens its duty cycle; n is 0 or 1.
func DBR(n uint32) uint32 { return (n & 1) << 31 }

// PBR is the baud-rate prescaler field (÷2, ÷3, ÷5, ÷7).
func PBR(n uint32) uint32 { return (n & 3) << 16 }

// BR is the baud-rate scaler field.
func BR(n uint32) uint32 { return n & 15 }

// CSSCK is the PCS-to-SCK delay scaler field.
func CSSCK(n uint32) uint32 { return (n & 15) << 12 }

// Divisor pairs an effective clock divisor with the CTAR bits that produce it.
type Divisor struct {
	Div  uint32
	Bits uint32
}

// Table is ordered from the smallest divisor (fastest clock) to the largest.
type Table []Divisor

// Clock is the clock source the encoder derives SPI rates from.
type Clock struct {
	BusHz uint32
	Table Table
}

// KinetisTable is the DSPI divisor table shared by the K20, K64 and K66 parts.
var KinetisTable = Table{
	{2, PBR(0) | BR(0) | DBR(1) | CSSCK(0)},
	{3, PBR(1) | BR(0) | DBR(1) | CSSCK(0)},
	{4, PBR(0) | BR(0) | CSSCK(0)},
	{5, PBR(2) | BR(0) | DBR(1) | CSSCK(0)},
	{6, PBR(1) | BR(0) | CSSCK(0)},
	{8, PBR(0) | BR(1) | CSSCK(1)},
	{10, PBR(2) | BR(0) | CSSCK(0)},
	{12, PBR(1) | BR(1) | CSSCK(1)},
	{16, PBR(0) | BR(3) | CSSCK(2)},
	{20, PBR(2) | BR(2) | CSSCK(2)},
	{24, PBR(1) | BR(3) | CSSCK(2)},
	{32, PBR(0) | BR(4) | CSSCK(3)},
	{40, PBR(2) | BR(3) | CSSCK(3)},
	{56, PBR(3) | BR(3) | CSSCK(3)},
	{64, PBR(0) | BR(5) | CSSCK(4)},
	{96, PBR(1) | BR(5) | CSSCK(4)},
	{128, PBR(0) | BR(6) | CSSCK(5)},
	{192, PBR(1) | BR(6) | CSSCK(5)},
	{256, PBR(0) | BR(7) | CSSCK(6)},
	{384, PBR(1) | BR(7) | CSSCK(6)},
	{512, PBR(0) | BR(8) | CSSCK(7)},
	{640, PBR(2) | BR(7) | CSSCK(6)},
	{768, PBR(1) | BR(8) | CSSCK(7)},
}

// Select returns the first table entry whose clock (busHz/Div) does not
// exceed maxHz. When every entry is too fast the last, slowest one is kept.
// ok is false only for an empty table.
func (t Table) Select(maxHz, busHz uint32) (d Divisor, ok bool) {
	for _, e := range t {
		d, ok = e, true
		if e.Div != 0 && maxHz >= busHz/e.Div {
			break
		}
	}
	return d, ok
}

// Encode renders the CTAR control word for 8-bit frames.
// It is total: any input produces a word.
func Encode(maxHz uint32, order BitOrder, mode Mode, table Table, busHz uint32) uint32 {
	d, _ := table.Select(maxHz, busHz)
	t := d.Bits

	c := FMSZ(7)
	if order == LSBFirst {
		c |= ctarLSBFE
	}
	switch mode {
	case Mode1:
		c |= ctarCPHA
		t = shiftDelay(t)
	case Mode2:
		c |= ctarCPOL
	case Mode3:
		c |= ctarCPOL | ctarCPHA
		t = shiftDelay(t)
	}
	return c | t
}

// shiftDelay moves the CSSCK nibble down into ASC. With CPHA set the
// after-SCK delay takes the place of the PCS-to-SCK delay.
func shiftDelay(t uint32) uint32 {
	return (t &^ cssckMask) | ((t & cssckMask) >> 4)
}
