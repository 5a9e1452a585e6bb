package main

import (
	"teensy3-go/errcode"
	"teensy3-go/pins"
	"teensy3-go/serial"
	"teensy3-go/x/timex"
)

// checkPin drives idx high and low as an output, then reads it back with
// the pull-up enabled. The pin is released on every path.
func checkPin(row *pins.PinRow, idx uint8) error {
	return row.With(idx, pins.Output, func(p *pins.Pin) error {
		p.High()
		if !p.Read() {
			return errcode.New(errcode.Error, "output", "stuck low")
		}
		p.Low()
		if p.Read() {
			return errcode.New(errcode.Error, "output", "stuck high")
		}
		if err := p.SetMode(pins.InputPullup); err != nil {
			return err
		}
		if !p.Read() {
			return errcode.New(errcode.Error, "pullup", "reads low")
		}
		return nil
	})
}

// walk checks every free pin and prints one line per pin. Pins already
// held elsewhere are reported and skipped.
func walk(row *pins.PinRow, out *serial.Port) (failed int) {
	_ = out.Printf("pin walk: %d pins\r\n", row.NumPins())
	t := timex.NewMillisTimer(timex.SystemClock)
	for i := 0; i < row.NumPins(); i++ {
		idx := uint8(i)
		err := checkPin(row, idx)
		switch {
		case err == nil:
			_ = out.Printf("  %2d ok\r\n", idx)
		case errcode.Of(err) == errcode.PinAlreadyReserved:
			_ = out.Printf("  %2d skipped (in use)\r\n", idx)
		default:
			failed++
			_ = out.Printf("  %2d FAIL %s\r\n", idx, err.Error())
		}
	}
	_ = out.Printf("pin walk done: %d failed in %d ms\r\n", failed, t.Elapsed())
	return failed
}

// answer handles one request line: a pin number to recheck.
func answer(row *pins.PinRow, out *serial.Port) {
	n, err := out.ReadIntUntil('\n')
	if err != nil {
		_ = out.Println("bad request:", err.Error())
		return
	}
	if n > 255 {
		_ = out.Println("bad request: pin out of range")
		return
	}
	if err := checkPin(row, uint8(n)); err != nil {
		_ = out.Printf("%d FAIL %s\r\n", n, err.Error())
		return
	}
	_ = out.Printf("%d ok\r\n", n)
}
