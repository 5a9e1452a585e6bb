// Command boardtest walks every pin of the board once at boot, then
// rechecks single pins on request: send the pin number and a newline over
// the USB serial port.
package main

import (
	"teensy3-go/board"
	"teensy3-go/fault"
	"teensy3-go/pins"
	"teensy3-go/platform"
	"teensy3-go/serial"
	"teensy3-go/x/timex"
)

func main() {
	timex.Delay(2000)

	surf := platform.Default()
	out := serial.Default()
	rep := &fault.Reporter{Out: out, Sleep: timex.Delay}
	defer rep.Guard()

	row := pins.MustNewOnce(surf.Pins, board.Default())
	walk(row, out)

	for {
		if !out.Readable() {
			timex.Delay(50)
			continue
		}
		// Give the rest of the line time to arrive.
		timex.Delay(20)
		answer(row, out)
	}
}
