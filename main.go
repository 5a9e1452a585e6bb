package main

import (
	"context"

	"teensy3-go/board"
	"teensy3-go/bus"
	"teensy3-go/fault"
	"teensy3-go/pins"
	"teensy3-go/platform"
	"teensy3-go/serial"
	"teensy3-go/services/config"
	"teensy3-go/services/hal"
	"teensy3-go/services/heartbeat"
	"teensy3-go/spi"
	"teensy3-go/x/timex"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	timex.Delay(2000)
	println("[main] boot")

	surf := platform.Default()
	prof := board.Default()

	// The fault path drives the LED raw: by the time it runs, the pin
	// registry's owners can no longer be trusted.
	rep := &fault.Reporter{
		Out: serial.Default(),
		LED: func(on bool) {
			surf.Pins.SetPinMode(prof.LEDPin, pins.Output)
			surf.Pins.DigitalWrite(prof.LEDPin, on)
		},
		Sleep: timex.Delay,
	}
	defer rep.Guard()

	row := pins.MustNewOnce(surf.Pins, prof)
	println("[main] board", prof.Name, "pins", row.NumPins())

	b := bus.NewBus(8)
	ctx := config.WithBoard(context.Background(), prof.Name)

	guarded := func(run func()) {
		go func() {
			defer rep.Guard()
			run()
		}()
	}

	h := hal.New(b.NewConnection("hal"), row, spi.NewBus(surf.SPI), prof)
	guarded(func() { h.Run(ctx) })

	hb := heartbeat.New(row)
	guarded(func() { hb.Run(ctx, b.NewConnection("heartbeat")) })

	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	select {}
}
