// Package fault is the firmware's last resort: once a contract violation
// has panicked, stop driving pins and keep reporting the reason.
package fault

import (
	"fmt"
	"io"
)

const (
	blinks  = 30
	blinkMs = 50
	rule    = "-------------------\n"
)

// Reporter writes a halt reason and blinks a LED.
type Reporter struct {
	Out   io.Writer
	LED   func(on bool) // nil disables blinking
	Sleep func(ms uint32)
}

func (r *Reporter) say(reason string) {
	if r.Out != nil {
		_, _ = io.WriteString(r.Out, reason+"\n")
	}
}

// Cycle blinks the LED 30 times, then reprints the reason between rules.
// One cycle lasts three seconds.
func (r *Reporter) Cycle(reason string) {
	for i := 0; i < blinks; i++ {
		if r.LED != nil {
			r.LED(true)
		}
		r.Sleep(blinkMs)
		if r.LED != nil {
			r.LED(false)
		}
		r.Sleep(blinkMs)
	}
	if r.Out != nil {
		_, _ = io.WriteString(r.Out, rule+rule)
	}
	r.say(reason)
}

// Halt reports reason and never returns.
func (r *Reporter) Halt(reason string) {
	r.say(reason)
	for {
		r.Cycle(reason)
	}
}

// Guard recovers a panic and halts with its value. Defer it first in main.
func (r *Reporter) Guard() {
	if v := recover(); v != nil {
		r.Halt(Reason(v))
	}
}

// Reason renders a recovered panic value.
func Reason(v any) string {
	switch x := v.(type) {
	case error:
		return "panic: " + x.Error()
	case string:
		return "panic: " + x
	default:
		return fmt.Sprintf("panic: %v", x)
	}
}
