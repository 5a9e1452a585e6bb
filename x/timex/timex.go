package timex

import "time"

// NowMs returns Unix milliseconds as int64.
func NowMs() int64 { return time.Now().UnixMilli() }

// Sleep backs Delay; tests replace it.
var Sleep = time.Sleep

// Delay blocks for at least ms milliseconds.
func Delay(ms uint32) { Sleep(time.Duration(ms) * time.Millisecond) }

// Clock exposes free-running 32-bit millisecond and microsecond counters.
// Both wrap: milliseconds after ~49.7 days, microseconds after ~71.6 minutes.
type Clock interface {
	Millis() uint32
	Micros() uint32
}

var boot = time.Now()

type systemClock struct{}

// SystemClock counts from process start.
var SystemClock Clock = systemClock{}

func (systemClock) Millis() uint32 { return uint32(time.Since(boot).Milliseconds()) }
func (systemClock) Micros() uint32 { return uint32(time.Since(boot).Microseconds()) }

// MillisTimer measures elapsed milliseconds from its creation.
type MillisTimer struct {
	clk   Clock
	start uint32
}

func NewMillisTimer(clk Clock) MillisTimer {
	return MillisTimer{clk: clk, start: clk.Millis()}
}

// Elapsed is exact across at most one counter wrap.
func (t MillisTimer) Elapsed() uint32 { return t.clk.Millis() - t.start }

// MicrosTimer measures elapsed microseconds from its creation.
type MicrosTimer struct {
	clk   Clock
	start uint32
}

func NewMicrosTimer(clk Clock) MicrosTimer {
	return MicrosTimer{clk: clk, start: clk.Micros()}
}

// Elapsed is exact across at most one counter wrap.
func (t MicrosTimer) Elapsed() uint32 { return t.clk.Micros() - t.start }
