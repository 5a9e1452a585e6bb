// Package heartbeat blinks the on-board LED so a running board is visible
// at a glance.
package heartbeat

import (
	"context"
	"time"

	"teensy3-go/bus"
	"teensy3-go/pins"
	"teensy3-go/types"
	"teensy3-go/x/mathx"
)

var topicConfigHeartbeat = bus.T("config", "heartbeat")

const (
	defaultInterval = time.Second
	minIntervalMs   = 50
	maxIntervalMs   = 10_000
)

// Service toggles the LED each tick. The LED is acquired lazily, so a
// config that hands pin 13 to SPI can switch it off before first use.
type Service struct {
	row    *pins.PinRow
	useLED bool
	led    *pins.Pin
	beats  uint32
}

// New returns a heartbeat bound to row. A nil row only logs.
func New(row *pins.PinRow) *Service {
	return &Service{row: row, useLED: row != nil}
}

func clampInterval(ms int) time.Duration {
	return time.Duration(mathx.Clamp(ms, minIntervalMs, maxIntervalMs)) * time.Millisecond
}

func (s *Service) beat() {
	s.beats++
	if !s.useLED {
		return
	}
	if s.led == nil {
		led, err := s.row.AcquireLED()
		if err != nil {
			println("[heartbeat] LED unavailable:", err.Error())
			s.useLED = false
			return
		}
		s.led = led
	}
	s.led.Toggle()
}

func (s *Service) releaseLED() {
	if s.led == nil {
		return
	}
	if err := s.row.Release(s.led); err != nil {
		println("[heartbeat] release LED:", err.Error())
	}
	s.led = nil
}

func (s *Service) applyConfig(tick *time.Ticker, payload any) {
	var cfg types.HeartbeatConfig
	if err := types.Decode(payload, &cfg); err != nil {
		println("[heartbeat] bad config:", err.Error())
		return
	}
	if cfg.IntervalMs > 0 {
		d := clampInterval(cfg.IntervalMs)
		tick.Reset(d)
		println("[heartbeat] interval set to", d.Milliseconds(), "ms")
	}
	if cfg.LED != nil {
		s.useLED = *cfg.LED && s.row != nil
		if !s.useLED {
			s.releaseLED()
		}
	}
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.releaseLED()
			println("[heartbeat] stopping")
			return
		case <-tick.C:
			s.beat()
			if s.beats%60 == 0 {
				println("[heartbeat]", s.beats, "beats")
			}
		case msg := <-cfgSub.Channel():
			if msg.Payload != nil {
				s.applyConfig(tick, msg.Payload)
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}

// Run blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context, conn *bus.Connection) { s.serviceLoop(ctx, conn) }
