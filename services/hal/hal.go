// Package hal exposes configured pins and SPI devices on the bus.
//
// Configuration arrives retained on config/hal. Each device publishes
// retained info and status under hal/dev/<id>/ and answers requests on
// hal/dev/<id>/control/<verb> with a types.Reply.
package hal

import (
	"context"

	"teensy3-go/board"
	"teensy3-go/bus"
	"teensy3-go/errcode"
	"teensy3-go/pins"
	"teensy3-go/types"
	"teensy3-go/x/timex"
)

// SPIBus is the shared SPI peripheral; *spi.Bus satisfies it.
type SPIBus interface {
	spiPort
	Begin()
	Close()
}

// env is what builders draw on. The SPI routing pins are claimed once,
// by the first SPI device, and held until the next teardown.
type env struct {
	row     *pins.PinRow
	spi     SPIBus
	board   board.Profile
	spiPins []*pins.Pin
}

func (e *env) claimSPI() error {
	if e.spiPins != nil {
		return nil
	}
	if e.spi == nil {
		return errcode.New(errcode.Unsupported, "spi", "no SPI bus on this build")
	}
	route := []struct {
		pin  uint8
		mode pins.Mode
	}{
		{board.SPI0SCK, pins.Output},
		{board.SPI0MOSI, pins.Output},
		{board.SPI0MISO, pins.Input},
	}
	held := make([]*pins.Pin, 0, len(route))
	for _, r := range route {
		p, err := e.row.Acquire(r.pin, r.mode)
		if err != nil {
			for _, h := range held {
				_ = e.row.Release(h)
			}
			return err
		}
		held = append(held, p)
	}
	e.spiPins = held
	e.spi.Begin()
	return nil
}

func (e *env) releaseSPI() {
	if e.spiPins == nil {
		return
	}
	e.spi.Close()
	for _, p := range e.spiPins {
		_ = e.row.Release(p)
	}
	e.spiPins = nil
}

type Service struct {
	conn  *bus.Connection
	env   env
	devs  map[string]device
	order []string // build order, for deterministic teardown
	ready bool
}

// New binds the service to its pin registry and SPI bus. sb may be nil on
// builds without SPI; spi devices then fail to build.
func New(conn *bus.Connection, row *pins.PinRow, sb SPIBus, b board.Profile) *Service {
	return &Service{
		conn: conn,
		env:  env{row: row, spi: sb, board: b},
		devs: map[string]device{},
	}
}

// Run serves until ctx is cancelled, then releases every device.
func (s *Service) Run(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfigHAL())
	ctrlSub := s.conn.Subscribe(ctrlWildcard())
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(ctrlSub)

	s.publishState("idle", "awaiting_config")

	for {
		select {
		case <-ctx.Done():
			s.teardown()
			s.publishState("stopped", "context_cancelled")
			return
		case msg := <-cfgSub.Channel():
			if msg.Payload == nil {
				continue
			}
			var cfg types.HALConfig
			if err := types.Decode(msg.Payload, &cfg); err != nil {
				println("[hal] bad config:", err.Error())
				s.publishState("error", "config_invalid")
				continue
			}
			if failed := s.applyConfig(cfg); failed > 0 {
				s.publishState("ready", "degraded")
			} else {
				s.publishState("ready", "configured")
			}
			s.ready = true
		case msg := <-ctrlSub.Channel():
			s.handleControl(msg)
		}
	}
}

// Start runs the service in its own goroutine.
func (s *Service) Start(ctx context.Context) { go s.Run(ctx) }

// applyConfig replaces every device. It returns how many failed to build;
// those report link down with the error code on their status topic.
func (s *Service) applyConfig(cfg types.HALConfig) int {
	s.teardown()

	failed := 0
	for _, dc := range cfg.Devices {
		_, dup := s.devs[dc.ID]
		err := s.build(dc)
		if err == nil {
			continue
		}
		failed++
		println("[hal] device", dc.ID, "failed:", err.Error())
		// A duplicate must not overwrite the live device's status.
		if dc.ID != "" && !dup {
			s.publishStatus(dc.ID, types.LinkDown, errcode.Of(err))
		}
	}
	return failed
}

func (s *Service) build(dc types.HALDevice) error {
	if dc.ID == "" {
		return errcode.New(errcode.InvalidParams, "build", "device id is empty")
	}
	if _, dup := s.devs[dc.ID]; dup {
		return errcode.New(errcode.InvalidParams, "build", "duplicate device id "+dc.ID)
	}
	mk, ok := builders[dc.Type]
	if !ok {
		return errcode.New(errcode.Unsupported, "build", "unknown device type "+string(dc.Type))
	}
	d, err := mk(&s.env, dc.Params)
	if err != nil {
		return err
	}
	s.devs[dc.ID] = d
	s.order = append(s.order, dc.ID)
	s.conn.Publish(s.conn.NewMessage(TopicInfo(dc.ID), d.info(), true))
	s.publishStatus(dc.ID, types.LinkUp, "")
	return nil
}

// teardown releases every pin the service holds and clears retained topics.
func (s *Service) teardown() {
	for i := len(s.order) - 1; i >= 0; i-- {
		id := s.order[i]
		if err := s.devs[id].close(); err != nil {
			println("[hal] release", id, "failed:", err.Error())
		}
		s.conn.Publish(s.conn.NewMessage(TopicInfo(id), nil, true))
		s.conn.Publish(s.conn.NewMessage(TopicStatus(id), nil, true))
	}
	s.env.releaseSPI()
	s.devs = map[string]device{}
	s.order = s.order[:0]
}

func (s *Service) handleControl(m *bus.Message) {
	if !s.ready {
		s.replyErr(m, errcode.HALNotReady)
		return
	}
	if len(m.Topic) != 5 {
		return
	}
	id, _ := m.Topic[2].(string)
	verb, _ := m.Topic[4].(string)
	d, ok := s.devs[id]
	if !ok {
		s.replyErr(m, errcode.UnknownDevice)
		return
	}
	res, err := d.control(verb, m.Payload)
	if err != nil {
		s.replyErr(m, errcode.Of(err))
		return
	}
	if verb == VerbMode {
		s.conn.Publish(s.conn.NewMessage(TopicInfo(id), d.info(), true))
	}
	s.conn.Reply(m, types.Reply{OK: true, Value: res}, false)
}

func (s *Service) replyErr(m *bus.Message, code errcode.Code) {
	if code == "" {
		code = errcode.Error
	}
	s.conn.Reply(m, types.Reply{OK: false, Error: string(code)}, false)
}

func (s *Service) publishState(level, status string) {
	s.conn.Publish(s.conn.NewMessage(TopicState(),
		types.HALState{Level: level, Status: status, TS: timex.NowMs()}, true))
}

func (s *Service) publishStatus(id string, link types.Link, code errcode.Code) {
	s.conn.Publish(s.conn.NewMessage(TopicStatus(id),
		types.DeviceStatus{Link: link, TS: timex.NowMs(), Error: string(code)}, true))
}
