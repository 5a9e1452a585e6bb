package hal

import (
	"bytes"
	"context"
	"testing"
	"time"

	"teensy3-go/board"
	"teensy3-go/bus"
	"teensy3-go/errcode"
	"teensy3-go/pins"
	"teensy3-go/platform"
	"teensy3-go/spi"
	"teensy3-go/types"
)

type rig struct {
	s   *Service
	b   *bus.Bus
	row *pins.PinRow
	sim *platform.Sim
	dev *platform.SimSPI
}

func newRig(t *testing.T) *rig {
	t.Helper()
	sim := platform.NewSim()
	dev := platform.NewSimSPI()
	row := pins.New(sim, board.Teensy36)
	b := bus.NewBus(16)
	s := New(b.NewConnection("hal"), row, spi.NewBus(dev), board.Teensy36)
	return &rig{s: s, b: b, row: row, sim: sim, dev: dev}
}

func on() *bool { v := true; return &v }

func fullConfig() types.HALConfig {
	return types.HALConfig{Devices: []types.HALDevice{
		{ID: "button", Type: types.KindGPIO, Params: types.GPIOParams{Pin: 2, Mode: "input_pullup"}},
		{ID: "relay", Type: types.KindGPIO, Params: types.GPIOParams{Pin: 3, Mode: "output", Initial: on()}},
		{ID: "flash", Type: types.KindSPI, Params: types.SPIParams{CS: 10, MaxHz: 4_000_000}},
	}}
}

func (r *rig) used(t *testing.T, idx uint8) bool {
	t.Helper()
	u, err := r.row.IsUsed(idx)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

// control drives one request through the service and returns its reply.
func (r *rig) control(t *testing.T, id, verb string, payload any) types.Reply {
	t.Helper()
	c := r.b.NewConnection("test")
	m := c.NewMessage(TopicControl(id, verb), payload, false)
	m.ReplyTo = bus.T("test", "reply", id, verb)
	sub := c.Subscribe(m.ReplyTo)
	defer c.Unsubscribe(sub)
	r.s.handleControl(m)
	select {
	case rep := <-sub.Channel():
		return rep.Payload.(types.Reply)
	default:
		t.Fatalf("%s/%s: no reply", id, verb)
	}
	return types.Reply{}
}

func retained(t *testing.T, b *bus.Bus, topic bus.Topic) (any, bool) {
	t.Helper()
	c := b.NewConnection("peek")
	sub := c.Subscribe(topic)
	defer c.Unsubscribe(sub)
	select {
	case m := <-sub.Channel():
		return m.Payload, true
	default:
		return nil, false
	}
}

func TestApplyConfigBuildsDevices(t *testing.T) {
	r := newRig(t)
	if failed := r.s.applyConfig(fullConfig()); failed != 0 {
		t.Fatalf("%d devices failed", failed)
	}
	for _, idx := range []uint8{2, 3, 10, board.SPI0SCK, board.SPI0MOSI, board.SPI0MISO} {
		if !r.used(t, idx) {
			t.Fatalf("pin %d not claimed", idx)
		}
	}
	if !r.sim.PulledUp(2) {
		t.Fatal("button not pulled up")
	}
	if !r.sim.DigitalRead(3) {
		t.Fatal("relay initial level not applied")
	}
	if !r.sim.DigitalRead(10) {
		t.Fatal("chip select should idle high")
	}
	if !r.dev.Powered() {
		t.Fatal("SPI bus not started")
	}

	p, ok := retained(t, r.b, TopicInfo("flash"))
	if !ok {
		t.Fatal("no retained info for flash")
	}
	info := p.(types.DeviceInfo)
	want := board.Teensy36.Settings(4_000_000, spi.MSBFirst, spi.Mode0)
	if info.SPI == nil || info.SPI.CTAR != want.CTAR() || info.SPI.ActualHz != want.ActualHz() || info.Pin != 10 {
		t.Fatalf("info = %+v", info)
	}
	p, _ = retained(t, r.b, TopicStatus("button"))
	if st := p.(types.DeviceStatus); st.Link != types.LinkUp {
		t.Fatalf("status = %+v", st)
	}
}

func TestReconfigureReleasesPins(t *testing.T) {
	r := newRig(t)
	r.s.applyConfig(fullConfig())
	r.s.applyConfig(types.HALConfig{Devices: []types.HALDevice{{ID: "led", Type: types.KindLED}}})

	for _, idx := range []uint8{2, 3, 10, board.SPI0MOSI, board.SPI0MISO} {
		if r.used(t, idx) {
			t.Fatalf("pin %d still held after reconfigure", idx)
		}
	}
	if !r.used(t, board.LEDPin) {
		t.Fatal("LED not claimed")
	}
	if r.dev.Powered() {
		t.Fatal("SPI bus left running")
	}
	if _, ok := retained(t, r.b, TopicInfo("flash")); ok {
		t.Fatal("stale info for removed device")
	}
	if w := r.sim.Writes(3); w[len(w)-1] {
		t.Fatal("relay released high")
	}
}

func TestFailedDevicesReportDown(t *testing.T) {
	r := newRig(t)
	failed := r.s.applyConfig(types.HALConfig{Devices: []types.HALDevice{
		{ID: "a", Type: types.KindGPIO, Params: types.GPIOParams{Pin: 4, Mode: "output"}},
		{ID: "b", Type: types.KindGPIO, Params: types.GPIOParams{Pin: 4, Mode: "input"}},
		{ID: "c", Type: "pwm"},
		{ID: "d", Type: types.KindGPIO, Params: types.GPIOParams{Pin: 99, Mode: "input"}},
		{ID: "a", Type: types.KindLED},
	}})
	if failed != 4 {
		t.Fatalf("failed = %d, want 4", failed)
	}
	cases := map[string]errcode.Code{
		"b": errcode.PinAlreadyReserved,
		"c": errcode.Unsupported,
		"d": errcode.IndexOutOfRange,
	}
	for id, code := range cases {
		p, ok := retained(t, r.b, TopicStatus(id))
		if !ok {
			t.Fatalf("%s: no status", id)
		}
		if st := p.(types.DeviceStatus); st.Link != types.LinkDown || st.Error != string(code) {
			t.Fatalf("%s: status = %+v, want %s", id, st, code)
		}
	}
	if r.used(t, board.LEDPin) {
		t.Fatal("duplicate id still acquired its pin")
	}
}

func TestGPIOControls(t *testing.T) {
	r := newRig(t)
	r.s.ready = true
	r.s.applyConfig(fullConfig())

	if rep := r.control(t, "relay", VerbSet, types.GPIOSet{Level: false}); !rep.OK {
		t.Fatalf("set: %+v", rep)
	}
	rep := r.control(t, "relay", VerbGet, nil)
	if !rep.OK || rep.Value.(types.GPIOGetReply).Level {
		t.Fatalf("get = %+v", rep)
	}
	rep = r.control(t, "relay", VerbToggle, nil)
	if !rep.OK || !rep.Value.(types.GPIOGetReply).Level || !r.sim.DigitalRead(3) {
		t.Fatalf("toggle = %+v", rep)
	}

	if rep := r.control(t, "button", VerbSet, map[string]any{"level": true}); rep.OK || rep.Error != string(errcode.InvalidPinOperation) {
		t.Fatalf("set on input = %+v", rep)
	}
	if rep := r.control(t, "button", VerbToggle, nil); rep.Error != string(errcode.InvalidPinOperation) {
		t.Fatalf("toggle on input = %+v", rep)
	}
	if rep := r.control(t, "button", VerbMode, types.GPIOMode{Mode: "output"}); !rep.OK {
		t.Fatalf("mode = %+v", rep)
	}
	p, _ := retained(t, r.b, TopicInfo("button"))
	if info := p.(types.DeviceInfo); info.Mode != pins.Output.String() {
		t.Fatalf("info not refreshed: %+v", info)
	}
	if rep := r.control(t, "button", VerbMode, types.GPIOMode{Mode: "analog"}); rep.Error != string(errcode.InvalidParams) {
		t.Fatalf("bad mode = %+v", rep)
	}
	if rep := r.control(t, "button", VerbTransfer, nil); rep.Error != string(errcode.Unsupported) {
		t.Fatalf("unsupported verb = %+v", rep)
	}
	if rep := r.control(t, "nope", VerbGet, nil); rep.Error != string(errcode.UnknownDevice) {
		t.Fatalf("unknown device = %+v", rep)
	}
}

func TestSPITransfer(t *testing.T) {
	r := newRig(t)
	r.s.ready = true
	r.s.applyConfig(fullConfig())
	r.dev.Respond = func(b byte) byte { return ^b }

	rep := r.control(t, "flash", VerbTransfer, types.SPITransfer{Data: []byte{0x9F, 0x00}})
	if !rep.OK {
		t.Fatalf("transfer = %+v", rep)
	}
	if got := rep.Value.(types.SPITransferReply).Data; !bytes.Equal(got, []byte{0x60, 0xFF}) {
		t.Fatalf("read = % x", got)
	}
	if !bytes.Equal(r.dev.Sent(), []byte{0x9F, 0x00}) {
		t.Fatalf("sent = % x", r.dev.Sent())
	}
	w := r.sim.Writes(10)
	if len(w) < 3 || w[len(w)-2] || !w[len(w)-1] {
		t.Fatalf("cs writes = %v, want ... low, high", w)
	}
	want := board.Teensy36.Settings(4_000_000, spi.MSBFirst, spi.Mode0).CTAR()
	if c := r.dev.CTARs(); len(c) != 1 || c[0] != want {
		t.Fatalf("ctars = %#x", c)
	}
	if active, _ := r.s.env.spi.(*spi.Bus).Active(); active {
		t.Fatal("transaction left open")
	}

	if rep := r.control(t, "flash", VerbTransfer, types.SPITransfer{}); rep.Error != string(errcode.InvalidParams) {
		t.Fatalf("empty transfer = %+v", rep)
	}
	if rep := r.control(t, "flash", VerbInfo, nil); !rep.OK || rep.Value.(types.DeviceInfo).SPI == nil {
		t.Fatalf("info = %+v", rep)
	}
}

func TestSPIBadParams(t *testing.T) {
	r := newRig(t)
	failed := r.s.applyConfig(types.HALConfig{Devices: []types.HALDevice{
		{ID: "m", Type: types.KindSPI, Params: types.SPIParams{CS: 10, MaxHz: 1_000_000, Mode: 4}},
		{ID: "o", Type: types.KindSPI, Params: types.SPIParams{CS: 10, MaxHz: 1_000_000, BitOrder: "middle"}},
		{ID: "z", Type: types.KindSPI, Params: types.SPIParams{CS: 10}},
	}})
	if failed != 3 {
		t.Fatalf("failed = %d", failed)
	}
	if r.used(t, 10) || r.dev.Powered() {
		t.Fatal("rejected device claimed resources")
	}
}

func TestControlsWaitForConfig(t *testing.T) {
	r := newRig(t)
	if rep := r.control(t, "relay", VerbGet, nil); rep.Error != string(errcode.HALNotReady) {
		t.Fatalf("reply = %+v", rep)
	}
}

func TestRunOverBus(t *testing.T) {
	r := newRig(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { r.s.Run(ctx); close(done) }()

	cli := r.b.NewConnection("client")
	stateSub := cli.Subscribe(TopicState())

	// The same shape the config service publishes: decoded JSON.
	cli.Publish(cli.NewMessage(topicConfigHAL(), map[string]any{
		"devices": []any{
			map[string]any{"id": "relay", "type": "gpio", "params": map[string]any{"pin": float64(3), "mode": "output"}},
		},
	}, true))

	deadline := time.After(time.Second)
	for ready := false; !ready; {
		select {
		case m := <-stateSub.Channel():
			ready = m.Payload.(types.HALState).Status == "configured"
		case <-deadline:
			t.Fatal("hal never became ready")
		}
	}

	rctx, rcancel := context.WithTimeout(context.Background(), time.Second)
	defer rcancel()
	rep, err := cli.RequestWait(rctx, cli.NewMessage(TopicControl("relay", VerbSet), map[string]any{"level": true}, false))
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Payload.(types.Reply).OK || !r.sim.DigitalRead(3) {
		t.Fatalf("reply = %+v", rep.Payload)
	}

	cancel()
	<-done
	if r.used(t, 3) {
		t.Fatal("pin held after stop")
	}
}
