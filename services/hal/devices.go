package hal

import (
	"teensy3-go/errcode"
	"teensy3-go/pins"
	"teensy3-go/spi"
	"teensy3-go/types"
	"teensy3-go/x/timex"

	"tinygo.org/x/drivers"
)

// device is one configured HAL entry. Methods run on the service goroutine.
type device interface {
	info() types.DeviceInfo
	control(verb string, payload any) (any, error)
	close() error
}

// spiPort is what SPI devices need from the bus: byte exchange plus
// transaction framing.
type spiPort interface {
	drivers.SPI
	BeginTransaction(s spi.Settings)
	EndTransaction()
}

// maxTransfer bounds a single control transfer.
const maxTransfer = 256

// -----------------------------------------------------------------------------
// gpio / led
// -----------------------------------------------------------------------------

type pinDev struct {
	kind types.Kind
	row  *pins.PinRow
	pin  *pins.Pin
}

func (d *pinDev) info() types.DeviceInfo {
	return types.DeviceInfo{
		SchemaVersion: 1,
		Kind:          d.kind,
		Pin:           int(d.pin.Index()),
		Mode:          d.pin.Mode().String(),
	}
}

func (d *pinDev) control(verb string, payload any) (any, error) {
	switch verb {
	case VerbGet:
		lvl, err := d.pin.TryRead()
		if err != nil {
			return nil, err
		}
		return types.GPIOGetReply{Level: lvl}, nil
	case VerbSet:
		var p types.GPIOSet
		if err := types.Decode(payload, &p); err != nil {
			return nil, &errcode.E{C: errcode.InvalidPayload, Op: verb, Err: err}
		}
		if err := d.pin.Write(p.Level); err != nil {
			return nil, err
		}
		return types.GPIOGetReply{Level: p.Level}, nil
	case VerbToggle:
		if !d.pin.Mode().Writable() {
			return nil, errcode.New(errcode.InvalidPinOperation, verb, "pin must be output to be toggled")
		}
		cur, err := d.pin.TryRead()
		if err != nil {
			return nil, err
		}
		lvl := !cur
		if err := d.pin.Write(lvl); err != nil {
			return nil, err
		}
		return types.GPIOGetReply{Level: lvl}, nil
	case VerbMode:
		if d.kind == types.KindLED {
			return nil, errcode.Unsupported
		}
		var p types.GPIOMode
		if err := types.Decode(payload, &p); err != nil {
			return nil, &errcode.E{C: errcode.InvalidPayload, Op: verb, Err: err}
		}
		m, ok := pins.ParseMode(p.Mode)
		if !ok {
			return nil, errcode.New(errcode.InvalidParams, verb, "unknown mode "+p.Mode)
		}
		if err := d.pin.SetMode(m); err != nil {
			return nil, err
		}
		return d.info(), nil
	case VerbInfo:
		return d.info(), nil
	}
	return nil, errcode.Unsupported
}

func (d *pinDev) close() error { return d.row.Release(d.pin) }

func buildGPIO(env *env, params any) (device, error) {
	var p types.GPIOParams
	if err := types.Decode(params, &p); err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "gpio", Err: err}
	}
	if p.Pin < 0 || p.Pin > 255 {
		return nil, errcode.New(errcode.IndexOutOfRange, "gpio", "pin out of range")
	}
	m, ok := pins.ParseMode(p.Mode)
	if !ok {
		return nil, errcode.New(errcode.InvalidParams, "gpio", "unknown mode "+p.Mode)
	}
	pin, err := env.row.Acquire(uint8(p.Pin), m)
	if err != nil {
		return nil, err
	}
	if p.Initial != nil && *p.Initial {
		if err := pin.Write(true); err != nil {
			_ = env.row.Release(pin)
			return nil, err
		}
	}
	return &pinDev{kind: types.KindGPIO, row: env.row, pin: pin}, nil
}

func buildLED(env *env, _ any) (device, error) {
	pin, err := env.row.AcquireLED()
	if err != nil {
		return nil, err
	}
	return &pinDev{kind: types.KindLED, row: env.row, pin: pin}, nil
}

// -----------------------------------------------------------------------------
// spi
// -----------------------------------------------------------------------------

type spiDev struct {
	row  *pins.PinRow
	port spiPort
	cs   *pins.Pin
	set  spi.Settings
}

func (d *spiDev) info() types.DeviceInfo {
	return types.DeviceInfo{
		SchemaVersion: 1,
		Kind:          types.KindSPI,
		Pin:           int(d.cs.Index()),
		Mode:          d.cs.Mode().String(),
		SPI: &types.SPIInfo{
			MaxHz:    d.set.MaxHz(),
			ActualHz: d.set.ActualHz(),
			BitOrder: d.set.Order().String(),
			Mode:     uint8(d.set.Mode()),
			CTAR:     d.set.CTAR(),
		},
	}
}

// transfer frames one exchange: transaction, CS low, bytes, CS high.
func (d *spiDev) transfer(w []byte) (types.SPITransferReply, error) {
	r := make([]byte, len(w))
	d.port.BeginTransaction(d.set)
	defer d.port.EndTransaction()
	d.cs.Low()
	t := timex.NewMicrosTimer(timex.SystemClock)
	err := d.port.Tx(w, r)
	us := t.Elapsed()
	d.cs.High()
	if err != nil {
		return types.SPITransferReply{}, err
	}
	return types.SPITransferReply{Data: r, Micros: us}, nil
}

func (d *spiDev) control(verb string, payload any) (any, error) {
	switch verb {
	case VerbTransfer:
		var p types.SPITransfer
		if err := types.Decode(payload, &p); err != nil {
			return nil, &errcode.E{C: errcode.InvalidPayload, Op: verb, Err: err}
		}
		if len(p.Data) == 0 || len(p.Data) > maxTransfer {
			return nil, errcode.New(errcode.InvalidParams, verb, "data must be 1..256 bytes")
		}
		rep, err := d.transfer(p.Data)
		if err != nil {
			return nil, err
		}
		return rep, nil
	case VerbInfo:
		return d.info(), nil
	}
	return nil, errcode.Unsupported
}

func (d *spiDev) close() error { return d.row.Release(d.cs) }

func buildSPI(env *env, params any) (device, error) {
	var p types.SPIParams
	if err := types.Decode(params, &p); err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "spi", Err: err}
	}
	if p.CS < 0 || p.CS > 255 {
		return nil, errcode.New(errcode.IndexOutOfRange, "spi", "cs out of range")
	}
	if p.Mode > uint8(spi.Mode3) {
		return nil, errcode.New(errcode.InvalidParams, "spi", "mode must be 0..3")
	}
	order := spi.MSBFirst
	switch p.BitOrder {
	case "", "msb":
	case "lsb":
		order = spi.LSBFirst
	default:
		return nil, errcode.New(errcode.InvalidParams, "spi", "bit_order must be msb or lsb")
	}
	if p.MaxHz == 0 {
		return nil, errcode.New(errcode.InvalidParams, "spi", "max_hz must be positive")
	}
	if err := env.claimSPI(); err != nil {
		return nil, err
	}
	cs, err := env.row.Acquire(uint8(p.CS), pins.Output)
	if err != nil {
		return nil, err
	}
	cs.High()
	return &spiDev{
		row:  env.row,
		port: env.spi,
		cs:   cs,
		set:  env.board.Settings(p.MaxHz, order, spi.Mode(p.Mode)),
	}, nil
}

// builders maps a configured device type to its constructor.
var builders = map[types.Kind]func(*env, any) (device, error){
	types.KindGPIO: buildGPIO,
	types.KindLED:  buildLED,
	types.KindSPI:  buildSPI,
}
