package types

// HALConfig is supplied on topic "config/hal".
type HALConfig struct {
	Devices []HALDevice `json:"devices"`
}

type HALDevice struct {
	ID     string `json:"id"`
	Type   Kind   `json:"type"`
	Params any    `json:"params,omitempty"` // GPIOParams or SPIParams, or their JSON map
}

// GPIOParams configures a "gpio" device.
type GPIOParams struct {
	Pin     int    `json:"pin"`
	Mode    string `json:"mode"`              // input, output, input_pullup, input_pulldown, output_open_drain
	Initial *bool  `json:"initial,omitempty"` // level driven after acquire, outputs only
}

// SPIParams configures an "spi" device: a chip select plus transfer settings.
type SPIParams struct {
	CS       int    `json:"cs"`
	MaxHz    uint32 `json:"max_hz"`
	BitOrder string `json:"bit_order,omitempty"` // "msb" (default) or "lsb"
	Mode     uint8  `json:"mode"`                // 0..3
}

// HeartbeatConfig is supplied on topic "config/heartbeat".
type HeartbeatConfig struct {
	IntervalMs int   `json:"interval_ms"`
	LED        *bool `json:"led,omitempty"` // nil keeps the current setting
}
