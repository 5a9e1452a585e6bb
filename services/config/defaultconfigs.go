package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: board profile name (same value placed in ctx by WithBoard)
// Val: raw JSON bytes for that board
// -----------------------------------------------------------------------------

// The 3.2 build keeps the LED for the heartbeat and exposes a button and a
// relay output.
const cfgTeensy32 = `{
  "hal": {
    "devices": [
      {"id": "button", "type": "gpio", "params": {"pin": 2, "mode": "input_pullup"}},
      {"id": "relay",  "type": "gpio", "params": {"pin": 3, "mode": "output"}}
    ]
  },
  "heartbeat": {
    "interval_ms": 1000
  }
}`

// On the 3.6 SPI0 clocks out of pin 13, so the LED belongs to the bus.
const cfgTeensy36 = `{
  "hal": {
    "devices": [
      {"id": "button", "type": "gpio", "params": {"pin": 2, "mode": "input_pullup"}},
      {"id": "flash",  "type": "spi",  "params": {"cs": 10, "max_hz": 4000000, "bit_order": "msb", "mode": 0}}
    ]
  },
  "heartbeat": {
    "interval_ms": 1000,
    "led": false
  }
}`

var embeddedConfigs = map[string][]byte{
	"teensy32": []byte(cfgTeensy32),
	"teensy36": []byte(cfgTeensy36),
}
