package types

// ------------------------
// Common HAL state (retained)
// ------------------------

type HALState struct {
	Level  string `json:"level"`  // "idle", "ready", "stopped"
	Status string `json:"status"` // freeform short code
	TS     int64  `json:"ts_ms"`
}

// Link is the state reported for a device.
type Link string

const (
	LinkUp   Link = "up"
	LinkDown Link = "down"
)

type DeviceStatus struct {
	Link  Link   `json:"link"`
	TS    int64  `json:"ts_ms"`
	Error string `json:"error,omitempty"` // machine-readable short code
}

// ------------------------
// Device kinds
// ------------------------

type Kind string

const (
	KindGPIO Kind = "gpio"
	KindLED  Kind = "led"
	KindSPI  Kind = "spi"
)

// ------------------------
// Info (retained)
// ------------------------

type DeviceInfo struct {
	SchemaVersion int      `json:"schema_version"`
	Kind          Kind     `json:"kind"`
	Pin           int      `json:"pin"`            // gpio/led pin, spi chip select
	Mode          string   `json:"mode,omitempty"` // pin mode name
	SPI           *SPIInfo `json:"spi,omitempty"`
}

type SPIInfo struct {
	MaxHz    uint32 `json:"max_hz"`
	ActualHz uint32 `json:"actual_hz"`
	BitOrder string `json:"bit_order"`
	Mode     uint8  `json:"mode"`
	CTAR     uint32 `json:"ctar"`
}

// ------------------------
// Controls
// ------------------------

type GPIOSet struct {
	Level bool `json:"level"`
}

type GPIOMode struct {
	Mode string `json:"mode"`
}

type GPIOGetReply struct {
	Level bool `json:"level"`
}

type SPITransfer struct {
	Data []byte `json:"data"`
}

type SPITransferReply struct {
	Data   []byte `json:"data"`
	Micros uint32 `json:"us"` // time the chip select was held low
}

// Reply is the envelope for every control answer.
type Reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Value any    `json:"value,omitempty"`
}
