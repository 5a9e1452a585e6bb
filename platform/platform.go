// Package platform supplies the raw pin and SPI surfaces the rest of the
// HAL is written against: an in-memory simulation on host builds, the
// Kinetis ports and DSPI0 on teensy36 builds.
package platform

import (
	"teensy3-go/pins"
	"teensy3-go/spi"
)

// Surfaces bundles what firmware needs from the target.
type Surfaces struct {
	Pins pins.RawIO
	SPI  spi.Controller
}
