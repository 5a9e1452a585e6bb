//go:build !teensy36

package platform

// Default returns simulated surfaces on host builds.
func Default() Surfaces {
	return Surfaces{Pins: NewSim(), SPI: NewSimSPI()}
}
