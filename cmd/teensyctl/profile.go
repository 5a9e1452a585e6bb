package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"teensy3-go/board"
	"teensy3-go/spi"
)

// profileFile overrides a built-in profile, e.g. for an overclocked board:
//
//	name: teensy32-96mhz
//	base: teensy32
//	bus_hz: 48000000
type profileFile struct {
	Name    string `yaml:"name"`
	Base    string `yaml:"base"`
	BusHz   uint32 `yaml:"bus_hz"`
	NumPins int    `yaml:"num_pins"`
}

func parseProfile(data []byte) (board.Profile, error) {
	var f profileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return board.Profile{}, err
	}
	if f.Base == "" {
		f.Base = board.Default().Name
	}
	p, ok := board.ByName(f.Base)
	if !ok {
		return board.Profile{}, fmt.Errorf("unknown base board %q", f.Base)
	}
	if f.Name != "" {
		p.Name = f.Name
	}
	if f.BusHz != 0 {
		p.BusHz = f.BusHz
	}
	if f.NumPins != 0 {
		if f.NumPins < 0 || f.NumPins > board.MaxPins {
			return board.Profile{}, fmt.Errorf("num_pins %d outside 1..%d", f.NumPins, board.MaxPins)
		}
		p.NumPins = f.NumPins
	}
	return p, nil
}

// resolveProfile prefers a profile file over a board name.
func resolveProfile(name, path string) (board.Profile, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return board.Profile{}, err
		}
		return parseProfile(data)
	}
	p, ok := board.ByName(name)
	if !ok {
		return board.Profile{}, fmt.Errorf("unknown board %q (have %v)", name, board.Names())
	}
	return p, nil
}

// profileYAML is the listing form of a profile.
type profileYAML struct {
	Name     string   `yaml:"name"`
	NumPins  int      `yaml:"num_pins"`
	LEDPin   uint8    `yaml:"led_pin"`
	BusHz    uint32   `yaml:"bus_hz"`
	Divisors []uint32 `yaml:"divisors,flow"`
}

func toYAML(p board.Profile) profileYAML {
	divs := make([]uint32, len(p.CTAR))
	for i, d := range p.CTAR {
		divs[i] = d.Div
	}
	return profileYAML{Name: p.Name, NumPins: p.NumPins, LEDPin: p.LEDPin, BusHz: p.BusHz, Divisors: divs}
}

func parseOrder(s string) (spi.BitOrder, error) {
	switch s {
	case "msb", "":
		return spi.MSBFirst, nil
	case "lsb":
		return spi.LSBFirst, nil
	}
	return 0, fmt.Errorf("bit order must be msb or lsb, got %q", s)
}
