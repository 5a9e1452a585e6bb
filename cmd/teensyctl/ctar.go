package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"teensy3-go/board"
	"teensy3-go/spi"
)

func newCTARCmd() *cobra.Command {
	var (
		boardName string
		profile   string
		hz        uint32
		order     string
		mode      uint8
	)
	cmd := &cobra.Command{
		Use:   "ctar",
		Short: "Compute the DSPI CTAR word for a clock, bit order and mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProfile(boardName, profile)
			if err != nil {
				return err
			}
			o, err := parseOrder(order)
			if err != nil {
				return err
			}
			if mode > uint8(spi.Mode3) {
				return fmt.Errorf("mode must be 0..3, got %d", mode)
			}
			s := p.Settings(hz, o, spi.Mode(mode))
			cmd.Printf("board    %s (bus %d Hz)\n", p.Name, p.BusHz)
			cmd.Printf("request  %d Hz, %s first, mode %d\n", hz, o, mode)
			if p.BusHz/s.Divisor().Div > hz {
				cmd.Printf("note     no divisor is slow enough; using the slowest\n")
			}
			cmd.Printf("divisor  /%d -> %d Hz\n", s.Divisor().Div, s.ActualHz())
			cmd.Printf("ctar     0x%08X\n", s.CTAR())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&boardName, "board", "b", board.Default().Name, "board profile name")
	f.StringVarP(&profile, "profile", "p", "", "YAML profile file overriding --board")
	f.Uint32Var(&hz, "hz", 4_000_000, "maximum SCK frequency")
	f.StringVar(&order, "order", "msb", "bit order: msb or lsb")
	f.Uint8Var(&mode, "mode", 0, "SPI mode 0..3")
	return cmd
}
