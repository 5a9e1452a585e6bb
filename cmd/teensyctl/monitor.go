package main

import (
	"errors"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"teensy3-go/serial"
)

func newMonitorCmd() *cobra.Command {
	cfg := serial.DefaultConfig("")
	var send string
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Print a board's serial console",
		Long:  "Print a board's serial console line by line until interrupted. --send writes a line first, e.g. a pin number for boardtest.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := serial.OpenHost(cfg)
			if err != nil {
				return err
			}
			defer port.Close()

			if send != "" {
				if err := port.WriteBytes([]byte(send + "\n")); err != nil {
					return err
				}
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt)
			defer signal.Stop(stop)
			return follow(cmd, port.ReadLine, stop)
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.Device, "port", "/dev/ttyACM0", "serial device")
	f.IntVar(&cfg.Baud, "baud", cfg.Baud, "baud rate")
	f.DurationVar(&cfg.ReadTimeout, "timeout", cfg.ReadTimeout, "read poll interval")
	f.StringVar(&send, "send", "", "line to send before monitoring")
	return cmd
}

// follow prints lines until stop fires or the port fails. Read timeouts
// surface as io.ErrNoProgress or io.EOF and only mean "nothing yet".
func follow(cmd *cobra.Command, readLine func() (string, error), stop <-chan os.Signal) error {
	var partial string
	for {
		select {
		case <-stop:
			return nil
		default:
		}
		line, err := readLine()
		partial += line
		switch {
		case err == nil:
			cmd.Println(partial)
			partial = ""
		case errors.Is(err, io.ErrNoProgress), errors.Is(err, io.EOF):
		default:
			return err
		}
	}
}
