// Command teensyctl is the host-side companion to the firmware: it
// computes SPI control words, lists board profiles and follows a board's
// USB serial console.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:           "teensyctl",
		Short:         "Host tools for Teensy 3.x boards",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.SetOut(os.Stdout)
	rootCmd.AddCommand(newCTARCmd(), newBoardsCmd(), newMonitorCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("error:", err)
		os.Exit(1)
	}
}
