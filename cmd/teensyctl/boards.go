package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"teensy3-go/board"
)

func newBoardsCmd() *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "List the supported board profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := board.Names()
			list := make([]profileYAML, 0, len(names))
			for _, n := range names {
				p, _ := board.ByName(n)
				list = append(list, toYAML(p))
			}
			slices.SortStableFunc(list, func(a, b profileYAML) int { return int(a.BusHz) - int(b.BusHz) })

			if asYAML {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(list)
			}
			def := board.Default().Name
			for _, p := range list {
				mark := " "
				if p.Name == def {
					mark = "*"
				}
				cmd.Printf("%s %-9s %2d pins  bus %3d MHz\n", mark, p.Name, p.NumPins, p.BusHz/1_000_000)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print profiles as YAML")
	return cmd
}
