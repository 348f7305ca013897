package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/NeowayLabs/touchballs/input"
	"github.com/NeowayLabs/touchballs/internal/config"
)

var inputsCmd = &cobra.Command{
	Use:   "inputs",
	Short: "List input devices with their seat",
	Long:  `List evdev devices, the udev seat each belongs to and whether it is a touchscreen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		infos, err := input.List(cfg.Input.Glob, cfg.Input.UdevDir)
		if err != nil {
			return err
		}
		listInputs(cmd.OutOrStdout(), infos, cfg.Input.Seat)
		return nil
	},
}

func listInputs(w io.Writer, infos []input.Info, seat string) {
	for _, in := range infos {
		mark := ""
		if in.Touch {
			mark = " touch"
			if in.Seat == seat {
				mark += " *"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s%s\n", in.Path, in.Seat, in.Name, mark)
	}
}
