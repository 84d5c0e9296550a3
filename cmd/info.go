package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/icco/jukebox/internal/nbs"
	"github.com/icco/jukebox/internal/timeline"
	"github.com/icco/jukebox/internal/tui"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show the header of a song and its notes per track",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, notes, err := nbs.DecodeFile(args[0])
		if err != nil {
			return err
		}
		grid := timeline.Compile(h.Length, notes)
		logger.Debug("decoded song", "file", args[0], "notes", len(notes))

		fmt.Fprint(cmd.OutOrStdout(), tui.RenderHeader(h, grid))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
