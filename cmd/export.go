package cmd

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/icco/jukebox/internal/export"
	"github.com/icco/jukebox/internal/nbs"
	"github.com/icco/jukebox/internal/timeline"
)

var exportCmd = &cobra.Command{
	Use:   "export <file> [out.mid]",
	Short: "Write the playable part of a song as a MIDI file",
	Long: `Compile a song the way load does and write the result as a Standard MIDI File,
one MIDI track per jukebox track. Notes outside the first six layers are left
out, exactly as they would be in game.

The output defaults to the input path with a .mid extension.
`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, notes, err := nbs.DecodeFile(args[0])
		if err != nil {
			return err
		}

		out := strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".mid"
		if len(args) == 2 {
			out = args[1]
		}

		grid := timeline.Compile(h.Length, notes)
		if err := export.WriteFile(out, grid, h.TicksPerSecond()); err != nil {
			return err
		}
		logger.Info("exported song", "file", out, "bpm", export.BPM(h.TicksPerSecond()))
		say(cmd, "Exported %s", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
