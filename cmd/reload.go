package cmd

import (
	"github.com/spf13/cobra"

	"github.com/icco/jukebox/internal/jukebox"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the item mappings and the saved song state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := jukebox.New(cfg, logger)
		restored, err := s.Reload()
		if err != nil {
			return err
		}
		say(cmd, "Loaded mappings")
		if restored {
			say(cmd, "Loaded song state")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reloadCmd)
}
