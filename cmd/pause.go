package cmd

import (
	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause or resume filling containers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		paused, err := s.TogglePause()
		if err != nil {
			return err
		}
		if paused {
			say(cmd, "Paused song filling")
		} else {
			say(cmd, "Resumed song filling")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pauseCmd)
}
