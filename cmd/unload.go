package cmd

import (
	"github.com/spf13/cobra"
)

var unloadCmd = &cobra.Command{
	Use:   "unload",
	Short: "Forget the active song and delete its saved state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		if err := s.Unload(); err != nil {
			return err
		}
		say(cmd, "Cleared song state")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unloadCmd)
}
