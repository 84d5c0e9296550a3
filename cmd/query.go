package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/icco/jukebox/internal/tui"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Show the position of the active song",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		st, err := s.Status()
		if err != nil {
			return err
		}

		msg := fmt.Sprintf("Current song position: %s", st.Position)
		if st.Paused {
			msg += " (paused)"
		}
		say(cmd, "%s", msg)
		fmt.Fprintln(cmd.OutOrStdout(), tui.RenderProgress(st.Position, st.Length, st.Paused))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
