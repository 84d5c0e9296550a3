package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/icco/jukebox/internal/allocate"
	"github.com/icco/jukebox/internal/kind"
	"github.com/icco/jukebox/internal/playback"
	"github.com/icco/jukebox/internal/tui"
)

var dryRun bool

var triggerCmd = &cobra.Command{
	Use:   "trigger <inventory.yaml>",
	Short: "Simulate opening a container with the given inventory",
	Long: `Fill one container from an inventory file, as if a container had been opened
in game, and advance the active song.

The inventory file lists the player's stacks:

  stacks:
    - slot: 0
      item: white_stained_glass
      count: 64

The file is rewritten with what is left after the fill unless --dry-run is set.
`,
	Args: cobra.ExactArgs(1),
	RunE: runTrigger,
}

func init() {
	triggerCmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not rewrite the inventory file")
	rootCmd.AddCommand(triggerCmd)
}

// inventory is the on-disk form of a simulated player inventory.
type inventory struct {
	Stacks []allocate.Stack `yaml:"stacks"`
}

func readInventory(path string) (inventory, error) {
	var inv inventory
	data, err := os.ReadFile(path)
	if err != nil {
		return inv, fault.Wrap(err, ftag.With(kind.IO),
			fmsg.WithDesc("reading inventory", "File "+path+" does not exist or cannot be read"))
	}
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return inv, fault.Wrap(err, ftag.With(kind.Config), fmsg.With("parsing inventory"))
	}
	return inv, nil
}

func writeInventory(path string, inv inventory) error {
	data, err := yaml.Marshal(inv)
	if err != nil {
		return fault.Wrap(err, ftag.With(kind.Config), fmsg.With("encoding inventory"))
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fault.Wrap(err, ftag.With(kind.IO), fmsg.With("writing inventory"))
	}
	return nil
}

func runTrigger(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inv, err := readInventory(args[0])
	if err != nil {
		return err
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	st, err := s.Status()
	if err != nil {
		return err
	}
	if st.Paused {
		say(cmd, "Song filling is paused")
		return nil
	}

	host := allocate.NewSimulator(inv.Stacks, playback.Slots)
	out, err := s.Trigger(ctx, host)
	if err != nil {
		return err
	}

	if !out.Finished || len(out.Plan) > 0 {
		say(cmd, "Inserted at %s", out.Inserted)
		fmt.Fprint(cmd.OutOrStdout(), tui.RenderSelection(out.Selection, s.Mappings().Rest()))
	}
	switch {
	case out.Finished:
		say(cmd, "Finished reading song data, resetting")
	case out.Advanced:
		say(cmd, "Advanced to track %d, pausing", out.Next.Track)
	}

	if dryRun {
		return nil
	}
	return writeInventory(args[0], inventory{Stacks: host.Inventory})
}
