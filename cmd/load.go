package cmd

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/spf13/cobra"

	"github.com/icco/jukebox/internal/kind"
	"github.com/icco/jukebox/internal/playback"
	"github.com/icco/jukebox/internal/timeline"
	"github.com/icco/jukebox/internal/tui"
)

var loadCmd = &cobra.Command{
	Use:   "load [file] [track offset]",
	Short: "Load a song and start filling at a position",
	Long: `Load a Note Block Studio song and make it the active song.

Without a file a picker opens in the configured picker directory. Playback
starts at track 0, offset 3 unless a track (0-5) and offset are given.

Examples:
  jukebox load song.nbs
  jukebox load song.nbs 2 3
  jukebox load 1 3
`,
	Args: cobra.MaximumNArgs(3),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	var path string
	switch len(args) {
	case 1, 3:
		path, args = args[0], args[1:]
	case 2:
		if _, err := strconv.Atoi(args[0]); err != nil {
			return usage(fmt.Sprintf("expected a track and an offset after %s", args[0]))
		}
	}

	pos := playback.Position{Track: 0, Offset: playback.StartOffset}
	if len(args) == 2 {
		p, err := parsePosition(args[0], args[1])
		if err != nil {
			return err
		}
		pos = p
	}

	if path == "" {
		chosen, err := tui.Pick(cfg.PickerDir)
		if err != nil {
			return err
		}
		if chosen == "" {
			say(cmd, "No file selected")
			return nil
		}
		path = chosen
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	if _, err := s.Load(path, pos); err != nil {
		return err
	}
	say(cmd, "Loaded song %s at %s", filepath.Base(path), pos)
	return nil
}

func parsePosition(trackArg, offsetArg string) (playback.Position, error) {
	track, err := strconv.Atoi(trackArg)
	if err != nil || track < 0 || track >= timeline.Tracks {
		return playback.Position{}, usage(fmt.Sprintf("track must be between 0 and %d, got %q", timeline.Tracks-1, trackArg))
	}
	offset, err := strconv.Atoi(offsetArg)
	if err != nil || offset < 0 || offset > math.MaxInt16 {
		return playback.Position{}, usage(fmt.Sprintf("offset must be between 0 and %d, got %q", math.MaxInt16, offsetArg))
	}
	return playback.Position{Track: uint8(track), Offset: uint16(offset)}, nil
}

func usage(msg string) error {
	return fault.New(msg, ftag.With(kind.Config), fmsg.WithDesc("invalid argument", msg))
}
