package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Southclaws/fault/fmsg"
	"github.com/spf13/cobra"

	"github.com/icco/jukebox/internal/allocate"
	"github.com/icco/jukebox/internal/config"
	"github.com/icco/jukebox/internal/jukebox"
	"github.com/icco/jukebox/internal/kind"
)

const prefix = "[Jukebox] "

var (
	configDir string
	debug     bool

	logger = slog.Default()
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "jukebox",
	Short: "Play Note Block Studio songs through an item-marker jukebox",
	Long: `jukebox turns a Note Block Studio (.nbs) song into container fills for an
item-marker note block jukebox.

Each time a container is opened the next 27 markers of the active track are
placed into it from the player's inventory. Progress is saved between runs.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory holding config.yaml, mappings and song state (default ~/.config/jukebox)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		report(rootCmd, err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	dir := configDir
	if dir == "" {
		d, err := config.ConfigDir()
		if err != nil {
			return err
		}
		dir = d
	}

	c, err := config.Load(dir)
	if err != nil {
		return err
	}
	cfg = c
	initLogger(debug || cfg.Debug)
	logger.Debug("loaded config", "dir", dir, "mappings", cfg.MappingsPath(), "state", cfg.StatePath())
	return nil
}

// initLogger configures the shared slog logger.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

// openSession builds a session with the mappings and any saved song loaded.
func openSession() (*jukebox.Session, error) {
	s := jukebox.New(cfg, logger)
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func say(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), prefix+format+"\n", args...)
}

// report prints err as a single prefixed line, or one line per missing item
// for shortages.
func report(cmd *cobra.Command, err error) {
	logger.Error("command failed", "kind", string(kind.Of(err)), "error", err)

	out := cmd.ErrOrStderr()
	var short *allocate.ShortageError
	if errors.As(err, &short) {
		fmt.Fprintln(out, prefix+short.Error())
		return
	}

	msg := fmsg.GetIssue(err)
	if msg == "" {
		msg = err.Error()
	}
	fmt.Fprintln(out, prefix+strings.TrimSpace(msg))
}
