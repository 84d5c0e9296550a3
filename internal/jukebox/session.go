// Package jukebox runs the load -> step -> allocate -> apply -> persist
// pipeline for a single song.
package jukebox

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/google/uuid"

	"github.com/icco/jukebox/internal/allocate"
	"github.com/icco/jukebox/internal/config"
	"github.com/icco/jukebox/internal/kind"
	"github.com/icco/jukebox/internal/mapping"
	"github.com/icco/jukebox/internal/nbs"
	"github.com/icco/jukebox/internal/persist"
	"github.com/icco/jukebox/internal/playback"
	"github.com/icco/jukebox/internal/timeline"
)

// Host is the container screen a trigger fills: it lists the player's
// stacks and performs the clicks.
type Host interface {
	Stacks() []allocate.Stack
	allocate.Executor
}

// Session owns the mapping table and the active song, if any.
type Session struct {
	ID uuid.UUID

	cfg      *config.Config
	store    *persist.Store
	log      *slog.Logger
	mappings mapping.Table
	song     *playback.Song
}

// Status describes the active song.
type Status struct {
	Position playback.Position
	Paused   bool
	Length   int
	Notes    [timeline.Tracks]int
}

// Outcome is the result of one trigger.
type Outcome struct {
	Skipped   bool // no song, or paused
	Inserted  playback.Position
	Selection playback.Selection
	Plan      allocate.Plan
	Advanced  bool // moved on to Next.Track and paused
	Finished  bool // the last track is done and the state was cleared
	Next      playback.Position
}

// New creates an empty session. Call Reload to pick up mappings and any
// saved song.
func New(cfg *config.Config, log *slog.Logger) *Session {
	id := uuid.New()
	log = log.With("session", id.String())
	return &Session{
		ID:    id,
		cfg:   cfg,
		store: persist.NewStore(cfg.StatePath(), log),
		log:   log,
	}
}

// Mappings returns the loaded table.
func (s *Session) Mappings() mapping.Table {
	return s.mappings
}

// Reload reads the mapping table and restores the saved song. restored
// reports whether a saved song was found.
func (s *Session) Reload() (restored bool, err error) {
	table, err := mapping.Load(s.cfg.MappingsPath())
	if err != nil {
		return false, err
	}
	s.mappings = table
	s.log.Info("loaded mappings", "entries", len(table))
	if s.song != nil {
		s.song.Mappings = table
	}

	st, ok, err := s.store.Read()
	if err != nil || !ok {
		return false, err
	}
	s.song = playback.NewSong(st.Grid, table, st.Position)
	s.song.Paused = st.Paused
	s.log.Info("restored song", "position", st.Position.String(), "paused", st.Paused)
	return true, nil
}

// Load decodes a sequence file and starts it at pos, replacing any active
// song once the new state is on disk.
func (s *Session) Load(path string, pos playback.Position) (nbs.Header, error) {
	if len(s.mappings) == 0 {
		return nbs.Header{}, fault.New("mappings are not loaded",
			ftag.With(kind.Config),
			fmsg.WithDesc("no mappings", "Mappings are not loaded"))
	}
	if pos.Track >= playback.Done {
		return nbs.Header{}, fault.New(fmt.Sprintf("track %d out of range", pos.Track), ftag.With(kind.State))
	}

	h, notes, err := nbs.DecodeFile(path)
	if err != nil {
		return h, err
	}
	grid := timeline.Compile(h.Length, notes)
	s.log.Info("decoded song", "file", path, "version", h.Version, "length", h.Length, "notes", len(notes))

	song := playback.NewSong(grid, s.mappings, pos)
	if err := s.store.Write(persist.State{Position: pos, Grid: grid}); err != nil {
		return h, err
	}
	s.song = song
	return h, nil
}

// Unload drops the active song and its saved state.
func (s *Session) Unload() error {
	s.song = nil
	return s.store.Remove()
}

// TogglePause flips the paused flag and returns the new value.
func (s *Session) TogglePause() (bool, error) {
	if s.song == nil {
		return false, errNoSong()
	}
	s.song.Paused = !s.song.Paused
	if err := s.save(); err != nil {
		s.song.Paused = !s.song.Paused
		return s.song.Paused, err
	}
	return s.song.Paused, nil
}

// Status reports the active song.
func (s *Session) Status() (Status, error) {
	if s.song == nil {
		return Status{}, errNoSong()
	}
	st := Status{
		Position: s.song.Current,
		Paused:   s.song.Paused,
		Length:   s.song.Grid.Length(),
	}
	for t := range st.Notes {
		st.Notes[t] = s.song.Grid.Count(t)
	}
	return st, nil
}

// Trigger fills one container from host. On any failure the cursor and the
// saved state are left as they were before the call.
func (s *Session) Trigger(ctx context.Context, host Host) (Outcome, error) {
	song := s.song
	if song == nil || song.Paused {
		return Outcome{Skipped: true}, nil
	}
	if !song.HasNext() {
		return s.finish(Outcome{Finished: true, Next: song.Current})
	}

	out := Outcome{Inserted: song.Current}
	sel, err := song.Step()
	if err != nil {
		song.Revert()
		return out, err
	}
	out.Selection = sel

	stacks := host.Stacks()
	if err := allocate.Verify(sel.Items[:], stacks); err != nil {
		song.Revert()
		return out, err
	}
	s.log.Info(selectionLog(out.Inserted, sel))

	out.Plan = allocate.PlanMoves(sel.Items[:], stacks)
	if err := allocate.Apply(ctx, out.Plan, host); err != nil {
		song.Revert()
		return out, fault.Wrap(err, fmsg.With("moving items"))
	}

	if sel.Advanced {
		song.Paused = true
	}
	if err := s.save(); err != nil {
		song.Revert()
		song.Paused = false
		return out, err
	}

	out.Advanced = sel.Advanced
	out.Next = song.Current
	if sel.Advanced && !song.HasNext() {
		out.Advanced = false
		out.Finished = true
		return s.finish(out)
	}
	return out, nil
}

func (s *Session) finish(out Outcome) (Outcome, error) {
	s.log.Info("finished reading song data, resetting")
	if err := s.Unload(); err != nil {
		return out, err
	}
	return out, nil
}

func (s *Session) save() error {
	return s.store.Update(persist.State{
		Paused:   s.song.Paused,
		Position: s.song.Current,
		Grid:     s.song.Grid,
	})
}

func errNoSong() error {
	return fault.New("no song loaded", ftag.With(kind.State), fmsg.WithDesc("no song", "No song loaded"))
}

// selectionLog lays the selection out as three rows of nine abbreviations.
func selectionLog(pos playback.Position, sel playback.Selection) string {
	names := make([]string, len(sel.Items))
	width := 0
	for i, it := range sel.Items {
		names[i] = it.Abbrev()
		width = max(width, len(names[i]))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Inserting at %s:", pos)
	for row := 0; row < len(names); row += 9 {
		cells := make([]string, 0, 9)
		for _, n := range names[row:min(row+9, len(names))] {
			cells = append(cells, n+strings.Repeat(" ", width-len(n)))
		}
		fmt.Fprintf(&b, "\n  [%s]", strings.Join(cells, ", "))
	}
	return b.String()
}
