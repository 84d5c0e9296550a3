package persist

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/icco/jukebox/internal/kind"
	"github.com/icco/jukebox/internal/timeline"
)

// Store keeps a single state record at Path.
type Store struct {
	Path string
	Log  *slog.Logger
}

// NewStore returns a store writing to path.
func NewStore(path string, log *slog.Logger) *Store {
	return &Store{Path: path, Log: log}
}

// Write replaces the record.
func (s *Store) Write(st State) error {
	data, err := Encode(st)
	if err != nil {
		return err
	}
	s.Log.Info("compressed song", "from", st.Grid.Length()*timeline.Tracks, "to", len(data)-HeaderSize)
	if err := os.MkdirAll(filepath.Dir(s.Path), 0750); err != nil {
		return fault.Wrap(err, ftag.With(kind.IO), fmsg.With("creating state directory"))
	}
	if err := os.WriteFile(s.Path, data, 0600); err != nil {
		return fault.Wrap(err, ftag.With(kind.IO), fmsg.With("writing song state"))
	}
	return nil
}

// Update rewrites only the header of an existing record. The grid never
// changes during playback, so there is nothing to recompress.
func (s *Store) Update(st State) error {
	f, err := os.OpenFile(s.Path, os.O_WRONLY, 0)
	if errors.Is(err, fs.ErrNotExist) {
		return s.Write(st)
	}
	if err != nil {
		return fault.Wrap(err, ftag.With(kind.IO), fmsg.With("opening song state"))
	}
	defer f.Close()

	h := header(st.Paused, st.Position)
	if _, err := f.WriteAt(h[:], 0); err != nil {
		return fault.Wrap(err, ftag.With(kind.IO), fmsg.With("updating song state"))
	}
	if err := f.Sync(); err != nil {
		return fault.Wrap(err, ftag.With(kind.IO), fmsg.With("syncing song state"))
	}
	return nil
}

// Read loads the record. ok is false when there is none.
func (s *Store) Read() (st State, ok bool, err error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fault.Wrap(err, ftag.With(kind.IO), fmsg.With("reading song state"))
	}
	st, err = Decode(data)
	if err != nil {
		return State{}, false, fault.Wrap(err, fmsg.With(s.Path))
	}
	s.Log.Info("decompressed song", "from", len(data)-HeaderSize, "to", st.Grid.Length()*timeline.Tracks)
	return st, true, nil
}

// Remove deletes the record if there is one.
func (s *Store) Remove() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fault.Wrap(err, ftag.With(kind.IO), fmsg.With("deleting song state"))
	}
	return nil
}
