package jukebox

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/icco/jukebox/internal/allocate"
	"github.com/icco/jukebox/internal/config"
	"github.com/icco/jukebox/internal/kind"
	"github.com/icco/jukebox/internal/mapping"
	"github.com/icco/jukebox/internal/playback"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type note struct{ tick, layer, key int }

// writeSong writes a classic (version 0) sequence file.
func writeSong(t *testing.T, path string, length int, notes []note) {
	t.Helper()
	var b bytes.Buffer
	w := func(v any) { _ = binary.Write(&b, binary.LittleEndian, v) }

	w(uint16(length))
	w(uint16(6))
	for i := 0; i < 4; i++ {
		w(uint32(0))
	}
	w(uint16(1000))
	w([]byte{0, 0, 4})
	for i := 0; i < 5; i++ {
		w(uint32(0))
	}
	w(uint32(0))

	tick := -1
	for i := 0; i < len(notes); {
		w(uint16(notes[i].tick - tick))
		tick = notes[i].tick
		layer := -1
		for ; i < len(notes) && notes[i].tick == tick; i++ {
			w(uint16(notes[i].layer - layer))
			layer = notes[i].layer
			w([]byte{0, byte(notes[i].key)})
		}
		w(uint16(0))
	}
	w(uint16(0))

	if err := os.WriteFile(path, b.Bytes(), 0600); err != nil {
		t.Fatalf("Error writing song: %v", err)
	}
}

func newSession(t *testing.T) (*Session, string) {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Error loading config: %v", err)
	}
	s := New(cfg, quiet)
	if _, err := s.Reload(); err != nil {
		t.Fatalf("Error reloading: %v", err)
	}
	return s, dir
}

// plenty returns a host holding a full stack of every mapped item.
func plenty(table mapping.Table) *allocate.Simulator {
	var stacks []allocate.Stack
	for i, it := range table {
		stacks = append(stacks, allocate.Stack{Slot: i, Item: it, Count: 64})
	}
	return allocate.NewSimulator(stacks, playback.Slots)
}

func TestSessionPlaysSongToTheEnd(t *testing.T) {
	s, dir := newSession(t)
	song := filepath.Join(dir, "song.nbs")
	writeSong(t, song, 4, []note{{0, 0, 33}, {2, 5, 35}})

	if _, err := s.Load(song, playback.Position{Track: 0, Offset: 0}); err != nil {
		t.Fatalf("Error loading song: %v", err)
	}

	host := plenty(s.Mappings())
	out, err := s.Trigger(context.Background(), host)
	if err != nil {
		t.Fatalf("Error triggering: %v", err)
	}
	if out.Selection.Items[0] != mapping.Defaults[1] {
		t.Errorf("Expected slot 0 = %s, got %s", mapping.Defaults[1], out.Selection.Items[0])
	}
	items := host.Items()
	for i := 1; i < playback.Slots; i++ {
		if items[i] != mapping.Defaults[0] {
			t.Errorf("Expected slot %d = %s, got %s", i, mapping.Defaults[0], items[i])
		}
	}
	if !out.Advanced || out.Next != (playback.Position{Track: 1, Offset: 3}) {
		t.Fatalf("Expected advance to [1 3], got %+v", out)
	}

	st, err := s.Status()
	if err != nil || !st.Paused {
		t.Fatalf("Expected paused after track advance, got %+v %v", st, err)
	}
	if out, _ := s.Trigger(context.Background(), plenty(s.Mappings())); !out.Skipped {
		t.Error("Expected paused session to skip triggers")
	}

	finished := false
	for i := 0; i < 100 && !finished; i++ {
		st, err := s.Status()
		if err != nil {
			t.Fatalf("Error getting status: %v", err)
		}
		if st.Paused {
			if _, err := s.TogglePause(); err != nil {
				t.Fatalf("Error resuming: %v", err)
			}
		}
		host := plenty(s.Mappings())
		out, err := s.Trigger(context.Background(), host)
		if err != nil {
			t.Fatalf("Error triggering: %v", err)
		}
		if out.Inserted == (playback.Position{Track: 5, Offset: 2}) && host.Items()[0] != mapping.Defaults[3] {
			t.Errorf("Expected note on track 5, got %s", host.Items()[0])
		}
		finished = out.Finished
	}
	if !finished {
		t.Fatal("Song never finished")
	}

	if _, err := s.Status(); kind.Of(err) != kind.State {
		t.Errorf("Expected no song after finishing, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "current.jukebox")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected state file to be removed, got %v", err)
	}
}

func TestSessionShortageRollsBack(t *testing.T) {
	s, dir := newSession(t)
	song := filepath.Join(dir, "song.nbs")
	writeSong(t, song, 500, []note{{3, 0, 40}, {7, 0, 40}})

	if _, err := s.Load(song, playback.Position{Track: 0, Offset: 3}); err != nil {
		t.Fatalf("Error loading song: %v", err)
	}
	statePath := filepath.Join(dir, "current.jukebox")
	before, err := os.ReadFile(statePath)
	if err != nil {
		t.Fatalf("Error reading state: %v", err)
	}

	host := allocate.NewSimulator([]allocate.Stack{
		{Slot: 0, Item: mapping.Defaults[0], Count: 64},
		{Slot: 1, Item: mapping.Defaults[8], Count: 1},
	}, playback.Slots)
	_, err = s.Trigger(context.Background(), host)
	if kind.Of(err) != kind.Availability {
		t.Fatalf("Expected availability error, got %v", err)
	}
	var short *allocate.ShortageError
	if !errors.As(err, &short) || len(short.Missing) != 1 || short.Missing[0].Count != 1 {
		t.Fatalf("Expected one missing %s, got %v", mapping.Defaults[8], err)
	}

	st, _ := s.Status()
	if st.Position != (playback.Position{Track: 0, Offset: 3}) {
		t.Errorf("Expected cursor to stay at [0 3], got %v", st.Position)
	}
	after, _ := os.ReadFile(statePath)
	if !bytes.Equal(before, after) {
		t.Error("Expected saved state to be untouched")
	}
	if host.Items()[0] != "" {
		t.Error("Expected no items to be moved")
	}
}

func TestSessionReloadRestoresSong(t *testing.T) {
	s, dir := newSession(t)
	song := filepath.Join(dir, "song.nbs")
	writeSong(t, song, 300, []note{{1, 2, 50}})

	if _, err := s.Load(song, playback.Position{Track: 2, Offset: 1}); err != nil {
		t.Fatalf("Error loading song: %v", err)
	}
	if _, err := s.Trigger(context.Background(), plenty(s.Mappings())); err != nil {
		t.Fatalf("Error triggering: %v", err)
	}
	if _, err := s.TogglePause(); err != nil {
		t.Fatalf("Error pausing: %v", err)
	}

	cfg, _ := config.Load(dir)
	restored := New(cfg, quiet)
	ok, err := restored.Reload()
	if err != nil || !ok {
		t.Fatalf("Expected saved song, got ok=%v err=%v", ok, err)
	}
	st, err := restored.Status()
	if err != nil {
		t.Fatalf("Error getting status: %v", err)
	}
	if st.Position != (playback.Position{Track: 2, Offset: 2}) || !st.Paused {
		t.Errorf("Expected paused at [2 2], got %+v", st)
	}
	if st.Length != 300 || st.Notes[2] != 1 {
		t.Errorf("Expected grid of 300 with one note on track 2, got %+v", st)
	}
}

func TestSessionLoadErrors(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	s := New(cfg, quiet)

	song := filepath.Join(dir, "song.nbs")
	writeSong(t, song, 4, nil)

	if _, err := s.Load(song, playback.Position{}); kind.Of(err) != kind.Config {
		t.Errorf("Expected config error without mappings, got %v", err)
	}
	if _, err := s.Reload(); err != nil {
		t.Fatalf("Error reloading: %v", err)
	}
	if _, err := s.Load(filepath.Join(dir, "missing.nbs"), playback.Position{}); kind.Of(err) != kind.IO {
		t.Errorf("Expected io error for missing file, got %v", err)
	}
	if _, err := s.Load(song, playback.Position{Track: 6}); kind.Of(err) != kind.State {
		t.Errorf("Expected state error for track 6, got %v", err)
	}

	if err := os.WriteFile(song, []byte{4, 0, 6}, 0600); err != nil {
		t.Fatalf("Error writing song: %v", err)
	}
	if _, err := s.Load(song, playback.Position{}); kind.Of(err) != kind.Format {
		t.Errorf("Expected format error for truncated file, got %v", err)
	}
	if _, err := s.Status(); kind.Of(err) != kind.State {
		t.Errorf("Expected failed loads to leave no song, got %v", err)
	}
}

func TestSessionWithoutSong(t *testing.T) {
	s, _ := newSession(t)

	if _, err := s.TogglePause(); kind.Of(err) != kind.State {
		t.Errorf("Expected state error, got %v", err)
	}
	out, err := s.Trigger(context.Background(), plenty(s.Mappings()))
	if err != nil || !out.Skipped {
		t.Errorf("Expected skipped trigger, got %+v %v", out, err)
	}
	if err := s.Unload(); err != nil {
		t.Errorf("Expected unload without song to succeed, got %v", err)
	}
}

func TestSelectionLog(t *testing.T) {
	var sel playback.Selection
	for i := range sel.Items {
		sel.Items[i] = "white_stained_glass"
	}
	sel.Items[0] = "red_wool"
	sel.Items[26] = "magenta_dye"

	got := selectionLog(playback.Position{Track: 1, Offset: 3}, sel)
	want := "Inserting at [1 3]:\n" +
		"  [RW , WSG, WSG, WSG, WSG, WSG, WSG, WSG, WSG]\n" +
		"  [WSG, WSG, WSG, WSG, WSG, WSG, WSG, WSG, WSG]\n" +
		"  [WSG, WSG, WSG, WSG, WSG, WSG, WSG, WSG, MD ]"
	if got != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, got)
	}
}
