// Package playback walks a compiled grid one container at a time.
//
// Each track is spread over four shulker-sized groups of 27 cells, taking
// every fourth tick. Groups are filled in the order 4, 2, 3, 1, which is
// what the offset rule in NextPosition encodes.
package playback

import (
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/icco/jukebox/internal/kind"
	"github.com/icco/jukebox/internal/mapping"
	"github.com/icco/jukebox/internal/timeline"
)

const (
	// Slots is the size of one container.
	Slots = 27
	// Stride is the tick distance between consecutive slots.
	Stride = 4
	// StartOffset is where a fresh track begins.
	StartOffset = 3
	// Done is the track value of a finished song.
	Done = timeline.Tracks
)

// Position is the playback cursor.
type Position struct {
	Track  uint8
	Offset uint16
}

func (p Position) String() string {
	return fmt.Sprintf("[%d %d]", p.Track, p.Offset)
}

// Selection is the container layout for one step.
type Selection struct {
	Items    [Slots]mapping.Item
	Advanced bool // the step finished its track
}

// Song is an active playback session over a grid.
type Song struct {
	Grid     timeline.Grid
	Mappings mapping.Table
	Current  Position
	Previous Position
	Paused   bool
}

// NewSong starts playback of grid at pos.
func NewSong(grid timeline.Grid, table mapping.Table, pos Position) *Song {
	return &Song{
		Grid:     grid,
		Mappings: table,
		Current:  pos,
		Previous: pos,
	}
}

// HasNext reports whether any track is left to play.
func (s *Song) HasNext() bool {
	return s.Current.Track < Done
}

// Step builds the selection at the cursor and moves the cursor past it.
// The previous position is kept until the next Step so a failed
// application can be undone with Revert.
func (s *Song) Step() (Selection, error) {
	if !s.HasNext() {
		return Selection{}, fault.New("no more notes in the song", ftag.With(kind.State))
	}
	s.Previous = s.Current

	items, err := Select(s.Grid, s.Current, s.Mappings)
	if err != nil {
		return Selection{}, fault.Wrap(err, fmsg.With("selecting at "+s.Current.String()))
	}

	next, advanced := NextPosition(s.Current, s.Grid.Length())
	s.Current = next
	return Selection{Items: items, Advanced: advanced}, nil
}

// Revert moves the cursor back to where the last Step started.
func (s *Song) Revert() {
	s.Current = s.Previous
}

// Select maps the cells of one container to item markers.
func Select(grid timeline.Grid, pos Position, table mapping.Table) ([Slots]mapping.Item, error) {
	var items [Slots]mapping.Item
	if len(table) == 0 {
		return items, fault.New("mappings are not loaded", ftag.With(kind.Config))
	}
	if int(pos.Track) >= timeline.Tracks {
		return items, fault.New(fmt.Sprintf("track %d out of range", pos.Track), ftag.With(kind.State))
	}

	for i := range items {
		items[i] = table.Rest()
	}

	row := grid[pos.Track]
	slot := 0
	for i := int(pos.Offset); i < len(row) && slot < Slots; i += Stride {
		item, err := table.ForCell(row[i])
		if err != nil {
			return items, err
		}
		items[slot] = item
		slot++
	}
	return items, nil
}

// NextPosition returns the cursor after pos on a track of the given length
// and whether the track was exhausted.
func NextPosition(pos Position, length int) (Position, bool) {
	offset := int(pos.Offset)
	switch offset % Stride {
	case 3, 2:
		offset -= 2
	case 1:
		offset++
	case 0:
		offset += Slots*Stride + 3
	}

	if offset >= length {
		return Position{Track: pos.Track + 1, Offset: StartOffset}, true
	}
	return Position{Track: pos.Track, Offset: uint16(offset)}, false
}
