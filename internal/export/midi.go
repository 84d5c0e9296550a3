// Package export writes a compiled grid as a Standard MIDI File so a song
// can be auditioned before it is loaded into the jukebox.
package export

import (
	"fmt"
	"log/slog"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/icco/jukebox/internal/kind"
	"github.com/icco/jukebox/internal/timeline"
)

const (
	ticksPerQuarterNote = 960
	// TicksPerStep is the MIDI length of one sequence tick, a sixteenth note.
	TicksPerStep = ticksPerQuarterNote / 4
	// KeyOffset maps a grid cell to a MIDI key: cell 0 is sequence key 33,
	// which is MIDI key 54.
	KeyOffset = timeline.KeyBase + 21
	velocity  = 100
	maxKey    = 127
)

// BPM converts a sequence rate to quarter notes per minute.
func BPM(ticksPerSecond float64) float64 {
	return ticksPerSecond * 60 / 4
}

// Build renders grid as a format 1 file: a tempo track followed by one
// track per grid row, each on its own channel. Notes above MIDI key 127
// are left out.
func Build(grid timeline.Grid, ticksPerSecond float64) (*smf.SMF, error) {
	if ticksPerSecond <= 0 {
		return nil, fault.New(fmt.Sprintf("invalid tempo %.2f", ticksPerSecond), ftag.With(kind.Format))
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(ticksPerQuarterNote)

	var track0 smf.Track
	track0.Add(0, smf.MetaMeter(4, 4))
	track0.Add(0, smf.MetaTempo(BPM(ticksPerSecond)))
	track0.Close(0)
	if err := sm.Add(track0); err != nil {
		return nil, fault.Wrap(err, fmsg.With("adding tempo track"))
	}

	for row := 0; row < timeline.Tracks; row++ {
		var track smf.Track
		ch := uint8(row)
		var lastTick uint32

		track.Add(0, smf.MetaTrackSequenceName(fmt.Sprintf("Track %d", row)))
		for step, cell := range grid[row] {
			if cell == timeline.Rest {
				continue
			}
			if int(cell)+KeyOffset > maxKey {
				slog.Debug("skipping note above the MIDI range", "track", row, "tick", step, "key", int(cell)+KeyOffset)
				continue
			}
			key := uint8(int(cell) + KeyOffset)
			pos := uint32(step) * TicksPerStep
			track.Add(pos-lastTick, midi.NoteOn(ch, key, velocity))
			track.Add(TicksPerStep-1, midi.NoteOff(ch, key))
			lastTick = pos + TicksPerStep - 1
		}

		endTick := uint32(grid.Length()) * TicksPerStep
		if lastTick < endTick {
			track.Close(endTick - lastTick)
		} else {
			track.Close(0)
		}
		if err := sm.Add(track); err != nil {
			return nil, fault.Wrap(err, fmsg.With(fmt.Sprintf("adding track %d", row)))
		}
	}
	return sm, nil
}

// WriteFile builds the file and writes it to path.
func WriteFile(path string, grid timeline.Grid, ticksPerSecond float64) error {
	sm, err := Build(grid, ticksPerSecond)
	if err != nil {
		return err
	}
	if err := sm.WriteFile(path); err != nil {
		return fault.Wrap(err, ftag.With(kind.IO), fmsg.With("writing MIDI file"))
	}
	return nil
}
