// Package persist stores the playback position and compiled grid between
// runs.
//
// Layout: [paused:u8][track:u8][offset:u16 LE][zlib(flattened grid)]
package persist

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/icco/jukebox/internal/kind"
	"github.com/icco/jukebox/internal/playback"
	"github.com/icco/jukebox/internal/timeline"
)

// HeaderSize is the length of the fixed prefix.
const HeaderSize = 4

// State is everything needed to resume a song.
type State struct {
	Paused   bool
	Position playback.Position
	Grid     timeline.Grid
}

// header encodes the fixed prefix.
func header(paused bool, pos playback.Position) [HeaderSize]byte {
	var h [HeaderSize]byte
	if paused {
		h[0] = 1
	}
	h[1] = pos.Track
	binary.LittleEndian.PutUint16(h[2:], pos.Offset)
	return h
}

// Encode serializes a state, compressing the grid at the best ratio.
func Encode(s State) ([]byte, error) {
	flat := s.Grid.Flatten()

	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, fault.Wrap(err, ftag.With(kind.State), fmsg.With("creating compressor"))
	}
	if _, err := zw.Write(flat); err != nil {
		return nil, fault.Wrap(err, ftag.With(kind.State), fmsg.With("compressing song"))
	}
	if err := zw.Close(); err != nil {
		return nil, fault.Wrap(err, ftag.With(kind.State), fmsg.With("compressing song"))
	}
	if buf.Len() == 0 {
		return nil, fault.New("failed to compress song", ftag.With(kind.State))
	}

	h := header(s.Paused, s.Position)
	out := make([]byte, 0, HeaderSize+buf.Len())
	out = append(out, h[:]...)
	return append(out, buf.Bytes()...), nil
}

// Decode parses a serialized state.
func Decode(b []byte) (State, error) {
	if len(b) < HeaderSize {
		return State{}, fault.New(fmt.Sprintf("state record too short: %d bytes", len(b)), ftag.With(kind.State))
	}

	s := State{
		Paused: b[0] == 1,
		Position: playback.Position{
			Track:  b[1],
			Offset: binary.LittleEndian.Uint16(b[2:4]),
		},
	}

	compressed := b[HeaderSize:]
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return State{}, fault.Wrap(err, ftag.With(kind.State), fmsg.With("reading compressed song"))
	}
	defer zr.Close()
	flat, err := io.ReadAll(zr)
	if err != nil {
		return State{}, fault.Wrap(err, ftag.With(kind.State), fmsg.With("decompressing song"))
	}

	if s.Grid, err = timeline.Unflatten(flat); err != nil {
		return State{}, err
	}

	if int(s.Position.Track) > playback.Done {
		return State{}, fault.New(fmt.Sprintf("invalid track %d", s.Position.Track), ftag.With(kind.State))
	}
	return s, nil
}
