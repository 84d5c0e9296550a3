// Package timeline projects decoded notes onto the fixed track grid the
// jukebox plays from.
package timeline

import (
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/ftag"

	"github.com/icco/jukebox/internal/kind"
	"github.com/icco/jukebox/internal/nbs"
)

const (
	// Tracks is the number of physical sub-container rows.
	Tracks = 6
	// Rest marks a cell without a note.
	Rest int8 = -1
	// KeyBase is the sequence key stored as cell value 0.
	KeyBase = 33
)

// Grid holds one cell per tick for each track. Every row has the same length.
type Grid [Tracks][]int8

// NewGrid returns a grid of the given length filled with Rest.
func NewGrid(length int) Grid {
	var g Grid
	for t := range g {
		g[t] = make([]int8, length)
		for i := range g[t] {
			g[t][i] = Rest
		}
	}
	return g
}

// Compile builds the grid for a song. Notes on layers past the last track or
// past the declared length are dropped; a later note replaces an earlier one
// in the same cell.
func Compile(length int, notes []nbs.Note) Grid {
	g := NewGrid(length)
	for _, n := range notes {
		if n.Layer < 0 || n.Layer >= Tracks || n.Tick < 0 || n.Tick >= length {
			continue
		}
		g[n.Layer][n.Tick] = int8(n.Key - KeyBase)
	}
	return g
}

// Length is the number of cells per track.
func (g Grid) Length() int {
	return len(g[0])
}

// Count returns the number of notes on a track.
func (g Grid) Count(track int) int {
	c := 0
	for _, v := range g[track] {
		if v != Rest {
			c++
		}
	}
	return c
}

// Equal reports whether both grids hold the same cells.
func (g Grid) Equal(o Grid) bool {
	for t := range g {
		if len(g[t]) != len(o[t]) {
			return false
		}
		for i := range g[t] {
			if g[t][i] != o[t][i] {
				return false
			}
		}
	}
	return true
}

// Flatten lays the tracks out one after another.
func (g Grid) Flatten() []byte {
	n := g.Length()
	out := make([]byte, 0, n*Tracks)
	for t := range g {
		for _, v := range g[t] {
			out = append(out, byte(v))
		}
	}
	return out
}

// Unflatten splits a flattened grid back into tracks.
func Unflatten(b []byte) (Grid, error) {
	if len(b)%Tracks != 0 {
		return Grid{}, fault.New(fmt.Sprintf("invalid song length %d", len(b)), ftag.With(kind.State))
	}
	n := len(b) / Tracks
	var g Grid
	for t := range g {
		g[t] = make([]int8, n)
		for i, v := range b[t*n : (t+1)*n] {
			g[t][i] = int8(v)
		}
	}
	return g, nil
}
