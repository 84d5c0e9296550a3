package tui

import (
	"strings"
	"testing"

	"github.com/icco/jukebox/internal/mapping"
	"github.com/icco/jukebox/internal/nbs"
	"github.com/icco/jukebox/internal/playback"
	"github.com/icco/jukebox/internal/timeline"
)

func TestNoteName(t *testing.T) {
	tests := []struct {
		key  int
		want string
	}{
		{0, "A0"},
		{3, "C1"},
		{33, "F#3"},
		{39, "C4"},
		{87, "C8"},
	}
	for _, tt := range tests {
		if got := NoteName(tt.key); got != tt.want {
			t.Errorf("Expected key %d to be %s, got %s", tt.key, tt.want, got)
		}
	}
}

func TestRenderSelection(t *testing.T) {
	var sel playback.Selection
	for i := range sel.Items {
		sel.Items[i] = mapping.Defaults[0]
	}
	sel.Items[9] = "red_wool"

	out := RenderSelection(sel, mapping.Defaults[0])
	rows := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if !strings.Contains(rows[1], "RW") || strings.Contains(rows[0], "RW") {
		t.Errorf("Expected RW on the second row, got:\n%s", out)
	}
	if strings.Count(out, "WSG") != 26 {
		t.Errorf("Expected 26 rest markers, got %d", strings.Count(out, "WSG"))
	}
}

func TestRenderProgress(t *testing.T) {
	out := RenderProgress(playback.Position{Track: 2, Offset: 50}, 100, true)
	if strings.Count(out, "▶") != 1 {
		t.Errorf("Expected one cursor, got:\n%s", out)
	}
	if strings.Count(out, "█") != 2*8+4 {
		t.Errorf("Expected two full tracks and half a track, got:\n%s", out)
	}
	if !strings.Contains(out, "Paused") {
		t.Error("Expected paused status")
	}
}

func TestRenderHeader(t *testing.T) {
	grid := timeline.Compile(8, []nbs.Note{
		{Tick: 0, Layer: 1, Key: 39},
		{Tick: 4, Layer: 1, Key: 51},
	})
	out := RenderHeader(nbs.Header{Name: "Tune", Author: "Someone", Length: 8, Tempo: 1000}, grid)

	for _, want := range []string{"Tune", "Someone", "8 ticks", "10.00 ticks/s", "C4-C5"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Original author") {
		t.Error("Expected empty fields to be omitted")
	}
}
