package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/icco/jukebox/internal/mapping"
	"github.com/icco/jukebox/internal/nbs"
	"github.com/icco/jukebox/internal/playback"
	"github.com/icco/jukebox/internal/timeline"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	dirStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAFF")).
			Bold(true)

	songStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	restStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#444444"))

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))
)

// Colors for the progress bar, one per track.
var trackColors = [timeline.Tracks]string{
	"#00FFFF", "#0099FF", "#3333FF", "#8000FF", "#CC00FF", "#FF00FF",
}

// NoteName names a sequence key, where key 0 is A0.
func NoteName(key int) string {
	notes := []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	midi := key + 21
	return fmt.Sprintf("%s%d", notes[midi%12], midi/12-1)
}

// RenderSelection draws a selection as three rows of nine abbreviated items.
// Rest markers are dimmed.
func RenderSelection(sel playback.Selection, rest mapping.Item) string {
	width := 0
	for _, it := range sel.Items {
		width = max(width, len(it.Abbrev()))
	}
	cell := lipgloss.NewStyle().Width(width + 1)

	var b strings.Builder
	for row := 0; row < playback.Slots; row += 9 {
		b.WriteString("  ")
		for _, it := range sel.Items[row : row+9] {
			style := noteStyle
			if it == rest {
				style = restStyle
			}
			b.WriteString(cell.Render(style.Render(it.Abbrev())))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderProgress draws one segment per track with the cursor marked.
func RenderProgress(pos playback.Position, length int, paused bool) string {
	const segment = 8

	var bar strings.Builder
	bar.WriteString("Tracks ")
	for t := 0; t < timeline.Tracks; t++ {
		color := lipgloss.Color(trackColors[t])
		switch {
		case t < int(pos.Track):
			bar.WriteString(lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", segment)))
		case t == int(pos.Track):
			filled := 0
			if length > 0 {
				filled = min(int(pos.Offset)*segment/length, segment-1)
			}
			bar.WriteString(lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)))
			bar.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(color).Bold(true).Render("▶"))
			bar.WriteString(restStyle.Render(strings.Repeat("·", segment-filled-1)))
		default:
			bar.WriteString(restStyle.Render(strings.Repeat("·", segment)))
		}
		bar.WriteString(" ")
	}

	status := lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true).Render("Filling")
	if paused {
		status = labelStyle.Render("Paused")
	}
	bar.WriteString(status)
	return bar.String()
}

// RenderHeader summarizes a decoded sequence and its compiled grid.
func RenderHeader(h nbs.Header, grid timeline.Grid) string {
	var b strings.Builder

	name := h.Name
	if name == "" {
		name = "(untitled)"
	}
	b.WriteString(titleStyle.Render(name) + "\n\n")

	field := func(label, value string) {
		if value != "" {
			b.WriteString(labelStyle.Render(fmt.Sprintf("%-16s", label)) + value + "\n")
		}
	}
	field("Author", h.Author)
	field("Original author", h.OriginalAuthor)
	field("Description", h.Description)
	field("Version", fmt.Sprint(h.Version))
	field("Length", fmt.Sprintf("%d ticks", h.Length))
	field("Tempo", fmt.Sprintf("%.2f ticks/s", h.TicksPerSecond()))
	field("Layers", fmt.Sprint(h.LayerCount))
	if h.Looping {
		field("Loop", fmt.Sprintf("from tick %d, %d times", h.LoopStart, h.MaxLoops))
	}

	b.WriteString("\n")
	for t := 0; t < timeline.Tracks; t++ {
		low, high := -1, -1
		for _, c := range grid[t] {
			if c == timeline.Rest {
				continue
			}
			if low < 0 || int(c) < low {
				low = int(c)
			}
			high = max(high, int(c))
		}
		line := fmt.Sprintf("Track %d  %4d notes", t, grid.Count(t))
		if low >= 0 {
			line += "  " + noteStyle.Render(NoteName(low+timeline.KeyBase)+"-"+NoteName(high+timeline.KeyBase))
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
