// Package tui holds the terminal views: the sequence file picker and the
// renderers used by the query and info commands.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/icco/jukebox/internal/kind"
)

// Extension is the suffix of sequence files shown by the picker.
const Extension = ".nbs"

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Open   key.Binding
	Parent key.Binding
	Quit   key.Binding
}

// newKey binds keyboardKey to an action, showing the first key in the help line.
func newKey(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

var keys = keyMap{
	Up:     newKey("up", "up", "k"),
	Down:   newKey("down", "down", "j"),
	Open:   newKey("open", "enter"),
	Parent: newKey("parent", "backspace", "h"),
	Quit:   newKey("cancel", "q", "esc", "ctrl+c"),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Parent, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type fileInfo struct {
	name  string
	path  string
	isDir bool
}

// Picker is a file browser that lists directories and sequence files.
type Picker struct {
	currentDir  string
	files       []fileInfo
	cursor      int
	viewportTop int
	height      int
	message     string
	selected    string
	help        help.Model
}

// NewPicker opens the browser in dir, or the home directory when dir is empty.
func NewPicker(dir string) Picker {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir = home
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	p := Picker{currentDir: dir, help: help.New()}
	p.loadFiles()
	return p
}

// Selected is the chosen file, empty if the picker was cancelled.
func (p Picker) Selected() string {
	return p.selected
}

func (p *Picker) loadFiles() {
	p.files = []fileInfo{}

	if parent := filepath.Dir(p.currentDir); parent != p.currentDir {
		p.files = append(p.files, fileInfo{name: "..", path: parent, isDir: true})
	}

	entries, err := os.ReadDir(p.currentDir)
	if err != nil {
		p.message = fmt.Sprintf("Error reading directory: %v", err)
		return
	}

	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if entry.IsDir() || strings.HasSuffix(strings.ToLower(entry.Name()), Extension) {
			p.files = append(p.files, fileInfo{
				name:  entry.Name(),
				path:  filepath.Join(p.currentDir, entry.Name()),
				isDir: entry.IsDir(),
			})
		}
	}

	if p.cursor >= len(p.files) {
		p.cursor = max(len(p.files)-1, 0)
	}
	p.viewportTop = min(p.viewportTop, p.cursor)
}

func (p *Picker) visibleLines() int {
	return max(p.height-8, 5)
}

func (p *Picker) open(dir string) {
	p.currentDir = dir
	p.cursor = 0
	p.viewportTop = 0
	p.message = ""
	p.loadFiles()
}

func (p Picker) Init() tea.Cmd {
	return nil
}

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.height = msg.Height
		p.help.Width = msg.Width
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			p.selected = ""
			return p, tea.Quit

		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
			if p.cursor < p.viewportTop {
				p.viewportTop = p.cursor
			}

		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.files)-1 {
				p.cursor++
			}
			if lines := p.visibleLines(); p.cursor >= p.viewportTop+lines {
				p.viewportTop = p.cursor - lines + 1
			}

		case key.Matches(msg, keys.Parent):
			p.open(filepath.Dir(p.currentDir))

		case key.Matches(msg, keys.Open):
			if len(p.files) == 0 {
				return p, nil
			}
			selected := p.files[p.cursor]
			if selected.isDir {
				p.open(selected.path)
				return p, nil
			}
			p.selected = selected.path
			return p, tea.Quit
		}
	}
	return p, nil
}

func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("JUKEBOX - Select a song") + "\n\n")
	fmt.Fprintf(&b, "Current Directory: %s\n\n", p.currentDir)

	if len(p.files) == 0 {
		b.WriteString("No sequence files or directories found.\n")
	}

	end := min(p.viewportTop+p.visibleLines(), len(p.files))
	for i := p.viewportTop; i < end; i++ {
		file := p.files[i]
		name := songStyle.Render(file.name)
		if file.isDir {
			name = dirStyle.Render(file.name + "/")
		}
		if i == p.cursor {
			b.WriteString(selectedStyle.Render("> "+name) + "\n")
		} else {
			b.WriteString("  " + name + "\n")
		}
	}

	if p.message != "" {
		b.WriteString("\n" + errorStyle.Render(p.message) + "\n")
	}
	b.WriteString("\n" + p.help.View(keys))
	return b.String()
}

// Pick runs the picker until a file is chosen or the user cancels. It
// returns an empty path on cancel.
func Pick(dir string) (string, error) {
	prog := tea.NewProgram(NewPicker(dir), tea.WithAltScreen())
	final, err := prog.Run()
	if err != nil {
		return "", fault.Wrap(err, ftag.With(kind.IO), fmsg.With("running file picker"))
	}
	return final.(Picker).Selected(), nil
}
