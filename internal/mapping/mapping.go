// Package mapping translates grid cells into the item markers a note block
// reads. Index 0 is the rest marker; index i+1 holds the marker for cell i.
package mapping

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/icco/jukebox/internal/kind"
)

// Item identifies an item marker, e.g. "minecraft:red_wool" or "red_wool".
type Item string

// Abbrev shortens an identifier to the initials of its words: "red_wool" -> "RW".
func (it Item) Abbrev() string {
	name := string(it)
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for _, w := range strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '/' || r == '.' }) {
		b.WriteString(strings.ToUpper(w[:1]))
	}
	return b.String()
}

// Table is the ordered marker list.
type Table []Item

// Defaults is the table written on first use.
var Defaults = Table{
	"white_stained_glass",
	"magenta_stained_glass",
	"brown_wool",
	"brown_stained_glass",
	"red_wool",
	"red_stained_glass",
	"orange_wool",
	"yellow_wool",
	"yellow_stained_glass",
	"lime_wool",
	"lime_stained_glass",
	"light_blue_wool",
	"magenta_wool",
	"magenta_stained_glass_pane",
	"brown_concrete",
	"brown_stained_glass_pane",
	"red_concrete",
	"red_stained_glass_pane",
	"orange_concrete",
	"yellow_concrete",
	"yellow_stained_glass_pane",
	"lime_concrete",
	"lime_stained_glass_pane",
	"light_blue_concrete",
	"magenta_concrete",
	"magenta_dye",
}

var identifier = regexp.MustCompile(`^([a-z0-9_.-]+:)?[a-z0-9_./-]+$`)

// Rest returns the marker used for empty cells.
func (t Table) Rest() Item {
	return t[0]
}

// rest is the grid value of an empty cell.
const rest int8 = -1

// ForCell returns the marker for a grid cell value. Only the rest value maps
// to the rest marker; notes outside the table are an error.
func (t Table) ForCell(cell int8) (Item, error) {
	if cell == rest {
		return t.Rest(), nil
	}
	idx := int(cell) + 1
	if idx < 1 || idx >= len(t) {
		return "", fault.New(fmt.Sprintf("invalid note id: %d", idx),
			ftag.With(kind.Config),
			fmsg.WithDesc("mapping index out of range",
				fmt.Sprintf("No item is mapped to note %d (table has %d entries)", idx, len(t))))
	}
	return t[idx], nil
}

// Validate checks that the table is usable.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fault.New("mappings are not loaded", ftag.With(kind.Config))
	}
	for i, it := range t {
		if !identifier.MatchString(string(it)) {
			return fault.New(fmt.Sprintf("invalid item identifier %q on line %d", it, i+1), ftag.With(kind.Config))
		}
	}
	return nil
}

// Load reads the table at path, writing the defaults there first when the
// file does not exist yet.
func Load(path string) (Table, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := Write(path, Defaults); err != nil {
			return nil, err
		}
		return append(Table(nil), Defaults...), nil
	}
	if err != nil {
		return nil, fault.Wrap(err, ftag.With(kind.IO), fmsg.With("opening mappings"))
	}
	defer f.Close()

	var t Table
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		t = append(t, Item(strings.TrimSpace(sc.Text())))
	}
	if err := sc.Err(); err != nil {
		return nil, fault.Wrap(err, ftag.With(kind.IO), fmsg.With("reading mappings"))
	}
	if err := t.Validate(); err != nil {
		return nil, fault.Wrap(err, fmsg.With(path))
	}
	return t, nil
}

// Write stores the table one identifier per line.
func Write(path string, t Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fault.Wrap(err, ftag.With(kind.IO), fmsg.With("creating config directory"))
	}
	var b strings.Builder
	for _, it := range t {
		b.WriteString(string(it))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fault.Wrap(err, ftag.With(kind.IO), fmsg.With("writing mappings"))
	}
	return nil
}
