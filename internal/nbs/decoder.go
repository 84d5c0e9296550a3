package nbs

import (
	"bufio"
	"io"
	"os"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/icco/jukebox/internal/kind"
)

// Note is a single decoded note event.
type Note struct {
	Tick       int
	Layer      int
	Instrument int
	Key        int // 0 = A0, 87 = C8
	Volume     int // percent
	Panning    int // -100 (left) .. 100 (right)
	Pitch      int // fine pitch in cents
}

// phases of the event stream
const (
	phaseTick = iota
	phaseLayer
	phaseNote
)

// Decoder walks the event stream of a sequence file once, front to back.
type Decoder struct {
	Header Header

	br    *byteReader
	phase int
	tick  int
	layer int
	done  bool
	err   error
}

// NewDecoder reads the header and leaves the decoder positioned at the
// first event.
func NewDecoder(r io.Reader) (*Decoder, error) {
	br := &byteReader{r: r}
	h, err := readHeader(br)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("reading header"))
	}
	return &Decoder{
		Header: h,
		br:     br,
		phase:  phaseTick,
		tick:   -1,
		layer:  -1,
	}, nil
}

// Next returns the next note in stream order. It returns io.EOF after the
// terminating zero tick jump, and keeps returning the first error it hit.
func (d *Decoder) Next() (Note, error) {
	if d.err != nil {
		return Note{}, d.err
	}
	if d.done {
		return Note{}, io.EOF
	}

	for {
		switch d.phase {
		case phaseTick:
			jump, err := d.br.readUint(2, "tick jump")
			if err != nil {
				return d.fail(err)
			}
			if jump == 0 {
				d.done = true
				return Note{}, io.EOF
			}
			d.tick += jump
			d.phase = phaseLayer

		case phaseLayer:
			jump, err := d.br.readUint(2, "layer jump")
			if err != nil {
				return d.fail(err)
			}
			if jump == 0 {
				d.layer = -1
				d.phase = phaseTick
				continue
			}
			d.layer += jump
			d.phase = phaseNote

		case phaseNote:
			n, err := d.readNote()
			if err != nil {
				return d.fail(err)
			}
			d.phase = phaseLayer
			return n, nil
		}
	}
}

func (d *Decoder) readNote() (Note, error) {
	n := Note{Tick: d.tick, Layer: d.layer, Volume: 100}
	var err error

	if n.Instrument, err = d.br.readUint(1, "instrument"); err != nil {
		return n, err
	}
	if n.Key, err = d.br.readUint(1, "key"); err != nil {
		return n, err
	}
	if d.Header.Version < 4 {
		return n, nil
	}

	if n.Volume, err = d.br.readUint(1, "volume"); err != nil {
		return n, err
	}
	pan, err := d.br.readUint(1, "panning")
	if err != nil {
		return n, err
	}
	n.Panning = pan - 100
	if n.Pitch, err = d.br.readInt(2, "pitch"); err != nil {
		return n, err
	}
	return n, nil
}

func (d *Decoder) fail(err error) (Note, error) {
	d.err = fault.Wrap(err, fmsg.With("reading notes"))
	return Note{}, d.err
}

// Decode reads a whole sequence from r.
func Decode(r io.Reader) (Header, []Note, error) {
	d, err := NewDecoder(r)
	if err != nil {
		return Header{}, nil, err
	}

	var notes []Note
	for {
		n, err := d.Next()
		if err == io.EOF {
			return d.Header, notes, nil
		}
		if err != nil {
			return d.Header, nil, err
		}
		notes = append(notes, n)
	}
}

// DecodeFile reads the sequence file at path.
func DecodeFile(path string) (Header, []Note, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, fault.Wrap(err,
			ftag.With(kind.IO),
			fmsg.WithDesc("opening sequence", "File "+path+" does not exist or cannot be read"))
	}
	defer f.Close()

	h, notes, err := Decode(bufio.NewReader(f))
	if err != nil {
		return h, nil, fault.Wrap(err, fmsg.With(path))
	}
	return h, notes, nil
}
