// Package nbs decodes Note Block Studio sequence files.
package nbs

// Header is the metadata block at the start of a sequence file.
// Fields introduced by later format versions keep their zero value when
// the file predates them.
type Header struct {
	Version            int
	DefaultInstruments int
	Length             int // ticks
	LayerCount         int

	Name           string
	Author         string
	OriginalAuthor string
	Description    string

	Tempo              int // ticks per second * 100
	AutoSaving         bool
	AutoSavingDuration int
	TimeSignature      int

	MinutesSpent      int
	LeftClicks        int
	RightClicks       int
	NoteblocksAdded   int
	NoteblocksRemoved int
	SongOrigin        string

	// Version 4 and later
	Looping   bool
	MaxLoops  int
	LoopStart int
}

// TicksPerSecond converts the stored tempo to a rate.
func (h Header) TicksPerSecond() float64 {
	return float64(h.Tempo) / 100
}

func readHeader(br *byteReader) (Header, error) {
	var h Header
	var err error

	if h.Length, err = br.readUint(2, "length"); err != nil {
		return h, err
	}

	// Files from version 1 on start with a zero where the length used to be.
	if h.Length == 0 {
		if h.Version, err = br.readUint(1, "version"); err != nil {
			return h, err
		}
		if h.DefaultInstruments, err = br.readUint(1, "default instruments"); err != nil {
			return h, err
		}
		if h.Version >= 3 {
			if h.Length, err = br.readUint(2, "length"); err != nil {
				return h, err
			}
		}
	}

	if h.LayerCount, err = br.readUint(2, "layer count"); err != nil {
		return h, err
	}

	for _, f := range []struct {
		dst  *string
		name string
	}{
		{&h.Name, "name"},
		{&h.Author, "author"},
		{&h.OriginalAuthor, "original author"},
		{&h.Description, "description"},
	} {
		if *f.dst, err = br.readString(f.name); err != nil {
			return h, err
		}
	}

	if h.Tempo, err = br.readUint(2, "tempo"); err != nil {
		return h, err
	}
	if h.AutoSaving, err = br.readBool("auto saving"); err != nil {
		return h, err
	}
	if h.AutoSavingDuration, err = br.readUint(1, "auto saving duration"); err != nil {
		return h, err
	}
	if h.TimeSignature, err = br.readUint(1, "time signature"); err != nil {
		return h, err
	}

	for _, f := range []struct {
		dst  *int
		name string
	}{
		{&h.MinutesSpent, "minutes spent"},
		{&h.LeftClicks, "left clicks"},
		{&h.RightClicks, "right clicks"},
		{&h.NoteblocksAdded, "noteblocks added"},
		{&h.NoteblocksRemoved, "noteblocks removed"},
	} {
		if *f.dst, err = br.readUint(4, f.name); err != nil {
			return h, err
		}
	}

	if h.SongOrigin, err = br.readString("song origin"); err != nil {
		return h, err
	}

	if h.Version >= 4 {
		if h.Looping, err = br.readBool("looping"); err != nil {
			return h, err
		}
		if h.MaxLoops, err = br.readUint(1, "max loops"); err != nil {
			return h, err
		}
		if h.LoopStart, err = br.readUint(2, "loop start"); err != nil {
			return h, err
		}
	}

	return h, nil
}
