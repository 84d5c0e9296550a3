package nbs

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/icco/jukebox/internal/kind"
)

// byteReader reads the little-endian primitives of the format.
type byteReader struct {
	r   io.Reader
	buf [4]byte
}

func (br *byteReader) fill(width int, field string) error {
	if width < 1 || width > 4 {
		return fault.New(fmt.Sprintf("invalid width %d for %s", width, field), ftag.With(kind.Format))
	}
	if _, err := io.ReadFull(br.r, br.buf[:width]); err != nil {
		return truncated(err, field)
	}
	return nil
}

// readUint reads an unsigned little-endian integer of the given width.
func (br *byteReader) readUint(width int, field string) (int, error) {
	if err := br.fill(width, field); err != nil {
		return 0, err
	}
	var v uint32
	for i := 0; i < width; i++ {
		v |= uint32(br.buf[i]) << (8 * i)
	}
	return int(v), nil
}

// readInt reads a little-endian integer and sign-extends it from the given width.
func (br *byteReader) readInt(width int, field string) (int, error) {
	v, err := br.readUint(width, field)
	if err != nil {
		return 0, err
	}
	shift := 32 - 8*width
	return int(int32(uint32(v)<<shift) >> shift), nil
}

func (br *byteReader) readBool(field string) (bool, error) {
	v, err := br.readUint(1, field)
	return v != 0, err
}

// readString reads a u32 length prefix followed by that many raw bytes.
func (br *byteReader) readString(field string) (string, error) {
	n, err := br.readInt(4, field+" length")
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fault.New(fmt.Sprintf("negative length %d for %s", n, field), ftag.With(kind.Format))
	}

	var sb strings.Builder
	if _, err := io.CopyN(&sb, br.r, int64(n)); err != nil {
		return "", truncated(err, field)
	}
	return sb.String(), nil
}

func truncated(err error, field string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fault.Wrap(err,
			ftag.With(kind.Format),
			fmsg.WithDesc("truncated "+field, fmt.Sprintf("Sequence file ends before %s", field)))
	}
	return fault.Wrap(err, ftag.With(kind.IO), fmsg.With("reading "+field))
}
